package systems

import (
	"math"
	"strings"

	"github.com/pthm-cable/pasture/components"
)

// numBuffers is the arena size: the live generation plus two staging buffers,
// one per tick phase, so a failed tick never touches the live cells.
const numBuffers = 3

// Grid is a toroidal, row-major grid of cells.
// Cells are never added or removed, only rewritten.
type Grid struct {
	height, width int

	arena [numBuffers][]components.Cell
	live  int

	claimed []bool // movement scratch, one flag per index

	nextID uint64
	tick   int64

	params Params
	policy MovementPolicy
}

// NewGrid creates a height x width grid seeded with dormant grass on every
// index that is even or a multiple of 7, and Empty cells elsewhere.
// A nil policy selects DefaultPolicy.
func NewGrid(height, width int, p Params, policy MovementPolicy) (*Grid, error) {
	if height <= 0 || width <= 0 {
		return nil, invariantf("new grid", "dimensions must be positive, got %dx%d", height, width)
	}
	if policy == nil {
		policy = DefaultPolicy()
	}

	n := height * width
	g := &Grid{
		height:  height,
		width:   width,
		claimed: make([]bool, n),
		nextID:  components.NoID,
		params:  p,
		policy:  policy,
	}
	for i := range g.arena {
		g.arena[i] = make([]components.Cell, n)
	}

	cells := g.arena[g.live]
	for i := range cells {
		pos := components.Position{Row: i / width, Col: i % width}
		if i%2 == 0 || i%7 == 0 {
			cells[i] = components.Cell{
				ID:       g.NextID(),
				Kind:     components.Grass,
				Pos:      pos,
				Status:   components.Dead,
				Calories: p.GrassCalories,
				Dir:      components.Stand,
			}
		} else {
			cells[i] = components.EmptyCell(pos)
		}
	}

	return g, nil
}

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Len returns the number of cells, always Height*Width.
func (g *Grid) Len() int { return len(g.arena[g.live]) }

// TickCount returns the number of committed ticks.
func (g *Grid) TickCount() int64 { return g.tick }

// Params returns the metabolic constants in use.
func (g *Grid) Params() Params { return g.params }

// SetPolicy replaces the movement policy. Nil selects DefaultPolicy.
func (g *Grid) SetPolicy(p MovementPolicy) {
	if p == nil {
		p = DefaultPolicy()
	}
	g.policy = p
}

// NextID allocates a fresh organism identifier. Identifiers are strictly
// increasing and never reused.
func (g *Grid) NextID() uint64 {
	g.nextID++
	return g.nextID
}

func (g *Grid) cells() []components.Cell {
	return g.arena[g.live]
}

// wrap returns x modulo n in [0, n).
func wrap(x, n int) int {
	r := x % n
	if r < 0 {
		r += n
	}
	return r
}

// Index returns the linear index of (row, col) with toroidal wrapping,
// so Index(Height(), c) == Index(0, c) and Index(-1, c) is the last row.
func (g *Grid) Index(row, col int) int {
	return wrap(row, g.height)*g.width + wrap(col, g.width)
}

// IndexOf returns the linear index of pos, rejecting out-of-range positions.
func (g *Grid) IndexOf(pos components.Position) (int, error) {
	if pos.Row < 0 || pos.Row >= g.height || pos.Col < 0 || pos.Col >= g.width {
		return 0, &BoundsError{Op: "index", Row: pos.Row, Col: pos.Col, Height: g.height, Width: g.width}
	}
	return pos.Row*g.width + pos.Col, nil
}

// PositionOf returns the position of a linear index.
func (g *Grid) PositionOf(index int) (components.Position, error) {
	if index < 0 || index >= g.Len() {
		return components.Position{}, &BoundsError{Op: "position", Index: index, ByIndex: true, Height: g.height, Width: g.width}
	}
	return components.Position{Row: index / g.width, Col: index % g.width}, nil
}

// Neighbors returns the eight Moore neighbours of pos in compass order
// (N, NE, E, SE, S, SW, W, NW), wrapping across edges.
func (g *Grid) Neighbors(pos components.Position) ([8]components.Position, error) {
	var out [8]components.Position
	if _, err := g.IndexOf(pos); err != nil {
		return out, err
	}
	for i, d := range components.Moves() {
		dCol, dRow := d.Delta()
		out[i] = components.Position{
			Row: (pos.Row + dRow + g.height) % g.height,
			Col: (pos.Col + dCol + g.width) % g.width,
		}
	}
	return out, nil
}

// CountMatchingNeighbors counts the neighbours of pos holding the food kind
// of the organism at pos: grass for a living sheep, sheep for a living wolf.
// Any other occupant has no food and yields 0.
func (g *Grid) CountMatchingNeighbors(pos components.Position) (int, error) {
	i, err := g.IndexOf(pos)
	if err != nil {
		return 0, err
	}
	cells := g.cells()
	c := &cells[i]
	if !c.IsAlive() {
		return 0, nil
	}
	food := c.Kind.Prey()
	if food == components.Empty {
		return 0, nil
	}

	neighbors, _ := g.Neighbors(pos)
	count := 0
	for _, n := range neighbors {
		if cells[n.Row*g.width+n.Col].Kind == food {
			count++
		}
	}
	return count, nil
}

// Spawn places a new organism at req.Pos. Whatever occupied the cell becomes
// the newcomer's contained organism. Health is clamped to [0, MaxHealth],
// calories and stamina to >= 0. Non-finite calories are rejected. On error
// the grid is unchanged.
func (g *Grid) Spawn(req components.SpawnRequest) (components.Cell, error) {
	i, err := g.IndexOf(req.Pos)
	if err != nil {
		return components.Cell{}, err
	}
	if !req.Kind.Valid() || req.Kind == components.Empty {
		return components.Cell{}, invariantf("spawn", "cannot spawn kind %v", req.Kind)
	}
	if req.Status != components.Alive && req.Status != components.Dead {
		return components.Cell{}, invariantf("spawn", "unknown life status %d", req.Status)
	}
	if math.IsNaN(req.Calories) || math.IsInf(req.Calories, 0) {
		return components.Cell{}, invariantf("spawn", "calories must be finite, got %v", req.Calories)
	}

	cells := g.cells()
	c := components.Cell{
		ID:        g.NextID(),
		Kind:      req.Kind,
		Pos:       req.Pos,
		Stamina:   max(req.Stamina, 0),
		Status:    req.Status,
		Calories:  max(req.Calories, 0),
		Health:    min(max(req.Health, 0), g.params.MaxHealth),
		Dir:       components.Stand,
		Contained: cells[i].Capture(),
	}
	cells[i] = c
	return c, nil
}

// Cell returns a copy of the cell at pos.
func (g *Grid) Cell(pos components.Position) (components.Cell, error) {
	i, err := g.IndexOf(pos)
	if err != nil {
		return components.Cell{}, err
	}
	return g.cells()[i].Clone(), nil
}

// At returns a copy of the cell at a linear index.
func (g *Grid) At(index int) (components.Cell, error) {
	if index < 0 || index >= g.Len() {
		return components.Cell{}, &BoundsError{Op: "at", Index: index, ByIndex: true, Height: g.height, Width: g.width}
	}
	return g.cells()[index].Clone(), nil
}

// Each calls fn for every cell in index order with its position, kind and status.
func (g *Grid) Each(fn func(pos components.Position, kind components.Creature, status components.Life)) {
	for i := range g.cells() {
		c := &g.cells()[i]
		fn(c.Pos, c.Kind, c.Status)
	}
}

// Cells returns a deep copy of every cell in index order.
func (g *Grid) Cells() []components.Cell {
	src := g.cells()
	out := make([]components.Cell, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}

// ListByKind returns copies of every cell of the given kind, in index order.
func (g *Grid) ListByKind(kind components.Creature) []components.Cell {
	var out []components.Cell
	for i := range g.cells() {
		c := &g.cells()[i]
		if c.Kind == kind {
			out = append(out, c.Clone())
		}
	}
	return out
}

// RenderText draws one glyph per cell ('.', '#', 'S', 'W'), one line per row.
func (g *Grid) RenderText() string {
	var b strings.Builder
	b.Grow(g.Len() + g.height)
	cells := g.cells()
	for row := 0; row < g.height; row++ {
		for _, c := range cells[row*g.width : (row+1)*g.width] {
			b.WriteRune(c.Kind.Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Validate checks the structural invariants of the live cells.
func (g *Grid) Validate() error {
	return g.validate(g.cells())
}

func (g *Grid) validate(cells []components.Cell) error {
	const op = "validate"
	if len(cells) != g.height*g.width {
		return invariantf(op, "cell count %d, want %d", len(cells), g.height*g.width)
	}

	seen := make(map[uint64]int, len(cells))
	claim := func(id uint64, i int) error {
		if prev, dup := seen[id]; dup {
			return invariantf(op, "identifier %d held by index %d and %d", id, prev, i)
		}
		seen[id] = i
		return nil
	}

	for i := range cells {
		c := &cells[i]
		want := components.Position{Row: i / g.width, Col: i % g.width}
		if c.Pos != want {
			return invariantf(op, "index %d records position %v, want %v", i, c.Pos, want)
		}
		if !c.Kind.Valid() {
			return invariantf(op, "index %d has unknown kind %d", i, c.Kind)
		}
		if c.Health < 0 || c.Health > g.params.MaxHealth {
			return invariantf(op, "index %d health %d outside [0,%d]", i, c.Health, g.params.MaxHealth)
		}
		if c.Calories < 0 || math.IsNaN(c.Calories) {
			return invariantf(op, "index %d has invalid calories %v", i, c.Calories)
		}
		if c.IsAlive() && c.Health == 0 {
			return invariantf(op, "index %d is alive with zero health", i)
		}

		if c.Kind == components.Empty {
			if c.ID != components.NoID || c.Contained != nil {
				return invariantf(op, "empty index %d carries an organism", i)
			}
			continue
		}
		if c.ID == components.NoID {
			return invariantf(op, "index %d holds a %v without identifier", i, c.Kind)
		}
		if err := claim(c.ID, i); err != nil {
			return err
		}
		if c.Contained != nil {
			if c.Contained.Kind == components.Empty || c.Contained.ID == components.NoID {
				return invariantf(op, "index %d contains an empty record", i)
			}
			if err := claim(c.Contained.ID, i); err != nil {
				return err
			}
		}
	}
	return nil
}
