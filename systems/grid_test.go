package systems

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/pasture/components"
)

func newTestGrid(t *testing.T, height, width int, policy MovementPolicy) *Grid {
	t.Helper()
	g, err := NewGrid(height, width, DefaultParams(), policy)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d): %v", height, width, err)
	}
	return g
}

func mustSpawn(t *testing.T, g *Grid, req components.SpawnRequest) components.Cell {
	t.Helper()
	c, err := g.Spawn(req)
	if err != nil {
		t.Fatalf("Spawn(%v at %v): %v", req.Kind, req.Pos, err)
	}
	return c
}

func mustCell(t *testing.T, g *Grid, row, col int) components.Cell {
	t.Helper()
	c, err := g.Cell(components.Position{Row: row, Col: col})
	if err != nil {
		t.Fatalf("Cell(%d,%d): %v", row, col, err)
	}
	return c
}

// ---------- Construction ----------

func TestNewGrid_Seeding(t *testing.T) {
	g := newTestGrid(t, 5, 5, nil)

	if g.Len() != 25 {
		t.Fatalf("expected 25 cells, got %d", g.Len())
	}

	seen := make(map[uint64]bool)
	for i := 0; i < g.Len(); i++ {
		c, err := g.At(i)
		if err != nil {
			t.Fatalf("At(%d): %v", i, err)
		}
		want := components.Position{Row: i / 5, Col: i % 5}
		if c.Pos != want {
			t.Errorf("index %d: position %v, want %v", i, c.Pos, want)
		}
		if c.Status != components.Dead {
			t.Errorf("index %d: seeded cell should be dead", i)
		}

		if i%2 == 0 || i%7 == 0 {
			if c.Kind != components.Grass {
				t.Errorf("index %d: expected grass, got %v", i, c.Kind)
			}
			if c.Calories != 2.0 {
				t.Errorf("index %d: grass calories %v, want 2.0", i, c.Calories)
			}
			if c.ID == components.NoID || seen[c.ID] {
				t.Errorf("index %d: grass id %d not fresh", i, c.ID)
			}
			seen[c.ID] = true
		} else {
			if c.Kind != components.Empty || c.ID != components.NoID {
				t.Errorf("index %d: expected empty cell, got %v id %d", i, c.Kind, c.ID)
			}
		}
	}

	if err := g.Validate(); err != nil {
		t.Errorf("fresh grid should validate: %v", err)
	}
}

func TestNewGrid_RejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name          string
		height, width int
	}{
		{"zero height", 0, 5},
		{"zero width", 5, 0},
		{"negative", -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.height, tt.width, DefaultParams(), nil)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("expected invariant violation, got %v", err)
			}
		})
	}
}

// ---------- Indexing ----------

func TestIndex_Wraps(t *testing.T) {
	g := newTestGrid(t, 4, 6, nil)

	tests := []struct {
		row, col int
		want     int
	}{
		{0, 0, 0},
		{1, 2, 8},
		{3, 5, 23},
		{4, 0, 0},   // row == height wraps to 0
		{4, 3, 3},   // Index(height, c) == Index(0, c)
		{-1, 0, 18}, // last row
		{0, 6, 0},
		{0, -1, 5},
		{9, 13, 7},
	}
	for _, tt := range tests {
		if got := g.Index(tt.row, tt.col); got != tt.want {
			t.Errorf("Index(%d, %d) = %d, want %d", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestIndexOf_RejectsOutOfRange(t *testing.T) {
	g := newTestGrid(t, 4, 6, nil)

	bad := []components.Position{
		{Row: -1, Col: 0},
		{Row: 4, Col: 0},
		{Row: 0, Col: 6},
		{Row: 0, Col: -3},
	}
	for _, pos := range bad {
		_, err := g.IndexOf(pos)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("IndexOf(%v): expected ErrOutOfBounds, got %v", pos, err)
		}
		var be *BoundsError
		if !errors.As(err, &be) || be.Row != pos.Row || be.Col != pos.Col {
			t.Errorf("IndexOf(%v): expected *BoundsError with the position, got %#v", pos, err)
		}
	}
}

func TestPositionOf_RoundTrip(t *testing.T) {
	g := newTestGrid(t, 3, 7, nil)

	for i := 0; i < g.Len(); i++ {
		pos, err := g.PositionOf(i)
		if err != nil {
			t.Fatalf("PositionOf(%d): %v", i, err)
		}
		back, err := g.IndexOf(pos)
		if err != nil || back != i {
			t.Errorf("IndexOf(PositionOf(%d)) = %d, %v", i, back, err)
		}
	}

	for _, i := range []int{-1, 21, 100} {
		if _, err := g.PositionOf(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("PositionOf(%d): expected ErrOutOfBounds, got %v", i, err)
		}
		if _, err := g.At(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%d): expected ErrOutOfBounds, got %v", i, err)
		}
	}
}

// ---------- Neighbours ----------

func TestNeighbors_WrapAtCorner(t *testing.T) {
	g := newTestGrid(t, 5, 5, nil)

	got, err := g.Neighbors(components.Position{Row: 0, Col: 0})
	if err != nil {
		t.Fatal(err)
	}
	want := [8]components.Position{
		{Row: 4, Col: 0}, // N
		{Row: 4, Col: 1}, // NE
		{Row: 0, Col: 1}, // E
		{Row: 1, Col: 1}, // SE
		{Row: 1, Col: 0}, // S
		{Row: 1, Col: 4}, // SW
		{Row: 0, Col: 4}, // W
		{Row: 4, Col: 4}, // NW
	}
	if got != want {
		t.Errorf("Neighbors(0,0) = %v, want %v", got, want)
	}
}

func TestNeighbors_ColumnWrapUsesColumn(t *testing.T) {
	// Non-square so that a row/column mix-up would land elsewhere.
	g := newTestGrid(t, 3, 7, nil)

	got, err := g.Neighbors(components.Position{Row: 1, Col: 6})
	if err != nil {
		t.Fatal(err)
	}
	if got[2] != (components.Position{Row: 1, Col: 0}) {
		t.Errorf("east neighbour of (1,6) = %v, want (1,0)", got[2])
	}
	if got[6] != (components.Position{Row: 1, Col: 5}) {
		t.Errorf("west neighbour of (1,6) = %v, want (1,5)", got[6])
	}

	if _, err := g.Neighbors(components.Position{Row: 3, Col: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestCountMatchingNeighbors(t *testing.T) {
	g := newTestGrid(t, 5, 5, nil)
	center := components.Position{Row: 1, Col: 1}

	// Neighbours of (1,1) on the seeded 5x5 grid: indices 0, 2, 7, 10, 12 are grass.
	mustSpawn(t, g, components.SpawnRequest{Kind: components.Sheep, Pos: center, Stamina: 1, Status: components.Alive, Calories: 5, Health: 100})
	if n, err := g.CountMatchingNeighbors(center); err != nil || n != 5 {
		t.Errorf("sheep food count = %d, %v; want 5", n, err)
	}

	mustSpawn(t, g, components.SpawnRequest{Kind: components.Wolf, Pos: center, Stamina: 1, Status: components.Alive, Calories: 5, Health: 100})
	if n, _ := g.CountMatchingNeighbors(center); n != 0 {
		t.Errorf("wolf with no sheep around: got %d, want 0", n)
	}
	mustSpawn(t, g, components.SpawnRequest{Kind: components.Sheep, Pos: components.Position{Row: 0, Col: 1}, Stamina: 1, Status: components.Alive, Calories: 5, Health: 100})
	if n, _ := g.CountMatchingNeighbors(center); n != 1 {
		t.Errorf("wolf next to one sheep: got %d, want 1", n)
	}

	// Dead grass and empty cells have no food.
	if n, _ := g.CountMatchingNeighbors(components.Position{Row: 0, Col: 0}); n != 0 {
		t.Errorf("dead grass: got %d, want 0", n)
	}
	if n, _ := g.CountMatchingNeighbors(components.Position{Row: 2, Col: 1}); n != 0 {
		t.Errorf("empty cell: got %d, want 0", n)
	}
}

// ---------- Spawn ----------

func TestSpawn_CapturesPreviousOccupant(t *testing.T) {
	g := newTestGrid(t, 5, 5, nil)
	grass := mustCell(t, g, 0, 0)

	sheep := mustSpawn(t, g, components.SpawnRequest{
		Kind: components.Sheep, Pos: components.Position{}, Stamina: 10,
		Status: components.Alive, Calories: 20, Health: 100,
	})
	if sheep.Contained == nil {
		t.Fatal("expected the seeded grass to be captured")
	}
	if sheep.Contained.ID != grass.ID || sheep.Contained.Kind != components.Grass || sheep.Contained.Calories != 2.0 {
		t.Errorf("captured %+v, want grass id %d with 2.0 calories", *sheep.Contained, grass.ID)
	}
	if sheep.ID == grass.ID || sheep.ID == components.NoID {
		t.Errorf("spawned id %d should be fresh", sheep.ID)
	}

	onEmpty := mustSpawn(t, g, components.SpawnRequest{
		Kind: components.Wolf, Pos: components.Position{Row: 0, Col: 1},
		Status: components.Alive, Calories: 1, Health: 100,
	})
	if onEmpty.Contained != nil {
		t.Errorf("spawn on empty cell should contain nothing, got %+v", *onEmpty.Contained)
	}
	if onEmpty.ID <= sheep.ID {
		t.Errorf("identifiers must increase: %d after %d", onEmpty.ID, sheep.ID)
	}

	if err := g.Validate(); err != nil {
		t.Errorf("grid invalid after spawns: %v", err)
	}
}

func TestSpawn_Clamps(t *testing.T) {
	tests := []struct {
		name        string
		req         components.SpawnRequest
		wantHealth  int
		wantCal     float64
		wantStamina int
	}{
		{"health above max", components.SpawnRequest{Kind: components.Sheep, Health: 150, Calories: 3, Stamina: 2}, 100, 3, 2},
		{"negative health", components.SpawnRequest{Kind: components.Sheep, Health: -5, Calories: 3, Stamina: 2}, 0, 3, 2},
		{"negative calories", components.SpawnRequest{Kind: components.Wolf, Health: 40, Calories: -3, Stamina: 2}, 40, 0, 2},
		{"negative stamina", components.SpawnRequest{Kind: components.Wolf, Health: 40, Calories: 1, Stamina: -1}, 40, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 3, 3, nil)
			tt.req.Status = components.Alive
			c := mustSpawn(t, g, tt.req)
			if c.Health != tt.wantHealth || c.Calories != tt.wantCal || c.Stamina != tt.wantStamina {
				t.Errorf("got health %d calories %v stamina %d, want %d %v %d",
					c.Health, c.Calories, c.Stamina, tt.wantHealth, tt.wantCal, tt.wantStamina)
			}
		})
	}
}

func TestSpawn_RejectsAndLeavesGridUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		req     components.SpawnRequest
		wantErr error
	}{
		{"out of bounds", components.SpawnRequest{Kind: components.Sheep, Pos: components.Position{Row: 5, Col: 0}, Status: components.Alive, Health: 10}, ErrOutOfBounds},
		{"negative position", components.SpawnRequest{Kind: components.Sheep, Pos: components.Position{Row: 0, Col: -1}, Status: components.Alive, Health: 10}, ErrOutOfBounds},
		{"empty kind", components.SpawnRequest{Kind: components.Empty, Status: components.Dead}, ErrInvariant},
		{"unknown kind", components.SpawnRequest{Kind: components.Creature(9), Status: components.Alive}, ErrInvariant},
		{"unknown status", components.SpawnRequest{Kind: components.Sheep, Status: components.Life(4)}, ErrInvariant},
		{"NaN calories", components.SpawnRequest{Kind: components.Sheep, Status: components.Alive, Calories: math.NaN(), Health: 10}, ErrInvariant},
		{"infinite calories", components.SpawnRequest{Kind: components.Wolf, Status: components.Alive, Calories: math.Inf(1), Health: 10}, ErrInvariant},
		{"negative infinite calories", components.SpawnRequest{Kind: components.Sheep, Status: components.Alive, Calories: math.Inf(-1), Health: 10}, ErrInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 5, 5, nil)
			before := g.Cells()

			if _, err := g.Spawn(tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !reflect.DeepEqual(before, g.Cells()) {
				t.Error("failed spawn modified the grid")
			}
			// 15 seeded grass cells on 5x5; a failed spawn must not consume an id.
			if id := g.NextID(); id != 16 {
				t.Errorf("next id = %d, want 16", id)
			}
		})
	}
}

func TestSpawn_ShowsInRender(t *testing.T) {
	g := newTestGrid(t, 4, 5, nil)
	mustSpawn(t, g, components.SpawnRequest{Kind: components.Wolf, Pos: components.Position{Row: 2, Col: 3}, Status: components.Alive, Health: 100})

	lines := strings.Split(strings.TrimSuffix(g.RenderText(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(lines))
	}
	if lines[2][3] != 'W' {
		t.Errorf("row 2 = %q, want W at column 3", lines[2])
	}
}

// ---------- Read access ----------

func TestRenderText(t *testing.T) {
	g := newTestGrid(t, 2, 3, nil)
	if got, want := g.RenderText(), "#.#\n.#.\n"; got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}
}

func TestListByKindAndEach(t *testing.T) {
	g := newTestGrid(t, 5, 5, nil)
	mustSpawn(t, g, components.SpawnRequest{Kind: components.Sheep, Pos: components.Position{Row: 0, Col: 1}, Status: components.Alive, Health: 100})
	mustSpawn(t, g, components.SpawnRequest{Kind: components.Sheep, Pos: components.Position{Row: 3, Col: 3}, Status: components.Alive, Health: 100})

	sheep := g.ListByKind(components.Sheep)
	if len(sheep) != 2 {
		t.Fatalf("expected 2 sheep, got %d", len(sheep))
	}
	if sheep[0].Pos != (components.Position{Row: 0, Col: 1}) || sheep[1].Pos != (components.Position{Row: 3, Col: 3}) {
		t.Errorf("sheep not in index order: %v, %v", sheep[0].Pos, sheep[1].Pos)
	}

	var counts [components.NumCreatures]int
	alive := 0
	g.Each(func(_ components.Position, kind components.Creature, status components.Life) {
		counts[kind]++
		if status == components.Alive {
			alive++
		}
	})
	census := g.Census()
	if counts != census.Count {
		t.Errorf("Each counts %v disagree with census %v", counts, census.Count)
	}
	if alive != 2 || census.Alive[components.Sheep] != 2 {
		t.Errorf("expected 2 living sheep, got each=%d census=%d", alive, census.Alive[components.Sheep])
	}
}

func TestCells_ReturnsDeepCopy(t *testing.T) {
	g := newTestGrid(t, 3, 3, nil)
	mustSpawn(t, g, components.SpawnRequest{Kind: components.Sheep, Status: components.Alive, Health: 100})

	cells := g.Cells()
	cells[0].Contained.Calories = 99
	cells[1].Kind = components.Wolf

	c := mustCell(t, g, 0, 0)
	if c.Contained.Calories != 2.0 {
		t.Errorf("contained record aliased: calories %v", c.Contained.Calories)
	}
	if mustCell(t, g, 0, 1).Kind != components.Empty {
		t.Error("cell slice aliased")
	}
}

// ---------- Validate ----------

func TestValidate_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(cells []components.Cell)
	}{
		{"duplicate id", func(cells []components.Cell) {
			cells[1].Kind = components.Grass
			cells[1].ID = cells[0].ID
		}},
		{"empty with id", func(cells []components.Cell) {
			cells[1].ID = 77
		}},
		{"wrong position", func(cells []components.Cell) {
			cells[3].Pos = components.Position{Row: 2, Col: 2}
		}},
		{"health above max", func(cells []components.Cell) {
			cells[0].Health = 101
		}},
		{"alive at zero health", func(cells []components.Cell) {
			cells[0].Status = components.Alive
			cells[0].Health = 0
		}},
		{"contained shares host id", func(cells []components.Cell) {
			cells[0].Contained = &components.Contained{ID: cells[0].ID, Kind: components.Grass}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 3, 3, nil)
			tt.corrupt(g.cells())
			if err := g.Validate(); !errors.Is(err, ErrInvariant) {
				t.Errorf("expected invariant violation, got %v", err)
			}
		})
	}
}
