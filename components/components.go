// Package components defines the value types stored in the simulation grid.
package components

// Creature is the kind of organism occupying a cell.
// Kinds are totally ordered by rank: Empty < Grass < Sheep < Wolf.
type Creature uint8

const (
	Empty Creature = iota
	Grass
	Sheep
	Wolf
)

// NumCreatures is the number of creature kinds.
const NumCreatures = 4

// Life is the living status of a cell's occupant.
type Life uint8

const (
	Dead Life = iota
	Alive
)

// NoID is the identifier carried by Empty cells. Organisms never use it.
const NoID uint64 = 0

// Valid reports whether c is one of the known kinds.
func (c Creature) Valid() bool {
	return c < NumCreatures
}

// Prey returns the kind this creature digests, or Empty if it has none.
func (c Creature) Prey() Creature {
	switch c {
	case Sheep:
		return Grass
	case Wolf:
		return Sheep
	default:
		return Empty
	}
}

// Position is a (row, column) grid coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SpawnRequest describes an organism to place on the grid.
type SpawnRequest struct {
	Kind     Creature
	Pos      Position
	Stamina  int
	Status   Life
	Calories float64
	Health   int
}

// Contained is a prey organism swallowed by its host cell.
// It is a value snapshot owned by the host and cannot itself hold prey.
type Contained struct {
	ID       uint64   `json:"id"`
	Kind     Creature `json:"kind"`
	Pos      Position `json:"pos"`
	Stamina  int      `json:"stamina"`
	Status   Life     `json:"status"`
	Calories float64  `json:"calories"`
	Health   int      `json:"health"`
}

// Cell is the unit of grid state.
type Cell struct {
	ID       uint64    `json:"id"`
	Kind     Creature  `json:"kind"`
	Pos      Position  `json:"pos"`
	Stamina  int       `json:"stamina"`  // movement budget
	Status   Life      `json:"status"`
	Calories float64   `json:"calories"` // energy reserve, never negative
	Health   int       `json:"health"`   // 0..MaxHealth
	Dir      Direction `json:"dir"`      // last chosen direction

	Contained *Contained `json:"contained,omitempty"`
}

// IsAlive reports whether the cell holds a living organism.
func (c *Cell) IsAlive() bool {
	return c.Status == Alive
}

// HasPrey reports whether the contained organism is this cell's prey kind.
func (c *Cell) HasPrey() bool {
	prey := c.Kind.Prey()
	return c.Contained != nil && prey != Empty && c.Contained.Kind == prey
}

// Capture converts the cell's occupant into a contained record.
// Empty cells yield nil; the occupant's own contained prey is not carried.
func (c Cell) Capture() *Contained {
	if c.Kind == Empty {
		return nil
	}
	return &Contained{
		ID:       c.ID,
		Kind:     c.Kind,
		Pos:      c.Pos,
		Stamina:  c.Stamina,
		Status:   c.Status,
		Calories: c.Calories,
		Health:   c.Health,
	}
}

// Release turns a contained record back into a free occupant at pos.
func (o Contained) Release(pos Position) Cell {
	return Cell{
		ID:       o.ID,
		Kind:     o.Kind,
		Pos:      pos,
		Stamina:  o.Stamina,
		Status:   o.Status,
		Calories: o.Calories,
		Health:   o.Health,
		Dir:      Stand,
	}
}

// EmptyCell returns a vacant dead cell at pos.
func EmptyCell(pos Position) Cell {
	return Cell{ID: NoID, Kind: Empty, Pos: pos, Status: Dead, Dir: Stand}
}

// Clone returns a copy of c that shares no memory with it.
func (c Cell) Clone() Cell {
	if c.Contained != nil {
		o := *c.Contained
		c.Contained = &o
	}
	return c
}
