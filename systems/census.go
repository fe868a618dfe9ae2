package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// Census is a count of the live grid by kind.
type Census struct {
	Tick      int64
	Count     [components.NumCreatures]int
	Alive     [components.NumCreatures]int
	Calories  [components.NumCreatures]float64
	Contained int // organisms currently held inside a host
}

// Census counts cells, living organisms and calories per kind.
// Contained calories are not included.
func (g *Grid) Census() Census {
	c := Census{Tick: g.tick}
	for i := range g.cells() {
		cell := &g.cells()[i]
		if !cell.Kind.Valid() {
			continue
		}
		c.Count[cell.Kind]++
		c.Calories[cell.Kind] += cell.Calories
		if cell.IsAlive() {
			c.Alive[cell.Kind]++
		}
		if cell.Contained != nil {
			c.Contained++
		}
	}
	return c
}
