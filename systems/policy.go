package systems

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
)

// View is read-only access to the grid as it stood before the movement phase.
type View struct {
	g     *Grid
	cells []components.Cell
}

// Height returns the number of rows.
func (v View) Height() int { return v.g.height }

// Width returns the number of columns.
func (v View) Width() int { return v.g.width }

// At returns a copy of the cell at (row, col), wrapping toroidally.
func (v View) At(row, col int) components.Cell {
	return v.cells[v.g.Index(row, col)].Clone()
}

// Neighbor returns a copy of the cell one step from pos in direction d.
func (v View) Neighbor(pos components.Position, d components.Direction) components.Cell {
	dCol, dRow := d.Delta()
	return v.At(pos.Row+dRow, pos.Col+dCol)
}

// MovementPolicy picks the direction an eligible organism moves this tick.
type MovementPolicy interface {
	Choose(c components.Cell, v View) components.Direction
}

// PolicyFunc adapts a function to MovementPolicy.
type PolicyFunc func(c components.Cell, v View) components.Direction

// Choose calls f.
func (f PolicyFunc) Choose(c components.Cell, v View) components.Direction {
	return f(c, v)
}

// FixedPolicy moves every organism in the same direction.
func FixedPolicy(dir components.Direction) MovementPolicy {
	return PolicyFunc(func(components.Cell, View) components.Direction { return dir })
}

// StandPolicy keeps every organism in place.
func StandPolicy() MovementPolicy {
	return FixedPolicy(components.Stand)
}

// DefaultPolicy is used when no policy is given: everyone walks east.
func DefaultPolicy() MovementPolicy {
	return FixedPolicy(components.East)
}

// RandomPolicy picks one of the nine directions uniformly.
// The policy owns rng; it must not be shared with other goroutines.
func RandomPolicy(rng *rand.Rand) MovementPolicy {
	return PolicyFunc(func(components.Cell, View) components.Direction {
		return components.Direction(rng.Intn(components.NumDirections))
	})
}

// ForagePolicy steps onto the first neighbour, in compass order, that holds
// the organism's prey. With no prey in reach it stands.
func ForagePolicy() MovementPolicy {
	return PolicyFunc(func(c components.Cell, v View) components.Direction {
		prey := c.Kind.Prey()
		if prey == components.Empty {
			return components.Stand
		}
		for _, d := range components.Moves() {
			if v.Neighbor(c.Pos, d).Kind == prey {
				return d
			}
		}
		return components.Stand
	})
}

// PolicyFromConfig builds the policy named in the movement section.
// A zero movement seed falls back to runSeed.
func PolicyFromConfig(cfg config.MovementConfig, runSeed int64) (MovementPolicy, error) {
	switch strings.ToLower(cfg.Policy) {
	case "", "fixed":
		dir := components.East
		if cfg.Direction != "" {
			d, err := components.ParseDirection(cfg.Direction)
			if err != nil {
				return nil, fmt.Errorf("movement.direction: %w", err)
			}
			dir = d
		}
		return FixedPolicy(dir), nil
	case "stand":
		return StandPolicy(), nil
	case "random":
		seed := cfg.Seed
		if seed == 0 {
			seed = runSeed
		}
		return RandomPolicy(rand.New(rand.NewSource(seed))), nil
	case "forage":
		return ForagePolicy(), nil
	default:
		return nil, fmt.Errorf("unknown movement policy %q", cfg.Policy)
	}
}
