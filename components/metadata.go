package components

import (
	"fmt"
	"strings"
)

// CreatureNames returns the display names for all creature kinds.
// The order matches the Creature constants.
func CreatureNames() []string {
	return []string{"empty", "grass", "sheep", "wolf"}
}

// String returns the lowercase name of the creature kind.
func (c Creature) String() string {
	names := CreatureNames()
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// Glyph returns the single-character text rendering of the kind.
func (c Creature) Glyph() rune {
	switch c {
	case Empty:
		return '.'
	case Grass:
		return '#'
	case Sheep:
		return 'S'
	case Wolf:
		return 'W'
	default:
		return '?'
	}
}

// ParseCreature converts a name such as "sheep" into a Creature.
func ParseCreature(s string) (Creature, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range CreatureNames() {
		if n == name {
			return Creature(i), nil
		}
	}
	return Empty, fmt.Errorf("unknown creature %q", s)
}

// String returns "alive" or "dead".
func (l Life) String() string {
	if l == Alive {
		return "alive"
	}
	return "dead"
}

// DirectionNames returns the short compass names for all directions.
func DirectionNames() []string {
	return []string{"stand", "n", "ne", "e", "se", "s", "sw", "w", "nw"}
}

// String returns the short compass name of d.
func (d Direction) String() string {
	names := DirectionNames()
	if int(d) < len(names) {
		return names[d]
	}
	return "unknown"
}

// ParseDirection converts a compass name ("e", "NW", "stand") into a Direction.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range DirectionNames() {
		if n == name {
			return Direction(i), nil
		}
	}
	return Stand, fmt.Errorf("unknown direction %q", s)
}

// String renders a position as "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}
