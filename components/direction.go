package components

// Direction is one of the nine compass moves available to an organism.
type Direction uint8

const (
	Stand Direction = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// NumDirections is the number of directions including Stand.
const NumDirections = 9

// directionDeltas maps each direction to (dCol, dRow). North is row-1.
var directionDeltas = [NumDirections][2]int{
	Stand:     {0, 0},
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
}

// Delta returns the column and row displacement for d.
func (d Direction) Delta() (dCol, dRow int) {
	if d >= NumDirections {
		return 0, 0
	}
	delta := directionDeltas[d]
	return delta[0], delta[1]
}

// Moves returns the eight non-Stand directions in compass order.
func Moves() []Direction {
	return []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
}
