package game

import "fmt"

type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists every heading in clockwise order starting at Up.
var Directions = []Direction{Up, Right, Down, Left}

var directionDeltas = map[Direction][2]int{
	Up:    {0, -1},
	Right: {1, 0},
	Down:  {0, 1},
	Left:  {-1, 0},
}

// Opposite returns the heading pointing the other way. Up/Down and
// Left/Right are the only pairs.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta is the unit vector of the heading in screen coordinates (y grows downward).
func (d Direction) Delta() (dx, dy int) {
	delta := directionDeltas[d]
	return delta[0], delta[1]
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection maps a heading name back to its Direction.
func ParseDirection(name string) (Direction, bool) {
	for _, d := range Directions {
		if d.String() == name {
			return d, true
		}
	}
	return 0, false
}

func RandomDirection(rng Random) Direction {
	return Directions[rng.Intn(len(Directions))]
}

type Point struct {
	X, Y int
}

// Translate returns the point distance cells away along d.
func (p Point) Translate(d Direction, distance int) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx*distance, Y: p.Y + dy*distance}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func GetManhattanDistance(p1, p2 Point) int {
	dx := p1.X - p2.X
	if dx < 0 {
		dx = -dx
	}
	dy := p1.Y - p2.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
