package game

import "slices"

// Snake is a head-first run of cells plus the heading it moves along.
// It does not know about the board; bounds are the caller's business.
type Snake struct {
	body    []Point
	heading Direction
}

// NewSnake lays out length cells ending at head, trailing away from heading,
// so the snake looks like it has been travelling that way.
func NewSnake(head Point, length int, heading Direction) *Snake {
	if length < 1 {
		panic("game: snake length must be at least 1")
	}

	body := make([]Point, 0, length)
	tail := heading.Opposite()
	for i := 0; i < length; i++ {
		body = append(body, head.Translate(tail, i))
	}

	return &Snake{body: body, heading: heading}
}

// SetDirection overwrites the heading. Reversal checks live in the loop.
func (s *Snake) SetDirection(d Direction) {
	s.heading = d
}

func (s *Snake) Direction() Direction {
	return s.heading
}

func (s *Snake) Head() Point {
	return s.body[0]
}

func (s *Snake) NextHead() Point {
	return s.Head().Translate(s.heading, 1)
}

func (s *Snake) Len() int {
	return len(s.body)
}

// Body returns a copy of the cells, head first.
func (s *Snake) Body() []Point {
	return slices.Clone(s.body)
}

func (s *Snake) Contains(p Point) bool {
	return slices.Contains(s.body, p)
}

// Slither moves one cell forward without growing.
func (s *Snake) Slither() {
	s.body = append([]Point{s.NextHead()}, s.body[:len(s.body)-1]...)
}

// Grow moves one cell forward and keeps the tail, adding one segment.
func (s *Snake) Grow() {
	s.body = append([]Point{s.NextHead()}, s.body...)
}

// bites reports whether moving to next would hit the body. The head cannot
// be re-entered and the tail cell is vacated on the same tick.
func (s *Snake) bites(next Point) bool {
	if len(s.body) < 3 {
		return false
	}
	return slices.Contains(s.body[1:len(s.body)-1], next)
}
