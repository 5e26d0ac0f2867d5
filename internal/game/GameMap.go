package game

// GameMap is the fixed-size playing field. Cells run from (0,0) to
// (Width-1, Height-1); anything outside is wall.
type GameMap struct {
	Width  int
	Height int
}

func (m GameMap) IsWall(p Point) bool {
	return p.X < 0 || p.Y < 0 || p.X >= m.Width || p.Y >= m.Height
}

func (m GameMap) Area() int {
	return m.Width * m.Height
}

func (m GameMap) Center() Point {
	return Point{X: m.Width / 2, Y: m.Height / 2}
}

// PlaceFood picks a uniformly random cell not covered by the snake. It
// samples a bounded number of times and then falls back to enumerating the
// free cells, so a crowded board cannot stall the loop. ok is false only
// when the snake covers every cell.
func (m GameMap) PlaceFood(snake *Snake, rng Random) (food Point, ok bool) {
	for attempt := 0; attempt < foodSamplingAttempts; attempt++ {
		candidate := Point{X: rng.Intn(m.Width), Y: rng.Intn(m.Height)}
		if !snake.Contains(candidate) {
			return candidate, true
		}
	}

	free := m.FreeCells(snake)
	if len(free) == 0 {
		return Point{}, false
	}
	return free[rng.Intn(len(free))], true
}

// FreeCells lists the cells the snake does not cover, row by row.
func (m GameMap) FreeCells(snake *Snake) []Point {
	occupied := make(map[Point]struct{}, snake.Len())
	for _, p := range snake.body {
		occupied[p] = struct{}{}
	}

	free := make([]Point, 0, m.Area()-len(occupied))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := Point{X: x, Y: y}
			if _, taken := occupied[p]; !taken {
				free = append(free, p)
			}
		}
	}
	return free
}
