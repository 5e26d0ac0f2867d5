package autopilot

import "github.com/Mshel/termsnake/internal/game"

// Move is one candidate heading as seen from the snake's head.
type Move struct {
	Direction game.Direction
	Next      game.Point
	Safe      bool
	Space     int
	Distance  int
}

// candidateMoves scores every heading except the reversal: whether the next
// cell is free, how many cells are reachable from it, and how far it is
// from the food.
func candidateMoves(frame game.Frame) []Move {
	if len(frame.Body) == 0 {
		return nil
	}

	gameMap := game.GameMap{Width: frame.Width, Height: frame.Height}
	blocked := make(map[game.Point]struct{}, len(frame.Body))
	// the tail moves away during the step, so it is not an obstacle
	for _, p := range frame.Body[:len(frame.Body)-1] {
		blocked[p] = struct{}{}
	}

	head := frame.Body[0]
	moves := make([]Move, 0, len(game.Directions)-1)
	for _, d := range game.Directions {
		if len(frame.Body) > 1 && d == frame.Heading.Opposite() {
			continue
		}

		next := head.Translate(d, 1)
		move := Move{Direction: d, Next: next}
		if frame.HasFood {
			move.Distance = game.GetManhattanDistance(next, frame.Food)
		}

		_, taken := blocked[next]
		move.Safe = !gameMap.IsWall(next) && !taken
		if move.Safe {
			move.Space = reachableSpace(gameMap, blocked, next, len(frame.Body)*2)
		}
		moves = append(moves, move)
	}
	return moves
}

// reachableSpace flood fills from seed and counts free cells, stopping
// once limit is reached since beyond that more room makes no difference.
func reachableSpace(gameMap game.GameMap, blocked map[game.Point]struct{}, seed game.Point, limit int) int {
	seen := map[game.Point]struct{}{seed: {}}
	q := []game.Point{seed}

	for len(q) > 0 && len(seen) < limit {
		cell := q[0]
		q = q[1:]

		for _, d := range game.Directions {
			next := cell.Translate(d, 1)
			if gameMap.IsWall(next) {
				continue
			}
			if _, ok := blocked[next]; ok {
				continue
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			q = append(q, next)
		}
	}

	return min(len(seen), limit)
}
