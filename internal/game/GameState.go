package game

import "time"

type Status int

const (
	Running Status = iota
	GameOver
)

type EndReason int

const (
	ReasonNone EndReason = iota
	ReasonWall
	ReasonSelf
	ReasonQuit
	ReasonBoardFull
	ReasonAborted
)

func (r EndReason) String() string {
	switch r {
	case ReasonWall:
		return "hit the wall"
	case ReasonSelf:
		return "bit itself"
	case ReasonQuit:
		return "quit"
	case ReasonBoardFull:
		return "filled the board"
	case ReasonAborted:
		return "aborted"
	}
	return "playing"
}

// GameState is the whole mutable game. It is owned by a single loop and
// never shared, so nothing here locks.
type GameState struct {
	Map     GameMap
	Snake   *Snake
	Food    Point
	HasFood bool
	Score   int
	Speed   int
	Status  Status
	Reason  EndReason

	rng Random
}

// NewGameState centres a fresh snake with a random heading and drops the
// first food.
func NewGameState(gameMap GameMap, rng Random) *GameState {
	state := &GameState{
		Map:    gameMap,
		Snake:  NewSnake(gameMap.Center(), InitialSnakeLength, RandomDirection(rng)),
		Status: Running,
		rng:    rng,
	}
	state.placeFood()
	return state
}

// Turn changes the heading unless d repeats or reverses the current one.
func (gs *GameState) Turn(d Direction) bool {
	return gs.turn(d, gs.Snake.Direction())
}

// turn validates d against reference, the heading the snake last moved
// along, so two quick turns inside one tick cannot fold it onto its neck.
func (gs *GameState) turn(d, reference Direction) bool {
	if gs.Status != Running || d == reference || d == reference.Opposite() {
		return false
	}
	gs.Snake.SetDirection(d)
	return true
}

// Step advances the game by one move. A collision ends the game and leaves
// the snake where it was.
func (gs *GameState) Step() {
	if gs.Status != Running {
		return
	}

	next := gs.Snake.NextHead()
	if gs.Map.IsWall(next) {
		gs.end(ReasonWall)
		return
	}
	if gs.Snake.bites(next) {
		gs.end(ReasonSelf)
		return
	}

	if !gs.HasFood || next != gs.Food {
		gs.Snake.Slither()
		return
	}

	gs.Snake.Grow()
	gs.Score++
	if gs.Score%speedThreshold(gs.Map.Width, gs.Map.Height) == 0 && gs.Speed < MaxSpeed {
		gs.Speed++
	}
	gs.placeFood()
}

func (gs *GameState) Interval() time.Duration {
	return TickInterval(gs.Speed)
}

func (gs *GameState) Frame() Frame {
	return Frame{
		Width:   gs.Map.Width,
		Height:  gs.Map.Height,
		Body:    gs.Snake.Body(),
		Food:    gs.Food,
		HasFood: gs.HasFood,
		Heading: gs.Snake.Direction(),
		Score:   gs.Score,
		Speed:   gs.Speed,
	}
}

func (gs *GameState) placeFood() {
	food, ok := gs.Map.PlaceFood(gs.Snake, gs.rng)
	gs.Food, gs.HasFood = food, ok
	if !ok {
		gs.end(ReasonBoardFull)
	}
}

func (gs *GameState) end(reason EndReason) {
	if gs.Status == GameOver {
		return
	}
	gs.Status = GameOver
	gs.Reason = reason
}
