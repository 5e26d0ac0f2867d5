package autopilot

import (
	"errors"
	"fmt"

	"github.com/Mshel/termsnake/internal/game"
	lua "github.com/yuin/gopher-lua"
)

const strategyFunction = "next_direction"

// DefaultStrategy heads for the food along moves that leave at least a
// body length of room, and otherwise takes the roomiest safe move.
const DefaultStrategy = `
function next_direction(state)
	local best = nil
	local bestScore = nil
	for _, move in ipairs(state.moves) do
		if move.safe then
			local score = -move.distance
			if move.space >= state.length then
				score = score + 10000
			else
				score = score + move.space * 100
			end
			if bestScore == nil or score > bestScore then
				best = move.dir
				bestScore = score
			end
		end
	end
	return best or state.heading
end
`

// BotStrategy is a loaded Lua script exposing next_direction(state).
type BotStrategy struct {
	StrategyName string
	luaState     *lua.LState
}

func NewBotStrategy(name, definition string) (*BotStrategy, error) {
	luaState := lua.NewState()
	if err := luaState.DoString(definition); err != nil {
		luaState.Close()
		return nil, fmt.Errorf("could not parse lua strategy %s: %w", name, err)
	}

	if luaState.GetGlobal(strategyFunction).Type() != lua.LTFunction {
		luaState.Close()
		return nil, fmt.Errorf("lua strategy %s does not define %s(state)", name, strategyFunction)
	}

	return &BotStrategy{StrategyName: name, luaState: luaState}, nil
}

// NextDirection asks the script where to go given the latest frame.
func (s *BotStrategy) NextDirection(frame game.Frame) (game.Direction, error) {
	s.luaState.Push(s.luaState.GetGlobal(strategyFunction))
	s.luaState.Push(s.stateTable(frame))
	if err := s.luaState.PCall(1, 1, nil); err != nil {
		return 0, fmt.Errorf("could not execute lua strategy %s: %w", s.StrategyName, err)
	}

	luaReturn := s.luaState.Get(-1)
	s.luaState.Pop(1)

	name, ok := luaReturn.(lua.LString)
	if !ok {
		return 0, errors.New("lua strategy returned " + luaReturn.Type().String() + ", expected string")
	}

	d, ok := game.ParseDirection(string(name))
	if !ok {
		return 0, fmt.Errorf("lua strategy returned unknown direction %q", string(name))
	}
	return d, nil
}

func (s *BotStrategy) Close() {
	s.luaState.Close()
}

func (s *BotStrategy) stateTable(frame game.Frame) *lua.LTable {
	L := s.luaState
	state := L.NewTable()
	state.RawSetString("width", lua.LNumber(frame.Width))
	state.RawSetString("height", lua.LNumber(frame.Height))
	state.RawSetString("heading", lua.LString(frame.Heading.String()))
	state.RawSetString("length", lua.LNumber(len(frame.Body)))
	state.RawSetString("score", lua.LNumber(frame.Score))
	if len(frame.Body) > 0 {
		state.RawSetString("head", pointTable(L, frame.Body[0]))
	}
	if frame.HasFood {
		state.RawSetString("food", pointTable(L, frame.Food))
	}

	moves := L.NewTable()
	for _, move := range candidateMoves(frame) {
		entry := L.NewTable()
		entry.RawSetString("dir", lua.LString(move.Direction.String()))
		entry.RawSetString("next", pointTable(L, move.Next))
		entry.RawSetString("safe", lua.LBool(move.Safe))
		entry.RawSetString("space", lua.LNumber(move.Space))
		entry.RawSetString("distance", lua.LNumber(move.Distance))
		moves.Append(entry)
	}
	state.RawSetString("moves", moves)

	return state
}

func pointTable(L *lua.LState, p game.Point) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("x", lua.LNumber(p.X))
	t.RawSetString("y", lua.LNumber(p.Y))
	return t
}
