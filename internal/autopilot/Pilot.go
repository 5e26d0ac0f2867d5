package autopilot

import (
	"fmt"
	"os"
	"time"

	"github.com/Mshel/termsnake/internal/game"
	"github.com/charmbracelet/log"
)

// BuiltinStrategyName selects DefaultStrategy instead of a script file.
const BuiltinStrategyName = "builtin"

// Pilot steers the snake with a BotStrategy. It watches rendered frames,
// decides once per frame, and hands the decision out on the next poll.
// Keys from the wrapped input still come through, so the player can quit.
type Pilot struct {
	input    game.InputSource
	strategy *BotStrategy
	logger   *log.Logger

	pending    game.KeyEvent
	hasPending bool
}

func NewPilot(input game.InputSource, strategy *BotStrategy, logger *log.Logger) *Pilot {
	return &Pilot{input: input, strategy: strategy, logger: logger}
}

// Load builds a pilot from "builtin" or the path of a Lua script.
func Load(source string, input game.InputSource, logger *log.Logger) (*Pilot, error) {
	name, definition := BuiltinStrategyName, DefaultStrategy
	if source != BuiltinStrategyName {
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read strategy script: %w", err)
		}
		name, definition = source, string(raw)
	}

	strategy, err := NewBotStrategy(name, definition)
	if err != nil {
		return nil, err
	}
	logger.Info("Autopilot engaged", "strategy", name)
	return NewPilot(input, strategy, logger), nil
}

// Render picks the heading for the next tick. Script failures are logged
// and leave the heading alone.
func (p *Pilot) Render(frame game.Frame) error {
	d, err := p.strategy.NextDirection(frame)
	if err != nil {
		p.logger.Warn("Autopilot strategy failed", "strategy", p.strategy.StrategyName, "error", err)
		p.hasPending = false
		return nil
	}

	code := keyForDirection(d)
	p.pending = game.KeyEvent{Code: code}
	p.hasPending = d != frame.Heading
	return nil
}

func (p *Pilot) PollInput(timeout time.Duration) (game.KeyEvent, bool, error) {
	if p.hasPending {
		p.hasPending = false
		return p.pending, true, nil
	}
	return p.input.PollInput(timeout)
}

func (p *Pilot) Close() {
	p.strategy.Close()
}

func keyForDirection(d game.Direction) game.KeyCode {
	switch d {
	case game.Up:
		return game.KeyUp
	case game.Right:
		return game.KeyRight
	case game.Down:
		return game.KeyDown
	default:
		return game.KeyLeft
	}
}
