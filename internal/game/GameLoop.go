package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Result is what a finished session reports back to the player.
type Result struct {
	Score  int
	Length int
	Speed  int
	Reason EndReason
}

func (r Result) String() string {
	return fmt.Sprintf("Game Over! Your score is %d", r.Score)
}

type SessionOption func(*Session)

// WithInput replaces the terminal as the source of key events.
func WithInput(input InputSource) SessionOption {
	return func(s *Session) { s.input = input }
}

// WithObservers renders every frame to the given renderers after the terminal.
func WithObservers(observers ...Renderer) SessionOption {
	return func(s *Session) { s.observers = append(s.observers, observers...) }
}

func WithLogger(logger *log.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// Session runs one game from terminal setup to the final score. All of its
// state belongs to the goroutine calling Run.
type Session struct {
	terminal  Terminal
	input     InputSource
	observers []Renderer
	settings  Settings
	rng       Random
	logger    *log.Logger
	now       func() time.Time

	state        *GameState
	pollFailures int
}

func NewSession(terminal Terminal, settings Settings, rng Random, opts ...SessionOption) *Session {
	s := &Session{
		terminal: terminal,
		input:    terminal,
		settings: settings,
		rng:      rng,
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plays until game over. Collisions and quitting are normal endings;
// an error means the terminal or the input failed, and the terminal has
// already been restored by the time Run returns it.
func (s *Session) Run(ctx context.Context) (result Result, err error) {
	columns, rows, err := s.terminal.Measure()
	if err != nil {
		return Result{}, fmt.Errorf("measure terminal: %w", err)
	}

	width, height, err := FitBoard(s.settings.BoardWidth, s.settings.BoardHeight, columns, rows)
	if err != nil {
		return Result{}, err
	}

	configureErr := s.terminal.Configure(TerminalSettings{
		RawMode:    true,
		Columns:    width + TerminalColumnPadding,
		Rows:       height + TerminalRowPadding,
		Clear:      true,
		HideCursor: true,
	})
	defer func() {
		if restoreErr := s.terminal.Restore(); restoreErr != nil {
			s.logger.Error("Could not restore terminal", "error", restoreErr)
			if err == nil {
				err = fmt.Errorf("restore terminal: %w", restoreErr)
			}
		}
	}()
	if configureErr != nil {
		return Result{}, fmt.Errorf("configure terminal: %w", configureErr)
	}

	s.state = NewGameState(GameMap{Width: width, Height: height}, s.rng)
	s.logger.Info("Game started", "width", width, "height", height,
		"heading", s.state.Snake.Direction(), "food", s.state.Food)

	if err := s.render(); err != nil {
		s.state.end(ReasonAborted)
		return s.result(), err
	}

	for s.state.Status == Running {
		if err := s.tick(ctx); err != nil {
			s.state.end(ReasonAborted)
			return s.result(), err
		}
	}

	s.logger.Info("Game over", "reason", s.state.Reason, "score", s.state.Score,
		"length", s.state.Snake.Len(), "speed", s.state.Speed)
	return s.result(), nil
}

// tick spends the current interval polling for keys, then moves once.
func (s *Session) tick(ctx context.Context) error {
	interval := s.state.Interval()
	heading := s.state.Snake.Direction()
	start := s.now()

	for {
		if ctx.Err() != nil {
			s.state.end(ReasonAborted)
			return nil
		}

		remaining := interval - s.now().Sub(start)
		if remaining <= 0 {
			break
		}

		event, ok, err := s.input.PollInput(remaining)
		if err != nil {
			if fatal := s.pollFailed(err); fatal != nil {
				return fatal
			}
			continue
		}
		s.pollFailures = 0
		if !ok {
			continue
		}

		if IsQuit(event) {
			s.state.end(ReasonQuit)
			return nil
		}
		if d, isTurn := DirectionForKey(event.Code); isTurn {
			if s.state.turn(d, heading) {
				s.logger.Debug("Heading changed", "from", heading, "to", d)
			}
		}
	}

	s.state.Step()
	if s.state.Status != Running {
		return nil
	}
	return s.render()
}

func (s *Session) pollFailed(err error) error {
	if errors.Is(err, ErrInputClosed) {
		return fmt.Errorf("poll input: %w", err)
	}

	s.pollFailures++
	s.logger.Warn("Input poll failed", "error", err, "consecutive", s.pollFailures)
	if s.pollFailures >= MaxPollFailures {
		return fmt.Errorf("poll input failed %d times: %w", s.pollFailures, err)
	}
	return nil
}

func (s *Session) render() error {
	frame := s.state.Frame()
	if err := s.terminal.Render(frame); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	for _, observer := range s.observers {
		if err := observer.Render(frame); err != nil {
			s.logger.Warn("Observer failed to render", "error", err)
		}
	}
	return nil
}

func (s *Session) result() Result {
	if s.state == nil {
		return Result{}
	}
	return Result{
		Score:  s.state.Score,
		Length: s.state.Snake.Len(),
		Speed:  s.state.Speed,
		Reason: s.state.Reason,
	}
}

// IsQuit reports whether the key ends the game: the quit key itself or
// ctrl+c.
func IsQuit(event KeyEvent) bool {
	if event.Code == KeyQuit {
		return true
	}
	return event.Mods&ModCtrl != 0 && (event.Rune == 'c' || event.Rune == 'C')
}

func DirectionForKey(code KeyCode) (Direction, bool) {
	switch code {
	case KeyUp:
		return Up, true
	case KeyRight:
		return Right, true
	case KeyDown:
		return Down, true
	case KeyLeft:
		return Left, true
	}
	return 0, false
}
