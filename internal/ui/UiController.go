package ui

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Mshel/termsnake/internal/game"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
)

const keyBufferSize = 16

type frameMsg game.Frame

// ControllerModel is the bubbletea side of a TeaTerminal. It never touches
// the game: key presses go out on a channel and frames come in as messages.
type ControllerModel struct {
	view     GameView
	keys     KeyMap
	events   chan<- game.KeyEvent
	logger   *log.Logger
	frame    game.Frame
	hasFrame bool

	ScreenWidth  int
	ScreenHeight int
}

func (m ControllerModel) Init() tea.Cmd {
	return nil
}

func (m ControllerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ScreenWidth = msg.Width
		m.ScreenHeight = msg.Height
	case tea.KeyMsg:
		select {
		case m.events <- m.keys.Decode(msg):
		default:
			m.logger.Debug("Key dropped, game is not polling", "key", msg.String())
		}
	case frameMsg:
		m.frame = game.Frame(msg)
		m.hasFrame = true
	}
	return m, nil
}

func (m ControllerModel) View() string {
	if !m.hasFrame {
		return ""
	}
	return m.view.Render(m.frame, m.ScreenWidth, m.ScreenHeight)
}

// TeaTerminal runs a bubbletea program as the game's terminal: the
// program owns raw mode, the alternate screen and the cursor, and the
// game talks to it through PollInput and Render.
type TeaTerminal struct {
	measure     func() (int, int, error)
	options     []tea.ProgramOption
	renderer    *lipgloss.Renderer
	keys        KeyMap
	logger      *log.Logger
	watchResize func(program *tea.Program, done <-chan struct{})

	columns, rows int
	program       *tea.Program
	events        chan game.KeyEvent
	done          chan struct{}
	runErr        error
}

// NewLocalTerminal plays on the process's own stdin and stdout.
func NewLocalTerminal(logger *log.Logger) *TeaTerminal {
	return &TeaTerminal{
		measure: MeasureLocal,
		// signals are the runner's to handle, it cancels the game's context
		options:  []tea.ProgramOption{tea.WithoutSignalHandler()},
		renderer: lipgloss.DefaultRenderer(),
		keys:     DefaultKeyMap(),
		logger:   logger,
	}
}

func MeasureLocal() (int, int, error) {
	columns, rows, err := term.GetSize(os.Stdout.Fd())
	if err != nil {
		return 0, 0, fmt.Errorf("get size of stdout: %w", err)
	}
	return columns, rows, nil
}

func (t *TeaTerminal) Measure() (int, int, error) {
	columns, rows, err := t.measure()
	if err != nil {
		return 0, 0, err
	}
	t.columns, t.rows = columns, rows
	return columns, rows, nil
}

// Configure starts the program. bubbletea always switches to raw mode and
// hides the cursor; Clear selects the alternate screen.
func (t *TeaTerminal) Configure(settings game.TerminalSettings) error {
	if t.program != nil {
		return errors.New("terminal already configured")
	}

	options := append([]tea.ProgramOption{}, t.options...)
	if settings.Clear {
		options = append(options, tea.WithAltScreen())
	}

	events := make(chan game.KeyEvent, keyBufferSize)
	model := ControllerModel{
		view:         NewGameView(t.renderer, t.keys),
		keys:         t.keys,
		events:       events,
		logger:       t.logger,
		ScreenWidth:  max(t.columns, settings.Columns),
		ScreenHeight: max(t.rows, settings.Rows),
	}

	t.events = events
	t.done = make(chan struct{})
	t.program = tea.NewProgram(model, options...)

	go func() {
		defer close(t.done)
		_, t.runErr = t.program.Run()
	}()

	if t.watchResize != nil {
		go t.watchResize(t.program, t.done)
	}
	return nil
}

func (t *TeaTerminal) PollInput(timeout time.Duration) (game.KeyEvent, bool, error) {
	if t.program == nil {
		return game.KeyEvent{}, false, game.ErrInputClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event := <-t.events:
		return event, true, nil
	case <-t.done:
		return game.KeyEvent{}, false, t.closedErr()
	case <-timer.C:
		return game.KeyEvent{}, false, nil
	}
}

func (t *TeaTerminal) Render(frame game.Frame) error {
	if t.program == nil {
		return errors.New("terminal not configured")
	}

	select {
	case <-t.done:
		return t.closedErr()
	default:
	}

	t.program.Send(frameMsg(frame))
	return nil
}

// Restore stops the program, which hands the terminal back in the state
// it was found in. Safe to call whether or not Configure succeeded.
func (t *TeaTerminal) Restore() error {
	if t.program == nil {
		return nil
	}

	t.program.Quit()
	<-t.done

	if t.runErr != nil && !errors.Is(t.runErr, tea.ErrProgramKilled) {
		return t.runErr
	}
	return nil
}

func (t *TeaTerminal) closedErr() error {
	if t.runErr != nil {
		return fmt.Errorf("%w: %w", game.ErrInputClosed, t.runErr)
	}
	return game.ErrInputClosed
}
