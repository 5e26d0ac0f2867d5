package ui

import (
	"github.com/Mshel/termsnake/internal/game"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyMap struct {
	Up    key.Binding
	Right key.Binding
	Down  key.Binding
	Left  key.Binding
	Quit  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/w", "up")),
		Right: key.NewBinding(key.WithKeys("right", "d", "l"), key.WithHelp("→/d", "right")),
		Down:  key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/s", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "a", "h"), key.WithHelp("←/a", "left")),
		Quit:  key.NewBinding(key.WithKeys("q", "Q", "esc"), key.WithHelp("q/esc", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Right, k.Down, k.Left, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Decode turns a bubbletea key press into the game's key event. Control
// chords come through as KeyOther with ModCtrl so the game decides what
// ctrl+c means.
func (k KeyMap) Decode(msg tea.KeyMsg) game.KeyEvent {
	var event game.KeyEvent

	switch {
	case key.Matches(msg, k.Up):
		event.Code = game.KeyUp
	case key.Matches(msg, k.Right):
		event.Code = game.KeyRight
	case key.Matches(msg, k.Down):
		event.Code = game.KeyDown
	case key.Matches(msg, k.Left):
		event.Code = game.KeyLeft
	case key.Matches(msg, k.Quit):
		event.Code = game.KeyQuit
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ:
		event.Code = game.KeyOther
		event.Rune = 'a' + rune(msg.Type-tea.KeyCtrlA)
		event.Mods |= game.ModCtrl
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		event.Code = game.KeyOther
		event.Rune = msg.Runes[0]
	default:
		event.Code = game.KeyOther
	}

	return event
}
