package game

import (
	"errors"
	"time"
)

var (
	ErrTerminalTooSmall = errors.New("terminal too small")
	ErrInputClosed      = errors.New("input source closed")
)

type KeyCode int

const (
	KeyOther KeyCode = iota
	KeyUp
	KeyRight
	KeyDown
	KeyLeft
	KeyQuit
)

type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
)

// KeyEvent is one decoded key press. Rune is only meaningful for KeyOther.
type KeyEvent struct {
	Code KeyCode
	Rune rune
	Mods Modifiers
}

type TerminalSettings struct {
	RawMode    bool
	Columns    int
	Rows       int
	Clear      bool
	HideCursor bool
}

// Frame is everything a renderer needs to draw one tick.
type Frame struct {
	Width   int
	Height  int
	Body    []Point
	Food    Point
	HasFood bool
	Heading Direction
	Score   int
	Speed   int
}

type InputSource interface {
	// PollInput blocks for at most timeout. ok is false when no key arrived.
	PollInput(timeout time.Duration) (event KeyEvent, ok bool, err error)
}

type Renderer interface {
	Render(frame Frame) error
}

// Terminal is the screen and keyboard a session plays on. Configure must be
// paired with Restore, which has to be safe to call after a failure.
type Terminal interface {
	InputSource
	Renderer
	Measure() (columns, rows int, err error)
	Configure(settings TerminalSettings) error
	Restore() error
}

type Random interface {
	Intn(n int) int
}
