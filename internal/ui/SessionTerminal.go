package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish/bubbletea"
)

var ErrNoPty = errors.New("ssh session has no pty")

// NewSessionTerminal plays on an SSH session's pty. Window changes from the
// client are forwarded to the program so the board stays centred.
func NewSessionTerminal(sshSession ssh.Session, logger *log.Logger) (*TeaTerminal, error) {
	pty, windowChanges, isPty := sshSession.Pty()
	if !isPty {
		return nil, ErrNoPty
	}

	return &TeaTerminal{
		measure: func() (int, int, error) {
			return pty.Window.Width, pty.Window.Height, nil
		},
		options:  bubbletea.MakeOptions(sshSession),
		renderer: bubbletea.MakeRenderer(sshSession),
		keys:     DefaultKeyMap(),
		logger:   logger,
		watchResize: func(program *tea.Program, done <-chan struct{}) {
			for {
				select {
				case <-done:
					return
				case window, ok := <-windowChanges:
					if !ok {
						return
					}
					program.Send(tea.WindowSizeMsg{Width: window.Width, Height: window.Height})
				}
			}
		},
	}, nil
}
