package ui

import (
	"github.com/Mshel/termsnake/internal/game"
	"github.com/charmbracelet/lipgloss"
)

// RenderGameOver formats the one line printed once the terminal is back to
// normal, e.g. "Game Over! Your score is 7 (bit itself)".
func RenderGameOver(renderer *lipgloss.Renderer, result game.Result) string {
	messageStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	reasonStyle := renderer.NewStyle().Faint(true)

	line := messageStyle.Render(result.String())
	if result.Reason != game.ReasonNone {
		line += " " + reasonStyle.Render("("+result.Reason.String()+")")
	}
	return line
}
