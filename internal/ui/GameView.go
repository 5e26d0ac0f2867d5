package ui

import (
	"fmt"
	"strings"

	"github.com/Mshel/termsnake/internal/game"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var (
	headRunes = map[game.Direction]string{
		game.Up:    "▲",
		game.Down:  "▼",
		game.Left:  "◀",
		game.Right: "▶",
	}

	foodRune  = "●"
	voidRune  = " "
	voidColor = lipgloss.Color("233")
)

// GameView draws frames. Styles come from a renderer so each SSH session
// gets colours matching its own terminal.
type GameView struct {
	mapStyle    lipgloss.Style
	headStyle   lipgloss.Style
	bodyStyle   lipgloss.Style
	foodStyle   lipgloss.Style
	voidStyle   lipgloss.Style
	statusStyle lipgloss.Style

	keys KeyMap
	help help.Model
}

func NewGameView(renderer *lipgloss.Renderer, keys KeyMap) GameView {
	helpModel := help.New()
	helpModel.ShortSeparator = " · "

	return GameView{
		mapStyle: renderer.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("240")),
		headStyle:   renderer.NewStyle().Background(voidColor).Foreground(lipgloss.Color("118")).Bold(true),
		bodyStyle:   renderer.NewStyle().Background(voidColor).Foreground(lipgloss.Color("70")),
		foodStyle:   renderer.NewStyle().Background(voidColor).Foreground(lipgloss.Color("196")),
		voidStyle:   renderer.NewStyle().Background(voidColor),
		statusStyle: renderer.NewStyle().Foreground(lipgloss.Color("250")),
		keys:        keys,
		help:        helpModel,
	}
}

// Render draws the framed board with a status line, centred in the screen.
func (v GameView) Render(frame game.Frame, screenWidth, screenHeight int) string {
	board := v.mapStyle.Render(v.renderBoard(frame))

	v.help.Width = frame.Width + game.TerminalColumnPadding
	status := fmt.Sprintf("Score %d · Speed %d/%d", frame.Score, frame.Speed, game.MaxSpeed)
	statusLine := v.statusStyle.
		MaxWidth(frame.Width + game.TerminalColumnPadding).
		Render(status + "  " + v.help.View(v.keys))

	content := lipgloss.JoinVertical(lipgloss.Left, board, statusLine)
	return lipgloss.Place(screenWidth, screenHeight, lipgloss.Center, lipgloss.Center, content)
}

func (v GameView) renderBoard(frame game.Frame) string {
	cells := make([][]string, frame.Height)
	for row := range cells {
		cells[row] = make([]string, frame.Width)
		for col := range cells[row] {
			cells[row][col] = v.voidStyle.Render(voidRune)
		}
	}

	put := func(p game.Point, s string) {
		if p.Y >= 0 && p.Y < frame.Height && p.X >= 0 && p.X < frame.Width {
			cells[p.Y][p.X] = s
		}
	}

	if frame.HasFood {
		put(frame.Food, v.foodStyle.Render(foodRune))
	}
	for i := len(frame.Body) - 1; i > 0; i-- {
		put(frame.Body[i], v.bodyStyle.Render(segmentRune(frame.Body, i)))
	}
	if len(frame.Body) > 0 {
		put(frame.Body[0], v.headStyle.Render(headRunes[frame.Heading]))
	}

	var sb strings.Builder
	for row, line := range cells {
		for _, cell := range line {
			sb.WriteString(cell)
		}
		if row < len(cells)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// segmentRune picks a box-drawing piece joining a body cell to its
// neighbours along the snake.
func segmentRune(body []game.Point, i int) string {
	hasUp, hasDown, hasLeft, hasRight := false, false, false, false

	mark := func(n game.Point) {
		switch {
		case n.X == body[i].X && n.Y == body[i].Y-1:
			hasUp = true
		case n.X == body[i].X && n.Y == body[i].Y+1:
			hasDown = true
		case n.Y == body[i].Y && n.X == body[i].X-1:
			hasLeft = true
		case n.Y == body[i].Y && n.X == body[i].X+1:
			hasRight = true
		}
	}
	mark(body[i-1])
	if i+1 < len(body) {
		mark(body[i+1])
	}

	switch {
	case (hasUp && hasDown) || (hasUp && !hasLeft && !hasRight) || (hasDown && !hasLeft && !hasRight):
		return "│"
	case (hasLeft && hasRight) || (hasLeft && !hasUp && !hasDown) || (hasRight && !hasUp && !hasDown):
		return "─"
	case hasUp && hasRight:
		return "└"
	case hasUp && hasLeft:
		return "┘"
	case hasDown && hasRight:
		return "┌"
	case hasDown && hasLeft:
		return "┐"
	default:
		return "•"
	}
}
