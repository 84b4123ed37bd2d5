package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-online/internal/client"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

var (
	xStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	oStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// renderBoard draws the grid; empty cells show the 1-based number to type.
func renderBoard(board entity.Board) string {
	rows := make([]string, 0, 5)

	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			index := row*3 + col
			cells[col] = renderCell(board[index], index)
		}

		rows = append(rows, strings.Join(cells, " │ "))
		if row < 2 {
			rows = append(rows, "──┼───┼──")
		}
	}

	return boardStyle.Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func renderCell(mark entity.Mark, index int) string {
	switch mark {
	case entity.X:
		return xStyle.Render("X")
	case entity.O:
		return oStyle.Render("O")
	default:
		return hintStyle.Render(fmt.Sprint(index + 1))
	}
}

func renderScore(x, o int) string {
	return fmt.Sprintf("%s %d : %d %s", xStyle.Render("X"), x, o, oStyle.Render("O"))
}

func renderNotice(text string) string {
	return noticeStyle.Render(text)
}

// renderView draws an online session.
func renderView(view client.View) string {
	var b strings.Builder

	switch view.Phase {
	case client.PhaseLobby:
		b.WriteString("Lobby: type c to create a room or j <code> to join one.\n")
	case client.PhaseWaiting:
		fmt.Fprintf(&b, "Room Code: %s (share it with your opponent)\n", view.Token)
	case client.PhasePlaying, client.PhaseRoundOver:
		fmt.Fprintf(&b, "Room Code: %s, you play %s\n", view.Token, view.MySymbol)
		b.WriteString(renderBoard(view.Board))
		b.WriteString("\n")
		b.WriteString(renderScore(view.Score[0], view.Score[1]))
		b.WriteString("\n")
	}

	if view.Notice != "" {
		b.WriteString(renderNotice(view.Notice))
		b.WriteString("\n")
	}

	return b.String()
}
