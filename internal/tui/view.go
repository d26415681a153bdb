package tui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"tetris/internal/game"
)

const cellText = "  "

var (
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// cellStyles caches one background style per palette index
var cellStyles = func() [len(game.Palette)]lipgloss.Style {
	var styles [len(game.Palette)]lipgloss.Style
	for i, c := range game.Palette {
		styles[i] = lipgloss.NewStyle().Background(hexColor(c))
	}
	return styles
}()

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func renderCell(c game.Cell) string {
	if int(c) >= len(cellStyles) {
		c = 0
	}
	return cellStyles[c].Render(cellText)
}

func renderBoard(s *game.Snapshot) string {
	board := s.Composite()
	var b strings.Builder
	for y := 0; y < game.Height; y++ {
		for x := 0; x < game.Width; x++ {
			b.WriteString(renderCell(board[y][x]))
		}
		if y < game.Height-1 {
			b.WriteByte('\n')
		}
	}
	return borderStyle.Render(b.String())
}

func renderPreview(m game.Matrix) string {
	var b strings.Builder
	for y := 0; y < game.PieceSize; y++ {
		for x := 0; x < game.PieceSize; x++ {
			if m[y][x].Empty() {
				b.WriteString(cellText)
			} else {
				b.WriteString(renderCell(m[y][x]))
			}
		}
		if y < game.PieceSize-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func stat(label string, value string) string {
	return labelStyle.Render(label) + "\n" + valueStyle.Render(value)
}

func (m Model) renderPanel(s *game.Snapshot) string {
	sections := []string{
		titleStyle.Render("TETRIS"),
		labelStyle.Render("Next") + "\n" + renderPreview(s.Next),
		stat("Score", humanize.Comma(int64(s.Score))),
		stat("Lines", humanize.Comma(int64(s.Lines))),
		stat("Level", fmt.Sprintf("%d", s.Level)),
		stat("Player", s.PlayerName),
		m.renderHighScores(s),
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) renderHighScores(s *game.Snapshot) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("High Scores"))
	if m.syncing {
		b.WriteString(helpStyle.Render(" (syncing)"))
	}
	b.WriteByte('\n')
	if len(s.HighScores) == 0 {
		b.WriteString(helpStyle.Render("No scores yet."))
		return b.String()
	}
	for i, e := range s.HighScores {
		fmt.Fprintf(&b, "%2d. %-10s %8s", i+1, e.Name, humanize.Comma(int64(e.Score)))
		if i < len(s.HighScores)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) footer(s *game.Snapshot) string {
	var lines []string
	switch {
	case m.editingName:
		lines = append(lines, titleStyle.Render("Name: ")+valueStyle.Render(m.nameInput+"_"),
			helpStyle.Render("Enter to save, Esc to cancel"))
	case s.GameOver:
		lines = append(lines, alertStyle.Render("GAME OVER"),
			helpStyle.Render("R to play again, N to change name, Q to quit"))
	case m.paused:
		lines = append(lines, statusStyle.Render("PAUSED"))
	default:
		lines = append(lines, helpStyle.Render("←/→ move  ↓ drop  ↑/x rotate  space hard drop  p pause  r reset  n name  q quit"))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	s := m.engine.Snapshot(0)
	body := lipgloss.JoinHorizontal(lipgloss.Top, renderBoard(s), "  ", m.renderPanel(s))
	content := lipgloss.JoinVertical(lipgloss.Left, body, "", m.footer(s))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
