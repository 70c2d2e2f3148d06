package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csoneira/solfeo-bot/internal/music"
)

var (
	staffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	clefStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	noteStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	correctStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	wrongStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

const (
	staffWidth = 34
	noteCol    = 24
	ledgerPad  = 2 // ledger segment half-width around the note column
)

// TerminalStaff renders the note as a styled text staff for the console
// loop. One text row per staff index, top row first; even indices in
// 0..8 are staff lines, even indices outside are ledger segments under
// the note column only.
func TerminalStaff(n music.Note) string {
	top, bottom := 8, 0
	if n.StaffIndex > top {
		top = n.StaffIndex
	}
	if n.StaffIndex < bottom {
		bottom = n.StaffIndex
	}
	// One breathing row beyond the extremes.
	top++
	bottom--

	var rows []string
	for idx := top; idx >= bottom; idx-- {
		rows = append(rows, staffRow(n, idx))
	}
	return strings.Join(rows, "\n")
}

func staffRow(n music.Note, idx int) string {
	isLine := idx%2 == 0 && idx >= 0 && idx <= 8
	isLedger := idx%2 == 0 && !isLine && containsInt(LedgerIndices(n.StaffIndex), idx)

	// Clef label column.
	label := "    "
	if idx == n.Clef.ReferenceIndex() {
		label = clefStyle.Render(padTo(n.Clef.Label(), 4))
	}

	body := make([]rune, staffWidth)
	for i := range body {
		switch {
		case isLine:
			body[i] = '─'
		case isLedger && i >= noteCol-ledgerPad && i <= noteCol+ledgerPad:
			body[i] = '─'
		default:
			body[i] = ' '
		}
	}

	line := staffStyle.Render(string(body[:noteCol]))
	if idx == n.StaffIndex {
		line += noteStyle.Render("●")
	} else {
		line += staffStyle.Render(string(body[noteCol : noteCol+1]))
	}
	line += staffStyle.Render(string(body[noteCol+1:]))

	return label + line
}

// Feedback returns a styled verdict line for the console.
func Feedback(correct bool, text string) string {
	if correct {
		return correctStyle.Render(text)
	}
	return wrongStyle.Render(text)
}

func padTo(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
