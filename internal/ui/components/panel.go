package components

import (
	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/ui/theme"
)

// ContentWidth returns the inner width shared by stacked panels so they
// line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6 // frame border + padding
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Frame centers content inside a double border filling width x height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Panel wraps content in a rounded card of content width cw.
func Panel(content string, cw int, focused bool) string {
	style := theme.Card
	if focused {
		style = theme.FocusedCard
	}
	return style.Width(cw).Render(content)
}
