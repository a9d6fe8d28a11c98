package components

import (
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

// Button renders a focusable label. Key handling stays with the owning
// screen since most screens already route Enter themselves.
type Button struct {
	Label   string
	Focused bool
}

// NewButton creates a new button.
func NewButton(label string) Button {
	return Button{Label: label}
}

// View renders the button.
func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
