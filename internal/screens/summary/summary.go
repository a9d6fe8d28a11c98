package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/router"
	"github.com/VVic23/civics-practice/internal/screen"
	"github.com/VVic23/civics-practice/internal/session"
	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

// SummaryScreen shows the tally of a practice set.
type SummaryScreen struct {
	summary session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to questions"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	cw := components.ContentWidth(width)
	if cw > 56 {
		cw = 56
	}

	var b strings.Builder

	b.WriteString(layout.Centered(cw, theme.Title, "Practice results"))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(cw, theme.Body,
		fmt.Sprintf("You got %d out of %d correct", sum.Correct, sum.Total)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(cw, theme.Hint,
		fmt.Sprintf("Answered %d, left %d blank", sum.Attempted, sum.Total-sum.Attempted)))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Score", sum.Correct, sum.Total, cw).View())
	b.WriteString("\n\n")

	if sum.Passed() {
		b.WriteString(layout.Centered(cw, theme.Correct,
			fmt.Sprintf("Passing score! (%d needed)", session.PassMark)))
	} else {
		b.WriteString(layout.Centered(cw, theme.Incorrect,
			fmt.Sprintf("Not yet: %d correct needed to pass", session.PassMark)))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.Panel(b.String(), cw+4, false))
}
