package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/question"
	"github.com/VVic23/civics-practice/internal/session"
	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

func (p *PracticeScreen) View(width, height int) string {
	switch p.sess.Phase() {
	case session.PhaseIdle, session.PhaseLoading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			p.spinner.View()+" "+theme.Hint.Render("Loading questions..."))
	case session.PhaseFailed:
		return p.renderError(width, height)
	}
	if p.sess.Size() == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Body.Render("No questions available yet.")+"\n\n"+
				theme.Hint.Render("Press Ctrl+N to check again."))
	}
	return p.renderCards(width, height)
}

func (p *PracticeScreen) renderError(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 56 {
		cw = 56
	}
	msg := "unknown error"
	if err := p.sess.Err(); err != nil {
		msg = err.Error()
	}
	body := layout.Centered(cw-4, theme.Incorrect, "Error Loading Questions") + "\n\n" +
		layout.Centered(cw-4, theme.Body, msg) + "\n\n" +
		layout.Centered(cw-4, theme.Hint, "Press R to try again")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.Panel(body, cw, true))
}

func (p *PracticeScreen) renderCards(width, height int) string {
	cw := components.ContentWidth(width)
	sum := p.sess.Summary()

	top := layout.Centered(width, theme.Title, "USCIS Civics Test Practice") + "\n" +
		layout.Centered(width, theme.Subtitle, fmt.Sprintf(
			"Answer %d out of %d questions correctly to pass", session.PassMark, sum.Total)) + "\n" +
		lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.NewProgressBar("Score", sum.Correct, sum.Total, cw).View())

	score := fmt.Sprintf("You got %d out of %d correct", sum.Correct, sum.Total)
	bottom := layout.Centered(width, theme.Label, score)
	if p.notice != "" {
		bottom = layout.Centered(width, theme.Notice, p.notice) + "\n" + bottom
	}

	vpHeight := height - lipgloss.Height(top) - lipgloss.Height(bottom) - 2
	if vpHeight < 3 {
		vpHeight = 3
	}

	sample := p.sess.Sample()
	var lines []string
	focusStart, focusEnd := 0, 0
	for i, q := range sample {
		e, _ := p.sess.Entry(q.ID)
		card := p.renderCard(i, len(sample), q, e, cw)
		if i == p.cursor {
			focusStart = len(lines)
		}
		lines = append(lines, strings.Split(lipgloss.PlaceHorizontal(width, lipgloss.Center, card), "\n")...)
		if i == p.cursor {
			focusEnd = len(lines) - 1
		}
	}

	p.viewport.SetWidth(width)
	p.viewport.SetHeight(vpHeight)
	p.viewport.SetContentLines(lines)
	off := p.viewport.YOffset()
	if focusEnd >= off+vpHeight {
		off = focusEnd - vpHeight + 1
	}
	if focusStart < off {
		off = focusStart
	}
	p.viewport.SetYOffset(off)

	return top + "\n\n" + p.viewport.View() + "\n" + bottom
}

func (p *PracticeScreen) renderCard(i, n int, q question.Question, e session.Entry, cw int) string {
	inner := cw - 6 // border + padding
	focused := i == p.cursor

	var b strings.Builder

	badge := theme.Label.Render(fmt.Sprintf("Question %d of %d", i+1, n))
	switch e.Grade {
	case session.Correct:
		badge += theme.Correct.Render("  ✓")
	case session.Incorrect:
		badge += theme.Incorrect.Render("  ✗")
	}
	cat := theme.Hint.Render(q.Category)
	gap := inner - lipgloss.Width(badge) - lipgloss.Width(cat)
	if gap < 1 {
		b.WriteString(badge + "\n" + cat)
	} else {
		b.WriteString(badge + strings.Repeat(" ", gap) + cat)
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("USCIS #%d", q.Number)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(inner).Render(q.Prompt))
	b.WriteString("\n\n")

	if focused {
		b.WriteString(p.input.View())
	} else if e.UserInput != "" {
		b.WriteString(theme.Body.Render("> " + e.UserInput))
	} else {
		b.WriteString(theme.Hint.Render("> Type your answer ..."))
	}

	if e.Feedback != nil {
		b.WriteString("\n")
		if e.Feedback.Grade == session.Correct {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Incorrect!"))
		}
	}

	if e.Revealed {
		b.WriteString("\n\n")
		b.WriteString(theme.Correct.Render("Answer:"))
		for _, a := range q.AcceptedAnswers {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Width(inner).Render("• " + a))
		}
	}

	switch {
	case p.explaining[q.ID]:
		b.WriteString("\n\n" + theme.Hint.Render("Thinking..."))
	case p.explainErr[q.ID] != "":
		b.WriteString("\n\n" + theme.Incorrect.Render("Could not explain: "+p.explainErr[q.ID]))
	case p.explanations[q.ID] != nil:
		exp := p.explanations[q.ID]
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Width(inner).Render(exp.Text))
		if exp.MemoryTip != "" {
			b.WriteString("\n")
			b.WriteString(theme.Notice.Width(inner).Render("Tip: " + exp.MemoryTip))
		}
	}

	border := theme.Border
	switch e.Grade {
	case session.Correct:
		border = theme.Success
	case session.Incorrect:
		border = theme.Error
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 2).
		Width(cw)
	if focused {
		style = style.Border(lipgloss.ThickBorder())
		if e.Grade == session.Ungraded {
			style = style.BorderForeground(theme.Primary)
		}
	}
	return style.Render(b.String())
}
