package login

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

func (l *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 48 {
		cw = 48
	}

	var b strings.Builder

	heading := "Sign in to practice"
	if l.mode == modeSignUp {
		heading = "Create an account"
	}
	b.WriteString(layout.Centered(cw, theme.Title, heading))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Email"))
	b.WriteString("\n")
	b.WriteString(components.Panel(l.email.View(), cw-2, l.focus == fieldEmail))
	b.WriteString("\n")

	pwLabel := theme.Label.Render("Password")
	if l.password.Masked() {
		pwLabel += theme.Hint.Render("  (hidden)")
	} else {
		pwLabel += theme.Hint.Render("  (shown)")
	}
	b.WriteString(pwLabel)
	b.WriteString("\n")
	b.WriteString(components.Panel(l.password.View(), cw-2, l.focus == fieldPassword))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(cw, lipgloss.Center, l.submit.View()))
	b.WriteString("\n\n")

	switch {
	case l.busy && l.mode == modeSignUp:
		b.WriteString(layout.Centered(cw, theme.Hint, "Creating account..."))
	case l.busy:
		b.WriteString(layout.Centered(cw, theme.Hint, "Signing in..."))
	case l.errMsg != "":
		b.WriteString(layout.Centered(cw, theme.Incorrect, l.errMsg))
	case l.notice != "":
		b.WriteString(layout.Centered(cw, theme.Correct, l.notice))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
