package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

const bannerFull = ` ██████╗██╗██╗   ██╗██╗ ██████╗███████╗
██╔════╝██║██║   ██║██║██╔════╝██╔════╝
██║     ██║██║   ██║██║██║     ███████╗
██║     ██║╚██╗ ██╔╝██║██║     ╚════██║
╚██████╗██║ ╚████╔╝ ██║╚██████╗███████║
 ╚═════╝╚═╝  ╚═══╝  ╚═╝ ╚═════╝╚══════╝`

const bannerCompact = "C · I · V · I · C · S"

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	compact := layout.IsCompactWidth(width) || height < 28

	var sections []string

	banner := bannerFull
	if compact {
		banner = bannerCompact
	}
	sections = append(sections, layout.Centered(cw, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), banner))
	sections = append(sections, layout.Centered(cw, theme.Subtitle,
		"Welcome to USCIS Civics Test Practice"))

	if u := h.gate.CurrentUser(); u != nil {
		sections = append(sections, layout.Centered(cw, theme.Hint, "Signed in as "+u.Email))
	}

	sections = append(sections, lipgloss.PlaceHorizontal(cw, lipgloss.Center, h.menu.View()))

	if h.showAbout {
		about := theme.Label.Render("About the Test") + "\n" +
			theme.Body.Render(strings.Join(h.aboutLines(), "\n"))
		sections = append(sections, components.Panel(about, cw, false))
	}

	switch {
	case h.busy:
		sections = append(sections, layout.Centered(cw, theme.Hint, "Signing out..."))
	case h.errMsg != "":
		sections = append(sections, layout.Centered(cw, theme.Incorrect, h.errMsg))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}
