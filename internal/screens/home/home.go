package home

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/VVic23/civics-practice/internal/auth"
	"github.com/VVic23/civics-practice/internal/router"
	"github.com/VVic23/civics-practice/internal/screen"
	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
)

// signOutDoneMsg carries the result of a sign-out attempt.
type signOutDoneMsg struct {
	err error
}

// Info describes the practice setup shown on the home screen.
type Info struct {
	PoolSize   int
	SampleSize int
	PassMark   int
}

// HomeScreen is the landing screen after sign-in.
type HomeScreen struct {
	gate      *auth.Gate
	info      Info
	menu      components.Menu
	showAbout bool
	busy      bool
	errMsg    string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Protected = (*HomeScreen)(nil)

// New creates a HomeScreen. newPractice builds a fresh practice screen each
// time the user starts a set.
func New(gate *auth.Gate, info Info, newPractice func() screen.Screen) *HomeScreen {
	h := &HomeScreen{
		gate:      gate,
		info:      info,
		showAbout: true,
	}

	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Start practice", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: newPractice()}
			}
		}},
		{Label: "About the test", Action: func() tea.Cmd {
			h.showAbout = !h.showAbout
			return nil
		}},
		{Label: "Sign out", Action: func() tea.Cmd {
			return h.signOut()
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) RequiresAuth() bool {
	return true
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signOutDoneMsg:
		h.busy = false
		if msg.err != nil {
			h.errMsg = msg.err.Error()
		}
		return h, nil
	case tea.KeyMsg:
		if h.busy {
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) signOut() tea.Cmd {
	h.busy = true
	h.errMsg = ""
	gate := h.gate
	return func() tea.Msg {
		return signOutDoneMsg{err: gate.SignOut(context.Background())}
	}
}

func (h *HomeScreen) aboutLines() []string {
	return []string{
		fmt.Sprintf("• The civics test draws from %d questions about U.S. history and government", h.info.PoolSize),
		fmt.Sprintf("• During your interview, you will be asked up to %d questions", h.info.SampleSize),
		fmt.Sprintf("• You must answer %d out of %d questions correctly to pass", h.info.PassMark, h.info.SampleSize),
		"• Practice as many times as you need to feel confident!",
	}
}
