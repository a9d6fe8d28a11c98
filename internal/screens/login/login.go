package login

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/VVic23/civics-practice/internal/auth"
	"github.com/VVic23/civics-practice/internal/screen"
	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
)

type mode int

const (
	modeSignIn mode = iota
	modeSignUp
)

type field int

const (
	fieldEmail field = iota
	fieldPassword
	fieldSubmit
	fieldCount
)

// signInDoneMsg carries the result of a sign-in attempt.
type signInDoneMsg struct {
	err error
}

// signUpDoneMsg carries the result of an account creation attempt.
type signUpDoneMsg struct {
	err error
}

// LoginScreen collects credentials and signs in or creates an account.
// A successful sign-in is picked up by the app through the auth gate.
type LoginScreen struct {
	gate     *auth.Gate
	mode     mode
	focus    field
	email    components.TextInput
	password components.TextInput
	submit   components.Button
	busy     bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen in sign-in mode.
func New(gate *auth.Gate) *LoginScreen {
	l := &LoginScreen{
		gate:     gate,
		email:    components.NewTextInput("you@example.com", 254),
		password: components.NewPasswordInput("at least 6 characters"),
		submit:   components.NewButton("Sign in"),
	}
	l.setFocus(fieldEmail)
	return l
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.setFocus(fieldEmail)
}

func (l *LoginScreen) Title() string {
	if l.mode == modeSignUp {
		return "Create account"
	}
	return "Sign in"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	swap := "Create account"
	if l.mode == modeSignUp {
		swap = "Have an account"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+T", Description: "Show/hide password"},
		{Key: "Ctrl+S", Description: swap},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signInDoneMsg:
		l.busy = false
		if msg.err != nil {
			l.errMsg = msg.err.Error()
			return l, nil
		}
		l.password.SetValue("")
		return l, nil

	case signUpDoneMsg:
		l.busy = false
		if msg.err != nil {
			l.errMsg = msg.err.Error()
			return l, nil
		}
		l.setMode(modeSignIn)
		l.notice = "Account created. Please sign in."
		l.password.SetValue("")
		return l, l.setFocus(fieldPassword)

	case tea.KeyMsg:
		return l.handleKey(msg)
	}

	return l, l.forward(msg)
}

func (l *LoginScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if l.busy {
		return l, nil
	}

	switch msg.String() {
	case "tab", "down":
		return l, l.setFocus((l.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return l, l.setFocus((l.focus + fieldCount - 1) % fieldCount)
	case "ctrl+t":
		l.password.SetMasked(!l.password.Masked())
		return l, nil
	case "ctrl+s":
		if l.mode == modeSignIn {
			l.setMode(modeSignUp)
		} else {
			l.setMode(modeSignIn)
		}
		return l, nil
	case "enter":
		if l.focus == fieldEmail {
			return l, l.setFocus(fieldPassword)
		}
		return l, l.doSubmit()
	}

	return l, l.forward(msg)
}

func (l *LoginScreen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch l.focus {
	case fieldEmail:
		l.email, cmd = l.email.Update(msg)
	case fieldPassword:
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *LoginScreen) setFocus(f field) tea.Cmd {
	l.focus = f
	l.email.Blur()
	l.password.Blur()
	l.submit.Focused = f == fieldSubmit

	switch f {
	case fieldEmail:
		return l.email.Focus()
	case fieldPassword:
		return l.password.Focus()
	}
	return nil
}

func (l *LoginScreen) setMode(m mode) {
	l.mode = m
	l.errMsg = ""
	l.notice = ""
	if m == modeSignUp {
		l.submit.Label = "Create account"
	} else {
		l.submit.Label = "Sign in"
	}
}

// doSubmit starts the sign-in or sign-up call off the update loop.
func (l *LoginScreen) doSubmit() tea.Cmd {
	l.errMsg = ""
	l.notice = ""
	l.busy = true

	gate := l.gate
	email, password := l.email.Value(), l.password.Value()

	if l.mode == modeSignUp {
		return func() tea.Msg {
			_, err := gate.SignUp(context.Background(), email, password)
			return signUpDoneMsg{err: err}
		}
	}
	return func() tea.Msg {
		_, err := gate.SignIn(context.Background(), email, password)
		return signInDoneMsg{err: err}
	}
}
