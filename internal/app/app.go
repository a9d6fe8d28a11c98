package app

import (
	"context"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/auth"
	"github.com/VVic23/civics-practice/internal/logging"
	"github.com/VVic23/civics-practice/internal/router"
	"github.com/VVic23/civics-practice/internal/screen"
	"github.com/VVic23/civics-practice/internal/screens/home"
	"github.com/VVic23/civics-practice/internal/screens/login"
	"github.com/VVic23/civics-practice/internal/screens/practice"
	"github.com/VVic23/civics-practice/internal/ui/layout"
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

// authStartedMsg is sent once the gate's initial session check returns.
type authStartedMsg struct {
	err error
}

// authChangedMsg is sent whenever the gate reports a new identity.
type authChangedMsg struct{}

// Deps wires the app to its services.
type Deps struct {
	Gate     *auth.Gate
	Practice practice.Deps
	Home     home.Info
	Logger   *slog.Logger
}

// AppModel is the root Bubble Tea model. It owns the router and decides
// between the login flow and the signed-in screens.
type AppModel struct {
	deps    Deps
	router  *router.Router
	authCh  chan struct{}
	unwatch func()
	userID  string
	width   int
	height  int
}

// New creates the root model and starts watching the gate.
func New(deps Deps) AppModel {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Practice.Logger == nil {
		deps.Practice.Logger = deps.Logger
	}

	// Coalescing signal: the update loop re-reads the gate on receipt.
	ch := make(chan struct{}, 1)
	unwatch := deps.Gate.Watch(func(*auth.User) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	return AppModel{
		deps:    deps,
		authCh:  ch,
		unwatch: unwatch,
	}
}

// Close stops watching the gate.
func (m AppModel) Close() {
	if m.unwatch != nil {
		m.unwatch()
	}
}

func (m AppModel) Init() tea.Cmd {
	gate := m.deps.Gate
	start := func() tea.Msg {
		return authStartedMsg{err: gate.Start(context.Background())}
	}
	return tea.Batch(start, waitForAuth(m.authCh))
}

func waitForAuth(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return authChangedMsg{}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authStartedMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("restore session failed", "err", msg.err)
		}
		return m.route()

	case authChangedMsg:
		next, cmd := m.route()
		return next, tea.Batch(cmd, waitForAuth(m.authCh))

	case router.PushScreenMsg:
		if screen.RequiresAuth(msg.Screen) && m.deps.Gate.CurrentUser() == nil {
			m.deps.Logger.Warn("blocked protected screen", "screen", msg.Screen.Title())
			return m.route()
		}

	case router.ReplaceScreenMsg:
		if screen.RequiresAuth(msg.Screen) && m.deps.Gate.CurrentUser() == nil {
			return m.route()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router != nil && m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	if m.router == nil {
		return m, nil
	}
	return m, m.router.Update(msg)
}

// route shows the login screen when nobody is signed in and home when
// someone is, resetting the stack on every identity change.
func (m AppModel) route() (tea.Model, tea.Cmd) {
	gate := m.deps.Gate
	if gate.IsAuthenticating() {
		return m, nil
	}

	u := gate.CurrentUser()
	if u == nil {
		m.userID = ""
		if m.router != nil {
			if _, ok := m.router.Active().(*login.LoginScreen); ok {
				return m, nil
			}
		}
		m.deps.Logger.Info("showing sign in")
		return m.reset(login.New(gate))
	}

	if m.router != nil && m.userID == u.ID {
		return m, nil
	}
	m.userID = u.ID
	m.deps.Logger.Info("signed in", "user", u.ID)
	return m.reset(m.newHome())
}

func (m AppModel) reset(s screen.Screen) (tea.Model, tea.Cmd) {
	if m.router == nil {
		m.router = router.New(s)
		return m, s.Init()
	}
	return m, m.router.Reset(s)
}

func (m AppModel) newHome() screen.Screen {
	deps := m.deps.Practice
	return home.New(m.deps.Gate, m.deps.Home, func() screen.Screen {
		return practice.New(deps)
	})
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}
	if m.router == nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Loading..."))
	}

	active := m.router.Active()
	email := ""
	if u := m.deps.Gate.CurrentUser(); u != nil {
		email = u.Email
	}
	header := layout.RenderHeader(active.Title(), email, m.width)

	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(deps Deps) error {
	m := New(deps)
	defer m.Close()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		m.deps.Logger.Error("tui exited with error", "err", err)
		return err
	}
	return nil
}
