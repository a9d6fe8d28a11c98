package practice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VVic23/civics-practice/internal/explain"
	"github.com/VVic23/civics-practice/internal/logging"
	"github.com/VVic23/civics-practice/internal/question"
	"github.com/VVic23/civics-practice/internal/router"
	"github.com/VVic23/civics-practice/internal/screen"
	"github.com/VVic23/civics-practice/internal/screens/summary"
	"github.com/VVic23/civics-practice/internal/session"
	"github.com/VVic23/civics-practice/internal/ui/components"
	"github.com/VVic23/civics-practice/internal/ui/layout"
	"github.com/VVic23/civics-practice/internal/ui/theme"
)

// Explainer produces study explanations for a question.
type Explainer interface {
	Explain(ctx context.Context, q question.Question) (*explain.Explanation, error)
}

// Deps are the collaborators of a practice screen.
type Deps struct {
	Source  session.Source
	Options session.Options

	// Explainer is optional. Nil disables Ctrl+E.
	Explainer Explainer
	Logger    *slog.Logger
}

// PracticeScreen shows one card per sampled question.
type PracticeScreen struct {
	deps     Deps
	sess     *session.Session
	cursor   int
	input    components.TextInput
	spinner  spinner.Model
	viewport viewport.Model

	explanations map[string]*explain.Explanation
	explaining   map[string]bool
	explainErr   map[string]string
	notice       string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.Protected = (*PracticeScreen)(nil)
var _ screen.Closer = (*PracticeScreen)(nil)

// New creates a PracticeScreen. The first set is loaded by Init.
func New(deps Deps) *PracticeScreen {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &PracticeScreen{
		deps:  deps,
		sess:  session.New(deps.Options),
		input: components.NewTextInput("Type your answer ...", 200),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
		viewport:     viewport.New(),
		explanations: make(map[string]*explain.Explanation),
		explaining:   make(map[string]bool),
		explainErr:   make(map[string]string),
	}
}

// Session exposes the underlying engine.
func (p *PracticeScreen) Session() *session.Session {
	return p.sess
}

func (p *PracticeScreen) Init() tea.Cmd {
	return p.load()
}

func (p *PracticeScreen) Title() string {
	return "Practice"
}

func (p *PracticeScreen) RequiresAuth() bool {
	return true
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	switch p.sess.Phase() {
	case session.PhaseFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Try again"},
			{Key: "Esc", Description: "Home"},
		}
	case session.PhaseReady:
		if p.sess.Size() == 0 {
			return []layout.KeyHint{
				{Key: "Ctrl+N", Description: "Reload"},
				{Key: "Esc", Description: "Home"},
			}
		}
		hints := []layout.KeyHint{
			{Key: "Tab", Description: "Next"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Ctrl+R", Description: "Show/hide answer"},
		}
		if p.deps.Explainer != nil {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+E", Description: "Explain"})
		}
		return append(hints,
			layout.KeyHint{Key: "Ctrl+N", Description: "New set"},
			layout.KeyHint{Key: "Ctrl+F", Description: "Finish"},
			layout.KeyHint{Key: "Esc", Description: "Home"},
		)
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Home"}}
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		return p.handleLoaded(msg)

	case feedbackExpiredMsg:
		if msg.gen == p.sess.Generation() {
			p.sess.ExpireFeedback(msg.id)
		}
		return p, nil

	case explainDoneMsg:
		return p.handleExplained(msg)

	case spinner.TickMsg:
		if p.sess.Phase() != session.PhaseLoading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	return p, p.updateInput(msg)
}

// Close retires the session so no feedback timer or late load outlives the
// screen.
func (p *PracticeScreen) Close() {
	p.sess.Close()
}

// updateInput feeds msg to the text field and copies the result into the
// current card's entry. Every path that can change the field goes through
// here so typed and pasted text are graded alike.
func (p *PracticeScreen) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.sess.Phase() != session.PhaseReady {
		return cmd
	}
	if id, ok := p.currentID(); ok {
		p.sess.UpdateInput(id, p.input.Value())
	}
	return cmd
}

// load discards the current set and fetches a fresh pool.
func (p *PracticeScreen) load() tea.Cmd {
	p.cursor = 0
	p.notice = ""
	p.input.SetValue("")
	p.input.Blur()
	p.explanations = make(map[string]*explain.Explanation)
	p.explaining = make(map[string]bool)
	p.explainErr = make(map[string]string)

	gen := p.sess.BeginLoad()
	src := p.deps.Source
	fetch := func() tea.Msg {
		pool, err := src.All(context.Background())
		return questionsLoadedMsg{gen: gen, pool: pool, err: err}
	}
	return tea.Batch(fetch, p.spinner.Tick)
}

func (p *PracticeScreen) handleLoaded(msg questionsLoadedMsg) (screen.Screen, tea.Cmd) {
	err := p.sess.FinishLoad(msg.gen, msg.pool, msg.err)
	if errors.Is(err, session.ErrStaleLoad) || errors.Is(err, session.ErrClosed) {
		return p, nil
	}
	if err != nil {
		p.deps.Logger.Warn("load questions failed", "err", err)
		return p, nil
	}
	p.deps.Logger.Info("practice set ready", "size", p.sess.Size(), "pool", len(msg.pool))
	return p, p.focusCard(0)
}

func (p *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch p.sess.Phase() {
	case session.PhaseIdle, session.PhaseLoading:
		return p, nil
	case session.PhaseFailed:
		switch key {
		case "r", "R", "enter":
			return p, p.load()
		}
		return p, nil
	}

	switch key {
	case "ctrl+n":
		return p, p.load()
	case "ctrl+f":
		sum := p.sess.Summary()
		return p, func() tea.Msg {
			return router.PushScreenMsg{Screen: summary.New(sum)}
		}
	}

	id, ok := p.currentID()
	if !ok {
		return p, nil
	}

	switch key {
	case "tab", "down":
		return p, p.focusCard(p.cursor + 1)
	case "shift+tab", "up":
		return p, p.focusCard(p.cursor - 1)
	case "enter":
		return p, p.submit(id)
	case "ctrl+r":
		p.sess.ToggleReveal(id)
		return p, nil
	case "ctrl+e":
		return p, p.explain(id)
	}

	return p, p.updateInput(msg)
}

func (p *PracticeScreen) currentID() (string, bool) {
	sample := p.sess.Sample()
	if p.cursor < 0 || p.cursor >= len(sample) {
		return "", false
	}
	return sample[p.cursor].ID, true
}

// focusCard moves the cursor to card i, clamped, and loads that card's
// saved input into the text field.
func (p *PracticeScreen) focusCard(i int) tea.Cmd {
	n := p.sess.Size()
	if n == 0 {
		p.cursor = 0
		p.input.Blur()
		return nil
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	p.cursor = i
	p.notice = ""

	id, _ := p.currentID()
	e, _ := p.sess.Entry(id)
	p.input.SetValue(e.UserInput)
	return p.input.Focus()
}

func (p *PracticeScreen) submit(id string) tea.Cmd {
	g, ok := p.sess.Submit(id)
	if !ok {
		return nil
	}
	if q, ok := p.sess.Question(id); ok {
		p.deps.Logger.Debug("answer graded", "number", q.Number, "grade", g.String())
	}

	gen := p.sess.Generation()
	return tea.Tick(p.sess.FeedbackTTL(), func(time.Time) tea.Msg {
		return feedbackExpiredMsg{gen: gen, id: id}
	})
}

func (p *PracticeScreen) explain(id string) tea.Cmd {
	if p.deps.Explainer == nil {
		p.notice = "Explanations are off. Set CIVICS_LLM_PROVIDER to turn them on."
		return nil
	}
	e, _ := p.sess.Entry(id)
	if !e.Revealed {
		p.notice = "Show the answer first (Ctrl+R)."
		return nil
	}
	if p.explaining[id] || p.explanations[id] != nil {
		return nil
	}
	q, ok := p.sess.Question(id)
	if !ok {
		return nil
	}

	p.notice = ""
	p.explaining[id] = true
	delete(p.explainErr, id)

	gen := p.sess.Generation()
	ex := p.deps.Explainer
	return func() tea.Msg {
		exp, err := ex.Explain(context.Background(), q)
		return explainDoneMsg{gen: gen, id: id, exp: exp, err: err}
	}
}

func (p *PracticeScreen) handleExplained(msg explainDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != p.sess.Generation() {
		return p, nil
	}
	delete(p.explaining, msg.id)
	if msg.err != nil {
		p.deps.Logger.Warn("explain failed", "question", msg.id, "err", msg.err)
		p.explainErr[msg.id] = msg.err.Error()
		return p, nil
	}
	p.explanations[msg.id] = msg.exp
	return p, nil
}
