package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VVic23/civics-practice/internal/question"
)

// DefaultFeedbackTTL is how long the "Correct!/Incorrect!" notice stays up.
const DefaultFeedbackTTL = time.Second

// ErrStaleLoad is returned by FinishLoad when a newer load or start has
// superseded the one the result belongs to.
var ErrStaleLoad = errors.New("stale question load discarded")

// ErrClosed is returned when a closed session is asked to start or load.
var ErrClosed = errors.New("session closed")

// generations hands out sample generations. The counter is shared by every
// Session so a generation never identifies samples of two different
// sessions.
var generations atomic.Uint64

// FetchError wraps a failure from the question source. Its message is the
// source's message unchanged.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// Phase is the load state of a session.
type Phase int

const (
	PhaseIdle    Phase = iota // Nothing loaded yet
	PhaseLoading              // Waiting for the pool
	PhaseReady                // Entries are live
	PhaseFailed               // Pool fetch failed; see Err
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Feedback is the transient notice shown after a submit.
type Feedback struct {
	Grade     Grade
	ExpiresAt time.Time
}

// Entry is the per-question answer state.
type Entry struct {
	QuestionID string
	UserInput  string
	Grade      Grade
	Revealed   bool

	// Feedback is nil when no notice is showing.
	Feedback *Feedback
}

func (e Entry) clone() Entry {
	if e.Feedback != nil {
		fb := *e.Feedback
		e.Feedback = &fb
	}
	return e
}

type entry struct {
	Entry
	timer Timer
	seq   uint64
}

// Source supplies the question pool.
type Source interface {
	All(ctx context.Context) ([]question.Question, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]question.Question, error)

func (f SourceFunc) All(ctx context.Context) ([]question.Question, error) { return f(ctx) }

// Options configures a Session. Zero values take defaults.
type Options struct {
	Size        int
	FeedbackTTL time.Duration
	Clock       Clock
	Sampler     question.Sampler
}

// Session is one practice run: a sample of questions and an entry for each.
// All methods are safe for concurrent use; feedback timers fire on their own
// goroutines.
type Session struct {
	mu      sync.Mutex
	opts    Options
	phase   Phase
	gen     uint64
	closed  bool
	err     error
	sample  []question.Question
	entries map[string]*entry
}

// New creates an idle session.
func New(opts Options) *Session {
	if opts.Size <= 0 {
		opts.Size = question.DefaultSampleSize
	}
	if opts.FeedbackTTL <= 0 {
		opts.FeedbackTTL = DefaultFeedbackTTL
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Sampler == nil {
		opts.Sampler = question.SelectSample
	}
	return &Session{
		opts:    opts,
		entries: make(map[string]*entry),
	}
}

// Start draws a fresh sample from pool and replaces every entry. An empty
// pool yields an empty session.
func (s *Session) Start(pool []question.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.resetLocked()
	return s.populateLocked(pool)
}

// BeginLoad discards the current sample and marks the session as loading.
// The returned generation must be passed to FinishLoad. On a closed session
// it returns 0, which no FinishLoad accepts.
func (s *Session) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	s.resetLocked()
	s.phase = PhaseLoading
	return s.gen
}

// FinishLoad applies the result of a fetch started with BeginLoad. Results
// for an older generation are dropped with ErrStaleLoad. A fetch error
// moves the session to PhaseFailed and is returned as a *FetchError.
func (s *Session) FinishLoad(gen uint64, pool []question.Question, fetchErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if gen != s.gen || s.phase != PhaseLoading {
		return ErrStaleLoad
	}
	if fetchErr != nil {
		s.phase = PhaseFailed
		s.err = &FetchError{Err: fetchErr}
		return s.err
	}
	return s.populateLocked(pool)
}

// Reload fetches the pool from src and starts a new sample from it.
func (s *Session) Reload(ctx context.Context, src Source) error {
	gen := s.BeginLoad()
	pool, err := src.All(ctx)
	return s.FinishLoad(gen, pool, err)
}

// resetLocked cancels every pending timer, drops all entries and bumps the
// generation so callbacks from the previous sample become no-ops.
func (s *Session) resetLocked() {
	for _, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	s.gen = generations.Add(1)
	s.err = nil
	s.sample = nil
	s.entries = make(map[string]*entry)
}

// Close stops every pending feedback timer and retires the session. Later
// starts and loads fail with ErrClosed and late timer or load callbacks are
// dropped. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.resetLocked()
	s.phase = PhaseIdle
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) populateLocked(pool []question.Question) error {
	if len(pool) == 0 {
		s.phase = PhaseReady
		return nil
	}

	picked, err := s.opts.Sampler(pool, s.opts.Size)
	if err != nil {
		s.phase = PhaseFailed
		s.err = err
		return fmt.Errorf("select sample: %w", err)
	}

	s.sample = picked
	for _, q := range picked {
		s.entries[q.ID] = &entry{Entry: Entry{QuestionID: q.ID}}
	}
	s.phase = PhaseReady
	return nil
}

// UpdateInput records the text typed for a question. It never grades.
func (s *Session) UpdateInput(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.UserInput = text
	}
}

// Submit grades the current input for id, shows transient feedback and
// restarts its expiry timer. Unknown ids return (Ungraded, false).
func (s *Session) Submit(id string) (Grade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Ungraded, false
	}
	q, ok := s.questionLocked(id)
	if !ok {
		return Ungraded, false
	}

	g := GradeAnswer(e.UserInput, q.AcceptedAnswers)
	e.Grade = g

	if e.timer != nil {
		e.timer.Stop()
	}
	e.seq++
	e.Feedback = &Feedback{
		Grade:     g,
		ExpiresAt: s.opts.Clock.Now().Add(s.opts.FeedbackTTL),
	}

	gen, seq := s.gen, e.seq
	e.timer = s.opts.Clock.AfterFunc(s.opts.FeedbackTTL, func() {
		s.expire(id, gen, seq)
	})
	return g, true
}

// expire clears feedback only if it belongs to the same sample and submit
// that scheduled the timer.
func (s *Session) expire(id string, gen, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		return
	}
	e, ok := s.entries[id]
	if !ok || e.seq != seq {
		return
	}
	e.Feedback = nil
	e.timer = nil
}

// ExpireFeedback clears the notice for id if its expiry has passed and
// reports whether it did.
func (s *Session) ExpireFeedback(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.Feedback == nil {
		return false
	}
	if s.opts.Clock.Now().Before(e.Feedback.ExpiresAt) {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.Feedback = nil
	return true
}

// ToggleReveal flips whether the accepted answers are shown for id.
func (s *Session) ToggleReveal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.Revealed = !e.Revealed
	}
}

// Score counts entries whose last submit was correct.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if e.Grade == Correct {
			n++
		}
	}
	return n
}

// Attempted counts entries that have been submitted at least once.
func (s *Session) Attempted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if e.Grade != Ungraded {
			n++
		}
	}
	return n
}

// Entry returns a copy of the entry for id.
func (s *Session) Entry(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries returns copies of all entries in sample order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.sample))
	for _, q := range s.sample {
		out = append(out, s.entries[q.ID].clone())
	}
	return out
}

// Sample returns the sampled questions in display order.
func (s *Session) Sample() []question.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]question.Question, len(s.sample))
	copy(out, s.sample)
	return out
}

// Question looks up a sampled question by id.
func (s *Session) Question(id string) (question.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionLocked(id)
}

func (s *Session) questionLocked(id string) (question.Question, bool) {
	for _, q := range s.sample {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}

// Size is the number of sampled questions.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sample)
}

// Phase returns the current load phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Generation identifies the current sample. It changes on every Start and
// BeginLoad and is unique across all sessions in the process.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Err returns the error that moved the session to PhaseFailed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// FeedbackTTL returns the configured feedback lifetime.
func (s *Session) FeedbackTTL() time.Duration {
	return s.opts.FeedbackTTL
}
