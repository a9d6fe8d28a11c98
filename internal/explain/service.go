// Package explain generates short study explanations for revealed answers.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/VVic23/civics-practice/internal/llm"
	"github.com/VVic23/civics-practice/internal/question"
)

// Explanation is the generated study aid for one question.
type Explanation struct {
	QuestionID string
	Text       string
	MemoryTip  string
}

// ErrEmptyExplanation is returned when the provider answers with blank text.
var ErrEmptyExplanation = errors.New("empty explanation")

// Service generates explanations and caches them per question id.
// Concurrent requests for the same question share one provider call.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu       sync.Mutex
	cache    map[string]*Explanation
	inflight map[string]*call
}

type call struct {
	done chan struct{}
	exp  *Explanation
	err  error
}

// NewService creates an explanation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		cache:    make(map[string]*Explanation),
		inflight: make(map[string]*call),
	}
}

// Cached returns a previously generated explanation.
func (s *Service) Cached(questionID string) (*Explanation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[questionID]
	return e, ok
}

// Explain returns the explanation for q, generating it on first use.
// Failures are not cached, so the next call retries.
func (s *Service) Explain(ctx context.Context, q question.Question) (*Explanation, error) {
	s.mu.Lock()
	if e, ok := s.cache[q.ID]; ok {
		s.mu.Unlock()
		return e, nil
	}
	if c, ok := s.inflight[q.ID]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.exp, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	s.inflight[q.ID] = c
	s.mu.Unlock()

	c.exp, c.err = s.generate(ctx, q)

	s.mu.Lock()
	delete(s.inflight, q.ID)
	if c.err == nil {
		s.cache[q.ID] = c.exp
	}
	s.mu.Unlock()
	close(c.done)

	return c.exp, c.err
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
	MemoryTip   string `json:"memory_tip"`
}

func (s *Service) generate(ctx context.Context, q question.Question) (*Explanation, error) {
	ctx = llm.WithQuestion(llm.WithPurpose(ctx, "explain"), q.Number)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req := llm.SingleTurn(systemPrompt, buildUserMessage(q), ExplanationSchema, s.cfg.MaxTokens)
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("explanation generation: %w", err)
	}

	var out explanationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse explanation response: %w", err)
	}
	if out.Explanation == "" {
		return nil, ErrEmptyExplanation
	}

	return &Explanation{
		QuestionID: q.ID,
		Text:       out.Explanation,
		MemoryTip:  out.MemoryTip,
	}, nil
}
