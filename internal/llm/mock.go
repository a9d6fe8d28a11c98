package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockResponse is one scripted answer.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Stop    string
	Err     error
}

// ExplanationResponse scripts a well-formed answer-explanation reply.
func ExplanationResponse(text, tip string) MockResponse {
	b, _ := json.Marshal(map[string]string{"explanation": text, "memory_tip": tip})
	return MockResponse{Content: b}
}

// MockProvider answers from a queue of scripted responses, then from its
// fallback, and records every request. Output goes through the same
// truncation and schema checks as the real providers.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  func(Request) MockResponse
	Calls     []Request
}

// NewMockProvider returns a mock that replays responses in order and fails
// with ErrProviderUnavailable once they run out.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineProvider returns a mock that answers every explanation request
// with a fixed study note naming the question. It backs
// CIVICS_LLM_PROVIDER=mock.
func NewOfflineProvider() *MockProvider {
	return &MockProvider{fallback: offlineExplanation}
}

func offlineExplanation(req Request) MockResponse {
	subject := "this question"
	for _, m := range req.Messages {
		for line := range strings.SplitSeq(m.Content, "\n") {
			if strings.HasPrefix(line, "Question #") {
				subject = line
			}
		}
	}
	return ExplanationResponse(
		"Offline mode: no model was asked about "+subject+". Read the accepted answers aloud and say why each one fits.",
		"Say the answer out loud three times.",
	)
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.fallback != nil:
		resp = m.fallback(req)
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	m.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}
	stop := resp.Stop
	if stop == "" {
		stop = StopEnd
	}
	return finish(req, resp.Content, resp.Usage, "mock", stop)
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another scripted response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount is the number of Generate calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
