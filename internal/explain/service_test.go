package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/VVic23/civics-practice/internal/llm"
	"github.com/VVic23/civics-practice/internal/question"
)

func testQuestion() question.Question {
	return question.Question{
		ID:              "q1",
		Number:          1,
		Category:        "American Government",
		Prompt:          "What is the supreme law of the land?",
		AcceptedAnswers: []string{"the Constitution"},
	}
}

func validExplanationJSON() json.RawMessage {
	return json.RawMessage(`{
		"explanation": "The Constitution sets up the government and no law may conflict with it.",
		"memory_tip": "Supreme = top. The Constitution sits on top."
	}`)
}

func TestService_Explain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validExplanationJSON()})
	svc := NewService(mock, DefaultConfig())

	exp, err := svc.Explain(context.Background(), testQuestion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.QuestionID != "q1" {
		t.Errorf("QuestionID = %q", exp.QuestionID)
	}
	if !strings.Contains(exp.Text, "Constitution") {
		t.Errorf("Text = %q", exp.Text)
	}
	if exp.MemoryTip == "" {
		t.Error("expected memory tip")
	}

	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "answer-explanation" {
		t.Error("expected schema name 'answer-explanation'")
	}
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "the Constitution") {
		t.Error("prompt should list the accepted answers")
	}
}

func TestService_OfflineProviderLogsQuestion(t *testing.T) {
	var buf bytes.Buffer
	provider := llm.WithLogging(llm.NewOfflineProvider(), slog.New(slog.NewTextHandler(&buf, nil)))
	svc := NewService(provider, DefaultConfig())

	exp, err := svc.Explain(context.Background(), testQuestion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(exp.Text, "What is the supreme law of the land?") {
		t.Errorf("Text = %q", exp.Text)
	}
	if out := buf.String(); !strings.Contains(out, "question=1") || !strings.Contains(out, "purpose=explain") {
		t.Errorf("log output missing question tag:\n%s", out)
	}
}

func TestService_CachesPerQuestion(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validExplanationJSON()})
	svc := NewService(mock, DefaultConfig())

	if _, ok := svc.Cached("q1"); ok {
		t.Fatal("cache should start empty")
	}
	for range 3 {
		if _, err := svc.Explain(context.Background(), testQuestion()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 LLM call, got %d", mock.CallCount())
	}
	if _, ok := svc.Cached("q1"); !ok {
		t.Error("expected cached explanation")
	}
}

func TestService_ErrorsNotCached(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Content: validExplanationJSON()},
	)
	svc := NewService(mock, DefaultConfig())

	_, err := svc.Explain(context.Background(), testQuestion())
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	if _, err := svc.Explain(context.Background(), testQuestion()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", mock.CallCount())
	}
}

func TestService_EmptyExplanation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"","memory_tip":""}`)})
	svc := NewService(mock, DefaultConfig())

	if _, err := svc.Explain(context.Background(), testQuestion()); !errors.Is(err, ErrEmptyExplanation) {
		t.Fatalf("expected ErrEmptyExplanation, got %v", err)
	}
}

func TestService_ConcurrentCallsShareRequest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validExplanationJSON()})
	svc := NewService(mock, DefaultConfig())

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Explain(context.Background(), testQuestion())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 LLM call, got %d", mock.CallCount())
	}
}

func TestBuildUserMessage(t *testing.T) {
	q := testQuestion()
	q.AcceptedAnswers = []string{"Answers will vary"}
	msg := buildUserMessage(q)
	for _, want := range []string{"Question #1", "Category: American Government", "- Answers will vary"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}
