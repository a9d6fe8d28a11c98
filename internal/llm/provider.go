package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Provider generates one structured reply. Implementations map their SDK's
// failures onto the typed errors in errors.go and pass output through
// finish, so callers see the same behavior from every backend.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single generation call. With a Schema the provider asks for
// native structured output and the reply is validated against it; without
// one the reply is passed back as is.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the OpenAI schema name and
// the validator cache key, so two schemas must never share one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a validated reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that served the call, which may differ from ModelID
	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// finish turns a provider's raw output into a Response. Truncated output is
// an error even when it happens to parse, and a schema request must come
// back matching its schema.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if len(content) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("empty response")}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// SingleTurn builds a one-message request.
func SingleTurn(system, prompt string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}
