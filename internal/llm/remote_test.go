package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const explanationText = `{"explanation":"The Constitution is the supreme law of the land.","memory_tip":"Top of the pyramid."}`

// remoteCase describes one HTTP-backed provider: how to build it against a
// test server and what its API returns for success and failure.
type remoteCase struct {
	name      string
	build     func(url string) Provider
	okBody    func(truncated bool) any
	errBody   func(status int, kind string) any
	wantModel string
}

func remoteCases() []remoteCase {
	return []remoteCase{
		{
			name: "anthropic",
			build: func(url string) Provider {
				client := anthropic.NewClient(
					option.WithAPIKey("test-key"),
					option.WithBaseURL(url),
					option.WithMaxRetries(0),
				)
				return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
			},
			okBody: func(truncated bool) any {
				stop := "end_turn"
				if truncated {
					stop = "max_tokens"
				}
				return map[string]any{
					"id":          "msg_test",
					"type":        "message",
					"role":        "assistant",
					"content":     []map[string]any{{"type": "text", "text": explanationText}},
					"model":       "claude-haiku-4-5-20251001",
					"stop_reason": stop,
					"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
				}
			},
			errBody: func(_ int, kind string) any {
				return map[string]any{
					"type":  "error",
					"error": map[string]any{"type": kind, "message": kind},
				}
			},
			wantModel: "claude-haiku-4-5-20251001",
		},
		{
			name: "openai",
			build: func(url string) Provider {
				cfg := openai.DefaultConfig("test-key")
				cfg.BaseURL = url + "/v1"
				return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: "gpt-4o-mini"}
			},
			okBody: func(truncated bool) any {
				finish := "stop"
				if truncated {
					finish = "length"
				}
				return map[string]any{
					"id":      "chatcmpl-test",
					"object":  "chat.completion",
					"created": 1234567890,
					"model":   "gpt-4o-mini",
					"choices": []map[string]any{{
						"index":         0,
						"message":       map[string]any{"role": "assistant", "content": explanationText},
						"finish_reason": finish,
					}},
					"usage": map[string]any{"prompt_tokens": 50, "completion_tokens": 30, "total_tokens": 80},
				}
			},
			errBody: func(_ int, kind string) any {
				return map[string]any{"error": map[string]any{"type": kind, "message": kind}}
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "gemini",
			build: func(url string) Provider {
				p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: url})
				if err != nil {
					panic(err)
				}
				return p
			},
			okBody: func(truncated bool) any {
				finish := "STOP"
				if truncated {
					finish = "MAX_TOKENS"
				}
				return map[string]any{
					"candidates": []map[string]any{{
						"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": explanationText}}},
						"finishReason": finish,
					}},
					"usageMetadata": map[string]any{"promptTokenCount": 50, "candidatesTokenCount": 30, "totalTokenCount": 80},
				}
			},
			errBody: func(status int, kind string) any {
				return map[string]any{"error": map[string]any{"code": status, "message": kind, "status": kind}}
			},
			wantModel: "gemini-2.5-flash",
		},
	}
}

func serve(t *testing.T, status int, header http.Header, body any) string {
	url, _ := serveCounting(t, status, header, body)
	return url
}

func serveCounting(t *testing.T, status int, header http.Header, body any) (string, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		for k, v := range header {
			w.Header()[k] = v
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, &hits
}

func explainRequest() Request {
	return Request{
		System:    "You are a civics tutor.",
		Messages:  []Message{{Role: RoleUser, Content: "Why is the Constitution the supreme law?"}},
		MaxTokens: 256,
	}
}

func TestRemoteProviders_Success(t *testing.T) {
	for _, tc := range remoteCases() {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.build(serve(t, http.StatusOK, nil, tc.okBody(false)))

			resp, err := p.Generate(context.Background(), explainRequest())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(resp.Content) != explanationText {
				t.Errorf("content = %s", resp.Content)
			}
			if resp.Usage.InputTokens != 50 || resp.Usage.OutputTokens != 30 {
				t.Errorf("usage = %+v", resp.Usage)
			}
			if resp.StopReason != "end" {
				t.Errorf("stop reason = %q, want end", resp.StopReason)
			}
			if p.ModelID() != tc.wantModel {
				t.Errorf("ModelID = %q, want %q", p.ModelID(), tc.wantModel)
			}
		})
	}
}

func TestRemoteProviders_RateLimit(t *testing.T) {
	for _, tc := range remoteCases() {
		t.Run(tc.name, func(t *testing.T) {
			url := serve(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}, tc.errBody(http.StatusTooManyRequests, "rate_limit_error"))

			_, err := tc.build(url).Generate(context.Background(), explainRequest())
			var rl *ErrRateLimit
			if !errors.As(err, &rl) {
				t.Fatalf("err = %T (%v), want *ErrRateLimit", err, err)
			}
			if tc.name == "anthropic" && rl.RetryAfter != 7*time.Second {
				t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
			}
		})
	}
}

func TestRemoteProviders_ServerError(t *testing.T) {
	for _, tc := range remoteCases() {
		t.Run(tc.name, func(t *testing.T) {
			url := serve(t, http.StatusInternalServerError, nil, tc.errBody(http.StatusInternalServerError, "api_error"))

			_, err := tc.build(url).Generate(context.Background(), explainRequest())
			var unavail *ErrProviderUnavailable
			if !errors.As(err, &unavail) {
				t.Fatalf("err = %T (%v), want *ErrProviderUnavailable", err, err)
			}
		})
	}
}

func TestRemoteProviders_RejectedNotRetried(t *testing.T) {
	for _, tc := range remoteCases() {
		t.Run(tc.name, func(t *testing.T) {
			url, hits := serveCounting(t, http.StatusUnauthorized, nil, tc.errBody(http.StatusUnauthorized, "authentication_error"))
			p := WithRetry(tc.build(url), retryConfig())

			_, err := p.Generate(context.Background(), explainRequest())
			var rej *ErrRequestRejected
			if !errors.As(err, &rej) {
				t.Fatalf("err = %T (%v), want *ErrRequestRejected", err, err)
			}
			if rej.Status != http.StatusUnauthorized {
				t.Errorf("Status = %d, want 401", rej.Status)
			}
			if n := hits.Load(); n != 1 {
				t.Errorf("server hit %d times, want 1", n)
			}
		})
	}
}

func TestRemoteProviders_Truncated(t *testing.T) {
	for _, tc := range remoteCases() {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.build(serve(t, http.StatusOK, nil, tc.okBody(true)))

			_, err := p.Generate(context.Background(), explainRequest())
			var maxTok *ErrMaxTokensExceeded
			if !errors.As(err, &maxTok) {
				t.Fatalf("err = %T (%v), want *ErrMaxTokensExceeded", err, err)
			}
		})
	}
}

func TestRemoteProviders_SchemaEnforced(t *testing.T) {
	schema := &Schema{
		Name: "remote-explanation",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"explanation", "memory_tip", "source"},
		},
	}
	for _, tc := range remoteCases() {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.build(serve(t, http.StatusOK, nil, tc.okBody(false)))
			req := explainRequest()
			req.Schema = schema

			_, err := p.Generate(context.Background(), req)
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("err = %T (%v), want *ErrInvalidResponse", err, err)
			}
		})
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name   string
		models map[string]string
		want   string
	}{
		{"claude-sonnet", anthropicModels, "claude-sonnet-4-20250514"},
		{"claude-haiku", anthropicModels, "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", anthropicModels, "claude-sonnet-4-20250514"},
		{"gpt-4o-mini", openaiModels, "gpt-4o-mini"},
		{"my-gateway-model", openaiModels, "my-gateway-model"},
		{"gemini-pro", geminiModels, "gemini-2.5-pro"},
		{"gemini-2.0-flash", geminiModels, "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.name, tt.models); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewOpenAIProvider_BaseURL(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://gateway.example.com/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}
