package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinish(t *testing.T) {
	req := SingleTurn("sys", "Question #12: What is the economic system?", explanationTestSchema(), 128)

	t.Run("valid", func(t *testing.T) {
		resp, err := finish(req, explanationJSON, Usage{InputTokens: 9, OutputTokens: 3}, "m", StopEnd)
		require.NoError(t, err)
		assert.Equal(t, 12, resp.Usage.TotalTokens)
		assert.Equal(t, StopEnd, resp.StopReason)
		assert.Equal(t, "m", resp.Model)
	})

	t.Run("truncated output is an error even if it parses", func(t *testing.T) {
		_, err := finish(req, explanationJSON, Usage{}, "m", StopMaxTokens)
		var maxTok *ErrMaxTokensExceeded
		require.ErrorAs(t, err, &maxTok)
		assert.JSONEq(t, string(explanationJSON), string(maxTok.Content))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := finish(req, nil, Usage{}, "m", StopEnd)
		var inv *ErrInvalidResponse
		require.ErrorAs(t, err, &inv)
	})

	t.Run("schema mismatch", func(t *testing.T) {
		_, err := finish(req, json.RawMessage(`{"explanation":"x"}`), Usage{}, "m", StopEnd)
		var inv *ErrInvalidResponse
		require.ErrorAs(t, err, &inv)
	})

	t.Run("no schema passes raw text", func(t *testing.T) {
		resp, err := finish(SingleTurn("", "hi", nil, 16), json.RawMessage(`"plain"`), Usage{}, "m", StopEnd)
		require.NoError(t, err)
		assert.Equal(t, `"plain"`, string(resp.Content))
	})
}

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: explanationJSON, Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		ExplanationResponse("The Senate has 100 members.", "Two per state."),
	)
	ctx := context.Background()

	first, err := mock.Generate(ctx, SingleTurn("sys", "Question #1", explanationTestSchema(), 64))
	require.NoError(t, err)
	assert.Equal(t, 15, first.Usage.TotalTokens)
	assert.Equal(t, "mock", first.Model)

	second, err := mock.Generate(ctx, SingleTurn("sys", "Question #20", explanationTestSchema(), 64))
	require.NoError(t, err)
	assert.Contains(t, string(second.Content), "Two per state.")

	_, err = mock.Generate(ctx, SingleTurn("sys", "Question #21", nil, 64))
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)

	require.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "Question #20", mock.Calls[1].Messages[0].Content)
}

func TestMockProvider_ScriptedFailures(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Second}},
		MockResponse{Content: explanationJSON, Stop: StopMaxTokens},
		MockResponse{Content: json.RawMessage(`{"tip":"wrong shape"}`)},
	)
	req := SingleTurn("sys", "Question #3", explanationTestSchema(), 64)

	_, err := mock.Generate(context.Background(), req)
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = mock.Generate(context.Background(), req)
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)

	_, err = mock.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestOfflineProvider(t *testing.T) {
	p := NewOfflineProvider()
	prompt := "Question #47: What is the capital of the United States?\nAccepted answers:\n- Washington, D.C."

	for range 2 {
		resp, err := p.Generate(context.Background(), SingleTurn("sys", prompt, explanationTestSchema(), 64))
		require.NoError(t, err)

		var out struct {
			Explanation string `json:"explanation"`
			MemoryTip   string `json:"memory_tip"`
		}
		require.NoError(t, json.Unmarshal(resp.Content, &out))
		assert.Contains(t, out.Explanation, "Question #47: What is the capital of the United States?")
		assert.NotEmpty(t, out.MemoryTip)
	}
	assert.Equal(t, 2, p.CallCount())
}

func TestContextLabels(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	_, ok := QuestionFrom(ctx)
	assert.False(t, ok)

	ctx = WithQuestion(WithPurpose(ctx, "explain"), 47)
	assert.Equal(t, "explain", PurposeFrom(ctx))
	n, ok := QuestionFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, 47, n)
}

func TestStatusError(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{429, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			require.ErrorAs(t, err, &rl)
			assert.Equal(t, 3*time.Second, rl.RetryAfter)
		}},
		{401, func(t *testing.T, err error) {
			var rej *ErrRequestRejected
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, 401, rej.Status)
		}},
		{503, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			require.ErrorAs(t, err, &unavail)
		}},
		{0, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			require.ErrorAs(t, err, &unavail)
		}},
	}
	for _, tt := range tests {
		err := statusError(tt.status, 3*time.Second, cause)
		tt.check(t, err)
		assert.ErrorIs(t, err, cause)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"none is valid", Config{Provider: "none"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("CIVICS_LLM_PROVIDER", "")
		cfg := ConfigFromEnv()
		assert.False(t, cfg.Enabled(), "provider %q", cfg.Provider)
	})

	t.Run("explicit provider", func(t *testing.T) {
		t.Setenv("CIVICS_LLM_PROVIDER", "openai")
		t.Setenv("CIVICS_OPENAI_API_KEY", "sk-test")
		t.Setenv("CIVICS_OPENAI_MODEL", "gpt-4o")
		t.Setenv("CIVICS_LLM_TIMEOUT", "5s")
		cfg := ConfigFromEnv()
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
		assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("gateway urls", func(t *testing.T) {
		t.Setenv("CIVICS_LLM_PROVIDER", "gemini")
		t.Setenv("CIVICS_GEMINI_BASE_URL", "http://localhost:8081")
		t.Setenv("CIVICS_ANTHROPIC_BASE_URL", "http://localhost:8082")
		cfg := ConfigFromEnv()
		assert.Equal(t, "http://localhost:8081", cfg.Gemini.BaseURL)
		assert.Equal(t, "http://localhost:8082", cfg.Anthropic.BaseURL)
	})

	t.Run("discovered key", func(t *testing.T) {
		t.Setenv("CIVICS_LLM_PROVIDER", "")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
		cfg := ConfigFromEnv()
		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)
	})
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrDisabled)

	cfg := DefaultConfig()
	cfg.Provider = "anthropic"
	_, err = NewProvider(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	resp, err := p.Generate(context.Background(), SingleTurn("sys", "Question #1: What is the supreme law of the land?", explanationTestSchema(), 64))
	require.NoError(t, err)
	assert.Contains(t, string(resp.Content), "supreme law")
}

func TestLoggingProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	mock := NewMockProvider(
		MockResponse{Content: explanationJSON, Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	p := WithLogging(mock, logger)
	ctx := WithQuestion(WithPurpose(context.Background(), "explain"), 12)

	_, err := p.Generate(ctx, SingleTurn("sys", "hi", explanationTestSchema(), 64))
	require.NoError(t, err)
	_, err = p.Generate(ctx, SingleTurn("sys", "hi", explanationTestSchema(), 64))
	require.Error(t, err)

	out := buf.String()
	for _, want := range []string{"purpose=explain", "question=12", "schema=test-explanation", "input_tokens=12", "llm request failed", "model=mock"} {
		assert.True(t, strings.Contains(out, want), "log output missing %q:\n%s", want, out)
	}
}
