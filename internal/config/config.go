// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/VVic23/civics-practice/internal/llm"
	"github.com/VVic23/civics-practice/internal/question"
	"github.com/VVic23/civics-practice/internal/session"
)

// Config holds every setting the app reads at startup.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath string

	// LogPath overrides the default log file location when set.
	LogPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	SampleSize  int
	FeedbackTTL time.Duration

	// AuthSecret signs session tokens. Empty means use the stored secret.
	AuthSecret string

	// TokenPath overrides the default session token file when set.
	TokenPath  string
	SessionTTL time.Duration

	LLM llm.Config
}

// Default returns a Config with built-in defaults.
func Default() Config {
	return Config{
		SampleSize:  question.DefaultSampleSize,
		FeedbackTTL: session.DefaultFeedbackTTL,
		SessionTTL:  30 * 24 * time.Hour,
		LLM:         llm.DefaultConfig(),
	}
}

// Load reads an optional .env file from the working directory (or the
// given files), then builds a Config from the environment. Variables that
// are already set are not overwritten by the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from CIVICS_* variables, falling back to
// defaults for unset or malformed values.
func FromEnv() Config {
	cfg := Default()

	cfg.DBPath = os.Getenv("CIVICS_DB")
	cfg.LogPath = os.Getenv("CIVICS_LOG")
	cfg.LogLevel = os.Getenv("CIVICS_LOG_LEVEL")
	cfg.AuthSecret = os.Getenv("CIVICS_AUTH_SECRET")
	cfg.TokenPath = os.Getenv("CIVICS_SESSION_TOKEN")

	cfg.SampleSize = envInt("CIVICS_SAMPLE_SIZE", cfg.SampleSize)
	if ms := envInt("CIVICS_FEEDBACK_MS", 0); ms > 0 {
		cfg.FeedbackTTL = time.Duration(ms) * time.Millisecond
	}
	cfg.SessionTTL = envDuration("CIVICS_SESSION_TTL", cfg.SessionTTL)

	cfg.LLM = llm.ConfigFromEnv()
	return cfg
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
