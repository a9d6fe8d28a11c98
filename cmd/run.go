package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VVic23/civics-practice/internal/app"
	"github.com/VVic23/civics-practice/internal/auth"
	"github.com/VVic23/civics-practice/internal/explain"
	"github.com/VVic23/civics-practice/internal/llm"
	"github.com/VVic23/civics-practice/internal/screens/home"
	"github.com/VVic23/civics-practice/internal/screens/practice"
	"github.com/VVic23/civics-practice/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := e.identity(ctx)
	if err != nil {
		return err
	}
	gate := auth.NewGate(svc)
	defer gate.Close()

	questions := e.store.Questions()
	poolSize, err := questions.Count(ctx)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}

	deps := app.Deps{
		Gate: gate,
		Practice: practice.Deps{
			Source: questions,
			Options: session.Options{
				Size:        e.cfg.SampleSize,
				FeedbackTTL: e.cfg.FeedbackTTL,
			},
			Logger: e.logger,
		},
		Home: home.Info{
			PoolSize:   poolSize,
			SampleSize: e.cfg.SampleSize,
			PassMark:   session.PassMark,
		},
		Logger: e.logger,
	}

	provider, err := llm.NewProvider(ctx, e.cfg.LLM, e.logger)
	switch {
	case err == nil:
		deps.Practice.Explainer = explain.NewService(provider, explain.DefaultConfig())
		e.logger.Info("explanations enabled", "model", provider.ModelID())
	case errors.Is(err, llm.ErrDisabled):
		e.logger.Info("explanations disabled")
	default:
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Answer explanations will be unavailable.")
	}

	return app.Run(deps)
}
