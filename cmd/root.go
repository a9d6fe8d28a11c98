package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/VVic23/civics-practice/internal/auth"
	"github.com/VVic23/civics-practice/internal/config"
	"github.com/VVic23/civics-practice/internal/logging"
	"github.com/VVic23/civics-practice/internal/question"
	"github.com/VVic23/civics-practice/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "civics",
	Short: "USCIS civics test practice",
	Long:  "civics quizzes you on the USCIS naturalization civics questions, ten at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CIVICS_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading the environment")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CIVICS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// env is what every command needs: configuration, a logger and an open,
// seeded store.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store

	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

func openEnv(cmd *cobra.Command) (*env, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	e := &env{cfg: cfg}

	logPath := cfg.LogPath
	if logPath == "" {
		if logPath, err = logging.DefaultPath(); err != nil {
			return nil, err
		}
	}
	logger, closeLog, err := logging.Open(logPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	e.logger = logger
	e.closers = append(e.closers, closeLog)

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)

	ctx := commandContext(cmd)
	catalog, err := question.Catalog()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	n, err := store.SeedQuestions(ctx, st.Questions(), catalog)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("seed questions: %w", err)
	}
	if n > 0 {
		logger.Info("seeded question pool", "count", n, "db", dbPath)
	}
	return e, nil
}

// identity builds the local identity service for this environment.
func (e *env) identity(ctx context.Context) (*auth.LocalService, error) {
	secret, err := auth.LoadSecret(ctx, e.store.Settings(), e.cfg.AuthSecret)
	if err != nil {
		return nil, fmt.Errorf("load auth secret: %w", err)
	}
	tokenPath := e.cfg.TokenPath
	if tokenPath == "" {
		if tokenPath, err = auth.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}
	signer := auth.NewSigner(secret, e.cfg.SessionTTL)
	return auth.NewLocalService(e.store.Users(), auth.FileTokenStore{Path: tokenPath}, signer,
		auth.LocalOptions{Logger: e.logger}), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
