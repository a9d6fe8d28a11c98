package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/VVic23/civics-practice/internal/explain"
	"github.com/VVic23/civics-practice/internal/llm"
)

var explainCmd = &cobra.Command{
	Use:   "explain <question-number>",
	Short: "Ask the configured LLM to explain a question's answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil || number <= 0 {
			return fmt.Errorf("invalid question number %q", args[0])
		}

		ctx := commandContext(cmd)
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		qs, err := e.store.Questions().All(ctx)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		idx := -1
		for i, q := range qs {
			if q.Number == number {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("no question #%d", number)
		}
		q := qs[idx]

		provider, err := llm.NewProvider(ctx, e.cfg.LLM, e.logger)
		if err != nil {
			return err
		}
		exp, err := explain.NewService(provider, explain.DefaultConfig()).Explain(ctx, q)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "#%d %s\n\n", q.Number, q.Prompt)
		for _, a := range q.AcceptedAnswers {
			fmt.Fprintf(out, "  • %s\n", a)
		}
		fmt.Fprintf(out, "\n%s\n", exp.Text)
		if exp.MemoryTip != "" {
			fmt.Fprintf(out, "\nTip: %s\n", exp.MemoryTip)
		}
		return nil
	},
}
