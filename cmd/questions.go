package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VVic23/civics-practice/internal/question"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Inspect and import the question pool",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		showAnswers, _ := cmd.Flags().GetBool("answers")
		category, _ := cmd.Flags().GetString("category")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		qs, err := e.store.Questions().All(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}

		out := cmd.OutOrStdout()
		shown := 0
		for _, q := range qs {
			if category != "" && !strings.EqualFold(q.Category, category) {
				continue
			}
			shown++
			fmt.Fprintf(out, "%4d  %-32s  %s\n", q.Number, truncate(q.Category, 32), q.Prompt)
			if showAnswers {
				for _, a := range q.AcceptedAnswers {
					fmt.Fprintf(out, "      • %s\n", a)
				}
			}
		}
		if shown == 0 {
			fmt.Fprintln(out, "No questions found.")
		}
		return nil
	},
}

var questionsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.store.Questions().Count(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add or update questions from a JSON question file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open question file: %w", err)
		}
		defer f.Close()

		qs, err := question.Decode(f)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.Questions().Upsert(commandContext(cmd), qs); err != nil {
			return fmt.Errorf("import questions: %w", err)
		}
		e.logger.Info("imported questions", "file", args[0], "count", len(qs))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions.\n", len(qs))
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	questionsListCmd.Flags().Bool("answers", false, "Also print accepted answers")
	questionsListCmd.Flags().String("category", "", "Only list questions in this category")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsCountCmd)
	questionsCmd.AddCommand(questionsImportCmd)
}
