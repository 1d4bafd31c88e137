package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/i18n"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, review or clear past exams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList(cmd)
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past exams, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList(cmd)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Review every question of a past exam",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer d.Close()

		r, err := d.history().Find(cmd.Context(), args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no exam with id %q", args[0])
		}
		if err != nil {
			return err
		}
		printReview(cmd.OutOrStdout(), r)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored exam results",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		d, err := loadDeps(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.history().Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

func runHistoryList(cmd *cobra.Command) error {
	d, err := loadDeps(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer d.Close()

	results, err := d.history().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, i18n.T("HistoryEmpty"))
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-16s  %-24s  %-10s  %7s  %s\n",
		"ID", "Date", "Topic", "Grade", "Score", "")
	fmt.Fprintln(out, strings.Repeat("─", 110))
	for _, r := range results {
		mark := " "
		if exam.Highlighted(r) {
			mark = "★"
		}
		fmt.Fprintf(out, "%-36s  %-16s  %-24s  %-10s  %3d/%-3d  %s\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(r.Topic, 24),
			r.Grade,
			r.Score, r.Total,
			mark,
		)
	}
	return nil
}

func printReview(w io.Writer, r exam.Result) {
	fmt.Fprintf(w, "%s (%s)\n", r.Topic, r.Grade)
	fmt.Fprintf(w, "%s  %d/%d (%d%%)  %s\n\n",
		r.Timestamp.Local().Format("2006-01-02 15:04"), r.Score, r.Total, r.Percent(),
		i18n.T(verdictMessage(exam.VerdictFor(r))))

	for _, item := range exam.Review(r) {
		fmt.Fprintf(w, "── %d. %s\n", item.Number, item.Question.Text)
		for j, o := range item.Question.Options {
			prefix := "  "
			switch item.OptionMarks[j] {
			case exam.MarkCorrect:
				prefix = "✓ "
			case exam.MarkWrongPick:
				prefix = "✗ "
			}
			fmt.Fprintf(w, "   %s%d) %s\n", prefix, j+1, o)
		}
		answer := item.Answer.Choice
		if !item.Answer.Answered {
			answer = i18n.T("NoAnswer")
		}
		fmt.Fprintf(w, "   %s\n", i18n.Td("YourAnswer", map[string]any{"Answer": answer}))
		if item.Question.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", item.Question.Explanation)
		}
		fmt.Fprintln(w)
	}
}

func verdictMessage(v exam.Verdict) string {
	if v == exam.VerdictExcellent {
		return "VerdictExcellent"
	}
	return "VerdictKeepPracticing"
}

func init() {
	historyClearCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}
