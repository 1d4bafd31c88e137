package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/exam"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview LLM-generated questions for a topic (nothing is saved)",
	Long: `Generate a question set and answer it on the terminal.

This is a stateless developer tool: no timer, no history, no XP.
Useful for evaluating question quality for a topic and grade.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "", "Exam topic (required)")
	previewCmd.Flags().String("grade", string(exam.DefaultGrade), "Difficulty grade")
	_ = previewCmd.MarkFlagRequired("topic")
}

func runPreview(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	gradeVal, _ := cmd.Flags().GetString("grade")

	grade, err := exam.ParseGrade(gradeVal)
	if err != nil {
		return err
	}

	d, err := loadDeps(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer d.Close()

	gen, err := d.generator(cmd.Context())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	fmt.Printf("Topic: %s (%s)\n", topic, grade)
	fmt.Println("Generating questions...")

	questions, err := gen.FetchQuestions(cmd.Context(), topic, grade)
	if err != nil {
		return fmt.Errorf("generate questions: %w", err)
	}
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var correct int

	for i, q := range questions {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(questions))
		fmt.Println(q.Text)
		for j, o := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, o)
		}

		fmt.Print("\nYour answer (1-4): ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := exam.NoAnswer
		if n, err := strconv.Atoi(strings.TrimSpace(scanner.Text())); err == nil && n >= 1 && n <= len(q.Options) {
			answer = exam.Chose(q.Options[n-1])
		}

		switch {
		case !answer.Answered:
			fmt.Printf("(skipped) Answer: %s\n", q.Correct)
		case q.IsCorrect(answer):
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		default:
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", q.Correct)
		}

		if q.Explanation != "" {
			fmt.Printf("Explanation: %s\n", q.Explanation)
		}
		fmt.Println()
	}

	fmt.Printf("── Summary: %d/%d correct ──\n", correct, len(questions))
	return nil
}
