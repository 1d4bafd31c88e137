package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "examiz",
	Short: "Timed multiple-choice exams on any topic",
	Long: `Examiz generates a short multiple-choice exam on any topic and grade level,
times every question, scores your answers and keeps a history you can review.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./examiz.yaml or <config dir>/examiz/examiz.yaml)")
	pf.String("db", "", "SQLite database path or postgres:// URL (overrides EXAMIZ_DB)")
	pf.String("lang", "", "Interface language, e.g. en or es")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("provider", "", "LLM provider: gemini, openai, anthropic, openrouter or mock")
	pf.String("model", "", "Model name for the selected provider")

	f := rootCmd.Flags()
	f.Int("questions", 0, "Questions per exam")
	f.Int("seconds", 0, "Seconds per question")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
