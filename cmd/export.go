package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/examiz/internal/exam"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export exam history as JSON or YAML",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	exportCmd.Flags().StringP("out", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	if format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported format %q: must be json or yaml", format)
	}

	d, err := loadDeps(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer d.Close()

	results, err := d.history().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	w := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	return writeResults(w, format, results)
}

func writeResults(w io.Writer, format string, results []exam.Result) error {
	if results == nil {
		results = []exam.Result{}
	}
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
}
