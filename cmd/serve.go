package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve exam history and progress over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8089)")
	serveCmd.Flags().StringSlice("origin", nil, "Allowed CORS origin (repeatable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	origins, _ := cmd.Flags().GetStringSlice("origin")

	d, err := loadDeps(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer d.Close()

	h := api.NewRouter(api.Options{
		History:        d.history(),
		Ledger:         d.ledger(),
		AllowedOrigins: origins,
		Logger:         d.log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", d.cfg.ServeAddr)
	return api.Serve(ctx, d.cfg.ServeAddr, h, d.log)
}
