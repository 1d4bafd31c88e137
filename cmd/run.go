package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/app"
	"github.com/abhisek/examiz/internal/config"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/problemgen"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/store"
)

// deps is what every command needs: resolved config, a logger and the
// opened storage.
type deps struct {
	cfg     *config.Config
	log     *slog.Logger
	kv      store.KV
	events  store.EventRepo // nil when history lives in postgres
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func (d *deps) history() *history.Store {
	return history.New(d.kv, history.WithCapacity(d.cfg.HistoryCapacity), history.WithLogger(d.log))
}

func (d *deps) ledger() *progress.Ledger {
	return progress.NewLedger(d.kv, nil)
}

// generator builds the question generator, or returns an error when no
// LLM provider is configured.
func (d *deps) generator(ctx context.Context) (*problemgen.LLMGenerator, error) {
	provider, err := llm.NewProvider(ctx, d.cfg.LLM, d.events, d.log)
	if err != nil {
		return nil, err
	}
	return problemgen.New(provider, d.cfg.Generation), nil
}

// loadDeps resolves configuration and opens storage. Log output goes to
// logOut; interactive runs pass a file so the TUI is not disturbed.
func loadDeps(cmd *cobra.Command, logOut io.Writer) (*deps, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	lang := cfg.Lang
	if lang == "" {
		lang = "en"
	}
	if err := i18n.Init(lang); err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, log: newLogger(logOut, cfg.LogLevel, cfg.LogFormat)}
	slog.SetDefault(d.log)

	if err := d.openStorage(cmd.Context()); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *deps) openStorage(ctx context.Context) error {
	if store.IsPostgresDSN(d.cfg.DB) {
		kv, err := store.OpenPostgresKV(ctx, d.cfg.DB)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		d.kv = kv
		d.closers = append(d.closers, kv.Close)
		return nil
	}

	path := d.cfg.DB
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create DB directory: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	d.kv = st.KV()
	d.events = st.EventRepo()
	d.closers = append(d.closers, func() { _ = st.Close() })
	return nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openLogFile opens the log file used while the TUI owns the terminal.
func openLogFile() (*os.File, error) {
	dir, err := store.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "examiz.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var logOut io.Writer = io.Discard
	if f, err := openLogFile(); err == nil {
		defer f.Close()
		logOut = f
	}

	d, err := loadDeps(cmd, logOut)
	if err != nil {
		return err
	}
	defer d.Close()

	opts := app.Options{
		History:  d.history(),
		Ledger:   d.ledger(),
		Settings: d.cfg.Exam,
		Logger:   d.log,
	}

	gen, err := d.generator(ctx)
	if err != nil {
		d.log.Warn("LLM provider not configured", "error", err)
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
	} else {
		opts.Provider = gen
	}

	return app.Run(ctx, opts)
}
