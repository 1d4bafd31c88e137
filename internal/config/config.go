// Package config loads examiz settings from an optional examiz.yaml, a .env
// file, EXAMIZ_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/problemgen"
	"github.com/abhisek/examiz/internal/session"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXAMIZ"

// Config is the resolved application configuration.
type Config struct {
	// DB is the database path or postgres:// URL. Empty means the default
	// location under the user data directory.
	DB string

	Lang      string
	LogLevel  string
	LogFormat string

	Exam            session.Settings
	Generation      problemgen.Config
	HistoryCapacity int
	LLM             llm.Config

	ServeAddr string

	// File is the config file that was read, if any.
	File string
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string

	// EnvFile is the dotenv file loaded before reading the environment.
	// Defaults to ".env"; a missing file is not an error.
	EnvFile string

	// Flags are bound over every other source. Only flags that were set
	// on the command line take effect.
	Flags *pflag.FlagSet

	// Lookup reads provider API key variables. Defaults to os.Getenv.
	Lookup func(string) string
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"lang":       "lang",
	"log-level":  "log.level",
	"log-format": "log.format",
	"provider":   "llm.provider",
	"model":      "llm.model",
	"questions":  "exam.questions",
	"seconds":    "exam.seconds_per_question",
	"addr":       "serve.addr",
}

var providers = []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOpenRouter}

func setDefaults(v *viper.Viper) {
	exam := session.DefaultSettings()
	gen := problemgen.DefaultConfig()
	lc := llm.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("lang", "en")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("exam.questions", gen.Questions)
	v.SetDefault("exam.seconds_per_question", exam.SecondsPerQuestion)
	v.SetDefault("exam.tick", exam.Tick)
	v.SetDefault("exam.pacing", exam.Pacing)
	v.SetDefault("exam.reward_per_correct", exam.RewardPerCorrect)
	v.SetDefault("history.capacity", history.DefaultCapacity)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", gen.Temperature)
	v.SetDefault("llm.max_tokens", gen.MaxTokens)
	v.SetDefault("llm.timeout", time.Duration(0))
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)
	for _, p := range providers {
		sel := lc.For(p)
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".model", sel.Model)
		v.SetDefault("llm."+p+".base_url", sel.BaseURL)
	}

	v.SetDefault("serve.addr", "127.0.0.1:8089")
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error reading env file", "path", envFile, "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("examiz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "examiz"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.Getenv
	}
	return build(v, lookup), nil
}

func build(v *viper.Viper, lookup func(string) string) *Config {
	cfg := &Config{
		DB:        v.GetString("db"),
		Lang:      v.GetString("lang"),
		LogLevel:  strings.ToLower(v.GetString("log.level")),
		LogFormat: strings.ToLower(v.GetString("log.format")),
		Exam: session.Settings{
			SecondsPerQuestion: v.GetInt("exam.seconds_per_question"),
			Tick:               v.GetDuration("exam.tick"),
			Pacing:             v.GetDuration("exam.pacing"),
			RewardPerCorrect:   v.GetInt("exam.reward_per_correct"),
		},
		Generation: problemgen.Config{
			Questions:   v.GetInt("exam.questions"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Temperature: v.GetFloat64("llm.temperature"),
		},
		HistoryCapacity: v.GetInt("history.capacity"),
		ServeAddr:       v.GetString("serve.addr"),
		File:            v.ConfigFileUsed(),
	}

	// Zero and negative values fall back to the defaults.
	cfg.Exam = cfg.Exam.WithDefaults()
	if cfg.Generation.Questions <= 0 {
		cfg.Generation.Questions = problemgen.DefaultConfig().Questions
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = history.DefaultCapacity
	}

	lc := llm.DefaultConfig()
	lc.Provider = strings.ToLower(v.GetString("llm.provider"))
	lc.Timeout = v.GetDuration("llm.timeout")
	lc.Retry = llm.RetryConfig{
		MaxAttempts: v.GetInt("llm.retry.max_attempts"),
		InitialWait: v.GetDuration("llm.retry.initial_wait"),
		MaxWait:     v.GetDuration("llm.retry.max_wait"),
		Multiplier:  v.GetFloat64("llm.retry.multiplier"),
	}
	for _, p := range providers {
		*lc.For(p) = llm.ProviderConfig{
			APIKey:  v.GetString("llm." + p + ".api_key"),
			Model:   v.GetString("llm." + p + ".model"),
			BaseURL: v.GetString("llm." + p + ".base_url"),
		}
	}
	lc.Discover(lookup)
	if model := v.GetString("llm.model"); model != "" {
		lc.Selected().Model = model
	}
	cfg.LLM = lc

	return cfg
}
