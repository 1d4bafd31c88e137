package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/llm"
)

const sampleYAML = `lang: es
exam:
  questions: 7
  seconds_per_question: 30
  pacing: 500ms
llm:
  provider: gemini
  gemini:
    api_key: g-key
    model: gemini-pro
serve:
  addr: ":9000"
`

func noEnv(string) string { return "" }

// isolate points every implicit search location at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env"), Lookup: noEnv})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DB)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5, cfg.Generation.Questions)
	assert.Equal(t, 4096, cfg.Generation.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Generation.Temperature, 1e-9)
	assert.Equal(t, 60, cfg.Exam.SecondsPerQuestion)
	assert.Equal(t, time.Second, cfg.Exam.Tick)
	assert.Equal(t, 1500*time.Millisecond, cfg.Exam.Pacing)
	assert.Equal(t, 40, cfg.Exam.RewardPerCorrect)
	assert.Equal(t, 20, cfg.HistoryCapacity)
	assert.Equal(t, "127.0.0.1:8089", cfg.ServeAddr)
	assert.Equal(t, "", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, llm.DefaultConfig().OpenAI.Model, cfg.LLM.OpenAI.Model)
	assert.Equal(t, "", cfg.File)
}

func TestLoad_FileEnvAndFlagPrecedence(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "examiz.yaml", sampleYAML)
	t.Setenv("EXAMIZ_EXAM_QUESTIONS", "8")
	t.Setenv("EXAMIZ_SERVE_ADDR", ":9100")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("questions", 0, "")
	fs.String("addr", "unused-default", "")
	require.NoError(t, fs.Parse([]string{"--questions=3"}))

	cfg, err := Load(Options{File: file, EnvFile: filepath.Join(dir, "none.env"), Flags: fs, Lookup: noEnv})
	require.NoError(t, err)

	assert.Equal(t, file, cfg.File)
	assert.Equal(t, "es", cfg.Lang)
	assert.Equal(t, 3, cfg.Generation.Questions, "flag beats env and file")
	assert.Equal(t, ":9100", cfg.ServeAddr, "env beats file; unset flag is ignored")
	assert.Equal(t, 30, cfg.Exam.SecondsPerQuestion)
	assert.Equal(t, 500*time.Millisecond, cfg.Exam.Pacing)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "gemini-pro", cfg.LLM.Selected().Model)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	dir := isolate(t)
	t.Setenv("EXAMIZ_EXAM_SECONDS_PER_QUESTION", "-5")
	t.Setenv("EXAMIZ_EXAM_QUESTIONS", "0")
	t.Setenv("EXAMIZ_HISTORY_CAPACITY", "-1")

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "none.env"), Lookup: noEnv})
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Exam.SecondsPerQuestion)
	assert.Equal(t, 5, cfg.Generation.Questions)
	assert.Equal(t, 20, cfg.HistoryCapacity)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(Options{File: filepath.Join(dir, "nope.yaml"), EnvFile: filepath.Join(dir, "none.env"), Lookup: noEnv})
	assert.Error(t, err)
}

func TestLoad_ProviderDiscovery(t *testing.T) {
	dir := isolate(t)
	t.Setenv("EXAMIZ_LLM_MODEL", "gpt-4.1")
	lookup := func(k string) string {
		if k == "OPENAI_API_KEY" {
			return "sk-test"
		}
		return ""
	}
	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "none.env"), Lookup: lookup})
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.LLM.OpenAI.Model)
	assert.NoError(t, cfg.LLM.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := writeFile(t, dir, ".env", "EXAMIZ_LANG=es\nEXAMIZ_LOG_LEVEL=DEBUG\n")
	t.Cleanup(func() {
		os.Unsetenv("EXAMIZ_LANG")
		os.Unsetenv("EXAMIZ_LOG_LEVEL")
	})

	cfg, err := Load(Options{EnvFile: envFile, Lookup: noEnv})
	require.NoError(t, err)
	assert.Equal(t, "es", cfg.Lang)
	assert.Equal(t, "debug", cfg.LogLevel)
}
