package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/abhisek/examiz/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pairSchema = &Schema{
	Name: "test-pair",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "integer"},
		},
		"required": []string{"a"},
	},
}

func TestMockProvider_FIFOAndCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys", Prompt: "first"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)

	_, err = mock.Generate(context.Background(), Request{Prompt: "second"})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl))

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "sys", calls[0].System)
	assert.Equal(t, "second", calls[1].Prompt)
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"b":2}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: pairSchema})
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv))
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, PurposeExamGen, PurposeFrom(WithPurpose(ctx, PurposeExamGen)))
}

func TestConfig_Validate(t *testing.T) {
	withKey := func(p string) Config {
		c := DefaultConfig()
		c.Provider = p
		c.Selected().APIKey = "sk-test"
		return c
	}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", withKey(ProviderAnthropic), false},
		{"openrouter with key", withKey(ProviderOpenRouter), false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"nothing selected", Config{}, true},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Discover(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":    "sk-openai",
		"ANTHROPIC_API_KEY": "sk-ant",
	}
	lookup := func(k string) string { return env[k] }

	cfg := DefaultConfig()
	require.True(t, cfg.Discover(lookup))
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-openai", cfg.OpenAI.APIKey)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)

	cfg = DefaultConfig()
	cfg.Provider = ProviderAnthropic
	cfg.Anthropic.APIKey = "explicit"
	require.True(t, cfg.Discover(lookup))
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "explicit", cfg.Anthropic.APIKey)

	cfg = DefaultConfig()
	assert.False(t, cfg.Discover(func(string) string { return "" }))
}

type recordingEvents struct {
	store.EventRepo
	got []store.LLMRequestEventData
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.got = append(r.got, d)
	return nil
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	events := &recordingEvents{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, ProviderMock, events, slog.Default())
	ctx := WithPurpose(context.Background(), PurposePreview)

	_, err := p.Generate(ctx, Request{System: "sys", Prompt: "go", Schema: pairSchema})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{Prompt: "again"})
	require.Error(t, err)

	require.Len(t, events.got, 2)
	first := events.got[0]
	assert.True(t, first.Success)
	assert.Equal(t, PurposePreview, first.Purpose)
	assert.Equal(t, 7, first.InputTokens)
	assert.Contains(t, first.RequestBody, "[system]\nsys")
	assert.Contains(t, first.RequestBody, "[schema: test-pair]")
	assert.JSONEq(t, `{"a":1}`, first.ResponseBody)

	assert.False(t, events.got[1].Success)
	assert.Equal(t, "boom", events.got[1].ErrorMessage)
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{}, nil, nil)
	assert.Error(t, err)
}
