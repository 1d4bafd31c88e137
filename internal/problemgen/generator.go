// Package problemgen fetches exam question sets from an LLM.
package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/llm"
)

// Generator fetches a question set for a topic and grade.
type Generator interface {
	// FetchQuestions returns up to the configured number of validated
	// questions. Failures are *exam.ProviderError or *exam.MalformedError;
	// no partial set is ever returned with an error.
	FetchQuestions(ctx context.Context, topic string, grade exam.Grade) ([]exam.Question, error)
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg.withDefaults()}
}

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []exam.Question `json:"questions"`
}

func (g *LLMGenerator) FetchQuestions(ctx context.Context, topic string, grade exam.Grade) ([]exam.Question, error) {
	if llm.PurposeFrom(ctx) == "unknown" {
		ctx = llm.WithPurpose(ctx, llm.PurposeExamGen)
	}

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(topic, grade, g.config.Questions),
		Schema:      QuestionSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			return nil, &exam.MalformedError{Index: -1, Reason: "response does not match schema", Err: err}
		}
		return nil, &exam.ProviderError{Err: err}
	}

	var out questionSetOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &exam.MalformedError{Index: -1, Reason: "unparseable response", Err: err}
	}

	qs := normalize(out.Questions)
	if len(qs) > g.config.Questions {
		qs = qs[:g.config.Questions]
	}
	if err := exam.ValidateQuestions(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// normalize trims whitespace and drops repeated question texts, keeping the
// first occurrence.
func normalize(qs []exam.Question) []exam.Question {
	seen := make(map[string]bool, len(qs))
	out := make([]exam.Question, 0, len(qs))
	for _, q := range qs {
		q.Text = strings.TrimSpace(q.Text)
		q.Correct = strings.TrimSpace(q.Correct)
		q.Explanation = strings.TrimSpace(q.Explanation)
		opts := make([]string, len(q.Options))
		for i, o := range q.Options {
			opts[i] = strings.TrimSpace(o)
		}
		q.Options = opts

		key := strings.ToLower(q.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}
