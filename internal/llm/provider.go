package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a single prompt.
type Provider interface {
	// Generate sends the request and returns the model output. When the
	// request carries a Schema, the provider asks for native structured
	// output and validates Content against it before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Prompt is the user message.
	Prompt string

	// Schema is the JSON Schema the response must conform to. When nil,
	// Content holds raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "exam-questions". It is
	// also the validation cache key.
	Name string

	// Description is sent to providers that accept one.
	Description string

	// Definition is the JSON Schema definition.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
