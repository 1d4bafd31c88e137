package problemgen

import "github.com/abhisek/examiz/internal/llm"

// QuestionSetSchema defines the JSON schema for exam generation responses.
var QuestionSetSchema = &llm.Schema{
	Name:        "exam-questions",
	Description: "An ordered set of multiple-choice exam questions with explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question prompt",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    4,
							"maxItems":    4,
							"description": "Exactly 4 distinct options",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The exact text of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right",
						},
					},
					"required": []any{"question", "options", "correctAnswer", "explanation"},
				},
			},
		},
		"required": []any{"questions"},
	},
}
