package history

// recordSchema describes one stored exam result.
var recordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":         map[string]any{"type": "string", "minLength": 1},
		"topic":      map[string]any{"type": "string"},
		"difficulty": map[string]any{"type": "string"},
		"score":      map[string]any{"type": "integer", "minimum": 0},
		"total":      map[string]any{"type": "integer", "minimum": 0},
		"date":       map[string]any{"type": "string"},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":      map[string]any{"type": "string"},
					"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"correctAnswer": map[string]any{"type": "string"},
					"explanation":   map[string]any{"type": "string"},
				},
				"required": []string{"question", "options", "correctAnswer"},
			},
		},
		"userAnswers": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": []string{"string", "null"}},
		},
	},
	"required": []string{"id", "topic", "difficulty", "score", "total", "date", "questions", "userAnswers"},
}
