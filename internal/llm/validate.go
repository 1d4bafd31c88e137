package llm

import (
	"encoding/json"

	"github.com/abhisek/examiz/internal/schemacheck"
)

// validateResponse checks raw against schema. A nil schema accepts
// anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	if err := schemacheck.JSON(schema.Name, schema.Definition, raw); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}
