// Package schemacheck validates JSON documents against JSON Schema
// definitions written as Go maps. Compiled schemas are cached by name, so a
// name must always refer to the same definition.
package schemacheck

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var cache sync.Map // map[string]*jsonschema.Schema

// Value validates an already-decoded JSON value (as produced by
// json.Unmarshal into any).
func Value(name string, definition map[string]any, v any) error {
	compiled, err := compile(name, definition)
	if err != nil {
		return err
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return nil
}

// JSON decodes raw and validates it.
func JSON(name string, definition map[string]any, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return Value(name, definition, parsed)
}

func compile(name string, definition map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := cache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, not Go-typed slices.
	defBytes, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	actual, _ := cache.LoadOrStore(name, compiled)
	return actual.(*jsonschema.Schema), nil
}
