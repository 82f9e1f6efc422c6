package vlm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON-Schema used to validate the structural shape of
// a model response before it is decoded.
type Schema struct {
	compiled *jsonschema.Schema
}

// MustSchema compiles a schema definition, panicking on error. Response
// schemas are static package-level declarations, so a bad definition is a
// programming error.
func MustSchema(def map[string]any) *Schema {
	b, err := json.Marshal(def)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return &Schema{compiled: compiled}
}

// Validate checks data against the schema. Any violation is reported as a
// malformed-response error for the page under processing.
func (s *Schema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("response does not match expected shape: %w", err)
	}
	return nil
}
