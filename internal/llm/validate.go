package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON schema for one provider response shape.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles schemaMap under the given resource name.
func CompileSchema(name string, schemaMap map[string]any) (*Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schemas.
func MustCompileSchema(name string, schemaMap map[string]any) *Schema {
	s, err := CompileSchema(name, schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks data against the schema.
func (s *Schema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match %s: %w", s.name, err)
	}
	return nil
}

// DecodeStrict validates raw against schema and decodes it into out.
// Every failure wraps ErrProviderResponse.
func DecodeStrict(schema *Schema, raw []byte, out any) error {
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("%w: %w", common.ErrProviderResponse, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode: %w", common.ErrProviderResponse, err)
	}
	return nil
}
