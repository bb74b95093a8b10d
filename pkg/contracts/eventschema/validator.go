// Package eventschema validates serialized domain events against the
// published AsyncAPI contract before they leave the service.
package eventschema

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed asyncapi.yaml
var asyncAPISpec []byte

const envelopeSchemaName = "EventEnvelope"

// Validator validates event envelopes against the AsyncAPI schema
type Validator struct {
	envelope *jsonschema.Schema
}

// AsyncAPISpec represents the relevant parts of an AsyncAPI specification
type AsyncAPISpec struct {
	AsyncAPI   string             `yaml:"asyncapi"`
	Info       AsyncAPIInfo       `yaml:"info"`
	Components AsyncAPIComponents `yaml:"components"`
}

// AsyncAPIInfo contains the AsyncAPI info section
type AsyncAPIInfo struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// AsyncAPIComponents contains reusable components
type AsyncAPIComponents struct {
	Schemas map[string]any `yaml:"schemas"`
}

// NewValidator compiles the embedded AsyncAPI contract
func NewValidator() (*Validator, error) {
	return NewValidatorFromBytes(asyncAPISpec)
}

// NewValidatorFromBytes compiles a validator from AsyncAPI specification bytes
func NewValidatorFromBytes(specBytes []byte) (*Validator, error) {
	var spec AsyncAPISpec
	if err := yaml.Unmarshal(specBytes, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse AsyncAPI spec: %w", err)
	}

	envelopeSchema, ok := spec.Components.Schemas[envelopeSchemaName]
	if !ok {
		return nil, fmt.Errorf("schema %s not found in AsyncAPI spec", envelopeSchemaName)
	}

	// Round-trip through JSON so the schema document uses JSON types
	schemaJSON, err := json.Marshal(envelopeSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema %s: %w", envelopeSchemaName, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", envelopeSchemaName, err)
	}

	compiler := jsonschema.NewCompiler()
	schemaURI := fmt.Sprintf("asyncapi://schemas/%s", envelopeSchemaName)
	if err := compiler.AddResource(schemaURI, doc); err != nil {
		return nil, fmt.Errorf("failed to register schema %s: %w", envelopeSchemaName, err)
	}

	compiled, err := compiler.Compile(schemaURI)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", envelopeSchemaName, err)
	}

	return &Validator{envelope: compiled}, nil
}

// ValidateEnvelope validates a serialized event envelope
func (v *Validator) ValidateEnvelope(payload []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to parse event envelope: %w", err)
	}

	if err := v.envelope.Validate(doc); err != nil {
		return fmt.Errorf("event envelope validation failed: %w", err)
	}

	return nil
}
