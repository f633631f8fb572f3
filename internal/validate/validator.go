package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/pondokrejo/desa-monitor/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/sensor-reading-v1.json
var sensorReadingSchemaJSON string

// Validator checks inbound reading payloads against the embedded schema
// before anything is written.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("sensor-reading-v1.json",
		strings.NewReader(sensorReadingSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("sensor-reading-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateReading parses and validates a raw submission body. A missing
// sensorType or deviceName is reported by name, matching what the
// firmware expects; any other schema violation carries the schema error.
func (v *Validator) ValidateReading(raw []byte) (*types.ReadingPayload, error) {
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, &types.ValidationError{Detail: "invalid JSON body"}
	}

	missing := make([]string, 0, 2)
	for _, field := range []string{"sensorType", "deviceName"} {
		if s, ok := generic[field].(string); !ok || s == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, types.NewValidationError(missing...)
	}

	if err := v.schema.Validate(generic); err != nil {
		return nil, &types.ValidationError{Detail: fmt.Sprintf("schema validation failed: %v", err)}
	}

	var payload types.ReadingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &types.ValidationError{Detail: fmt.Sprintf("failed to decode payload: %v", err)}
	}

	return &payload, nil
}
