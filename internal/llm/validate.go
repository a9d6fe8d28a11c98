package llm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/VVic23/civics-practice/internal/jsonvalid"
)

// validateResponse checks raw against schema. A nil schema accepts
// anything. Failures are *ErrInvalidResponse carrying the raw content.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	compiled, err := jsonvalid.Compile(schema.Name, schema.Definition)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := jsonvalid.Validate(compiled, raw); err != nil {
		if errors.Is(err, jsonvalid.ErrMalformed) {
			return &ErrInvalidResponse{Content: raw, Err: err}
		}
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %q: %w", schema.Name, err)}
	}
	return nil
}
