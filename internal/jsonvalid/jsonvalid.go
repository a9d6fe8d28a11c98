// Package jsonvalid compiles JSON Schemas once and validates documents
// against them.
package jsonvalid

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformed is returned when a document is not JSON at all.
var ErrMalformed = errors.New("malformed JSON")

// compiled schemas by name
var cache sync.Map

// Compile returns the schema registered under name, compiling def the first
// time the name is seen. def is any JSON-marshalable value, usually a
// map[string]any literal.
func Compile(name string, def any) (*jsonschema.Schema, error) {
	if s, ok := cache.Load(name); ok {
		return s.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, not Go literals.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	url := "schema://" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	actual, _ := cache.LoadOrStore(name, s)
	return actual.(*jsonschema.Schema), nil
}

// Validate decodes raw and checks it against s. A decode failure wraps
// ErrMalformed.
func Validate(s *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s.Validate(doc)
}
