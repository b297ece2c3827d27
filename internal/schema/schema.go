// Package schema validates settings documents against the JSON schema of
// the wire format. Decoding is tolerant, so grammar errors are only caught
// here.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed settings.schema.json
var settingsSchema []byte

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

// FieldError is a single schema violation.
type FieldError struct {
	Field       string
	Description string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Description))
	}
	return fmt.Sprintf("settings validation failed: %s", strings.Join(parts, "; "))
}

// Source returns the embedded JSON schema.
func Source() []byte {
	return append([]byte(nil), settingsSchema...)
}

// Validate checks a JSON document. It returns a *ValidationError when the
// document does not match the schema, and a plain error when it is not JSON.
func Validate(doc []byte) error {
	s, err := load()
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, re := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{Field: re.Field(), Description: re.Description()})
	}
	return verr
}

// ValidateValue marshals v to JSON and validates it.
func ValidateValue(v interface{}) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return Validate(doc)
}

func load() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(settingsSchema))
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile settings schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}
