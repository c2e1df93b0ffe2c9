// Package schemas validates generated records against embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names
const (
	Keyword  = "keyword"
	Audience = "audience"
)

//go:embed *.json
var schemaFiles embed.FS

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, err.Field, err.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}

	data, err := schemaFiles.ReadFile(name + ".json")
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Cause: err}
	}
	compiled[name] = s
	return s, nil
}

// ValidateRecord validates a decoded record (for example a map produced by
// the repair package) against the named schema. It returns a
// *ValidationError listing every failing field.
func ValidateRecord(name string, record any) error {
	schema, err := load(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(record))
	if err != nil {
		return fmt.Errorf("failed to validate %s record: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
