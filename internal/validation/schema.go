// Package validation lints post front matter against a JSON schema.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const dateLayout = "2006-01-02"

var (
	ErrSchemaInvalid      = errors.New("schema invalid")
	ErrFrontMatterInvalid = errors.New("front matter validation failed")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// FrontMatterError lists the issues found in one post's front matter.
type FrontMatterError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *FrontMatterError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrFrontMatterInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *FrontMatterError) Unwrap() error {
	return ErrFrontMatterInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var fmErr *FrontMatterError
	if errors.As(err, &fmErr) && fmErr != nil {
		return fmErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// DefaultFrontMatterSchema describes the recommended post header. Every
// key is optional at render time; the linter flags what readers would
// otherwise see as defaults.
func DefaultFrontMatterSchema() map[string]any {
	stringList := map[string]any{
		"oneOf": []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{"type": "array", "items": map[string]any{"type": "string", "minLength": 1}},
		},
	}
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []any{"title", "date", "description"},
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string", "minLength": 1},
			"date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}`},
			"categories":  stringList,
			"image":       map[string]any{"type": "string"},
			"author":      map[string]any{"type": "string"},
		},
		"additionalProperties": true,
	}
}

// LoadSchemaFile reads a JSON schema document from path.
func LoadSchemaFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validation: read schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return schema, nil
}

// ValidateSchema ensures the schema can be compiled.
func ValidateSchema(schema map[string]any) error {
	if len(schema) == 0 {
		return fmt.Errorf("%w: empty schema", ErrSchemaInvalid)
	}
	if _, err := compileSchema(schema); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// Linter validates front matter against a compiled schema.
type Linter struct {
	schema *jsonschema.Schema
}

// NewLinter compiles schema, falling back to DefaultFrontMatterSchema.
func NewLinter(schema map[string]any) (*Linter, error) {
	if len(schema) == 0 {
		schema = DefaultFrontMatterSchema()
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Linter{schema: compiled}, nil
}

// Lint validates meta and returns a *FrontMatterError listing every issue.
func (l *Linter) Lint(meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	instance, err := toJSONValue(meta)
	if err != nil {
		return &FrontMatterError{Issues: []ValidationIssue{{Message: err.Error()}}, Cause: err}
	}
	if err := l.schema.Validate(instance); err != nil {
		return &FrontMatterError{Issues: Issues(err), Cause: err}
	}
	return nil
}

// toJSONValue reshapes YAML-decoded data into the value tree encoding/json
// would produce so the schema validator sees plain JSON types.
func toJSONValue(value any) (any, error) {
	encoded, err := json.Marshal(normalize(value))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[fmt.Sprint(key)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = normalize(val)
		}
		return out
	case time.Time:
		return typed.UTC().Format(dateLayout)
	default:
		return value
	}
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
