// Package openapi describes the blog JSON API as an OpenAPI 3 document.
package openapi

import (
	"encoding/json"
	"strings"
)

// Document represents a minimal OpenAPI document.
type Document struct {
	OpenAPI    string         `json:"openapi"`
	Info       Info           `json:"info"`
	Paths      map[string]any `json:"paths,omitempty"`
	Components Components     `json:"components,omitempty"`
	Extensions map[string]any `json:"-"`
}

// Info captures OpenAPI metadata.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Components aggregates schema components.
type Components struct {
	Schemas map[string]any `json:"schemas,omitempty"`
}

// Operation is a single method on a path.
type Operation struct {
	Summary     string
	Parameters  []Parameter
	RequestBody string
	// Responses maps status codes to component schema names. An empty name
	// documents a response without a body.
	Responses map[string]string
}

// Parameter is a path or query parameter.
type Parameter struct {
	Name     string
	In       string
	Type     string
	Required bool
}

// NewDocument constructs a minimal OpenAPI document.
func NewDocument(title, version string) *Document {
	return &Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:   title,
			Version: version,
		},
		Paths:      map[string]any{},
		Components: Components{Schemas: map[string]any{}},
		Extensions: map[string]any{},
	}
}

// AddSchema registers a component schema.
func (d *Document) AddSchema(name string, schema map[string]any) {
	if d == nil || name == "" || schema == nil {
		return
	}
	if d.Components.Schemas == nil {
		d.Components.Schemas = map[string]any{}
	}
	d.Components.Schemas[name] = schema
}

// AddOperation documents method on path. Method is lower-cased per OpenAPI.
func (d *Document) AddOperation(method, path string, op Operation) {
	if d == nil || method == "" || path == "" {
		return
	}
	if d.Paths == nil {
		d.Paths = map[string]any{}
	}
	item, _ := d.Paths[path].(map[string]any)
	if item == nil {
		item = map[string]any{}
		d.Paths[path] = item
	}

	entry := map[string]any{"summary": op.Summary}
	if len(op.Parameters) > 0 {
		params := make([]map[string]any, 0, len(op.Parameters))
		for _, p := range op.Parameters {
			params = append(params, map[string]any{
				"name":     p.Name,
				"in":       p.In,
				"required": p.Required || p.In == "path",
				"schema":   map[string]any{"type": p.Type},
			})
		}
		entry["parameters"] = params
	}
	if op.RequestBody != "" {
		entry["requestBody"] = map[string]any{
			"required": true,
			"content":  jsonContent(op.RequestBody),
		}
	}
	responses := map[string]any{}
	for code, schema := range op.Responses {
		response := map[string]any{"description": code}
		if schema != "" {
			response["content"] = jsonContent(schema)
		}
		responses[code] = response
	}
	entry["responses"] = responses
	item[strings.ToLower(method)] = entry
}

// SetExtension sets a vendor extension on the document.
func (d *Document) SetExtension(key string, value any) {
	if d == nil || key == "" {
		return
	}
	if d.Extensions == nil {
		d.Extensions = map[string]any{}
	}
	d.Extensions[key] = value
}

// AsMap returns the document as a map, extensions inlined.
func (d *Document) AsMap() map[string]any {
	if d == nil {
		return nil
	}
	out := map[string]any{
		"openapi": d.OpenAPI,
		"info": map[string]any{
			"title":   d.Info.Title,
			"version": d.Info.Version,
		},
	}
	if len(d.Paths) > 0 {
		out["paths"] = d.Paths
	} else {
		out["paths"] = map[string]any{}
	}
	if len(d.Components.Schemas) > 0 {
		out["components"] = map[string]any{
			"schemas": d.Components.Schemas,
		}
	}
	for key, value := range d.Extensions {
		out[key] = value
	}
	return out
}

// MarshalJSON encodes AsMap so extensions appear at the top level.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.AsMap())
}

func jsonContent(schema string) map[string]any {
	return map[string]any{
		"application/json": map[string]any{
			"schema": map[string]any{"$ref": "#/components/schemas/" + schema},
		},
	}
}
