// Package jsonapi writes JSON:API shaped documents for the inspection API.
// See https://jsonapi.org for the document format.
package jsonapi

// Document is a top-level document. It carries data or errors, never both.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
	Meta   Meta    `json:"meta,omitempty"`
}

// Resource is a resource object.
type Resource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Meta       Meta           `json:"meta,omitempty"`
}

// Error is an error object.
type Error struct {
	Status string       `json:"status"`
	Code   string       `json:"code"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the request part that caused an error.
type ErrorSource struct {
	Parameter string `json:"parameter,omitempty"`
}

// Meta is arbitrary metadata.
type Meta map[string]any

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"
