package services

import (
	"context"

	"github.com/vladimiradmaev/nutriscan/internal/domain"
)

// Request is one prompt sent to a generative model.
type Request struct {
	Prompt string
	Image  *domain.Image
	Schema *Schema
}

// Generator sends a request to a model and returns the raw text reply.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}

// SchemaType is a JSON value type.
type SchemaType int

const (
	TypeString SchemaType = iota + 1
	TypeNumber
	TypeArray
	TypeObject
)

// Schema describes the expected JSON reply. Providers that support
// structured output receive it converted to their own type; the field order
// of Required is also the order used when the shape is spelled out in a prompt.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
}
