package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexConfig locates a Gemini model on Vertex AI.
type VertexConfig struct {
	ProjectID       string
	Location        string
	CredentialsFile string
	Model           string
}

// VertexGenerator calls Gemini through Vertex AI with project credentials.
type VertexGenerator struct {
	client *genai.Client
	model  string
}

// NewVertexGenerator creates a Vertex AI client. Without a credentials file
// the application default credentials are used.
func NewVertexGenerator(ctx context.Context, cfg VertexConfig) (*VertexGenerator, error) {
	opts := []option.ClientOption{}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &VertexGenerator{client: client, model: cfg.Model}, nil
}

func (g *VertexGenerator) Name() string { return "vertex" }

func (g *VertexGenerator) Generate(ctx context.Context, req Request) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = toVertexSchema(req.Schema)
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to call ai: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (g *VertexGenerator) Close() error {
	return g.client.Close()
}

func toVertexSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toVertexSchema(s.Items),
	}
	switch s.Type {
	case TypeString:
		out.Type = genai.TypeString
	case TypeNumber:
		out.Type = genai.TypeNumber
	case TypeArray:
		out.Type = genai.TypeArray
	case TypeObject:
		out.Type = genai.TypeObject
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toVertexSchema(prop)
		}
	}
	return out
}
