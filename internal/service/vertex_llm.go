package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexConfig locates a Vertex AI project.
type VertexConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsFile string
}

// VertexLLM implements StructuredLLM using Google's Vertex AI Gemini models.
type VertexLLM struct {
	client    *genai.Client
	modelName string
}

// recordSchema mirrors models.IssueRecord for Gemini's response schema.
var recordSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"issue_number": {Type: genai.TypeInteger},
		"summary":      {Type: genai.TypeString, Description: "Concise bullet points"},
		"links": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"url":     {Type: genai.TypeString},
					"content": {Type: genai.TypeString},
				},
			},
		},
		"chunks": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"issue_number": {Type: genai.TypeInteger},
					"chunk_index":  {Type: genai.TypeInteger},
					"text":         {Type: genai.TypeString},
				},
			},
		},
	},
	Required: []string{"issue_number", "summary", "links", "chunks"},
}

// NewVertexLLM creates a new Vertex AI LLM client.
func NewVertexLLM(ctx context.Context, cfg VertexConfig) (*VertexLLM, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("vertex: project id is required")
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultVertexModel
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexLLM{client: client, modelName: modelName}, nil
}

// GenerateRecord asks Gemini for a JSON answer constrained by recordSchema.
func (l *VertexLLM) GenerateRecord(ctx context.Context, systemPrompt, userText string) ([]byte, error) {
	model := l.client.GenerativeModel(l.modelName)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = recordSchema

	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("unexpected response type")
	}
	return []byte(sb.String()), nil
}

// Close closes the Vertex AI client
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
