package service

import (
	"context"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// OpenAIConfig configures an OpenAI-compatible chat endpoint (OpenAI itself or Ollama).
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// OpenAILLM implements StructuredLLM with chat completions and a strict JSON schema.
type OpenAILLM struct {
	client    openai.Client
	model     string
	maxTokens int
	schema    any
	log       *zap.Logger
}

// NewOpenAILLM creates the client. Model is required; APIKey may be any
// non-empty placeholder when talking to Ollama.
func NewOpenAILLM(cfg OpenAIConfig, log *zap.Logger) (*OpenAILLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	return &OpenAILLM{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		schema:    GenerateSchema[models.IssueRecord](),
		log:       log,
	}, nil
}

// GenerateRecord sends the system prompt and the issue text and returns the raw JSON answer.
func (l *OpenAILLM) GenerateRecord(ctx context.Context, systemPrompt, userText string) ([]byte, error) {
	params := openai.ChatCompletionNewParams{
		Model: l.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
		MaxTokens: openai.Int(int64(l.maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "issue_record",
					Description: openai.String("Structured summary of one GitHub issue"),
					Schema:      l.schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	start := time.Now()
	resp, err := l.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	l.log.Debug("llm chat completed",
		zap.String("model", l.model),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return []byte(resp.Choices[0].Message.Content), nil
}

// GenerateSchema reflects T into a closed JSON schema suitable for strict mode.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
