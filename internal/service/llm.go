package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// StructuredLLM asks a language model for a JSON document shaped like
// models.IssueRecord. Backends own their schema encoding; callers validate the
// returned bytes.
type StructuredLLM interface {
	GenerateRecord(ctx context.Context, systemPrompt, userText string) ([]byte, error)
}

// LLM providers accepted by NewLLM.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
	ProviderDummy  = "dummy"
)

// Default models per provider, used when LLMConfig.Model is empty.
const (
	DefaultOllamaModel = "deepseek-r1:14b"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultVertexModel = "gemini-2.0-flash-lite-001"
)

// LLMConfig selects and configures a model backend.
type LLMConfig struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens int
	Vertex    VertexConfig
}

// NewLLM builds the backend named by cfg.Provider. An empty cfg.Model selects
// the provider's default model. The returned close function is never nil.
func NewLLM(ctx context.Context, cfg LLMConfig, log *zap.Logger) (StructuredLLM, func() error, error) {
	noop := func() error { return nil }
	cfg.Model = modelFor(cfg.Provider, cfg.Model)

	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama, "":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaBaseURL
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = ProviderOllama // Ollama ignores the key but the client requires one
		}
		return newOpenAI(OpenAIConfig{APIKey: apiKey, BaseURL: baseURL, Model: cfg.Model, MaxTokens: cfg.MaxTokens}, log)
	case ProviderOpenAI:
		return newOpenAI(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model, MaxTokens: cfg.MaxTokens}, log)
	case ProviderVertex:
		vcfg := cfg.Vertex
		vcfg.Model = cfg.Model
		llm, err := NewVertexLLM(ctx, vcfg)
		if err != nil {
			return nil, noop, err
		}
		return llm, llm.Close, nil
	case ProviderDummy:
		return NewDummyLLM(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func newOpenAI(cfg OpenAIConfig, log *zap.Logger) (StructuredLLM, func() error, error) {
	noop := func() error { return nil }
	llm, err := NewOpenAILLM(cfg, log)
	if err != nil {
		return nil, noop, err
	}
	return llm, noop, nil
}

// modelFor returns model, or provider's default model when model is blank.
func modelFor(provider, model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	switch strings.ToLower(provider) {
	case ProviderOllama, "":
		return DefaultOllamaModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderVertex:
		return DefaultVertexModel
	default:
		return ""
	}
}
