package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/estrattori/eventi/internal/model"
)

// ollamaDefaultURL is the OpenAI-compatible endpoint Ollama exposes locally
const ollamaDefaultURL = "http://localhost:11434/v1"

// OpenAIProvider speaks the OpenAI chat API; it also covers Ollama, which
// exposes the same API behind a different base URL
type OpenAIProvider struct {
	client *openai.Client
	cfg    model.LLMConfig
	name   string
}

// NewOpenAIProvider creates a provider for OpenAI or an OpenAI-compatible
// endpoint
func NewOpenAIProvider(cfg model.LLMConfig) (*OpenAIProvider, error) {
	name := strings.ToLower(cfg.Provider)

	apiKey := cfg.APIKey
	baseURL := cfg.BaseURL
	if name == "ollama" {
		if baseURL == "" {
			baseURL = ollamaDefaultURL
		}
		if apiKey == "" {
			apiKey = "ollama" // The client requires a non-empty key
		}
	} else if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		name:   name,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks reachability with a lightweight model listing
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Brief generates a briefing via the chat completions API
func (p *OpenAIProvider) Brief(ctx context.Context, req BriefRequest) (*BriefResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Events)
	}

	modelName := req.Model
	if modelName == "" {
		modelName = p.cfg.Model
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Riassumi eventi investigativi attenendoti strettamente all'elenco fornito.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	return &BriefResponse{
		Summary:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
