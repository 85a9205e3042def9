package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/liliang-cn/sitechat/internal/domain"
	"github.com/sashabaranov/go-openai"
)

// FallbackAnswer is returned when the model produced no text
const FallbackAnswer = "No he podido generar respuesta."

// CompletionProvider generates the assistant reply for a conversation
type CompletionProvider interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// CompletionConfig configures the OpenAI-compatible completion client
type CompletionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAICompletion talks to any OpenAI-compatible chat completions endpoint
type OpenAICompletion struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	apiKey  string
}

// NewOpenAICompletion creates a completion client.
// A missing API key is not an error here; every call fails instead.
func NewOpenAICompletion(cfg CompletionConfig) *OpenAICompletion {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}

	return &OpenAICompletion{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: cfg.Timeout,
		apiKey:  cfg.APIKey,
	}
}

// Model returns the model identifier sent with every request
func (c *OpenAICompletion) Model() string {
	return c.model
}

// Complete issues a single chat completion call and returns the first choice's text.
// Empty content yields FallbackAnswer.
func (c *OpenAICompletion) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", errors.Join(domain.ErrConfiguration, errors.New("completion provider API key is not set"))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", domain.UpstreamError("completion", err)
	}

	if len(resp.Choices) == 0 {
		return FallbackAnswer, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return FallbackAnswer, nil
	}
	return content, nil
}

func toOpenAIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}
