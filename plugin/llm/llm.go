package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sashabaranov/go-openai"
)

// Provider names understood by the gateway.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Sentinel errors classifying provider failures. Callers translate these
// into their own error surface; raw transport errors never leave this package
// unwrapped.
var (
	ErrUnavailable = errors.New("provider unavailable")
	ErrTimeout     = errors.New("provider timeout")
	ErrRateLimited = errors.New("provider rate limited")
	ErrAuth        = errors.New("provider authentication failed")
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Client is a single-vendor chat client.
type Client interface {
	// Complete performs a synchronous chat completion over the full transcript.
	Complete(ctx context.Context, messages []Message) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Helper for creating system prompts
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Helper for creating assistant messages
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

type openAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient creates a chat client for one provider. DeepSeek and Ollama both
// expose OpenAI-compatible endpoints, so all three vendors ride the same SDK
// with a BaseURL override.
func NewClient(cfg *ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderDeepSeek, ProviderOllama:
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	apiKey := cfg.APIKey
	if cfg.Provider == ProviderOllama && apiKey == "" {
		// Ollama ignores the key but the SDK requires a non-empty one.
		apiKey = "ollama"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (c *openAIClient) GetModel() string {
	return c.model
}

func (c *openAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    llmMessages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty chat response", ErrUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK and transport errors onto the package sentinels.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case 408:
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
