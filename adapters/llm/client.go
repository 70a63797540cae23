package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aistats/internal"
	"aistats/ports"

	"github.com/sashabaranov/go-openai"
)

// Config holds the chat-completion transport settings
type Config struct {
	Model       string        // e.g., "gpt-4o-mini" or "deepseek-chat"
	APIKey      string        // OpenAI-compatible API key
	BaseURL     string        // Optional override (default: https://api.openai.com/v1)
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // Max tokens in response
	Timeout     time.Duration // Per-request timeout
}

// OpenAIClient implements ports.ChatModel over any OpenAI-compatible endpoint
type OpenAIClient struct {
	client *openai.Client
	config Config
	logger *internal.Logger
}

// NewOpenAIClient creates a client from config
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}
	if strings.TrimSpace(config.Model) == "" {
		return nil, fmt.Errorf("missing model")
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if baseURL := strings.TrimSpace(config.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: internal.DefaultLogger.With("LLM"),
	}, nil
}

// Chat sends one completion request. Tools are attached only when present,
// so the narration request cannot trigger further calls.
func (c *OpenAIClient) Chat(ctx context.Context, req ports.ChatRequest) (*ports.ChatResponse, error) {
	body := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if len(req.Tools) > 0 {
		body.Tools = make([]openai.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			body.Tools = append(body.Tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		if req.ToolChoice != "" {
			body.ToolChoice = req.ToolChoice
		}
	}

	c.logger.Debug("chat request: model=%s messages=%d tools=%d", body.Model, len(body.Messages), len(body.Tools))
	resp, err := c.client.CreateChatCompletion(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response missing choices")
	}

	msg := resp.Choices[0].Message
	out := &ports.ChatResponse{
		Content: msg.Content,
		Usage: &ports.UsageData{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			Model:            resp.Model,
			Provider:         "openai",
		},
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ports.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	c.logger.Debug("chat response: finish=%s tool_calls=%d", resp.Choices[0].FinishReason, len(out.ToolCalls))
	return out, nil
}
