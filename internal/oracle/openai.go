package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// chatProviderConfig describes one OpenAI-compatible chat-completions
// endpoint. Groq and OpenRouter expose the same wire protocol, so one client
// serves all three.
type chatProviderConfig struct {
	baseURL string
	model   string
	keyEnv  string
}

var chatProviders = map[string]chatProviderConfig{
	"openai": {
		baseURL: "https://api.openai.com/v1",
		model:   "gpt-4o-mini",
		keyEnv:  "OPENAI_API_KEY",
	},
	"groq": {
		baseURL: "https://api.groq.com/openai/v1",
		model:   "llama-3.1-70b-versatile",
		keyEnv:  "GROQ_API_KEY",
	},
	"openrouter": {
		baseURL: "https://openrouter.ai/api/v1",
		model:   "meta-llama/llama-3.1-70b-instruct",
		keyEnv:  "OPENROUTER_API_KEY",
	},
}

type chatClient struct {
	name   string
	model  string
	client *openai.Client
}

func newChatClient(name string, cfg chatProviderConfig, apiKey string) *chatClient {
	c := openai.DefaultConfig(apiKey)
	c.BaseURL = cfg.baseURL
	return &chatClient{
		name:   name,
		model:  cfg.model,
		client: openai.NewClientWithConfig(c),
	}
}

func (c *chatClient) Provider() string {
	return c.name
}

func (c *chatClient) Complete(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONOnly {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(callCtx, chatReq)
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", NewError(KindNoResponse, c.name, fmt.Errorf("empty completion response"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *chatClient) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return NewError(KindRateLimited, c.name, err)
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return NewError(KindAuth, c.name, err)
		default:
			return NewError(KindNoResponse, c.name, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, c.name, err)
	}
	return NewError(KindNoResponse, c.name,
		fmt.Errorf("no response received from AI provider: %w", err))
}
