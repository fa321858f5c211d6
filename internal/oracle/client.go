package oracle

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Request is one prompt-in/text-out exchange with a completion provider. The
// core's responsibility is the exact schema contract, not the model call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSONOnly asks providers that support it to constrain output to JSON.
	JSONOnly bool
}

// Client is the text-completion oracle the matching and tailoring engines
// delegate free-text work to.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

const defaultCallTimeout = 60 * time.Second

// NewFromEnv selects a provider at construction time based on AI_PROVIDER:
// "openai", "groq", "openrouter" (all OpenAI-compatible chat APIs) or
// "gemini". When unset, the provider is auto-detected from whichever API key
// is present.
//
// Environment variables:
//   - AI_PROVIDER: provider name (optional, auto-detected)
//   - OPENAI_API_KEY / GROQ_API_KEY / OPENROUTER_API_KEY / GEMINI_API_KEY
func NewFromEnv() (Client, error) {
	name := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if name == "" {
		name = detectProvider()
	}
	if name == "" {
		return nil, NewError(KindNotConfigured, "",
			fmt.Errorf("no AI provider configured: set AI_PROVIDER and the matching API key"))
	}

	switch name {
	case "openai", "groq", "openrouter":
		cfg, ok := chatProviders[name]
		if !ok {
			return nil, NewError(KindUnsupportedProvider, name, fmt.Errorf("unknown chat provider %q", name))
		}
		key := os.Getenv(cfg.keyEnv)
		if key == "" {
			return nil, NewError(KindNotConfigured, name,
				fmt.Errorf("API key not found for provider %s: set %s", name, cfg.keyEnv))
		}
		return newChatClient(name, cfg, key), nil
	case "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, NewError(KindNotConfigured, name,
				fmt.Errorf("API key not found for provider gemini: set GEMINI_API_KEY"))
		}
		return NewGeminiClient(key), nil
	default:
		return nil, NewError(KindUnsupportedProvider, name,
			fmt.Errorf("invalid AI provider %q: supported providers are openai, groq, openrouter, gemini", name))
	}
}

func detectProvider() string {
	switch {
	case os.Getenv("OPENAI_API_KEY") != "":
		return "openai"
	case os.Getenv("GROQ_API_KEY") != "":
		return "groq"
	case os.Getenv("OPENROUTER_API_KEY") != "":
		return "openrouter"
	case os.Getenv("GEMINI_API_KEY") != "":
		return "gemini"
	}
	return ""
}

// CleanJSON strips markdown code fences models wrap JSON payloads in.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
