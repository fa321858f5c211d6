package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel = "gemini-1.5-flash"
)

// GeminiClient talks to Google's Gemini generateContent API directly.
// Free tier is generous enough for a single-user apply pipeline.
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  defaultGeminiModel,
		httpClient: &http.Client{
			Timeout: defaultCallTimeout,
		},
	}
}

// WithModel allows changing the model (e.g. "gemini-1.5-pro").
func (g *GeminiClient) WithModel(model string) *GeminiClient {
	g.model = model
	return g
}

func (g *GeminiClient) Provider() string {
	return "gemini"
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (g *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	prompt := req.Prompt
	if req.System != "" {
		// Gemini v1beta has no separate system role; prepend it.
		prompt = req.System + "\n\n" + req.Prompt
	}

	cfg := geminiGenerationConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.JSONOnly {
		cfg.ResponseMIMEType = "application/json"
	}

	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", NewError(KindNoResponse, "gemini", fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiBaseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewError(KindNoResponse, "gemini", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", NewError(KindTimeout, "gemini", err)
		}
		return "", NewError(KindNoResponse, "gemini", fmt.Errorf("API request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(KindNoResponse, "gemini", fmt.Errorf("failed to read response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return "", NewError(KindRateLimited, "gemini", fmt.Errorf("gemini rate limited"))
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", NewError(KindAuth, "gemini", fmt.Errorf("gemini rejected API key (status %d)", resp.StatusCode))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", NewError(KindNoResponse, "gemini", fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.Error != nil {
		return "", NewError(KindNoResponse, "gemini",
			fmt.Errorf("gemini API error: %s (code %d)", parsed.Error.Message, parsed.Error.Code))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", NewError(KindNoResponse, "gemini", fmt.Errorf("empty response from gemini"))
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

var (
	_ Client = (*chatClient)(nil)
	_ Client = (*GeminiClient)(nil)
)
