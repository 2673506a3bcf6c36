package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const deepSeekURL = "https://api.deepseek.com/chat/completions"

// DeepSeek is the first fallback provider. It is text-only, so the caller
// must supply extracted text even when the source was a PDF.
type DeepSeek struct {
	APIKey string
	Model  string
	client *http.Client
}

func NewDeepSeek(apiKey, model string) *DeepSeek {
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeek{
		APIKey: apiKey,
		Model:  model,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (d *DeepSeek) Name() string { return "deepseek" }

type deepSeekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepSeekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepSeekMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
	Stream      bool              `json:"stream"`
}

type deepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (d *DeepSeek) Extract(ctx context.Context, req Request) (string, error) {
	body := deepSeekRequest{
		Model: d.Model,
		Messages: []deepSeekMessage{
			{Role: "system", Content: buildPrompt(req.Account)},
			{Role: "user", Content: "Document:\n" + req.Text},
		},
		MaxTokens:   8192,
		Temperature: 0,
		Stream:      false,
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("deepseek: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, deepSeekURL, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("deepseek: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.APIKey)

	res, err := d.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("deepseek: call api: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("deepseek: read body: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("deepseek: %w (status %d)", ErrRateLimited, res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek: unexpected status %d: %s", res.StatusCode, string(raw))
	}

	var parsed deepSeekResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("deepseek: unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("deepseek: empty response from model")
	}
	return parsed.Choices[0].Message.Content, nil
}
