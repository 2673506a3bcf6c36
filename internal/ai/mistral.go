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

const mistralURL = "https://api.mistral.ai/v1/chat/completions"

// Mistral is the last provider in the chain.
type Mistral struct {
	APIKey string
	Model  string
	client *http.Client
}

func NewMistral(apiKey, model string) *Mistral {
	if model == "" {
		model = "mistral-small-latest"
	}
	return &Mistral{
		APIKey: apiKey,
		Model:  model,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (m *Mistral) Name() string { return "mistral" }

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
}

type mistralResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (m *Mistral) Extract(ctx context.Context, req Request) (string, error) {
	body := mistralRequest{
		Model: m.Model,
		Messages: []mistralMessage{
			{Role: "system", Content: buildPrompt(req.Account)},
			{Role: "user", Content: "Document:\n" + req.Text},
		},
		MaxTokens:   8192,
		Temperature: 0,
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("mistral: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, mistralURL, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("mistral: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.APIKey)

	res, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mistral: call api: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("mistral: read body: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("mistral: %w (status %d)", ErrRateLimited, res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mistral: unexpected status %d: %s", res.StatusCode, string(raw))
	}

	var parsed mistralResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("mistral: unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("mistral: api error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("mistral: empty response from model")
	}
	return parsed.Choices[0].Message.Content, nil
}
