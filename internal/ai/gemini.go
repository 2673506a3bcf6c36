package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini is the primary provider. It accepts the raw PDF inline when one is
// available, so layout information survives without a text round trip.
type Gemini struct {
	APIKey string
	Model  string
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{APIKey: apiKey, Model: model}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Extract(ctx context.Context, req Request) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}

	parts := []*genai.Part{{Text: buildPrompt(req.Account)}}
	if len(req.PDF) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: "application/pdf",
				Data:     req.PDF,
			},
		})
	} else {
		parts = append(parts, &genai.Part{Text: "Document:\n" + req.Text})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, nil)
	if err != nil {
		if isGeminiRateLimit(err) {
			return "", fmt.Errorf("gemini: %w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("gemini: empty response from model")
	}
	return rawText, nil
}

func isGeminiRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
