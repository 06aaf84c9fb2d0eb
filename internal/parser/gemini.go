package parser

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the default Gemini model used for parsing.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider parses text through the Google GenAI SDK.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini provider. An empty model falls back to
// the default.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete implements Provider. The system instruction and user text are sent
// as one prompt. The response MIME type is pinned to JSON so the model skips
// the markdown wrapping; callers still strip fences if any appear.
func (p *GeminiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: system + "\n\n" + user},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](completionTemperature),
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &TransportError{
				Provider:   p.Name(),
				StatusCode: apiErr.Code,
				Body:       truncate(apiErr.Message, 200),
			}
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return "", &ContentError{Reason: "empty response from model"}
	}

	return raw, nil
}
