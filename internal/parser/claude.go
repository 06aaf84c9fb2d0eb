package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is the default Anthropic model used for parsing.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeProvider parses text through the Anthropic Messages API.
type ClaudeProvider struct {
	apiKey string
	model  string
}

// NewClaudeProvider creates a Claude provider. An empty model falls back to
// the default.
func NewClaudeProvider(apiKey, model string) *ClaudeProvider {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeProvider{apiKey: apiKey, model: model}
}

// Name implements Provider.
func (p *ClaudeProvider) Name() string { return "claude" }

// Complete implements Provider.
func (p *ClaudeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}

	client := anthropic.NewClient(option.WithAPIKey(p.apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &TransportError{
				Provider:   p.Name(),
				StatusCode: apiErr.StatusCode,
				Body:       truncate(apiErr.Error(), 200),
			}
		}
		return "", fmt.Errorf("claude: messages call failed: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &ContentError{Reason: "empty response from model"}
	}

	return b.String(), nil
}
