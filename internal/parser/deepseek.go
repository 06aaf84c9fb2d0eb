package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default values for the DeepSeek provider.
const (
	// DefaultDeepSeekModel is the chat model used for parsing.
	DefaultDeepSeekModel = "deepseek-chat"

	// DefaultDeepSeekBaseURL is the API root for the chat-completions endpoint.
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"
)

// Low temperature keeps the structured output deterministic.
const completionTemperature = 0.1

// DeepSeekProvider calls the DeepSeek chat-completions API with a bearer
// credential and a JSON-only response contract.
type DeepSeekProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewDeepSeekProvider creates a DeepSeek provider. Empty model and baseURL
// fall back to the defaults.
func NewDeepSeekProvider(apiKey, model, baseURL string) *DeepSeekProvider {
	if model == "" {
		model = DefaultDeepSeekModel
	}
	if baseURL == "" {
		baseURL = DefaultDeepSeekBaseURL
	}
	return &DeepSeekProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Name implements Provider.
func (p *DeepSeekProvider) Name() string { return "deepseek" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Stream bool `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Provider with a single synchronous POST. No retries.
func (p *DeepSeekProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}

	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: completionTemperature,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("deepseek: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("deepseek: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("deepseek: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 200),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ContentError{Reason: "response envelope is not valid JSON: " + err.Error(), Raw: string(body)}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &ContentError{Reason: "response has no message content", Raw: string(body)}
	}

	return parsed.Choices[0].Message.Content, nil
}
