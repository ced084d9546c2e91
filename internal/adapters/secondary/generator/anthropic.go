package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultTemperature    = 0.7
)

// AnthropicGenerator calls the Anthropic Messages API
type AnthropicGenerator struct {
	apiKey      string
	model       string
	url         string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewAnthropicGenerator creates a generator for the Anthropic Messages API
func NewAnthropicGenerator(apiKey string, cfg entities.GeneratorConfig) *AnthropicGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	url := anthropicAPIURL
	if cfg.BaseURL != "" {
		url = strings.TrimSuffix(cfg.BaseURL, "/") + "/v1/messages"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	return &AnthropicGenerator{
		apiKey:      apiKey,
		model:       model,
		url:         url,
		maxTokens:   cfg.GetMaxTokens(),
		temperature: temperature,
		client:      &http.Client{Timeout: cfg.GetTimeout()},
	}
}

// Name returns the provider identifier
func (g *AnthropicGenerator) Name() string {
	return entities.ProviderAnthropic
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Error *anthropicError `json:"error"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Generate sends one Messages API request and returns the first text block
func (g *AnthropicGenerator) Generate(ctx context.Context, system string, messages []entities.Message) (string, error) {
	msgs := make([]anthropicMessage, len(messages))
	for i, m := range messages {
		msgs[i] = anthropicMessage{Role: string(entities.ParseRole(string(m.Role))), Content: m.Content}
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		System:      system,
		Messages:    msgs,
	})
	if err != nil {
		return "", &entities.GenerationError{Kind: entities.GenerationInvalidRequest, Message: "could not marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", &entities.GenerationError{Kind: entities.GenerationInvalidRequest, Message: "could not create request", Cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &entities.GenerationError{Kind: entities.GenerationTransport, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &entities.GenerationError{Kind: entities.GenerationTransport, Message: "could not read response", Cause: err}
	}

	var apiResp anthropicResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API error: %s", http.StatusText(resp.StatusCode))
		if decodeErr == nil && apiResp.Error != nil && apiResp.Error.Message != "" {
			msg = apiResp.Error.Message
		}
		return "", entities.ClassifyStatus(resp.StatusCode, msg)
	}

	if decodeErr != nil {
		return "", &entities.GenerationError{Kind: entities.GenerationMalformed, Message: "could not parse API response", Cause: decodeErr}
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Text == "" {
		return "", &entities.GenerationError{Kind: entities.GenerationMalformed, Cause: errors.New("response has no text content")}
	}

	return apiResp.Content[0].Text, nil
}
