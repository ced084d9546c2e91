package generator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAIGenerator creates a generator backed by go-openai
func NewOpenAIGenerator(apiKey string, cfg entities.GeneratorConfig) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.GetTimeout()}
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   cfg.GetMaxTokens(),
		temperature: temperature,
	}
}

// Name returns the provider identifier
func (g *OpenAIGenerator) Name() string {
	return entities.ProviderOpenAI
}

// Generate sends the system instruction as the first message followed by the conversation
func (g *OpenAIGenerator) Generate(ctx context.Context, system string, messages []entities.Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleAssistant
		if entities.ParseRole(string(m.Role)) == entities.RoleUser {
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		MaxTokens:   g.maxTokens,
		Temperature: float32(g.temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &entities.GenerationError{Kind: entities.GenerationMalformed, Cause: errors.New("completion has no choices")}
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		genErr := entities.ClassifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
		genErr.Cause = err
		return genErr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		genErr := entities.ClassifyStatus(reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode))
		genErr.Cause = err
		return genErr
	}

	return &entities.GenerationError{Kind: entities.GenerationTransport, Message: "request failed", Cause: err}
}
