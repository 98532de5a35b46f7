package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
)

// DefaultBaseURL points at OpenRouter, which speaks the OpenAI wire protocol.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultModel is a small free-tier instruct model.
const DefaultModel = "mistralai/mistral-7b-instruct:free"

// ErrMissingAPIKey is returned by New when no API key is configured.
// This is a startup-fatal configuration error, not a runtime fallback case.
var ErrMissingAPIKey = errors.New("api key not set")

// OpenRouterLLM implements llms.Model over an OpenAI-compatible endpoint.
type OpenRouterLLM struct {
	client *openai.Client
	model  string
}

var _ llms.Model = (*OpenRouterLLM)(nil)

type options struct {
	apiKey  string
	model   string
	baseURL string
}

// Option configures the OpenRouter client.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithModel sets the model identifier sent with each request.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithBaseURL overrides the endpoint, e.g. to talk to OpenAI proper or a
// local OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// New returns a new OpenRouter-backed model client.
func New(opts ...Option) (*OpenRouterLLM, error) {
	o := &options{
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(o)
	}

	if strings.TrimSpace(o.apiKey) == "" {
		return nil, fmt.Errorf("%w: pass llm.WithAPIKey or set OPENROUTER_API_KEY", ErrMissingAPIKey)
	}

	cfg := openai.DefaultConfig(strings.TrimSpace(o.apiKey))
	cfg.BaseURL = o.baseURL

	return &OpenRouterLLM{
		client: openai.NewClientWithConfig(cfg),
		model:  o.model,
	}, nil
}

// Call generates a response for a single text prompt.
func (o *OpenRouterLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the llms.Model interface.
func (o *OpenRouterLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case llms.ChatMessageTypeAI:
			role = openai.ChatMessageRoleAssistant
		case llms.ChatMessageTypeSystem:
			role = openai.ChatMessageRoleSystem
		case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
			role = openai.ChatMessageRoleUser
		}

		var content strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				content.WriteString(text.Text)
			}
		}

		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: content.String(),
		})
	}

	model := o.model
	if opts.Model != "" {
		model = opts.Model
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(resp.Choices))
	for i, c := range resp.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
		}
	}

	return &llms.ContentResponse{Choices: choices}, nil
}
