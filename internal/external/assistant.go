package external

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"floodaura/internal/config"
	"floodaura/internal/types"
)

// assistantSystemPrompt frames every conversation. The assistant answers
// flood-safety and travel questions; it is not a general-purpose chatbot.
const assistantSystemPrompt = `You are FloodAura's travel safety assistant. ` +
	`You help users understand flood risk, waterlogging, and safe travel during ` +
	`heavy rain. Keep answers short and practical. If a question is unrelated ` +
	`to weather, flooding, or travel safety, politely decline.`

// chatCompleter is the slice of the OpenAI client surface we use; the
// concrete client satisfies it, and tests substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AssistantClient is the go-openai backed implementation of types.Assistant.
type AssistantClient struct {
	client chatCompleter
	model  string
}

// NewAssistantClient builds an assistant from configuration. A custom
// BaseURL points the client at any OpenAI-compatible endpoint.
func NewAssistantClient(cfg config.AssistantConfig) *AssistantClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey.Unmask())
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &AssistantClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Ask sends one user message and returns the assistant's reply.
func (a *AssistantClient) Ask(ctx context.Context, message string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", types.NewAppError(types.ErrCodeUpstreamAssistant, "assistant request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewAppError(types.ErrCodeUpstreamAssistant, "assistant returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
