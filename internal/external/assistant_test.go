package external

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodaura/internal/types"
)

type fakeCompleter struct {
	gotReq openai.ChatCompletionRequest
	resp   openai.ChatCompletionResponse
	err    error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func TestAssistantAsk(t *testing.T) {
	fake := &fakeCompleter{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "Avoid the underpass."}},
			},
		},
	}
	a := &AssistantClient{client: fake, model: "test-model"}

	reply, err := a.Ask(context.Background(), "Is it safe to ride through Minto Bridge?")
	require.NoError(t, err)
	assert.Equal(t, "Avoid the underpass.", reply)

	require.Len(t, fake.gotReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, fake.gotReq.Messages[0].Role)
	assert.Equal(t, assistantSystemPrompt, fake.gotReq.Messages[0].Content)
	assert.Equal(t, "test-model", fake.gotReq.Model)
}

func TestAssistantAskUpstreamError(t *testing.T) {
	a := &AssistantClient{client: &fakeCompleter{err: errors.New("quota exceeded")}, model: "m"}

	_, err := a.Ask(context.Background(), "hello")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamAssistant, appErr.Code)
}

func TestAssistantAskNoChoices(t *testing.T) {
	a := &AssistantClient{client: &fakeCompleter{}, model: "m"}

	_, err := a.Ask(context.Background(), "hello")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamAssistant, appErr.Code)
}
