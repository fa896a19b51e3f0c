package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/types"
)

type mockAssistant struct {
	reply       string
	err         error
	lastMessage string
}

func (m *mockAssistant) Ask(_ context.Context, message string) (string, error) {
	m.lastMessage = message
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func makeChatRouter(assistant types.Assistant, metrics AssistantMetrics) http.Handler {
	handler := NewChatHandler(assistant, metrics, slog.Default())
	r := chi.NewRouter()
	r.Route("/v1/chat", handler.RegisterRoutes)
	return r
}

func TestHandleChat_Success(t *testing.T) {
	assistant := &mockAssistant{reply: "Avoid underpasses during heavy rain."}
	metrics := &recordingMetrics{}
	router := makeChatRouter(assistant, metrics)

	rec := postJSON(t, router, "/v1/chat", map[string]string{
		"message": "Is it safe to drive through Minto Road right now?",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data chatResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Reply != assistant.reply {
		t.Errorf("unexpected reply %q", resp.Data.Reply)
	}
	if assistant.lastMessage != "Is it safe to drive through Minto Road right now?" {
		t.Errorf("assistant got message %q", assistant.lastMessage)
	}
	if len(metrics.assistant) != 1 || metrics.assistant[0] != "success" {
		t.Errorf("expected one success outcome, got %v", metrics.assistant)
	}
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	router := makeChatRouter(&mockAssistant{}, nil)

	for _, message := range []string{"", "   "} {
		rec := postJSON(t, router, "/v1/chat", map[string]string{"message": message})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("message %q: expected status 400, got %d", message, rec.Code)
			continue
		}
		if code := decodeErrorCode(t, rec); code != string(types.ErrCodeValidationEmptyMessage) {
			t.Errorf("expected error code %s, got %s", types.ErrCodeValidationEmptyMessage, code)
		}
	}
}

func TestHandleChat_UpstreamError(t *testing.T) {
	assistant := &mockAssistant{err: types.NewAppError(types.ErrCodeUpstreamAssistant, "assistant unavailable", nil)}
	metrics := &recordingMetrics{}
	router := makeChatRouter(assistant, metrics)

	rec := postJSON(t, router, "/v1/chat", map[string]string{"message": "hello"})

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if len(metrics.assistant) != 1 || metrics.assistant[0] != "error" {
		t.Errorf("expected one error outcome, got %v", metrics.assistant)
	}
}
