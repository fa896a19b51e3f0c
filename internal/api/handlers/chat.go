// This file implements the assistant chat handler (POST /v1/chat).
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/core"
	"floodaura/internal/types"
)

// AssistantMetrics counts chat requests by outcome. Nil disables recording.
type AssistantMetrics interface {
	RecordAssistantRequest(outcome string)
}

// ChatHandler forwards user questions to the flood-safety assistant.
type ChatHandler struct {
	assistant types.Assistant
	metrics   AssistantMetrics
	logger    *slog.Logger
}

func NewChatHandler(assistant types.Assistant, metrics AssistantMetrics, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		assistant: assistant,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes mounts the chat endpoint onto the mux.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat handles POST /v1/chat.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationEmptyMessage,
			"message must not be empty",
			nil,
		))
		return
	}

	reply, err := h.assistant.Ask(r.Context(), message)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordAssistantRequest("error")
		}
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAssistantRequest("success")
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: chatResponse{Reply: reply}})
}
