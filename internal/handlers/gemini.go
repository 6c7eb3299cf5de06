package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sanctuary/internal/ai"
)

// Generator is the part of the AI gateway the proxy needs.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiHandler proxies single prompts to the model.
type GeminiHandler struct {
	ai     Generator
	logger *zap.Logger
}

func NewGeminiHandler(gen Generator, logger *zap.Logger) *GeminiHandler {
	return &GeminiHandler{ai: gen, logger: logger}
}

func (h *GeminiHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, err := h.ai.GenerateText(r.Context(), req.Prompt)
	if err != nil {
		status, msg := gatewayStatus(err)
		h.logger.Warn("gemini proxy failed", zap.Int("status", status), zap.Error(err))
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Response: text})
}

// gatewayStatus maps a gateway error to an HTTP status and a user message.
func gatewayStatus(err error) (int, string) {
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) {
		if errors.Is(err, context.Canceled) {
			return 499, "request canceled"
		}
		return http.StatusInternalServerError, ai.ErrUnknown.Message
	}
	switch aiErr.Kind {
	case ai.KindConfiguration:
		return http.StatusServiceUnavailable, aiErr.Message
	case ai.KindNetwork:
		return http.StatusBadGateway, aiErr.Message
	case ai.KindInvalidAPIKey:
		return http.StatusBadGateway, aiErr.Message
	case ai.KindQuotaExceeded:
		return http.StatusTooManyRequests, aiErr.Message
	}
	return http.StatusInternalServerError, aiErr.Message
}
