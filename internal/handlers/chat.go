package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sanctuary/internal/repository"
	"sanctuary/internal/services"
)

type ChatHandler struct {
	companion *services.Companion
	chat      *repository.ChatRepository
	logger    *zap.Logger
}

func NewChatHandler(companion *services.Companion, chat *repository.ChatRepository, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{companion: companion, chat: chat, logger: logger}
}

func (h *ChatHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req chatSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	session, welcome, err := h.companion.StartSession(r.Context(), services.ChatContext{
		Mood:         req.Mood,
		Therapy:      req.Therapy,
		Personality:  services.Personality(req.Personality),
		SessionStart: time.Now(),
	})
	if err != nil {
		h.logger.Error("start chat session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	writeJSON(w, http.StatusCreated, chatSessionResponse{Session: session, Welcome: welcome})
}

// Send posts a user message and returns the companion's reply. Model failures
// come back as an apology message with status 200.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	var req chatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	reply, err := h.companion.Reply(r.Context(), sessionID, req.Text, services.ChatContext{
		Mood:        req.Mood,
		Therapy:     req.Therapy,
		Personality: services.Personality(req.Personality),
	})
	if errors.Is(err, services.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if errors.Is(err, services.ErrUnknownSession) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("chat reply", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save message")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages := h.chat.GetSessionMessages(r.Context(), chi.URLParam(r, "id"))
	if messages == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("end chat session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
