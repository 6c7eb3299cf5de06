package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"sanctuary/internal/repository"
	"sanctuary/internal/storage"
)

// AdminHandler covers whole-store maintenance: counts and a full wipe.
type AdminHandler struct {
	store    storage.KeyValueStore
	moods    *repository.MoodRepository
	journals *repository.JournalRepository
	chat     *repository.ChatRepository
	logger   *zap.Logger
}

func NewAdminHandler(store storage.KeyValueStore, moods *repository.MoodRepository, journals *repository.JournalRepository, chat *repository.ChatRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, moods: moods, journals: journals, chat: chat, logger: logger}
}

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, overviewResponse{
		MoodEntries:       len(h.moods.GetAllEntries(ctx)),
		JournalEntries:    len(h.journals.GetEntries(ctx, 0)),
		UnanalyzedEntries: len(h.journals.GetUnanalyzed(ctx)),
		ChatMessages:      len(h.chat.GetMessages(ctx)),
		ChatSessions:      len(h.chat.GetSessions(ctx)),
	})
}

// ClearAll deletes every collection and the PIN.
func (h *AdminHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := repository.ClearAll(r.Context(), h.store); err != nil {
		h.logger.Error("clear all data", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not clear data")
		return
	}
	h.logger.Info("all data cleared")
	w.WriteHeader(http.StatusNoContent)
}
