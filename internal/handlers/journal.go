package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sanctuary/internal/repository"
	"sanctuary/internal/services"
)

type JournalHandler struct {
	journaling *services.Journaling
	entries    *repository.JournalRepository
	logger     *zap.Logger
}

func NewJournalHandler(journaling *services.Journaling, entries *repository.JournalRepository, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{journaling: journaling, entries: entries, logger: logger}
}

// Create saves an entry and analyzes it before responding. A failed analysis
// write still returns the saved entry, flagged as not analyzed.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	entry, err := h.journaling.Write(r.Context(), req.Title, req.Content, req.Mood)
	if err != nil {
		if entry.ID == "" {
			h.logger.Error("save journal entry", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not save")
			return
		}
		h.logger.Warn("store journal analysis", zap.String("id", entry.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns entries newest first. Optional query param: limit.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	writeJSON(w, http.StatusOK, h.entries.GetEntries(r.Context(), limit))
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, found := h.entries.GetEntryByID(r.Context(), chi.URLParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, found := h.entries.GetEntryByID(r.Context(), id); !found {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err := h.entries.DeleteEntry(r.Context(), id); err != nil {
		h.logger.Error("delete journal entry", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
