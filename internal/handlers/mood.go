package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sanctuary/internal/models"
	"sanctuary/internal/repository"
)

type MoodHandler struct {
	moods    *repository.MoodRepository
	location *time.Location
	logger   *zap.Logger
}

func NewMoodHandler(moods *repository.MoodRepository, location *time.Location, logger *zap.Logger) *MoodHandler {
	return &MoodHandler{moods: moods, location: location, logger: logger}
}

func (h *MoodHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := decodeJSON(r, &req); err != nil || req.Mood.ID == "" {
		writeError(w, http.StatusBadRequest, "mood is required")
		return
	}

	entry, err := h.moods.Record(r.Context(), req.Mood, req.Context)
	if err != nil {
		h.logger.Error("record mood", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns all entries, or those between the optional start_date and
// end_date query params (YYYY-MM-DD, both days inclusive).
func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	start, hasStart, err := parseDate(r, "start_date", h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date format; expected YYYY-MM-DD")
		return
	}
	end, hasEnd, err := parseDate(r, "end_date", h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date format; expected YYYY-MM-DD")
		return
	}

	if !hasStart && !hasEnd {
		writeJSON(w, http.StatusOK, h.moods.GetAllEntries(r.Context()))
		return
	}
	if !hasEnd {
		end = h.moods.Now()
	} else {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	entries := h.moods.GetEntriesInRange(r.Context(), start, end)
	if entries == nil {
		entries = []models.MoodEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *MoodHandler) Today(w http.ResponseWriter, r *http.Request) {
	entry, found := h.moods.GetTodaysEntry(r.Context())
	if !found {
		writeError(w, http.StatusNotFound, "no entry today")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *MoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.moods.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete mood entry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
