package handlers

import (
	"net/http"

	"sanctuary/internal/repository"
)

type DashboardHandler struct {
	moods *repository.MoodRepository
}

func NewDashboardHandler(moods *repository.MoodRepository) *DashboardHandler {
	return &DashboardHandler{moods: moods}
}

// Get returns the mood stats (streak, most frequent mood, last 7 days) and
// the insight message built from them.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:   h.moods.GetStats(r.Context()),
		Insight: h.moods.GenerateInsight(r.Context()),
	})
}
