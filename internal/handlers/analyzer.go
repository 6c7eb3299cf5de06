package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sanctuary/internal/services"
)

type AnalyzerHandler struct {
	analyzer   *services.JournalAnalyzer
	journaling *services.Journaling
	logger     *zap.Logger
}

func NewAnalyzerHandler(analyzer *services.JournalAnalyzer, journaling *services.Journaling, logger *zap.Logger) *AnalyzerHandler {
	return &AnalyzerHandler{analyzer: analyzer, journaling: journaling, logger: logger}
}

// Analyze returns sentiment and tags for arbitrary text without storing it.
func (h *AnalyzerHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.Analyze(r.Context(), req.Content))
}

// AnalyzePending catches up on entries saved while the model was unreachable.
func (h *AnalyzerHandler) AnalyzePending(w http.ResponseWriter, r *http.Request) {
	n, err := h.journaling.AnalyzePending(r.Context())
	if err != nil {
		h.logger.Error("analyze pending entries", zap.Int("analyzed", n), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store analysis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"analyzed": n})
}
