package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sanctuary/internal/models"
)

type pinRequest struct {
	PIN     string `json:"pin"`
	Confirm string `json:"confirm"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type moodRequest struct {
	Mood    models.MoodOption `json:"mood"`
	Context string            `json:"context"`
}

type journalRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

type analyzeRequest struct {
	Content string `json:"content"`
}

type chatSessionRequest struct {
	Mood        string `json:"mood"`
	Therapy     string `json:"therapy"`
	Personality string `json:"personality"`
}

type chatSessionResponse struct {
	Session models.UserSession `json:"session"`
	Welcome string             `json:"welcome"`
}

type chatMessageRequest struct {
	Text        string `json:"text"`
	Mood        string `json:"mood"`
	Therapy     string `json:"therapy"`
	Personality string `json:"personality"`
}

// dashboardResponse pairs the mood stats with the insight derived from them.
type dashboardResponse struct {
	Stats   models.MoodStats   `json:"stats"`
	Insight models.MoodInsight `json:"insight"`
}

type overviewResponse struct {
	MoodEntries       int `json:"moodEntries"`
	JournalEntries    int `json:"journalEntries"`
	UnanalyzedEntries int `json:"unanalyzedEntries"`
	ChatMessages      int `json:"chatMessages"`
	ChatSessions      int `json:"chatSessions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseDate reads an optional YYYY-MM-DD query parameter in loc.
func parseDate(r *http.Request, name string, loc *time.Location) (time.Time, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
