package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sanctuary/internal/ai"
	"sanctuary/internal/models"
	"sanctuary/internal/repository"
	"sanctuary/internal/services"
	"sanctuary/internal/storage"
)

type fakeBackend struct {
	reply string
	err   error
}

func (f *fakeBackend) Generate(context.Context, string) (string, error) { return f.reply, f.err }

func (f *fakeBackend) GenerateStream(_ context.Context, _ string, onChunk func(string) error) error {
	if f.err != nil {
		return f.err
	}
	return onChunk(f.reply)
}

func (f *fakeBackend) Chat(context.Context, []ai.ChatTurn, string) (string, error) {
	return f.reply, f.err
}

type testServer struct {
	handler http.Handler
	backend *fakeBackend
	store   *storage.MemoryStore
}

func newTestServer(t *testing.T, apiKey string, moodOpts ...repository.Option) *testServer {
	t.Helper()
	store := storage.NewMemoryStore(0)
	backend := &fakeBackend{reply: `{"sentiment":"positive","tags":["hope"]}`}
	gateway := ai.NewGateway(apiKey, backend, nil)
	moods := repository.NewMoodRepository(store, nil, append([]repository.Option{repository.WithLocation(time.UTC)}, moodOpts...)...)
	journals := repository.NewJournalRepository(store, nil)
	chat := repository.NewChatRepository(store, nil)
	analyzer := services.NewJournalAnalyzer(gateway, nil)

	h := NewRouter(Deps{
		Store:      store,
		Moods:      moods,
		Journals:   journals,
		Chat:       chat,
		Gateway:    gateway,
		Analyzer:   analyzer,
		Journaling: services.NewJournaling(journals, analyzer, nil),
		Companion:  services.NewCompanion(chat, gateway, nil),
		Lock:       services.NewAppLock(store, []byte("secret"), time.Hour, nil),
		Location:   time.UTC,
	})
	return &testServer{handler: h, backend: backend, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) unlock(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/pin", "", pinRequest{PIN: "1234", Confirm: "1234"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/unlock", "", pinRequest{PIN: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	var tok tokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))
	require.NotEmpty(t, tok.Token)
	return tok.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "key")
	rec := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend Server Running", rec.Body.String())
}

func TestPINFlow(t *testing.T) {
	s := newTestServer(t, "key")

	rec := s.do(t, http.MethodPost, "/api/pin", "", pinRequest{PIN: "12", Confirm: "12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := s.unlock(t)

	rec = s.do(t, http.MethodPost, "/api/pin", "", pinRequest{PIN: "9999", Confirm: "9999"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/unlock", "", pinRequest{PIN: "0000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/pin", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/pin", "", nil)
	assert.JSONEq(t, `{"hasPin":false}`, rec.Body.String())
}

func TestGeminiProxyRequiresToken(t *testing.T) {
	s := newTestServer(t, "key")
	s.backend.reply = "Hello from the model"

	rec := s.do(t, http.MethodPost, "/gemini", "", promptRequest{Prompt: "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.unlock(t)
	rec = s.do(t, http.MethodPost, "/gemini", token, promptRequest{Prompt: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"Hello from the model"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/gemini", token, promptRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeminiProxyMapsErrors(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		err    error
		want   int
	}{
		{"not configured", "", nil, http.StatusServiceUnavailable},
		{"network", "key", status.Error(codes.Unavailable, "down"), http.StatusBadGateway},
		{"quota", "key", status.Error(codes.ResourceExhausted, "slow"), http.StatusTooManyRequests},
		{"unknown", "key", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.apiKey)
			s.backend.err = tt.err
			token := s.unlock(t)

			rec := s.do(t, http.MethodPost, "/gemini", token, promptRequest{Prompt: "hi"})
			assert.Equal(t, tt.want, rec.Code)
			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestMoodAndDashboardRoutes(t *testing.T) {
	s := newTestServer(t, "key")
	token := s.unlock(t)

	calm := models.MoodOption{ID: "calm", Emoji: "😌", Label: "Calm"}
	rec := s.do(t, http.MethodPost, "/api/moods", token, moodRequest{Mood: calm, Context: "tea"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry models.MoodEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))

	rec = s.do(t, http.MethodGet, "/api/moods/today", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash dashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dash))
	assert.Equal(t, 1, dash.Stats.TotalEntries)
	assert.Equal(t, 1, dash.Stats.CurrentStreak)
	assert.Equal(t, "You've felt 'Calm' most often this week!", dash.Insight.Message)

	rec = s.do(t, http.MethodGet, "/api/moods?start_date=bad", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/moods/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/moods", token, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMoodListOpenRangeEndsAtRepositoryClock(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	s := newTestServer(t, "key", repository.WithClock(func() time.Time { return now }))
	token := s.unlock(t)

	moods := repository.NewMoodRepository(s.store, nil, repository.WithLocation(time.UTC))
	for _, ts := range []time.Time{now.Add(-48 * time.Hour), now.Add(-time.Hour), now.Add(time.Hour)} {
		_, err := moods.SaveEntry(context.Background(), models.MoodEntry{Mood: models.MoodOption{ID: "calm"}, Timestamp: ts})
		require.NoError(t, err)
	}

	rec := s.do(t, http.MethodGet, "/api/moods?start_date=2025-03-09", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.MoodEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Timestamp.Equal(now.Add(-time.Hour)))
}

func TestJournalRoutes(t *testing.T) {
	s := newTestServer(t, "key")
	token := s.unlock(t)

	rec := s.do(t, http.MethodPost, "/api/journal", token, journalRequest{Title: "Day", Content: "A hopeful day"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry models.JournalEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
	assert.True(t, entry.IsAnalyzed)
	assert.Equal(t, models.SentimentPositive, entry.Sentiment)
	assert.Equal(t, []string{"hope"}, entry.Tags)

	rec = s.do(t, http.MethodGet, "/api/journal/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/journal?limit=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/journal/analyze", token, nil)
	assert.JSONEq(t, `{"analyzed":0}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/journal/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/journal/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatRoutesApologiseWhenModelFails(t *testing.T) {
	s := newTestServer(t, "key")
	token := s.unlock(t)

	rec := s.do(t, http.MethodPost, "/api/chat/sessions", token, chatSessionRequest{Personality: "creative"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started chatSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&started))
	assert.Contains(t, started.Welcome, "creative bestie")

	s.backend.err = status.Error(codes.ResourceExhausted, "quota")
	rec = s.do(t, http.MethodPost, "/api/chat/sessions/"+started.Session.ID+"/messages", token, chatMessageRequest{Text: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reply))
	assert.Contains(t, reply.Text, "I'm sorry")

	rec = s.do(t, http.MethodPost, "/api/chat/sessions/"+started.Session.ID+"/end", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestChatSendToUnknownSessionIsNotFound(t *testing.T) {
	s := newTestServer(t, "key")
	token := s.unlock(t)

	rec := s.do(t, http.MethodPost, "/api/chat/sessions/nope/messages", token, chatMessageRequest{Text: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/chat/sessions/nope/messages", token, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAdminClearAll(t *testing.T) {
	s := newTestServer(t, "key")
	token := s.unlock(t)

	rec := s.do(t, http.MethodPost, "/api/journal", token, journalRequest{Content: "x"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/overview", token, nil)
	var overview overviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&overview))
	assert.Equal(t, 1, overview.JournalEntries)

	rec = s.do(t, http.MethodDelete, "/api/admin/data", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, found, err := s.store.Get(context.Background(), storage.KeyAppPIN)
	require.NoError(t, err)
	assert.False(t, found)
}
