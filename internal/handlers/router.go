package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sanctuary/internal/ai"
	"sanctuary/internal/middleware"
	"sanctuary/internal/repository"
	"sanctuary/internal/services"
	"sanctuary/internal/storage"
)

// Deps are the already built components the routes serve.
type Deps struct {
	Store      storage.KeyValueStore
	Moods      *repository.MoodRepository
	Journals   *repository.JournalRepository
	Chat       *repository.ChatRepository
	Gateway    *ai.Gateway
	Analyzer   *services.JournalAnalyzer
	Journaling *services.Journaling
	Companion  *services.Companion
	Lock       *services.AppLock
	Location   *time.Location
	Logger     *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.ZapRecoverer(logger))
	r.Use(middleware.ZapRequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	lockHandler := NewLockHandler(d.Lock, logger)
	geminiHandler := NewGeminiHandler(d.Gateway, logger)
	moodHandler := NewMoodHandler(d.Moods, loc, logger)
	dashboardHandler := NewDashboardHandler(d.Moods)
	journalHandler := NewJournalHandler(d.Journaling, d.Journals, logger)
	analyzerHandler := NewAnalyzerHandler(d.Analyzer, d.Journaling, logger)
	chatHandler := NewChatHandler(d.Companion, d.Chat, logger)
	adminHandler := NewAdminHandler(d.Store, d.Moods, d.Journals, d.Chat, logger)
	unlockMW := middleware.NewUnlockMiddleware(d.Lock)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Backend Server Running"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(unlockMW.RequireUnlock)
		pr.Post("/gemini", geminiHandler.Generate)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/pin", lockHandler.Status)
		api.Post("/pin", lockHandler.SetPIN)
		api.Post("/unlock", lockHandler.Unlock)

		api.Group(func(pr chi.Router) {
			pr.Use(unlockMW.RequireUnlock)
			pr.Delete("/pin", lockHandler.Reset)

			pr.Post("/moods", moodHandler.Record)
			pr.Get("/moods", moodHandler.List)
			pr.Get("/moods/today", moodHandler.Today)
			pr.Delete("/moods/{id}", moodHandler.Delete)
			pr.Get("/dashboard", dashboardHandler.Get)

			pr.Post("/journal", journalHandler.Create)
			pr.Get("/journal", journalHandler.List)
			pr.Get("/journal/{id}", journalHandler.Get)
			pr.Delete("/journal/{id}", journalHandler.Delete)
			pr.Post("/journal/analyze", analyzerHandler.AnalyzePending)
			pr.Post("/analyze", analyzerHandler.Analyze)

			pr.Post("/chat/sessions", chatHandler.StartSession)
			pr.Post("/chat/sessions/{id}/messages", chatHandler.Send)
			pr.Get("/chat/sessions/{id}/messages", chatHandler.Messages)
			pr.Post("/chat/sessions/{id}/end", chatHandler.EndSession)

			pr.Get("/admin/overview", adminHandler.Overview)
			pr.Delete("/admin/data", adminHandler.ClearAll)
		})
	})
	return r
}
