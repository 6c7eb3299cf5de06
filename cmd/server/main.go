package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sanctuary/internal/ai"
	"sanctuary/internal/config"
	"sanctuary/internal/db"
	"sanctuary/internal/handlers"
	"sanctuary/internal/repository"
	"sanctuary/internal/services"
	"sanctuary/internal/storage"
)

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func openStore(ctx context.Context, cfg *config.Config) (storage.KeyValueStore, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		return storage.NewMemoryStore(cfg.StoreQuotaBytes), func() {}, nil
	}
	conn, err := db.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLStore(conn), func() { conn.Close() }, nil
}

func newGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ai.Gateway, func()) {
	var backend ai.Backend
	closeFn := func() {}
	if ai.KeyConfigured(cfg.GeminiAPIKey) {
		gemini, err := ai.NewGeminiBackend(ctx, cfg.GeminiAPIKey, ai.GenerationConfig{
			Model:           cfg.GeminiModel,
			Temperature:     cfg.GeminiTemperature,
			TopK:            cfg.GeminiTopK,
			TopP:            cfg.GeminiTopP,
			MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		})
		if err != nil {
			logger.Error("gemini client unavailable; AI features disabled", zap.Error(err))
		} else {
			backend = gemini
			closeFn = func() { gemini.Close() }
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set; AI features will report a configuration error")
	}

	gateway := ai.NewGateway(cfg.GeminiAPIKey, backend, logger,
		ai.WithConnectivity(ai.NewProbeChecker(cfg.ConnectivityProbeURL, logger)),
		ai.WithRetryPolicy(ai.RetryPolicy{MaxAttempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}),
	)
	return gateway, closeFn
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	gateway, closeGateway := newGateway(ctx, cfg, logger)
	defer closeGateway()

	repoOpts := []repository.Option{repository.WithLocation(cfg.Location)}
	moods := repository.NewMoodRepository(store, logger.Named("moods"), repoOpts...)
	journals := repository.NewJournalRepository(store, logger.Named("journal"), repoOpts...)
	chat := repository.NewChatRepository(store, logger.Named("chat"), repoOpts...)

	analyzer := services.NewJournalAnalyzer(gateway, logger.Named("analyzer"))
	router := handlers.NewRouter(handlers.Deps{
		Store:      store,
		Moods:      moods,
		Journals:   journals,
		Chat:       chat,
		Gateway:    gateway,
		Analyzer:   analyzer,
		Journaling: services.NewJournaling(journals, analyzer, logger.Named("journaling")),
		Companion:  services.NewCompanion(chat, gateway, logger.Named("companion")),
		Lock:       services.NewAppLock(store, []byte(cfg.LockSecret), cfg.UnlockTTL, logger.Named("lock")),
		Location:   cfg.Location,
		Logger:     logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
