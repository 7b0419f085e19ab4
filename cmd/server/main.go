// Package main implements the entry point for the hanzi-review server: the
// review scheduler, quiz session engine, and offline-first sync queue
// behind a local HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Notinamillion/hanzi-review/internal/audio"
	"github.com/Notinamillion/hanzi-review/internal/config"
	"github.com/Notinamillion/hanzi-review/internal/domain/priority"
	"github.com/Notinamillion/hanzi-review/internal/domain/srs"
	"github.com/Notinamillion/hanzi-review/internal/generation"
	"github.com/Notinamillion/hanzi-review/internal/platform/gemini"
	"github.com/Notinamillion/hanzi-review/internal/platform/logger"
	"github.com/Notinamillion/hanzi-review/internal/platform/migrations"
	"github.com/Notinamillion/hanzi-review/internal/platform/postgres"
	"github.com/Notinamillion/hanzi-review/internal/platform/sqlite"
	"github.com/Notinamillion/hanzi-review/internal/quiz"
	"github.com/Notinamillion/hanzi-review/internal/remote"
	"github.com/Notinamillion/hanzi-review/internal/service"
	"github.com/Notinamillion/hanzi-review/internal/service/auth"
	"github.com/Notinamillion/hanzi-review/internal/store"
	"github.com/Notinamillion/hanzi-review/internal/syncqueue"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	// A missing .env is fine; environment variables may come from anywhere.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("starting hanzi-review server",
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"remote_configured", cfg.Remote.BaseURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openKV(ctx, cfg.Store, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := kv.Close(); cerr != nil {
			appLogger.Error("failed to close store", "error", cerr)
		}
	}()

	progressStore := store.NewProgressStore(kv, appLogger)
	queueStore := store.NewQueueStore(kv)

	client := remote.NewHTTPClient(
		cfg.Remote.BaseURL,
		cfg.Remote.Token,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		appLogger,
	)

	queue, err := syncqueue.NewQueue(ctx, queueStore, client, syncqueue.Config{
		MaxAttempts:   cfg.Sync.MaxAttempts,
		RetryInterval: time.Duration(cfg.Sync.RetryIntervalSeconds) * time.Second,
	}, appLogger)
	if err != nil {
		return err
	}

	// Connectivity transitions feed the queue; the transition drain runs
	// off the monitor's goroutine so probing is never blocked by delivery.
	monitor := remote.NewMonitor(
		client.Probe,
		time.Duration(cfg.Remote.ProbeIntervalSeconds)*time.Second,
		appLogger,
	)
	monitor.Subscribe(func(online bool) {
		go queue.SetOnline(online)
	})
	if cfg.Remote.BaseURL != "" {
		monitor.Start(ctx)
		defer monitor.Stop()
		queue.StartRetryLoop()
		defer queue.StopRetryLoop()
	}

	engine := quiz.NewEngine(
		progressStore,
		srs.NewDefaultService(),
		priority.NewDefaultClassifier(),
		queue,
		audio.NewTTSSpeaker("data/audio", "zh-CN", appLogger),
		quiz.Config{
			BatchSize:   cfg.Quiz.BatchSize,
			AutoAdvance: time.Duration(cfg.Quiz.AutoAdvanceSeconds) * time.Second,
		},
		appLogger,
	)

	jwtService, err := auth.NewJWTService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute,
	)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}

	var generator generation.Generator
	if cfg.Generation.GeminiAPIKey != "" {
		g, gerr := gemini.NewSentenceGenerator(ctx, cfg.Generation.GeminiAPIKey, cfg.Generation.ModelName, appLogger)
		if gerr != nil {
			return fmt.Errorf("failed to create sentence generator: %w", gerr)
		}
		generator = g
	} else {
		appLogger.Info("sentence generation disabled, no API key configured")
	}
	sentences := service.NewSentenceService(client, generator, appLogger)

	router := setupRouter(routerDeps{
		cfg:           cfg,
		logger:        appLogger,
		jwtService:    jwtService,
		engine:        engine,
		queue:         queue,
		progressStore: progressStore,
		sentences:     sentences,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("listening", "addr", server.Addr)
		if serr := server.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openKV opens the configured local store backend and applies migrations.
func openKV(ctx context.Context, cfg config.StoreConfig, appLogger *slog.Logger) (store.KV, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(db.DB, "sqlite"); err != nil {
			return nil, err
		}
		return sqlite.NewKVStore(db, appLogger), nil
	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(db, "postgres"); err != nil {
			return nil, err
		}
		return postgres.NewKVStore(db, appLogger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
