package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Notinamillion/hanzi-review/internal/api"
	apiMiddleware "github.com/Notinamillion/hanzi-review/internal/api/middleware"
	"github.com/Notinamillion/hanzi-review/internal/config"
	"github.com/Notinamillion/hanzi-review/internal/quiz"
	"github.com/Notinamillion/hanzi-review/internal/service"
	"github.com/Notinamillion/hanzi-review/internal/service/auth"
	"github.com/Notinamillion/hanzi-review/internal/store"
	"github.com/Notinamillion/hanzi-review/internal/syncqueue"
)

// routerDeps carries everything the router needs to build its handlers.
type routerDeps struct {
	cfg           *config.Config
	logger        *slog.Logger
	jwtService    auth.JWTService
	engine        *quiz.Engine
	queue         *syncqueue.Queue
	progressStore store.ProgressStore
	sentences     *service.SentenceService
}

// setupRouter configures the application router with all routes and
// middleware.
func setupRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		deps.jwtService,
		auth.NewBcryptVerifier(),
		deps.cfg.Auth.PasscodeHash,
		time.Duration(deps.cfg.Auth.TokenLifetimeMinutes)*time.Minute,
		deps.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.jwtService)

	sessionHandler := api.NewSessionHandler(deps.engine, deps.logger)
	syncHandler := api.NewSyncHandler(deps.queue, deps.logger)
	progressHandler := api.NewProgressHandler(deps.progressStore, deps.engine, deps.logger)
	sentenceHandler := api.NewSentenceHandler(deps.sentences, deps.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoint (public)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Session endpoints
			r.Post("/session/start", sessionHandler.Start)
			r.Get("/session", sessionHandler.Summary)
			r.Get("/session/current", sessionHandler.Current)
			r.Post("/session/reveal", sessionHandler.Reveal)
			r.Post("/session/grade", sessionHandler.Grade)
			r.Post("/session/advance", sessionHandler.Advance)
			r.Post("/session/skip", sessionHandler.Skip)
			r.Post("/session/quit", sessionHandler.Quit)

			// Sync endpoints
			r.Get("/sync/status", syncHandler.Status)
			r.Post("/sync/flush", syncHandler.Flush)

			// Progress endpoints
			r.Get("/progress", progressHandler.Get)
			r.Put("/progress/known", progressHandler.SetKnown)

			// Sentence lookup
			r.Get("/sentences/{word}", sentenceHandler.Get)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
