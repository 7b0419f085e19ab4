package api

import (
	"log/slog"
	"net/http"

	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/quiz"
	"github.com/Notinamillion/hanzi-review/internal/store"
)

// ProgressHandler serves the progress aggregate and known-status toggles.
type ProgressHandler struct {
	progressStore store.ProgressStore
	engine        *quiz.Engine
	logger        *slog.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(progressStore store.ProgressStore, engine *quiz.Engine, logger *slog.Logger) *ProgressHandler {
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		progressStore: progressStore,
		engine:        engine,
		logger:        logger.With(slog.String("component", "progress_handler")),
	}
}

// Get handles GET /api/progress.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progressStore.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load progress", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}

// SetKnown handles PUT /api/progress/known.
func (h *ProgressHandler) SetKnown(w http.ResponseWriter, r *http.Request) {
	var req SetKnownRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	item := req.Item.toDomainItem()
	if err := item.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item: "+err.Error())
		return
	}

	if err := h.engine.SetKnown(r.Context(), item, *req.Known); err != nil {
		h.logger.Error("failed to set known status", "word", item.Word, "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update known status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
