package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/syncqueue"
)

// SyncHandler exposes the sync queue's status and a manual flush.
type SyncHandler struct {
	queue  *syncqueue.Queue
	logger *slog.Logger
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(queue *syncqueue.Queue, logger *slog.Logger) *SyncHandler {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncHandler{
		queue:  queue,
		logger: logger.With(slog.String("component", "sync_handler")),
	}
}

// Status handles GET /api/sync/status. The response never blocks on
// network activity; it reads the queue's cached view.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, SyncStatusResponse{
		Online:  h.queue.Online(),
		Pending: h.queue.Size(),
	})
}

// Flush handles POST /api/sync/flush: it kicks a drain pass in the
// background and returns the pre-drain status immediately.
func (h *SyncHandler) Flush(w http.ResponseWriter, r *http.Request) {
	go h.queue.Process(context.Background())

	shared.RespondWithJSON(w, r, http.StatusAccepted, SyncStatusResponse{
		Online:  h.queue.Online(),
		Pending: h.queue.Size(),
	})
}
