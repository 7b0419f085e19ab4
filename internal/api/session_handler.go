package api

import (
	"log/slog"
	"net/http"

	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/quiz"
)

// SessionHandler exposes the quiz session engine.
type SessionHandler struct {
	engine *quiz.Engine
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(engine *quiz.Engine, logger *slog.Logger) *SessionHandler {
	if engine == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		engine: engine,
		logger: logger.With(slog.String("component", "session_handler")),
	}
}

// Start handles POST /api/session/start.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	items := make([]domain.ReviewItem, 0, len(req.Items))
	for _, p := range req.Items {
		items = append(items, p.toDomainItem())
	}

	card, err := h.engine.StartSession(r.Context(), items, domain.ReviewMode(req.Mode), req.PracticeMode)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// Current handles GET /api/session/current.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	card, err := h.engine.Current()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Summary handles GET /api/session.
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Session()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Reveal handles POST /api/session/reveal.
func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	card, err := h.engine.Reveal(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Grade handles POST /api/session/grade.
func (h *SessionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Quality must be between 0 and 5")
		return
	}

	feedback, err := h.engine.Grade(r.Context(), *req.Quality)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, feedback)
}

// Advance handles POST /api/session/advance. A null body in the response
// means the session completed.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	card, err := h.engine.Advance(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondAfterAdvance(w, r, card)
}

// Skip handles POST /api/session/skip.
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	card, err := h.engine.Skip(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondAfterAdvance(w, r, card)
}

// Quit handles POST /api/session/quit.
func (h *SessionHandler) Quit(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.QuitSession(r.Context()); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

func (h *SessionHandler) respondAfterAdvance(w http.ResponseWriter, r *http.Request, card *quiz.CardView) {
	if card == nil {
		// Session finished; surface the summary instead of a card.
		session, err := h.engine.Session()
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, session)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}
