package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/service"
)

// SentenceHandler serves example sentences for a word.
type SentenceHandler struct {
	sentences *service.SentenceService
	logger    *slog.Logger
}

// NewSentenceHandler creates a SentenceHandler.
func NewSentenceHandler(sentences *service.SentenceService, logger *slog.Logger) *SentenceHandler {
	if sentences == nil {
		panic("sentences cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SentenceHandler{
		sentences: sentences,
		logger:    logger.With(slog.String("component", "sentence_handler")),
	}
}

// Get handles GET /api/sentences/{word}.
func (h *SentenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	if word == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Word is required")
		return
	}

	sentences, err := h.sentences.GetSentences(r.Context(), word)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SentencesResponse{
		Word:      word,
		Sentences: sentences,
	})
}
