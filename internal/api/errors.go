package api

import (
	"errors"
	"net/http"

	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/domain/srs"
	"github.com/Notinamillion/hanzi-review/internal/quiz"
	"github.com/Notinamillion/hanzi-review/internal/service"
	"github.com/Notinamillion/hanzi-review/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// internal error types never leak to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidPasscode):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrLoginDisabled):
		return http.StatusForbidden

	case errors.Is(err, service.ErrNoSentences):
		return http.StatusNotFound

	case errors.Is(err, srs.ErrInvalidQuality),
		errors.Is(err, srs.ErrInvalidMode),
		errors.Is(err, quiz.ErrInvalidTransition):
		return http.StatusBadRequest

	case errors.Is(err, quiz.ErrNoActiveSession):
		return http.StatusNotFound

	case errors.Is(err, quiz.ErrSessionInProgress):
		return http.StatusConflict

	case errors.Is(err, quiz.ErrAllCaughtUp):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for an error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidPasscode):
		return "Invalid passcode"

	case errors.Is(err, auth.ErrLoginDisabled):
		return "Login is not configured"

	case errors.Is(err, service.ErrNoSentences):
		return "No sentences available for this word"

	case errors.Is(err, srs.ErrInvalidQuality):
		return "Quality must be between 0 and 5"

	case errors.Is(err, srs.ErrInvalidMode):
		return "Unknown review mode"

	case errors.Is(err, quiz.ErrInvalidTransition):
		return "Operation not valid right now"

	case errors.Is(err, quiz.ErrNoActiveSession):
		return "No active session"

	case errors.Is(err, quiz.ErrSessionInProgress):
		return "A session is already in progress"

	case errors.Is(err, quiz.ErrAllCaughtUp):
		return "Nothing due for review"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the standard error response for an internal error.
// An empty overrideMessage uses the error's safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, overrideMessage string) {
	status := MapErrorToStatusCode(err)
	message := overrideMessage
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	if status == http.StatusNoContent {
		shared.RespondWithJSON(w, r, status, nil)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
