// Package api exposes the engine over HTTP for the on-device client.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/service/auth"
)

// AuthHandler handles passcode login.
type AuthHandler struct {
	jwtService    auth.JWTService
	verifier      auth.PasscodeVerifier
	passcodeHash  string
	tokenLifetime time.Duration
	logger        *slog.Logger
}

// NewAuthHandler creates an AuthHandler. An empty passcodeHash disables the
// login endpoint entirely.
func NewAuthHandler(
	jwtService auth.JWTService,
	verifier auth.PasscodeVerifier,
	passcodeHash string,
	tokenLifetime time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		jwtService:    jwtService,
		verifier:      verifier,
		passcodeHash:  passcodeHash,
		tokenLifetime: tokenLifetime,
		logger:        logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.passcodeHash == "" {
		HandleAPIError(w, r, auth.ErrLoginDisabled, "")
		return
	}

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Passcode is required")
		return
	}

	if err := h.verifier.Compare(h.passcodeHash, req.Passcode); err != nil {
		h.logger.Warn("failed login attempt", "remote_addr", r.RemoteAddr)
		HandleAPIError(w, r, auth.ErrInvalidPasscode, "")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context())
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	})
}
