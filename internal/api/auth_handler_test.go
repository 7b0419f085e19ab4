package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Notinamillion/hanzi-review/internal/api"
	"github.com/Notinamillion/hanzi-review/internal/service/auth"
)

const testSecret = "test-secret-that-is-at-least-32-chars!!"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(t *testing.T, passcode string) (*api.AuthHandler, auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	hash := ""
	if passcode != "" {
		h, herr := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.MinCost)
		require.NoError(t, herr)
		hash = string(h)
	}

	handler := api.NewAuthHandler(jwtService, auth.NewBcryptVerifier(), hash, time.Hour, discardLogger())
	return handler, jwtService
}

func postLogin(t *testing.T, handler *api.AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)
	return rr
}

func TestAuthHandler_Login(t *testing.T) {
	handler, jwtService := newAuthHandler(t, "1234")

	rr := postLogin(t, handler, `{"passcode":"1234"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// The issued token passes validation.
	_, err := jwtService.ValidateToken(context.Background(), resp.Token)
	assert.NoError(t, err)
}

func TestAuthHandler_WrongPasscode(t *testing.T) {
	handler, _ := newAuthHandler(t, "1234")

	rr := postLogin(t, handler, `{"passcode":"4321"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler_LoginDisabled(t *testing.T) {
	handler, _ := newAuthHandler(t, "")

	rr := postLogin(t, handler, `{"passcode":"1234"}`)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuthHandler_MalformedRequests(t *testing.T) {
	handler, _ := newAuthHandler(t, "1234")

	assert.Equal(t, http.StatusBadRequest, postLogin(t, handler, `not-json`).Code)
	assert.Equal(t, http.StatusBadRequest, postLogin(t, handler, `{}`).Code)
}
