package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notinamillion/hanzi-review/internal/api/middleware"
	"github.com/Notinamillion/hanzi-review/internal/api/shared"
	"github.com/Notinamillion/hanzi-review/internal/service/auth"
)

const testSecret = "test-secret-that-is-at-least-32-chars!!"

func newProtected(t *testing.T, lifetime time.Duration) (http.Handler, auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService(testSecret, lifetime)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := r.Context().Value(shared.SubjectContextKey).(string)
		w.Header().Set("X-Subject", subject)
		w.WriteHeader(http.StatusOK)
	})
	return middleware.NewAuthMiddleware(jwtService).Authenticate(next), jwtService
}

func get(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthenticate_ValidToken(t *testing.T) {
	handler, jwtService := newProtected(t, time.Hour)

	token, err := jwtService.GenerateToken(context.Background())
	require.NoError(t, err)

	rr := get(handler, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "device", rr.Header().Get("X-Subject"))
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	handler, _ := newProtected(t, time.Hour)
	assert.Equal(t, http.StatusUnauthorized, get(handler, "").Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	handler, jwtService := newProtected(t, time.Hour)

	token, err := jwtService.GenerateToken(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", token},
		{"wrong scheme", "Basic " + token},
		{"extra parts", "Bearer " + token + " trailing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, get(handler, tc.header).Code)
		})
	}
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	handler, _ := newProtected(t, time.Hour)
	assert.Equal(t, http.StatusUnauthorized, get(handler, "Bearer not.a.jwt").Code)
}

func TestAuthenticate_ForeignKeyToken(t *testing.T) {
	handler, _ := newProtected(t, time.Hour)

	other, err := auth.NewJWTService("another-signing-key-of-32-characters!!", time.Hour)
	require.NoError(t, err)
	token, err := other.GenerateToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(handler, "Bearer "+token).Code)
}
