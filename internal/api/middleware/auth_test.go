package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJWTService returns canned claims or a canned error.
type stubJWTService struct {
	claims *auth.Claims
	err    error
}

var _ auth.JWTService = (*stubJWTService)(nil)

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "token", nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func (s *stubJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "refresh", nil
}

func (s *stubJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func runAuthMiddleware(t *testing.T, jwtService auth.JWTService, authHeader string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()

	var gotUserID uuid.UUID
	var called bool

	handler := NewAuthMiddleware(jwtService).Authenticate(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID, called = GetUserID(r)
			w.WriteHeader(http.StatusOK)
		}))

	r := httptest.NewRequest(http.MethodGet, "/generations", nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	return w, gotUserID, called
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid token reaches handler with user ID", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		svc := &stubJWTService{claims: &auth.Claims{UserID: userID, TokenType: "access"}}

		w, gotUserID, called := runAuthMiddleware(t, svc, "Bearer some-token")
		require.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		w, _, called := runAuthMiddleware(t, &stubJWTService{}, "")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()

		w, _, called := runAuthMiddleware(t, &stubJWTService{}, "NotBearer token")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		w, _, called := runAuthMiddleware(t, &stubJWTService{err: auth.ErrExpiredToken}, "Bearer old-token")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token expired")
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()

		w, _, called := runAuthMiddleware(t, &stubJWTService{err: auth.ErrInvalidToken}, "Bearer bad-token")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token rejected on access routes", func(t *testing.T) {
		t.Parallel()

		w, _, called := runAuthMiddleware(t, &stubJWTService{err: auth.ErrWrongTokenType}, "Bearer refresh-token")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unexpected validation failure is a server error", func(t *testing.T) {
		t.Parallel()

		w, _, called := runAuthMiddleware(t, &stubJWTService{err: context.DeadlineExceeded}, "Bearer token")
		assert.False(t, called)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(r)
	assert.False(t, ok)
}
