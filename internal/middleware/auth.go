package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/youtoob/backend/internal/logging"
)

// AccessTokenVerifier validates a bearer credential and resolves the user it
// was issued to. Verification is a pure claims check; no store access.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

type ctxKey string

const userIDKey ctxKey = "userID"

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// Auth gates protected routes. The access token is read from the accessToken
// cookie or an Authorization bearer header; a missing, malformed, or expired
// token short-circuits with 401 before the protected handler runs.
func Auth(verifier AccessTokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())

			token := bearerToken(r)
			if token == "" {
				logger.Warn("request missing access token", "path", r.URL.Path)
				unauthorized(w, "authentication required")
				return
			}

			userID, err := verifier.VerifyAccessToken(token)
			if err != nil {
				logger.Warn("access token rejected", "path", r.URL.Path, "error", err)
				unauthorized(w, "invalid or expired access token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID retrieves the authenticated principal id set by Auth.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID attaches a principal id to the context. Exposed for handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"kind": "unauthorized", "message": msg},
	})
}
