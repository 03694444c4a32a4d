package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticVerifier accepts a single token and maps it to a fixed user.
type staticVerifier struct {
	token  string
	userID string
}

func (v staticVerifier) VerifyAccessToken(token string) (string, error) {
	if token != v.token {
		return "", errors.New("token rejected")
	}
	return v.userID, nil
}

func protectedProbe(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		if !ok {
			t.Error("handler ran without a user id in context")
		}
		seen = userID
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(staticVerifier{token: "good-token", userID: "user-1"})(handler), &seen
}

func TestAuthAcceptsCookie(t *testing.T) {
	handler, seen := protectedProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good-token"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if *seen != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", *seen)
	}
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	handler, seen := protectedProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if *seen != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", *seen)
	}
}

func TestAuthCookieWinsOverHeader(t *testing.T) {
	handler, _ := protectedProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "stale-token"})
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The cookie is consulted first; a bad cookie is not rescued by the header.
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler, _ := protectedProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Kind != "unauthorized" {
		t.Fatalf("expected unauthorized kind, got %q", envelope.Error.Kind)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	handler, _ := protectedProbe(t)

	for _, header := range []string{"Bearer bad-token", "Basic good-token", "good-token"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, rec.Code)
		}
	}
}
