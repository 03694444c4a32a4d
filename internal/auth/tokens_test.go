package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, accessExpiry, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if access == "" || accessExpiry.IsZero() {
		t.Fatalf("expected access token and expiry, got %q %v", access, accessExpiry)
	}

	userID, err := issuer.VerifyAccessToken(access)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected subject user-1, got %q", userID)
	}

	refresh, _, err := issuer.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}
	if userID, err := issuer.VerifyRefreshToken(refresh); err != nil || userID != "user-1" {
		t.Fatalf("verify refresh token: %q %v", userID, err)
	}
}

func TestTokenIssuerRejectsCrossFamilyTokens(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, _, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	// An access token must not pass as a refresh token: different secret.
	if _, err := issuer.VerifyRefreshToken(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenIssuerExpiry(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	issued := time.Now().UTC()
	issuer.now = func() time.Time { return issued }

	access, _, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(30 * time.Second) }
	if _, err := issuer.VerifyAccessToken(access); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := issuer.VerifyAccessToken(access); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenIssuerRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "aaaa.bbbb.cccc"} {
		if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", token, err)
		}
	}
}

func TestTokenIssuerRequiresUserID(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	if _, _, err := issuer.IssueAccessToken(""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
