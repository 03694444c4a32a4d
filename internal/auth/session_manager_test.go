package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestManager() (*Manager, *InMemoryCredentialStore) {
	store := NewInMemoryCredentialStore()
	issuer := NewTokenIssuer("test-access-secret", "test-refresh-secret", time.Minute, time.Hour)
	return NewManager(store, issuer, NewHasher(bcrypt.MinCost)), store
}

func register(t *testing.T, m *Manager) string {
	t.Helper()
	user, err := m.Register(context.Background(), Registration{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Anders",
		Password: "Secr3t!pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user.ID
}

func TestManagerRegister(t *testing.T) {
	manager, store := newTestManager()
	userID := register(t, manager)

	stored, err := store.FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("find registered user: %v", err)
	}
	if stored.Password == "Secr3t!pass" {
		t.Fatal("password was stored raw")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Secr3t!pass")) != nil {
		t.Fatal("stored password hash does not verify")
	}

	// Same handle again must conflict.
	_, err = manager.Register(context.Background(), Registration{
		Username: "alice",
		Email:    "other@example.com",
		FullName: "Other Alice",
		Password: "another-pass",
	})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	if _, err := manager.Register(context.Background(), Registration{Username: "bob"}); err == nil {
		t.Fatal("expected validation error for missing fields")
	}
}

func TestManagerLogin(t *testing.T) {
	manager, store := newTestManager()
	userID := register(t, manager)

	if _, _, err := manager.Login(context.Background(), "alice", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown login, got %v", err)
	}

	user, tokens, err := manager.Login(context.Background(), "alice@example.com", "Secr3t!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != userID {
		t.Fatalf("expected user %s, got %s", userID, user.ID)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	stored, err := store.FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.RefreshToken != tokens.RefreshToken {
		t.Fatal("issued refresh token was not stored as the active one")
	}
}

func TestManagerRefreshRotation(t *testing.T) {
	manager, _ := newTestManager()
	register(t, manager)

	_, tokens, err := manager.Login(context.Background(), "alice", "Secr3t!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	// The rotated-away token is permanently dead, even though its own
	// signature and expiry would still pass.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused, got %v", err)
	}

	// The freshly issued one keeps working.
	if _, err := manager.Refresh(context.Background(), refreshed.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestManagerRefreshRejectsForgedToken(t *testing.T) {
	manager, _ := newTestManager()

	if _, err := manager.Refresh(context.Background(), "forged"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestManagerLogout(t *testing.T) {
	manager, store := newTestManager()
	userID := register(t, manager)

	_, tokens, err := manager.Login(context.Background(), "alice", "Secr3t!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.Logout(context.Background(), userID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	stored, err := store.FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.RefreshToken != "" {
		t.Fatal("logout did not clear the stored refresh token")
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused after logout, got %v", err)
	}
}

func TestManagerChangePassword(t *testing.T) {
	manager, _ := newTestManager()
	userID := register(t, manager)

	_, tokens, err := manager.Login(context.Background(), "alice", "Secr3t!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.ChangePassword(context.Background(), userID, "wrong-old", "new-pass-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong old password, got %v", err)
	}

	if err := manager.ChangePassword(context.Background(), userID, "Secr3t!pass", "new-pass-123"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, _, err := manager.Login(context.Background(), "alice", "Secr3t!pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer verify, got %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "alice", "new-pass-123"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Sessions issued before the change are forced to re-login.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused after password change, got %v", err)
	}
}

func TestManagerConcurrentRefreshSingleWinner(t *testing.T) {
	manager, _ := newTestManager()
	register(t, manager)

	_, tokens, err := manager.Login(context.Background(), "alice", "Secr3t!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := manager.Refresh(context.Background(), tokens.RefreshToken)
			switch {
			case err == nil:
				mu.Lock()
				successes++
				mu.Unlock()
			case errors.Is(err, ErrRefreshTokenReused):
			default:
				t.Errorf("unexpected refresh error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one concurrent refresh to win, got %d", successes)
	}
}
