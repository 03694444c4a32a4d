package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/youtoob/backend/internal/models"
)

// CredentialStore persists principals along with their password hash and the
// single currently honored refresh token.
type CredentialStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByLogin resolves a principal by username or email.
	FindByLogin(ctx context.Context, login string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// An empty token clears the session slot.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces the stored refresh token with next only if
	// the stored value still equals current, as a single atomic conditional
	// update. It returns ErrRefreshTokenMismatch when the values diverged.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
}

// Registration carries the fields required to create an account.
type Registration struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Manager drives the credential and session lifecycle: registration, login,
// refresh-token rotation, logout, and password changes.
type Manager struct {
	users  CredentialStore
	issuer *TokenIssuer
	hasher Hasher
	now    func() time.Time
}

// NewManager constructs a Manager over the provided collaborators.
func NewManager(users CredentialStore, issuer *TokenIssuer, hasher Hasher) *Manager {
	if users == nil {
		panic("auth: credential store must not be nil")
	}
	if issuer == nil {
		panic("auth: token issuer must not be nil")
	}
	return &Manager{
		users:  users,
		issuer: issuer,
		hasher: hasher,
		now:    time.Now,
	}
}

// Register creates a new principal with a hashed password. Duplicate
// usernames or emails surface as ErrDuplicateUser.
func (m *Manager) Register(ctx context.Context, reg Registration) (models.User, error) {
	reg.Username = strings.ToLower(strings.TrimSpace(reg.Username))
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.FullName = strings.TrimSpace(reg.FullName)
	if reg.Username == "" || reg.Email == "" || reg.FullName == "" || reg.Password == "" {
		return models.User{}, errors.New("all registration fields are required")
	}

	hashed, err := m.hasher.Hash(reg.Password)
	if err != nil {
		return models.User{}, err
	}

	now := m.now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  reg.Username,
		Email:     reg.Email,
		FullName:  reg.FullName,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies the password for the principal identified by username or
// email, then issues a fresh token pair and stores the refresh token as the
// single active one. Unknown logins and wrong passwords are both reported as
// ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, login, password string) (models.User, models.SessionTokens, error) {
	user, err := m.users.FindByLogin(ctx, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, models.SessionTokens{}, ErrInvalidCredentials
		}
		return models.User{}, models.SessionTokens{}, fmt.Errorf("lookup login: %w", err)
	}

	if err := m.hasher.Verify(user.Password, password); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	tokens, err := m.issuePair(user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}

	return user, tokens, nil
}

// Refresh exchanges a valid, still-active refresh token for a new pair. The
// stored token is replaced in the same conditional update that checks it, so
// two concurrent calls presenting the same token cannot both succeed: the
// loser observes a mismatch and is treated as a replay.
func (m *Manager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	userID, err := m.issuer.VerifyRefreshToken(presented)
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens, err := m.issuePair(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.RotateRefreshToken(ctx, userID, presented, tokens.RefreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) || errors.Is(err, ErrUserNotFound) {
			return models.SessionTokens{}, ErrRefreshTokenReused
		}
		return models.SessionTokens{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	return tokens, nil
}

// Logout clears the stored refresh token for the user. Any refresh attempt
// with a previously issued token fails afterwards.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if err := m.users.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// ChangePassword verifies the old password before storing a hash of the new
// one. The refresh token is cleared so sessions on other devices must log in
// again with the new password.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := m.hasher.Verify(user.Password, oldPassword); err != nil {
		return err
	}

	hashed, err := m.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := m.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := m.users.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	return nil
}

// User loads the principal for an authenticated request.
func (m *Manager) User(ctx context.Context, userID string) (models.User, error) {
	return m.users.FindByID(ctx, userID)
}

func (m *Manager) issuePair(userID string) (models.SessionTokens, error) {
	accessToken, accessExpiry, err := m.issuer.IssueAccessToken(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, refreshExpiry, err := m.issuer.IssueRefreshToken(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}
