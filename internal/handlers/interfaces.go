package handlers

import (
	"context"
	"io"

	"github.com/youtoob/backend/internal/auth"
	"github.com/youtoob/backend/internal/models"
	"github.com/youtoob/backend/internal/relations"
)

// SessionManager drives the credential and session lifecycle for the auth
// handlers.
type SessionManager interface {
	Register(ctx context.Context, reg auth.Registration) (models.User, error)
	Login(ctx context.Context, login, password string) (models.User, models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	User(ctx context.Context, userID string) (models.User, error)
}

// RelationToggler flips like/subscribe edges for the relation handlers.
type RelationToggler interface {
	Toggle(ctx context.Context, actorID, targetID string, kind relations.Kind) (relations.State, error)
}

// ProfileStore captures the account-detail mutations used by the user handlers.
type ProfileStore interface {
	UpdateProfile(ctx context.Context, id, fullName, email string) error
	UpdateImage(ctx context.Context, id, column, location string) error
}

// MediaStore uploads profile media and returns a public location.
type MediaStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
