package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/youtoob/backend/internal/models"
)

// NewInMemoryCredentialStore returns a CredentialStore backed by in-memory
// maps. Used by tests and local development.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{
		users:   make(map[string]models.User),
		byLogin: make(map[string]string),
	}
}

// InMemoryCredentialStore implements CredentialStore without persistence.
type InMemoryCredentialStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	byLogin map[string]string
}

// Create stores a new user, enforcing username and email uniqueness.
func (s *InMemoryCredentialStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byLogin[user.Username]; exists {
		return ErrDuplicateUser
	}
	if _, exists := s.byLogin[user.Email]; exists {
		return ErrDuplicateUser
	}

	s.users[user.ID] = user
	s.byLogin[user.Username] = user.ID
	s.byLogin[user.Email] = user.ID
	return nil
}

// FindByID retrieves a user by id.
func (s *InMemoryCredentialStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// FindByLogin retrieves a user by username or email.
func (s *InMemoryCredentialStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byLogin[login]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.users[id], nil
}

// UpdatePassword replaces the stored password hash.
func (s *InMemoryCredentialStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	return nil
}

// SetRefreshToken overwrites the stored refresh token unconditionally.
func (s *InMemoryCredentialStore) SetRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = token
	s.users[id] = user
	return nil
}

// RotateRefreshToken performs the compare-and-swap under the store lock.
func (s *InMemoryCredentialStore) RotateRefreshToken(_ context.Context, id, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if user.RefreshToken == "" || user.RefreshToken != current {
		return ErrRefreshTokenMismatch
	}
	user.RefreshToken = next
	s.users[id] = user
	return nil
}

// UpdateProfile modifies the mutable account fields, keeping the login
// index in step with email changes.
func (s *InMemoryCredentialStore) UpdateProfile(_ context.Context, id, fullName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if email != user.Email {
		if _, taken := s.byLogin[email]; taken {
			return ErrDuplicateUser
		}
		delete(s.byLogin, user.Email)
		s.byLogin[email] = id
	}
	user.FullName = fullName
	user.Email = email
	s.users[id] = user
	return nil
}

// UpdateImage stores an uploaded avatar or cover image location.
func (s *InMemoryCredentialStore) UpdateImage(_ context.Context, id, column, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	switch column {
	case "avatar":
		user.Avatar = location
	case "cover_image":
		user.CoverImage = location
	default:
		return fmt.Errorf("unknown image column %q", column)
	}
	s.users[id] = user
	return nil
}

var _ CredentialStore = (*InMemoryCredentialStore)(nil)
