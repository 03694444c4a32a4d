package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown-login and wrong-password so
	// responses cannot be used to probe for registered accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates the principal does not exist in the store.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser indicates the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrTokenExpired indicates a token whose expiry claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrRefreshTokenMismatch indicates the presented refresh token is not the
	// one currently stored for the principal.
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
	// ErrRefreshTokenReused is returned when a refresh token that was already
	// rotated away (or cleared by logout) is presented again. A replayed token
	// is indistinguishable from a stolen one.
	ErrRefreshTokenReused = errors.New("refresh token is expired or used")
)
