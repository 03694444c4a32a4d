package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints and verifies the signed session credentials. Access
// tokens are short-lived and self-contained; refresh tokens are longer-lived
// and additionally validated against the credential store by the Manager.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer constructs an issuer signing with HS256 under separate
// secrets for the access and refresh families.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssueAccessToken mints a signed access token for the user and reports its
// expiry.
func (i *TokenIssuer) IssueAccessToken(userID string) (string, time.Time, error) {
	return i.issue(userID, i.accessSecret, i.accessTTL)
}

// IssueRefreshToken mints a signed refresh token for the user and reports its
// expiry.
func (i *TokenIssuer) IssueRefreshToken(userID string) (string, time.Time, error) {
	return i.issue(userID, i.refreshSecret, i.refreshTTL)
}

func (i *TokenIssuer) issue(userID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id must be provided")
	}

	now := i.now().UTC()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature and expiry of an access token and
// resolves the user id it was issued to.
func (i *TokenIssuer) VerifyAccessToken(token string) (string, error) {
	return i.verify(token, i.accessSecret)
}

// VerifyRefreshToken checks signature and expiry of a refresh token. It does
// NOT confirm the token is still the active one for the user; that requires
// the credential store comparison performed during rotation.
func (i *TokenIssuer) VerifyRefreshToken(token string) (string, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *TokenIssuer) verify(token string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
