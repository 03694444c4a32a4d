package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/youtoob/backend/internal/auth"
	"github.com/youtoob/backend/internal/logging"
	"github.com/youtoob/backend/internal/middleware"
	"github.com/youtoob/backend/internal/models"
)

const refreshTokenCookie = "refreshToken"

// AuthHandler implements the account lifecycle endpoints.
type AuthHandler struct {
	Sessions SessionManager
	Limiter  RateLimiter
}

// Register handles POST /api/v1/auth/register requests.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, kindRateLimited, "too many requests")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Username == "" || req.Email == "" || req.FullName == "" || req.Password == "" {
		logger.Warn("register missing fields", "username", req.Username)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "all fields are required")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("register invalid email", "email", req.Email, "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "invalid email address")
		return
	}

	if len(req.Password) < 8 {
		logger.Warn("register password too short", "username", req.Username)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "password must be at least 8 characters")
		return
	}

	user, err := h.Sessions.Register(ctx, auth.Registration{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		logger.Warn("register failed", "username", req.Username, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, userResponse{User: user.Public()})
}

// Login handles POST /api/v1/auth/login requests. On success both session
// cookies are set and the token pair is echoed in the body.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, kindRateLimited, "too many requests")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	login := strings.TrimSpace(strings.ToLower(req.Login))
	if login == "" || req.Password == "" {
		logger.Warn("login missing credentials")
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "login and password are required")
		return
	}

	user, tokens, err := h.Sessions.Login(ctx, login, req.Password)
	if err != nil {
		logger.Warn("login rejected", "login", login, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, authResponse{User: user.Public(), Tokens: tokens})
}

// Logout handles POST /api/v1/auth/logout requests. The stored refresh token
// is cleared so no previously issued refresh token is honored afterwards.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := middleware.UserID(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "authentication required")
		return
	}

	if err := h.Sessions.Logout(ctx, userID); err != nil {
		logger.Error("logout failed", "userId", userID, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	clearSessionCookies(w)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Refresh handles POST /api/v1/auth/refresh-token requests. The presented
// token must be the single active one; rotation replaces it atomically, so a
// replayed or raced token is rejected.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "auth.refresh")
	defer span.End()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "refresh") {
		respondError(ctx, w, http.StatusTooManyRequests, kindRateLimited, "too many requests")
		return
	}

	presented := refreshTokenFromRequest(r)
	if presented == "" {
		logger.Warn("missing refresh token")
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		logger.Warn("refresh rejected", "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, tokensResponse{Tokens: tokens})
}

// ChangePassword handles POST /api/v1/auth/change-password requests.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := middleware.UserID(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change-password payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "old and new passwords are required")
		return
	}

	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "password must be at least 8 characters")
		return
	}

	if err := h.Sessions.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		logger.Warn("change password rejected", "userId", userID, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password changed"})
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, sessionCookie(middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func clearSessionCookies(w http.ResponseWriter) {
	expired := time.Unix(0, 0).UTC()
	access := sessionCookie(middleware.AccessTokenCookie, "", expired)
	access.MaxAge = -1
	refresh := sessionCookie(refreshTokenCookie, "", expired)
	refresh.MaxAge = -1
	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
}

func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	User models.PublicUser `json:"user"`
}

type tokensResponse struct {
	Tokens models.SessionTokens `json:"tokens"`
}

type authResponse struct {
	User   models.PublicUser    `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}
