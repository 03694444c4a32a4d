package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/youtoob/backend/internal/auth"
	"github.com/youtoob/backend/internal/logging"
	"github.com/youtoob/backend/internal/relations"
)

// Error kinds exposed in the response envelope. Clients key off these; the
// messages are for humans.
const (
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindRateLimited  = "rate_limited"
	kindInternal     = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, kind, message string) {
	respondJSON(ctx, w, status, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}

// respondDomainError translates component-level failures into the stable
// taxonomy. Storage errors never leak internal detail.
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrRefreshTokenReused):
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "refresh token is expired or used")
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired token")
	case errors.Is(err, auth.ErrDuplicateUser):
		respondError(ctx, w, http.StatusConflict, kindConflict, "username or email already exists")
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(ctx, w, http.StatusNotFound, kindNotFound, "user not found")
	case errors.Is(err, relations.ErrTargetNotFound):
		respondError(ctx, w, http.StatusNotFound, kindNotFound, "target not found")
	case errors.Is(err, relations.ErrSelfSubscription):
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "cannot subscribe to your own channel")
	case errors.Is(err, relations.ErrUnknownKind):
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "unknown relation kind")
	default:
		logging.FromContext(ctx).Error("unexpected failure", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, kindInternal, "something went wrong")
	}
}
