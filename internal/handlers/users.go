package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"path"
	"strings"

	"github.com/youtoob/backend/internal/logging"
	"github.com/youtoob/backend/internal/middleware"
)

// maxMediaUploadBytes bounds avatar and cover image uploads.
const maxMediaUploadBytes = 4 << 20

// UserHandler exposes the authenticated account profile endpoints.
type UserHandler struct {
	Sessions SessionManager
	Profiles ProfileStore
	Media    MediaStore
}

// Me handles GET /api/v1/users/me requests.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "authentication required")
		return
	}

	user, err := h.Sessions.User(ctx, userID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponse{User: user.Public()})
}

// UpdateMe handles PATCH /api/v1/users/me requests, updating the mutable
// account details.
func (h UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	user, err := h.Sessions.User(ctx, userID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = user.FullName
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		email = user.Email
	} else if _, err := mail.ParseAddress(email); err != nil {
		logger.Warn("profile update invalid email", "email", email, "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "invalid email address")
		return
	}

	if err := h.Profiles.UpdateProfile(ctx, userID, fullName, email); err != nil {
		logger.Error("profile update failed", "userId", userID, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	user.FullName = fullName
	user.Email = email
	respondJSON(ctx, w, http.StatusOK, userResponse{User: user.Public()})
}

// UploadAvatar handles POST /api/v1/users/avatar requests.
func (h UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "avatar", "avatars")
}

// UploadCover handles POST /api/v1/users/cover requests.
func (h UserHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "cover_image", "covers")
}

func (h UserHandler) uploadImage(w http.ResponseWriter, r *http.Request, column, prefix string) {
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

	if h.Media == nil {
		logger.Error("media store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, kindInternal, "media uploads unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMediaUploadBytes)
	if err := r.ParseMultipartForm(maxMediaUploadBytes); err != nil {
		logger.Warn("invalid media upload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "image file is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		logger.Warn("media upload missing file", "error", err)
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "only image uploads are supported")
		return
	}

	name := fmt.Sprintf("%s/%s%s", prefix, userID, path.Ext(header.Filename))
	location, err := h.Media.Save(ctx, name, contentType, file)
	if err != nil {
		logger.Error("media upload failed", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, kindInternal, "failed to store image")
		return
	}

	if err := h.Profiles.UpdateImage(ctx, userID, column, location); err != nil {
		logger.Error("persist media location failed", "userId", userID, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": location})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
