package handlers

import (
	"net/http"

	"github.com/youtoob/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions  SessionManager
	Relations RelationToggler
	Profiles  ProfileStore
	Media     MediaStore
	Verifier  middleware.AccessTokenVerifier
	Limiter   RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Routes that
// mutate or read authenticated state sit behind the session authenticator;
// register, login, and refresh do not (refresh carries its own credential).
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Sessions: deps.Sessions, Limiter: deps.Limiter}
	rel := RelationHandler{Relations: deps.Relations}
	users := UserHandler{Sessions: deps.Sessions, Profiles: deps.Profiles, Media: deps.Media}

	protect := middleware.Auth(deps.Verifier)

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh-token", auth.Refresh)
	mux.Handle("/api/v1/auth/logout", protect(http.HandlerFunc(auth.Logout)))
	mux.Handle("/api/v1/auth/change-password", protect(http.HandlerFunc(auth.ChangePassword)))

	mux.Handle("POST /api/v1/relations/toggle/{kind}/{targetID}", protect(http.HandlerFunc(rel.Toggle)))

	mux.Handle("GET /api/v1/users/me", protect(http.HandlerFunc(users.Me)))
	mux.Handle("PATCH /api/v1/users/me", protect(http.HandlerFunc(users.UpdateMe)))
	mux.Handle("/api/v1/users/avatar", protect(http.HandlerFunc(users.UploadAvatar)))
	mux.Handle("/api/v1/users/cover", protect(http.HandlerFunc(users.UploadCover)))
}
