package app

import (
	"context"
	"log/slog"

	"github.com/youtoob/backend/internal/auth"
	"github.com/youtoob/backend/internal/config"
	"github.com/youtoob/backend/internal/db"
	"github.com/youtoob/backend/internal/handlers"
	"github.com/youtoob/backend/internal/middleware"
	"github.com/youtoob/backend/internal/relations"
	"github.com/youtoob/backend/internal/repositories"
	"github.com/youtoob/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	edges := repositories.NewPostgresEdgeRepository(pool)
	targets := repositories.NewPostgresTargetResolver(pool)

	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewManager(users, issuer, auth.NewHasher(cfg.BcryptCost))
	engine := relations.NewEngine(edges, targets)

	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*cfg.AuthRateWindow)

	deps := handlers.Dependencies{
		Sessions:  sessions,
		Relations: engine,
		Profiles:  users,
		Verifier:  issuer,
		Limiter:   limiter,
	}

	// Profile media uploads stay disabled until a bucket is configured.
	if cfg.ObjectStore.Bucket != "" {
		media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		deps.Media = media
	} else {
		slog.Default().Warn("media bucket not configured, profile uploads disabled")
	}

	return deps, nil
}
