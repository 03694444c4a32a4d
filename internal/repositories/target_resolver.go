package repositories

import (
	"context"
	"fmt"

	"github.com/youtoob/backend/internal/db"
	"github.com/youtoob/backend/internal/relations"
)

// PostgresTargetResolver answers existence checks for toggle targets. It is
// the only coupling between the relation engine and the content tables.
type PostgresTargetResolver struct {
	pool db.Pool
}

// NewPostgresTargetResolver constructs a target resolver backed by PostgreSQL.
func NewPostgresTargetResolver(pool db.Pool) *PostgresTargetResolver {
	return &PostgresTargetResolver{pool: pool}
}

// Exists reports whether the entity a toggle points at is present.
func (r *PostgresTargetResolver) Exists(ctx context.Context, kind relations.Kind, targetID string) (bool, error) {
	var query string
	switch kind {
	case relations.KindVideoLike:
		query = `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`
	case relations.KindCommentLike:
		query = `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`
	case relations.KindTweetLike:
		query = `SELECT EXISTS (SELECT 1 FROM tweets WHERE id = $1)`
	case relations.KindSubscription:
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	default:
		return false, fmt.Errorf("%w: %q", relations.ErrUnknownKind, kind)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, query, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s target: %w", kind, err)
	}

	return exists, nil
}

var _ relations.TargetResolver = (*PostgresTargetResolver)(nil)
