package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/youtoob/backend/internal/db"
	"github.com/youtoob/backend/internal/relations"
)

// PostgresEdgeRepository provides PostgreSQL-backed persistence for relation
// edges. The (actor_id, target_id, kind) uniqueness constraint lives in the
// schema, so concurrent inserts of the same triple cannot both land.
type PostgresEdgeRepository struct {
	pool db.Pool
}

// NewPostgresEdgeRepository constructs an edge repository backed by PostgreSQL.
func NewPostgresEdgeRepository(pool db.Pool) *PostgresEdgeRepository {
	return &PostgresEdgeRepository{pool: pool}
}

// Insert persists a new edge, mapping a uniqueness violation to
// relations.ErrEdgeExists.
func (r *PostgresEdgeRepository) Insert(ctx context.Context, edge relations.Edge) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO relation_edges (id, actor_id, target_id, kind, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, edge.ID, edge.ActorID, edge.TargetID, string(edge.Kind), edge.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return relations.ErrEdgeExists
		}
		return fmt.Errorf("insert relation edge: %w", err)
	}

	return nil
}

// Find loads the edge for the (actor, target, kind) triple.
func (r *PostgresEdgeRepository) Find(ctx context.Context, actorID, targetID string, kind relations.Kind) (relations.Edge, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return relations.Edge{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, actor_id, target_id, kind, created_at
        FROM relation_edges
        WHERE actor_id = $1 AND target_id = $2 AND kind = $3
    `, actorID, targetID, string(kind))

	var edge relations.Edge
	var kindValue string
	if err := row.Scan(&edge.ID, &edge.ActorID, &edge.TargetID, &kindValue, &edge.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return relations.Edge{}, relations.ErrEdgeNotFound
		}
		return relations.Edge{}, fmt.Errorf("select relation edge: %w", err)
	}

	edge.Kind = relations.Kind(kindValue)
	return edge, nil
}

// Delete removes an edge by identity. Zero affected rows surface as
// relations.ErrEdgeNotFound so a double-delete race stays idempotent.
func (r *PostgresEdgeRepository) Delete(ctx context.Context, edgeID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM relation_edges
        WHERE id = $1
    `, edgeID)
	if err != nil {
		return fmt.Errorf("delete relation edge: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return relations.ErrEdgeNotFound
	}

	return nil
}

var _ relations.EdgeStore = (*PostgresEdgeRepository)(nil)
