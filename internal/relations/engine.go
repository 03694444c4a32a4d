package relations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the relation a toggle flips.
type Kind string

const (
	// KindVideoLike marks a like on a video.
	KindVideoLike Kind = "video-like"
	// KindCommentLike marks a like on a comment.
	KindCommentLike Kind = "comment-like"
	// KindTweetLike marks a like on a tweet.
	KindTweetLike Kind = "tweet-like"
	// KindSubscription marks a subscription to a channel.
	KindSubscription Kind = "channel-subscription"
)

// ParseKind resolves a route segment to a relation kind. Both the canonical
// names and the short forms used by clients are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "video", "v", string(KindVideoLike):
		return KindVideoLike, nil
	case "comment", "c", string(KindCommentLike):
		return KindCommentLike, nil
	case "tweet", "t", string(KindTweetLike):
		return KindTweetLike, nil
	case "channel", "s", string(KindSubscription):
		return KindSubscription, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Valid reports whether k is one of the defined relation kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVideoLike, KindCommentLike, KindTweetLike, KindSubscription:
		return true
	}
	return false
}

// State is the outcome of a toggle: the edge was created or removed.
type State string

const (
	StateCreated State = "created"
	StateRemoved State = "removed"
)

// Edge is a directed relation between an actor and a target entity. Its
// existence IS the liked/subscribed state; there is no separate flag.
type Edge struct {
	ID        string
	ActorID   string
	TargetID  string
	Kind      Kind
	CreatedAt time.Time
}

var (
	// ErrEdgeExists indicates an insert hit the (actor, target, kind)
	// uniqueness constraint.
	ErrEdgeExists = errors.New("relation edge already exists")
	// ErrEdgeNotFound indicates no edge matched a find or delete.
	ErrEdgeNotFound = errors.New("relation edge not found")
	// ErrTargetNotFound indicates the toggled entity does not exist.
	ErrTargetNotFound = errors.New("relation target not found")
	// ErrSelfSubscription rejects subscribing to one's own channel.
	ErrSelfSubscription = errors.New("cannot subscribe to your own channel")
	// ErrUnknownKind rejects relation kinds outside the defined set.
	ErrUnknownKind = errors.New("unknown relation kind")
)

// EdgeStore persists relation edges. At most one edge may exist per
// (actor, target, kind); Insert must enforce that as a storage constraint
// and report a violation as ErrEdgeExists. Delete must report zero affected
// rows as ErrEdgeNotFound.
type EdgeStore interface {
	Insert(ctx context.Context, edge Edge) error
	Find(ctx context.Context, actorID, targetID string, kind Kind) (Edge, error)
	Delete(ctx context.Context, edgeID string) error
}

// TargetResolver checks that the entity a toggle points at exists. It is the
// engine's only coupling to the content records.
type TargetResolver interface {
	Exists(ctx context.Context, kind Kind, targetID string) (bool, error)
}

// Engine flips relation edges with exactly-once semantics per logical
// toggle, even under concurrent callers.
type Engine struct {
	edges   EdgeStore
	targets TargetResolver
	now     func() time.Time
}

// NewEngine constructs an Engine over the provided store and resolver.
func NewEngine(edges EdgeStore, targets TargetResolver) *Engine {
	if edges == nil {
		panic("relations: edge store must not be nil")
	}
	if targets == nil {
		panic("relations: target resolver must not be nil")
	}
	return &Engine{
		edges:   edges,
		targets: targets,
		now:     time.Now,
	}
}

// Toggle creates the (actor, target, kind) edge if absent and removes it if
// present. Two racing toggles cannot create duplicate edges: the uniqueness
// constraint turns the losing insert into a no-op success, and a losing
// delete treats the already-gone edge the same way.
func (e *Engine) Toggle(ctx context.Context, actorID, targetID string, kind Kind) (State, error) {
	if !kind.Valid() {
		return "", ErrUnknownKind
	}
	if actorID == "" || targetID == "" {
		return "", errors.New("actor and target ids must be provided")
	}
	if kind == KindSubscription && actorID == targetID {
		return "", ErrSelfSubscription
	}

	ok, err := e.targets.Exists(ctx, kind, targetID)
	if err != nil {
		return "", fmt.Errorf("resolve toggle target: %w", err)
	}
	if !ok {
		return "", ErrTargetNotFound
	}

	existing, err := e.edges.Find(ctx, actorID, targetID, kind)
	switch {
	case errors.Is(err, ErrEdgeNotFound):
		return e.create(ctx, actorID, targetID, kind)
	case err != nil:
		return "", fmt.Errorf("find relation edge: %w", err)
	default:
		return e.remove(ctx, existing.ID)
	}
}

func (e *Engine) create(ctx context.Context, actorID, targetID string, kind Kind) (State, error) {
	edge := Edge{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		TargetID:  targetID,
		Kind:      kind,
		CreatedAt: e.now().UTC(),
	}

	if err := e.edges.Insert(ctx, edge); err != nil {
		// A concurrent toggle won the insert; the edge exists either way.
		if errors.Is(err, ErrEdgeExists) {
			return StateCreated, nil
		}
		return "", fmt.Errorf("insert relation edge: %w", err)
	}

	return StateCreated, nil
}

func (e *Engine) remove(ctx context.Context, edgeID string) (State, error) {
	if err := e.edges.Delete(ctx, edgeID); err != nil {
		// A concurrent toggle already deleted it; the edge is gone either way.
		if errors.Is(err, ErrEdgeNotFound) {
			return StateRemoved, nil
		}
		return "", fmt.Errorf("delete relation edge: %w", err)
	}

	return StateRemoved, nil
}
