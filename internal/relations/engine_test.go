package relations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// staticResolver answers existence checks from a fixed set of entities.
type staticResolver map[string]bool

func (r staticResolver) Exists(_ context.Context, _ Kind, targetID string) (bool, error) {
	return r[targetID], nil
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"video":                "video-like",
		"v":                    "video-like",
		"comment":              "comment-like",
		"tweet":                "tweet-like",
		"channel":              "channel-subscription",
		"channel-subscription": "channel-subscription",
	}
	for input, want := range cases {
		got, err := ParseKind(input)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", input, got, err, want)
		}
	}

	if _, err := ParseKind("playlist"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestToggleFlipsEdge(t *testing.T) {
	store := NewInMemoryEdgeStore()
	engine := NewEngine(store, staticResolver{"video-1": true})

	state, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if state != StateCreated {
		t.Fatalf("expected created, got %s", state)
	}
	if store.Count() != 1 {
		t.Fatalf("expected 1 edge, got %d", store.Count())
	}

	state, err = engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if state != StateRemoved {
		t.Fatalf("expected removed, got %s", state)
	}
	if store.Count() != 0 {
		t.Fatalf("expected no edges after an even number of toggles, got %d", store.Count())
	}
}

func TestToggleIsPerTriple(t *testing.T) {
	store := NewInMemoryEdgeStore()
	engine := NewEngine(store, staticResolver{"video-1": true, "user-2": true})

	if _, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike); err != nil {
		t.Fatalf("like video: %v", err)
	}
	if _, err := engine.Toggle(context.Background(), "user-1", "user-2", KindSubscription); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if store.Count() != 2 {
		t.Fatalf("edges of different kinds must not collide, got %d", store.Count())
	}
}

func TestToggleMissingTarget(t *testing.T) {
	engine := NewEngine(NewInMemoryEdgeStore(), staticResolver{})

	if _, err := engine.Toggle(context.Background(), "user-1", "ghost", KindVideoLike); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestToggleSelfSubscription(t *testing.T) {
	engine := NewEngine(NewInMemoryEdgeStore(), staticResolver{"user-1": true})

	if _, err := engine.Toggle(context.Background(), "user-1", "user-1", KindSubscription); !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}

	// Liking your own content is allowed; only self-subscription is not.
	engine = NewEngine(NewInMemoryEdgeStore(), staticResolver{"user-1": true})
	if _, err := engine.Toggle(context.Background(), "user-1", "user-1", KindVideoLike); err != nil {
		t.Fatalf("self-like: %v", err)
	}
}

func TestToggleUnknownKind(t *testing.T) {
	engine := NewEngine(NewInMemoryEdgeStore(), staticResolver{"video-1": true})

	if _, err := engine.Toggle(context.Background(), "user-1", "video-1", Kind("playlist-like")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

// racingStore simulates the interleavings the engine must absorb: a stale
// read that misses a concurrent insert, and a delete that loses to another
// deleter.
type racingStore struct {
	findErr   error
	findEdge  Edge
	insertErr error
	deleteErr error
}

func (s *racingStore) Insert(context.Context, Edge) error { return s.insertErr }

func (s *racingStore) Find(context.Context, string, string, Kind) (Edge, error) {
	return s.findEdge, s.findErr
}

func (s *racingStore) Delete(context.Context, string) error { return s.deleteErr }

func TestToggleAbsorbsDuplicateInsert(t *testing.T) {
	store := &racingStore{findErr: ErrEdgeNotFound, insertErr: ErrEdgeExists}
	engine := NewEngine(store, staticResolver{"video-1": true})

	state, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike)
	if err != nil {
		t.Fatalf("losing a create race must not surface an error: %v", err)
	}
	if state != StateCreated {
		t.Fatalf("expected created, got %s", state)
	}
}

func TestToggleAbsorbsDoubleDelete(t *testing.T) {
	store := &racingStore{
		findEdge:  Edge{ID: "edge-1", ActorID: "user-1", TargetID: "video-1", Kind: KindVideoLike, CreatedAt: time.Now()},
		deleteErr: ErrEdgeNotFound,
	}
	engine := NewEngine(store, staticResolver{"video-1": true})

	state, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike)
	if err != nil {
		t.Fatalf("losing a delete race must not surface an error: %v", err)
	}
	if state != StateRemoved {
		t.Fatalf("expected removed, got %s", state)
	}
}

func TestToggleSequentialParity(t *testing.T) {
	store := NewInMemoryEdgeStore()
	engine := NewEngine(store, staticResolver{"video-1": true})

	for _, n := range []int{3, 4} {
		for i := 0; i < n; i++ {
			if _, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike); err != nil {
				t.Fatalf("toggle %d/%d: %v", i+1, n, err)
			}
		}
		if store.Count() != n%2 {
			t.Fatalf("after %d toggles expected %d edges, got %d", n, n%2, store.Count())
		}
		// Reset to the no-edge state for the next round.
		if n%2 == 1 {
			if _, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike); err != nil {
				t.Fatalf("reset toggle: %v", err)
			}
		}
	}
}

func TestToggleNeverDuplicatesEdges(t *testing.T) {
	store := NewInMemoryEdgeStore()
	engine := NewEngine(store, staticResolver{"video-1": true})

	const workers = 16

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := engine.Toggle(context.Background(), "user-1", "video-1", KindVideoLike); err != nil {
				t.Errorf("concurrent toggle: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if count := store.Count(); count > 1 {
		t.Fatalf("uniqueness constraint violated: %d edges for one triple", count)
	}
}

func TestConcurrentEdgeInsertSingleWinner(t *testing.T) {
	store := NewInMemoryEdgeStore()

	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start

			edge := Edge{ID: "edge-" + string(rune('a'+n)), ActorID: "user-1", TargetID: "video-1", Kind: KindVideoLike}
			err := store.Insert(context.Background(), edge)
			switch {
			case err == nil:
				mu.Lock()
				successes++
				mu.Unlock()
			case errors.Is(err, ErrEdgeExists):
			default:
				t.Errorf("unexpected insert error: %v", err)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", successes)
	}
	if store.Count() != 1 {
		t.Fatalf("expected exactly one stored edge, got %d", store.Count())
	}
}
