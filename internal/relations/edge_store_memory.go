package relations

import (
	"context"
	"fmt"
	"sync"
)

// NewInMemoryEdgeStore returns an EdgeStore backed by in-memory maps. Used by
// tests and local development.
func NewInMemoryEdgeStore() *InMemoryEdgeStore {
	return &InMemoryEdgeStore{
		byTriple: make(map[string]Edge),
		byID:     make(map[string]string),
	}
}

// InMemoryEdgeStore implements EdgeStore with the uniqueness constraint
// enforced under a single lock.
type InMemoryEdgeStore struct {
	mu       sync.Mutex
	byTriple map[string]Edge
	byID     map[string]string
}

func tripleKey(actorID, targetID string, kind Kind) string {
	return fmt.Sprintf("%s|%s|%s", actorID, targetID, kind)
}

// Insert stores an edge, rejecting duplicates of the (actor, target, kind)
// triple with ErrEdgeExists.
func (s *InMemoryEdgeStore) Insert(_ context.Context, edge Edge) error {
	key := tripleKey(edge.ActorID, edge.TargetID, edge.Kind)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTriple[key]; exists {
		return ErrEdgeExists
	}
	s.byTriple[key] = edge
	s.byID[edge.ID] = key
	return nil
}

// Find retrieves the edge for the triple if one exists.
func (s *InMemoryEdgeStore) Find(_ context.Context, actorID, targetID string, kind Kind) (Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, ok := s.byTriple[tripleKey(actorID, targetID, kind)]
	if !ok {
		return Edge{}, ErrEdgeNotFound
	}
	return edge, nil
}

// Delete removes an edge by identity, reporting ErrEdgeNotFound when it is
// already gone.
func (s *InMemoryEdgeStore) Delete(_ context.Context, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[edgeID]
	if !ok {
		return ErrEdgeNotFound
	}
	delete(s.byID, edgeID)
	delete(s.byTriple, key)
	return nil
}

// Count reports the number of stored edges. Useful for tests.
func (s *InMemoryEdgeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byTriple)
}

var _ EdgeStore = (*InMemoryEdgeStore)(nil)
