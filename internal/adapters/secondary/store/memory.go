package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// MemoryStore keeps the current deck in memory. Every Replace swaps it wholesale.
type MemoryStore struct {
	mu        sync.RWMutex
	current   *entities.Deck
	replaced  int
	updatedAt time.Time
}

// NewMemoryStore creates an empty deck store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Current returns the current deck or entities.ErrNoDeck
func (s *MemoryStore) Current(ctx context.Context) (*entities.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, entities.ErrNoDeck
	}
	return s.current, nil
}

// Replace swaps in deck as the current deck
func (s *MemoryStore) Replace(ctx context.Context, deck *entities.Deck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deck == nil {
		return errors.New("deck cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = deck
	s.replaced++
	s.updatedAt = time.Now()
	return nil
}

// Stats returns how many decks have been stored and when the last one arrived
func (s *MemoryStore) Stats() (replaced int, updatedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replaced, s.updatedAt
}

// Ensure MemoryStore implements ports.DeckStore
var _ ports.DeckStore = (*MemoryStore)(nil)
