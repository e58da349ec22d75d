// Package cart collects finalized configured items and keeps them persisted
// across sessions. Totals are always derived from the items, never stored.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// ErrInvalidItem rejects items with a non-positive quantity or negative price.
var ErrInvalidItem = errors.New("cart: item must have a positive quantity and non-negative price")

// Service owns the in-memory cart and mirrors every mutation to the store in
// the same tick. Safe for concurrent use: handlers run on separate goroutines,
// and the store write happens under the same lock as the in-memory change.
type Service struct {
	store Store

	mu    sync.Mutex
	items []Item
}

// NewService seeds the cart from the store once at startup. Malformed or
// missing stored data falls back to an empty cart, never an error.
func NewService(ctx context.Context, store Store) *Service {
	s := &Service{store: store}

	items, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cart: failed to restore stored cart, starting empty")
		return s
	}
	s.items = items

	return s
}

// Add assigns the item a unique id and insertion-order position, then persists.
// The item's price is a snapshot and is never touched again.
func (s *Service) Add(ctx context.Context, item Item) (Item, error) {
	if item.Quantity < 1 || item.Price.Total < 0 {
		return Item{}, ErrInvalidItem
	}

	id, err := uuid.NewV4()
	if err != nil {
		return Item{}, fmt.Errorf("cart: failed to generate item id: %w", err)
	}
	item.ID = id.String()
	item.AddedAt = time.Now().UTC()

	s.mu.Lock()
	s.items = append(s.items, item)
	s.persist(ctx)
	s.mu.Unlock()

	log.Info().Str("item_id", item.ID).Int("quantity", item.Quantity).Msg("cart: item added")

	return item, nil
}

// Remove deletes the item with the given id. Unknown ids are a no-op: a
// double-clicked remove button must not become an error.
func (s *Service) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.persist(ctx)
}

// Items returns the cart contents in insertion order.
func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subtotal sums the frozen item totals at full precision.
func (s *Service) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for i := range s.items {
		total += s.items[i].Price.Total
	}
	return total
}

// persist is called with the lock held.
func (s *Service) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.items); err != nil {
		// In-memory state stays authoritative; the write is retried on the
		// next mutation.
		log.Error().Err(err).Msg("cart: failed to persist cart")
	}
}
