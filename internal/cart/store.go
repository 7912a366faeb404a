package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// Store is the authoritative cart state container for one shopper. Every
// mutation runs under the store mutex, then notifies subscribers with a
// snapshot and saves through the persister. Callers observe fully-applied
// state only.
type Store struct {
	mu        sync.Mutex
	state     State
	persister StatePersister
	slot      string

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewStore builds a store over an initial state. The persister may be nil for
// purely in-memory use; slot names the persistence key.
func NewStore(initial State, persister StatePersister, slot string) *Store {
	return &Store{
		state:     initial.clone(),
		persister: persister,
		slot:      slot,
		subs:      map[int]func(State){},
	}
}

// Subscribe registers a callback invoked with a state snapshot after every
// transition. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// AddItem merges the product into the cart: an existing line's quantity grows
// by quantity, otherwise a new line is appended. Opens the cart panel. Stock
// is not checked here; checkout enforces it.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, func(state *State) {
		if i := state.indexOf(product.ID); i >= 0 {
			state.Items[i].Quantity += quantity
		} else {
			state.Items = append(state.Items, Line{Product: product, Quantity: quantity})
		}
		state.IsOpen = true
	})
}

// RemoveItem deletes the line for the product id. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	return s.mutate(ctx, func(state *State) {
		if i := state.indexOf(productID); i >= 0 {
			state.Items = append(state.Items[:i], state.Items[i+1:]...)
		}
	})
}

// UpdateQuantity sets the line's quantity exactly. A quantity at or below
// zero removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	return s.mutate(ctx, func(state *State) {
		if i := state.indexOf(productID); i >= 0 {
			state.Items[i].Quantity = quantity
		}
	})
}

// Clear empties all lines.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(state *State) {
		state.Items = nil
	})
}

func (s *Store) Open(ctx context.Context) error {
	return s.mutate(ctx, func(state *State) { state.IsOpen = true })
}

func (s *Store) Close(ctx context.Context) error {
	return s.mutate(ctx, func(state *State) { state.IsOpen = false })
}

func (s *Store) Toggle(ctx context.Context) error {
	return s.mutate(ctx, func(state *State) { state.IsOpen = !state.IsOpen })
}

// TotalItems sums all line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.state.Items {
		total += line.Quantity
	}
	return total
}

// Subtotal sums base price times quantity over all lines. The base price is
// authoritative here; discounted unit prices apply at checkout.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subtotal int64
	for _, line := range s.state.Items {
		subtotal += line.Product.Price * int64(line.Quantity)
	}
	return subtotal
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) mutate(ctx context.Context, apply func(*State)) error {
	s.mu.Lock()
	apply(&s.state)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)

	if s.persister != nil {
		return s.persister.Save(ctx, s.slot, snapshot)
	}
	return nil
}

func (s *Store) notify(snapshot State) {
	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
