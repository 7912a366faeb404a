package comparison

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// MaxProducts caps how many products can be compared side by side.
const MaxProducts = 4

// State is the ordered comparison set plus panel visibility.
type State struct {
	Products []models.Product `json:"products"`
	IsOpen   bool             `json:"isOpen"`
}

func (s State) clone() State {
	out := State{IsOpen: s.IsOpen}
	if s.Products != nil {
		out.Products = make([]models.Product, len(s.Products))
		copy(out.Products, s.Products)
	}
	return out
}

func (s State) indexOf(productID uuid.UUID) int {
	for i, p := range s.Products {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

// Store is the bounded comparison set for one shopper. Capacity and dedup
// violations are rejected silently; CanAdd exposes the guard for callers that
// want user-facing messaging.
type Store struct {
	mu        sync.Mutex
	state     State
	persister StatePersister
	slot      string

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewStore(initial State, persister StatePersister, slot string) *Store {
	state := initial.clone()
	// restored state is clamped to the invariants, not trusted
	if len(state.Products) > MaxProducts {
		state.Products = state.Products[:MaxProducts]
	}
	return &Store{
		state:     state,
		persister: persister,
		slot:      slot,
		subs:      map[int]func(State){},
	}
}

// Subscribe registers a callback invoked with a snapshot after each
// transition; the returned function removes it.
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

// CanAdd reports whether the product could join the set: not already present
// and below capacity.
func (s *Store) CanAdd(product models.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.indexOf(product.ID) < 0 && len(s.state.Products) < MaxProducts
}

// Add appends the product when the guard holds, otherwise no-ops. Opens the
// comparison panel either way only on a successful insert.
func (s *Store) Add(ctx context.Context, product models.Product) error {
	return s.mutate(ctx, func(state *State) {
		if state.indexOf(product.ID) >= 0 || len(state.Products) >= MaxProducts {
			return
		}
		state.Products = append(state.Products, product)
		state.IsOpen = true
	})
}

// Remove deletes the product if present; idempotent.
func (s *Store) Remove(ctx context.Context, productID uuid.UUID) error {
	return s.mutate(ctx, func(state *State) {
		if i := state.indexOf(productID); i >= 0 {
			state.Products = append(state.Products[:i], state.Products[i+1:]...)
		}
	})
}

// Clear empties the set.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(state *State) {
		state.Products = nil
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

// Contains reports membership by product id.
func (s *Store) Contains(productID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.indexOf(productID) >= 0
}

// Count returns the current set size.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Products)
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
