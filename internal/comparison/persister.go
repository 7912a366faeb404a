package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/technova/storefront-backend/pkg/redis"
)

// StatePersister saves and restores the comparison slot for a shopper session.
type StatePersister interface {
	Load(ctx context.Context, slot string) (*State, error)
	Save(ctx context.Context, slot string, state State) error
	Delete(ctx context.Context, slot string) error
}

// RedisPersister keeps comparison slots in Redis as JSON blobs.
type RedisPersister struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedisPersister(client *redisclient.Client, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

func (p *RedisPersister) Load(ctx context.Context, slot string) (*State, error) {
	raw, err := p.client.Get(ctx, p.client.ComparisonKey(slot))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading comparison slot: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding comparison slot: %w", err)
	}
	return &state, nil
}

func (p *RedisPersister) Save(ctx context.Context, slot string, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding comparison slot: %w", err)
	}
	if err := p.client.Set(ctx, p.client.ComparisonKey(slot), string(raw), p.ttl); err != nil {
		return fmt.Errorf("saving comparison slot: %w", err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, slot string) error {
	if err := p.client.Del(ctx, p.client.ComparisonKey(slot)); err != nil {
		return fmt.Errorf("deleting comparison slot: %w", err)
	}
	return nil
}

// MemoryPersister is an in-memory StatePersister for tests.
type MemoryPersister struct {
	mu    sync.Mutex
	slots map[string]State
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{slots: map[string]State{}}
}

func (p *MemoryPersister) Load(_ context.Context, slot string) (*State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.slots[slot]
	if !ok {
		return nil, nil
	}
	clone := state.clone()
	return &clone, nil
}

func (p *MemoryPersister) Save(_ context.Context, slot string, state State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots[slot] = state.clone()
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, slot string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.slots, slot)
	return nil
}
