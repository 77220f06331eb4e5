package oauth2

import (
	"context"
	"sync"
)

// Repository persists the token state. Load returns nil when nothing is stored.
type Repository interface {
	Load(ctx context.Context) (*TokenState, error)
	Save(ctx context.Context, state *TokenState) error
	Clear(ctx context.Context) error
}

// MemoryRepository keeps the token state in process memory
type MemoryRepository struct {
	mu    sync.RWMutex
	state *TokenState
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns a copy of the stored state
func (r *MemoryRepository) Load(ctx context.Context) (*TokenState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.state == nil {
		return nil, nil
	}
	copied := *r.state
	return &copied, nil
}

// Save replaces the stored state
func (r *MemoryRepository) Save(ctx context.Context, state *TokenState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *state
	r.state = &copied
	return nil
}

// Clear drops the stored state
func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = nil
	return nil
}
