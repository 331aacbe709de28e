package repo

import (
	"context"
	"sort"
	"sync"

	"minter/internal/domain"
)

// MemoryMintRepository keeps submissions in process memory. It is used when
// no database is configured and by tests.
type MemoryMintRepository struct {
	mu    sync.RWMutex
	mints map[string]domain.Mint
}

func NewMemoryMintRepository() *MemoryMintRepository {
	return &MemoryMintRepository{mints: make(map[string]domain.Mint)}
}

func (r *MemoryMintRepository) Create(ctx context.Context, mint *domain.Mint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mints[mint.ID] = *mint
	return nil
}

func (r *MemoryMintRepository) Update(ctx context.Context, mint *domain.Mint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mints[mint.ID]; !ok {
		return domain.ErrNotFound
	}
	r.mints[mint.ID] = *mint
	return nil
}

func (r *MemoryMintRepository) GetByID(ctx context.Context, id string) (*domain.Mint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mint, ok := r.mints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &mint, nil
}

func (r *MemoryMintRepository) ListRecent(ctx context.Context, limit int) ([]domain.Mint, error) {
	r.mu.RLock()
	out := make([]domain.Mint, 0, len(r.mints))
	for _, mint := range r.mints {
		out = append(out, mint)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ domain.MintRepository = (*MemoryMintRepository)(nil)
