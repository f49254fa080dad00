package memory

import (
	"context"
	"fmt"
	"sync"

	"claims_manager/internal/domain"
	"claims_manager/internal/repository"
)

var _ repository.ClaimRepository = (*ClaimRepository)(nil)

// ClaimRepository keeps claims in memory for the process lifetime. Claims
// are returned as deep copies so callers always observe a consistent
// snapshot; insertion order is retained so listings are deterministic.
type ClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]*domain.Claim
	order  []string
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{
		claims: make(map[string]*domain.Claim),
	}
}

func (r *ClaimRepository) Insert(ctx context.Context, claim *domain.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[claim.ID]; exists {
		return fmt.Errorf("%w: claim %s", repository.ErrDuplicate, claim.ID)
	}

	r.claims[claim.ID] = claim.Clone()
	r.order = append(r.order, claim.ID)
	return nil
}

func (r *ClaimRepository) Get(ctx context.Context, id string) (*domain.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claim, exists := r.claims[id]
	if !exists {
		return nil, fmt.Errorf("%w: claim %s", repository.ErrNotFound, id)
	}
	return claim.Clone(), nil
}

// Update applies the mutation under the write lock. The mutation runs
// against a copy and is swapped in only when it succeeds, so a failed
// mutation leaves the stored claim untouched.
func (r *ClaimRepository) Update(ctx context.Context, id string, mutate func(*domain.Claim) error) (*domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.claims[id]
	if !exists {
		return nil, fmt.Errorf("%w: claim %s", repository.ErrNotFound, id)
	}

	next := stored.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	r.claims[id] = next
	return next.Clone(), nil
}

func (r *ClaimRepository) List(ctx context.Context) ([]*domain.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Claim, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.claims[id].Clone())
	}
	return result, nil
}
