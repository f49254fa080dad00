package repository

import (
	"context"
	"errors"

	"claims_manager/internal/domain"
)

// ClaimRepository is the single store for claim records. Update is the only
// write path for an existing claim: the mutation function runs under the
// store's write lock, so concurrent writers on the same id never interleave
// their read-modify-write.
type ClaimRepository interface {
	Insert(ctx context.Context, claim *domain.Claim) error
	Get(ctx context.Context, id string) (*domain.Claim, error)
	Update(ctx context.Context, id string, mutate func(*domain.Claim) error) (*domain.Claim, error)
	List(ctx context.Context) ([]*domain.Claim, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
