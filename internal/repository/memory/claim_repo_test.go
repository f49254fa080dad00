package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"claims_manager/internal/domain"
	"claims_manager/internal/repository"
)

func newTestClaim(id string) *domain.Claim {
	now := time.Now()
	c := domain.NewClaim(domain.Policyholder{ID: "PH001", Name: "Alice Johnson"}, "Auto Accident", 15000, now, now.AddDate(0, 0, 20))
	c.ID = id
	return c
}

func TestClaimRepository_InsertAndGet(t *testing.T) {
	repo := NewClaimRepository()
	claim := newTestClaim("c1")

	if err := repo.Insert(context.Background(), claim); err != nil {
		t.Fatalf("unexpected error on Insert: %v", err)
	}
	got, err := repo.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error on Get: %v", err)
	}
	if got.ID != "c1" || got.Type != "Auto Accident" || got.Status != domain.StatusSubmitted {
		t.Errorf("expected stored claim, got %+v", got)
	}
}

func TestClaimRepository_InsertDuplicate(t *testing.T) {
	repo := NewClaimRepository()
	_ = repo.Insert(context.Background(), newTestClaim("c1"))

	err := repo.Insert(context.Background(), newTestClaim("c1"))
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestClaimRepository_GetMissing(t *testing.T) {
	repo := NewClaimRepository()
	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRepository_GetReturnsCopy(t *testing.T) {
	repo := NewClaimRepository()
	_ = repo.Insert(context.Background(), newTestClaim("c1"))

	first, _ := repo.Get(context.Background(), "c1")
	first.Status = domain.StatusSettled
	first.History = append(first.History, domain.HistoryEntry{Timestamp: time.Now(), Action: "tampered"})

	second, _ := repo.Get(context.Background(), "c1")
	if second.Status != domain.StatusSubmitted {
		t.Errorf("mutating a returned claim leaked into the store: %s", second.Status)
	}
	if len(second.History) != 0 {
		t.Errorf("history mutation leaked into the store: %v", second.History)
	}
}

func TestClaimRepository_UpdateAppliesMutation(t *testing.T) {
	repo := NewClaimRepository()
	_ = repo.Insert(context.Background(), newTestClaim("c1"))

	updated, err := repo.Update(context.Background(), "c1", func(c *domain.Claim) error {
		c.Status = domain.StatusInReview
		c.AppendHistory(time.Now(), "In Review by Claims Officer 1")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error on Update: %v", err)
	}
	if updated.Status != domain.StatusInReview || len(updated.History) != 1 {
		t.Errorf("mutation not applied: %+v", updated)
	}
}

func TestClaimRepository_UpdateFailureLeavesClaimUntouched(t *testing.T) {
	repo := NewClaimRepository()
	_ = repo.Insert(context.Background(), newTestClaim("c1"))

	sentinel := errors.New("boom")
	_, err := repo.Update(context.Background(), "c1", func(c *domain.Claim) error {
		c.Status = domain.StatusRejected
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	got, _ := repo.Get(context.Background(), "c1")
	if got.Status != domain.StatusSubmitted {
		t.Errorf("failed mutation was persisted: %s", got.Status)
	}
}

func TestClaimRepository_UpdateMissing(t *testing.T) {
	repo := NewClaimRepository()
	_, err := repo.Update(context.Background(), "nope", func(c *domain.Claim) error { return nil })
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRepository_ListPreservesInsertionOrder(t *testing.T) {
	repo := NewClaimRepository()
	for _, id := range []string{"c3", "c1", "c2"} {
		_ = repo.Insert(context.Background(), newTestClaim(id))
	}

	claims, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on List: %v", err)
	}
	want := []string{"c3", "c1", "c2"}
	for i, c := range claims {
		if c.ID != want[i] {
			t.Errorf("expected order %v, got %s at %d", want, c.ID, i)
		}
	}
}

func TestClaimRepository_ConcurrentUpdatesSerialize(t *testing.T) {
	repo := NewClaimRepository()
	_ = repo.Insert(context.Background(), newTestClaim("c1"))

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Update(context.Background(), "c1", func(c *domain.Claim) error {
				c.AppendHistory(time.Now(), "entry")
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := repo.Get(context.Background(), "c1")
	if len(got.History) != writers {
		t.Errorf("expected %d history entries, got %d", writers, len(got.History))
	}
}
