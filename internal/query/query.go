package query

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"claims_manager/internal/domain"
	"claims_manager/internal/rbac"
	"claims_manager/internal/repository"
)

type SortKey string

const (
	SortByDateSubmitted SortKey = "dateSubmitted"
	SortByAmount        SortKey = "amount"
	SortByStatus        SortKey = "status"
	SortByType          SortKey = "type"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// StatusAll disables the status filter.
const StatusAll = "ALL"

type ListOptions struct {
	Status    string
	Search    string
	SortKey   SortKey
	Direction Direction
}

// scopePermissions are the view grants a claim can be visible through. A
// claim is listed when at least one of them authorizes the actor for it.
var scopePermissions = []rbac.Permission{
	rbac.PermViewAllClaims,
	rbac.PermViewAssignedClaims,
	rbac.PermViewMyClaims,
	rbac.PermViewApprovedClaims,
}

type Engine struct {
	claims repository.ClaimRepository
	gate   *rbac.Gate
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(claims repository.ClaimRepository, gate *rbac.Gate, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		claims: claims,
		gate:   gate,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the engine's clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ListVisible returns the claims the actor may see, filtered and sorted.
// Filters apply in order: visibility scope, status equality, substring
// search across type, policyholder name and id. The sort is stable: claims
// with equal keys keep their store order, so output is deterministic.
func (e *Engine) ListVisible(ctx context.Context, actor domain.Actor, opts ListOptions) ([]*domain.Claim, error) {
	all, err := e.claims.List(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	term := strings.ToLower(strings.TrimSpace(opts.Search))

	visible := make([]*domain.Claim, 0, len(all))
	for _, c := range all {
		if !e.visibleTo(actor, c) {
			continue
		}
		if opts.Status != "" && opts.Status != StatusAll && string(c.Status) != opts.Status {
			continue
		}
		if term != "" && !matchesSearch(c, term) {
			continue
		}
		c.EvaluateSLA(now)
		visible = append(visible, c)
	}

	sortClaims(visible, opts.SortKey, opts.Direction)
	return visible, nil
}

// Visible reports whether the actor may see the claim through any of the
// view scopes.
func (e *Engine) Visible(actor domain.Actor, c *domain.Claim) bool {
	return e.visibleTo(actor, c)
}

func (e *Engine) visibleTo(actor domain.Actor, c *domain.Claim) bool {
	for _, perm := range scopePermissions {
		if e.gate.Authorize(actor, perm, c) {
			return true
		}
	}
	return false
}

func matchesSearch(c *domain.Claim, term string) bool {
	return strings.Contains(strings.ToLower(c.Type), term) ||
		strings.Contains(strings.ToLower(c.Policyholder.Name), term) ||
		strings.Contains(strings.ToLower(c.ID), term)
}

func sortClaims(claims []*domain.Claim, key SortKey, dir Direction) {
	if key == "" {
		key = SortByDateSubmitted
	}
	if dir == "" {
		dir = Descending
	}

	less := func(a, b *domain.Claim) bool {
		switch key {
		case SortByAmount:
			return a.Amount < b.Amount
		case SortByStatus:
			return a.Status < b.Status
		case SortByType:
			return a.Type < b.Type
		default:
			return a.DateSubmitted.Before(b.DateSubmitted)
		}
	}

	sort.SliceStable(claims, func(i, j int) bool {
		if dir == Descending {
			return less(claims[j], claims[i])
		}
		return less(claims[i], claims[j])
	})
}

// Summary is the dashboard aggregate over the actor's visible claims.
type Summary struct {
	TotalClaims    int        `json:"total_claims"`
	ApprovedClaims int        `json:"approved_claims"`
	PendingClaims  int        `json:"pending_claims"`
	TotalAmount    float64    `json:"total_amount"`
	RecentActivity []Activity `json:"recent_activity"`
}

type Activity struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ClaimID   string    `json:"claim_id"`
	ClaimType string    `json:"claim_type"`
}

const recentActivityLimit = 5

// Summarize computes the dashboard counters and the most recent history
// entries across the actor's visible claims.
func (e *Engine) Summarize(ctx context.Context, actor domain.Actor) (*Summary, error) {
	claims, err := e.ListVisible(ctx, actor, ListOptions{})
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	var activity []Activity
	for _, c := range claims {
		s.TotalClaims++
		s.TotalAmount += c.Amount
		switch {
		case c.Status == domain.StatusApproved:
			s.ApprovedClaims++
		case c.Status == domain.StatusInReview,
			c.Status == domain.StatusPendingVerification,
			c.Status == domain.StatusPendingApproval:
			s.PendingClaims++
		}
		for _, h := range c.History {
			activity = append(activity, Activity{
				Timestamp: h.Timestamp,
				Action:    h.Action,
				ClaimID:   c.ID,
				ClaimType: c.Type,
			})
		}
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[j].Timestamp.Before(activity[i].Timestamp)
	})
	if len(activity) > recentActivityLimit {
		activity = activity[:recentActivityLimit]
	}
	s.RecentActivity = activity
	return s, nil
}
