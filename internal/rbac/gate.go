package rbac

import (
	"log/slog"

	"claims_manager/internal/domain"
)

// scopePredicates narrows claim-scoped permissions to the claims the actor
// may act on. A permission without a predicate is unconditional once the
// role grants it.
var scopePredicates = map[Permission]func(domain.Actor, *domain.Claim) bool{
	PermViewAssignedClaims: assignedToActor,
	PermEditAssignedClaims: assignedToActor,
	PermViewMyClaims: func(actor domain.Actor, c *domain.Claim) bool {
		return c.Policyholder.ID == actor.ID
	},
	PermViewApprovedClaims: func(_ domain.Actor, c *domain.Claim) bool {
		return c.Status == domain.StatusApproved
	},
}

func assignedToActor(actor domain.Actor, c *domain.Claim) bool {
	return c.AssignedTo != "" && c.AssignedTo == actor.DisplayName
}

type Gate struct {
	logger *slog.Logger
}

func NewGate(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{logger: logger}
}

// Authorize runs the two-tier check: the actor's role must grant the
// permission, and when the permission carries a scope predicate and a claim
// is supplied, the predicate must hold for that claim. A nil claim checks
// the role grant alone (the global form of the permission).
func (g *Gate) Authorize(actor domain.Actor, perm Permission, claim *domain.Claim) bool {
	if !Grants(actor.Role, perm) {
		return false
	}
	pred, scoped := scopePredicates[perm]
	if !scoped || claim == nil {
		return true
	}
	if !pred(actor, claim) {
		g.logger.Debug("scope predicate rejected",
			slog.String("actor_id", actor.ID),
			slog.String("role", string(actor.Role)),
			slog.String("permission", string(perm)),
			slog.String("claim_id", claim.ID))
		return false
	}
	return true
}

// IsScreenAllowed reports whether the actor's role may open the screen.
func (g *Gate) IsScreenAllowed(actor domain.Actor, screen Screen) bool {
	for _, s := range ScreensOf(actor.Role) {
		if s == screen {
			return true
		}
	}
	return false
}
