package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"claims_manager/internal/domain"
	"claims_manager/internal/rbac"
	"claims_manager/internal/repository"
	"claims_manager/pkg/metrics"
	"claims_manager/pkg/validator"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEmptyNote         = errors.New("empty note")
)

// transitionPermissions names the permission required to move a claim INTO
// each status. Authorization always checks the target, not the source.
var transitionPermissions = map[domain.Status]rbac.Permission{
	domain.StatusInReview:            rbac.PermEditAssignedClaims,
	domain.StatusPendingVerification: rbac.PermEditAssignedClaims,
	domain.StatusPendingApproval:     rbac.PermVerifyClaimDocuments,
	domain.StatusApproved:            rbac.PermApproveClaim,
	domain.StatusRejected:            rbac.PermRejectClaim,
	domain.StatusSettled:             rbac.PermSettleClaim,
	domain.StatusClosed:              rbac.PermSettleClaim,
}

// Notifier receives claims whose status reached an outcome the policyholder
// should hear about. Implementations must not block the caller.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, claim *domain.Claim)
}

type Engine struct {
	claims          repository.ClaimRepository
	gate            *rbac.Gate
	validator       *validator.ClaimValidator
	metrics         *metrics.ClaimMetrics
	notifier        Notifier
	slaWindow       time.Duration
	defaultAssignee string
	logger          *slog.Logger
	now             func() time.Time
}

func NewEngine(
	claims repository.ClaimRepository,
	gate *rbac.Gate,
	claimMetrics *metrics.ClaimMetrics,
	slaWindowDays int,
	defaultAssignee string,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		claims:          claims,
		gate:            gate,
		validator:       validator.NewClaimValidator(),
		metrics:         claimMetrics,
		slaWindow:       time.Duration(slaWindowDays) * 24 * time.Hour,
		defaultAssignee: defaultAssignee,
		logger:          logger,
		now:             time.Now,
	}
}

// WithNotifier attaches an outcome notifier. Optional.
func (e *Engine) WithNotifier(n Notifier) *Engine {
	e.notifier = n
	return e
}

// WithClock overrides the engine's clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

type SubmitRequest struct {
	Policyholder   domain.Policyholder
	Type           string
	Amount         float64
	DateOfIncident time.Time
	Description    string
	Documents      []domain.Document
}

// Submit creates a new claim: status SUBMITTED, first milestone completed,
// SLA target at submission date plus the configured window, and routing to
// the default handler.
func (e *Engine) Submit(ctx context.Context, actor domain.Actor, req SubmitRequest) (*domain.Claim, error) {
	if !e.gate.Authorize(actor, rbac.PermSubmitClaim, nil) {
		e.recordAuthzDenied()
		return nil, fmt.Errorf("%w: %s may not submit claims", ErrForbidden, actor.Role)
	}

	now := e.now()
	if err := e.validator.ValidateSubmission(req.Policyholder.ID, req.Type, req.Amount, req.DateOfIncident, req.Description, now); err != nil {
		e.recordValidationFailure()
		return nil, err
	}

	claim := domain.NewClaim(req.Policyholder, req.Type, req.Amount, now, now.Add(e.slaWindow)).
		WithAssignee(e.defaultAssignee).
		WithDocuments(req.Documents...)
	claim.DateOfIncident = req.DateOfIncident

	claim.AppendHistory(now, fmt.Sprintf("Claim Submitted by %s", req.Policyholder.Name))
	if e.defaultAssignee != "" {
		claim.AppendHistory(now, fmt.Sprintf("Assigned to %s", e.defaultAssignee))
	}
	claim.AppendNote(req.Policyholder.Name, req.Description, now)
	claim.EvaluateSLA(now)

	if err := e.claims.Insert(ctx, claim); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordSubmission(claim.Amount)
	}
	e.logger.Info("Claim submitted",
		slog.String("claim_id", claim.ID),
		slog.String("policyholder_id", claim.Policyholder.ID),
		slog.String("type", claim.Type),
		slog.Float64("amount", claim.Amount))

	return claim.Clone(), nil
}

// Transition moves a claim to a target status. The actor needs the
// permission associated with the target, the move must be legal from the
// current status, and the claim picks up a history entry, an optional note,
// recomputed milestones and a recomputed SLA flag.
func (e *Engine) Transition(ctx context.Context, actor domain.Actor, claimID string, target domain.Status, newAssignee, note string) (*domain.Claim, error) {
	start := e.now()

	var wasTerminal bool
	updated, err := e.claims.Update(ctx, claimID, func(c *domain.Claim) error {
		perm, known := transitionPermissions[target]
		if !known {
			return fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, target)
		}
		if !e.gate.Authorize(actor, perm, c) {
			e.recordAuthzDenied()
			return fmt.Errorf("%w: %s may not move claim %s to %s", ErrForbidden, actor.Role, c.ID, target)
		}
		if !domain.CanTransition(c.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, target)
		}

		wasTerminal = c.Status.IsTerminal()

		now := e.now()
		c.Status = target
		if newAssignee != "" {
			c.AssignedTo = newAssignee
		}
		c.AppendHistory(now, fmt.Sprintf("%s by %s", statusLabel(target), actor.Label()))
		if strings.TrimSpace(note) != "" {
			c.AppendNote(actor.Label(), strings.TrimSpace(note), now)
		}
		c.CompleteMilestones(now)
		c.EvaluateSLA(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordTransition(string(target), e.now().Sub(start), target.IsTerminal() && !wasTerminal)
	}
	e.logger.Info("Claim transitioned",
		slog.String("claim_id", updated.ID),
		slog.String("status", string(updated.Status)),
		slog.String("actor_id", actor.ID))

	if e.notifier != nil && notifiableStatus(target) {
		e.notifier.NotifyStatusChange(ctx, updated)
	}

	return updated, nil
}

// AddNote appends a note and mirrors it into the history. Officers and
// admins may note any claim their grant reaches; a policyholder may only
// note their own claims.
func (e *Engine) AddNote(ctx context.Context, actor domain.Actor, claimID, text string) (*domain.Claim, error) {
	return e.claims.Update(ctx, claimID, func(c *domain.Claim) error {
		if !e.canNote(actor, c) {
			e.recordAuthzDenied()
			return fmt.Errorf("%w: %s may not note claim %s", ErrForbidden, actor.Role, c.ID)
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return ErrEmptyNote
		}

		now := e.now()
		c.AppendNote(actor.Label(), trimmed, now)
		c.AppendHistory(now, fmt.Sprintf("Note added by %s", actor.Label()))
		c.EvaluateSLA(now)
		return nil
	})
}

func (e *Engine) canNote(actor domain.Actor, c *domain.Claim) bool {
	if !e.gate.Authorize(actor, rbac.PermAddClaimNote, nil) {
		return false
	}
	if actor.Role == domain.RolePolicyholder {
		return c.Policyholder.ID == actor.ID
	}
	return true
}

type EditRequest struct {
	Type          string
	Amount        float64
	DateSubmitted time.Time
	AssignedTo    *string
}

// Edit changes the mutable claim fields outside of status transitions.
// Allowed for edit_all_claims holders, for edit_assigned_claims holders on
// their own assignments, and for the policyholder while the claim is still
// SUBMITTED.
func (e *Engine) Edit(ctx context.Context, actor domain.Actor, claimID string, req EditRequest) (*domain.Claim, error) {
	return e.claims.Update(ctx, claimID, func(c *domain.Claim) error {
		if !e.canEdit(actor, c) {
			e.recordAuthzDenied()
			return fmt.Errorf("%w: %s may not edit claim %s", ErrForbidden, actor.Role, c.ID)
		}
		if err := e.validator.ValidateEdit(req.Type, req.Amount, req.DateSubmitted); err != nil {
			e.recordValidationFailure()
			return err
		}

		now := e.now()
		c.Type = req.Type
		c.Amount = req.Amount
		c.DateSubmitted = req.DateSubmitted
		if req.AssignedTo != nil {
			c.AssignedTo = *req.AssignedTo
		}
		c.AppendHistory(now, fmt.Sprintf("Claim details updated by %s", actor.Label()))
		c.EvaluateSLA(now)
		return nil
	})
}

func (e *Engine) canEdit(actor domain.Actor, c *domain.Claim) bool {
	if e.gate.Authorize(actor, rbac.PermEditAllClaims, c) {
		return true
	}
	if e.gate.Authorize(actor, rbac.PermEditAssignedClaims, c) {
		return true
	}
	return actor.Role == domain.RolePolicyholder &&
		c.Policyholder.ID == actor.ID &&
		c.Status == domain.StatusSubmitted
}

// Get returns a claim with its derived SLA flag evaluated against the
// current time.
func (e *Engine) Get(ctx context.Context, claimID string) (*domain.Claim, error) {
	claim, err := e.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	claim.EvaluateSLA(e.now())
	return claim, nil
}

func (e *Engine) recordAuthzDenied() {
	if e.metrics != nil {
		e.metrics.RecordAuthzDenied()
	}
}

func (e *Engine) recordValidationFailure() {
	if e.metrics != nil {
		e.metrics.RecordValidationFailure()
	}
}

func notifiableStatus(s domain.Status) bool {
	switch s {
	case domain.StatusApproved, domain.StatusRejected, domain.StatusSettled:
		return true
	}
	return false
}

// statusLabel renders a status for history entries: "IN_REVIEW" becomes
// "In Review".
func statusLabel(s domain.Status) string {
	words := strings.Split(strings.ToLower(string(s)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
