package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSubmitted           Status = "SUBMITTED"
	StatusInReview            Status = "IN_REVIEW"
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusPendingApproval     Status = "PENDING_APPROVAL"
	StatusApproved            Status = "APPROVED"
	StatusSettled             Status = "SETTLED"
	StatusRejected            Status = "REJECTED"
	StatusClosed              Status = "CLOSED"
)

// statusOrder is the canonical lifecycle order. Transitions move forward
// through this order; REJECTED is reachable from any non-terminal status.
var statusOrder = []Status{
	StatusSubmitted,
	StatusInReview,
	StatusPendingVerification,
	StatusPendingApproval,
	StatusApproved,
	StatusSettled,
	StatusRejected,
	StatusClosed,
}

func AllStatuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Index returns the position of the status in the canonical order,
// or -1 for an unknown status.
func (s Status) Index() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool {
	return s.Index() >= 0
}

// IsTerminal reports whether the status is an outcome. A terminal claim
// cannot be rejected; the only move left is the forward step to CLOSED.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusSettled || s == StatusClosed
}

// IsTerminalSuccess reports whether the claim reached a closed-out outcome.
// SLA breach evaluation freezes once a claim is settled or closed.
func (s Status) IsTerminalSuccess() bool {
	return s == StatusSettled || s == StatusClosed
}

// CanTransition reports whether a claim may move from one status to
// another. Any forward jump along the canonical order is legal, including
// jumps that skip intermediate statuses. REJECTED is the one status
// reachable out of order: any non-terminal claim can be rejected.
func CanTransition(from, to Status) bool {
	fi, ti := from.Index(), to.Index()
	if fi < 0 || ti < 0 {
		return false
	}
	if to == StatusRejected {
		return !from.IsTerminal()
	}
	return ti > fi
}

type Policyholder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Document struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
	Kind    string `json:"kind"`
}

type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

type Note struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type SLA struct {
	TargetDate time.Time `json:"target_date"`
	Breached   bool      `json:"breached"`
}

type Milestone struct {
	Name      string     `json:"name"`
	Date      *time.Time `json:"date,omitempty"`
	Completed bool       `json:"completed"`
}

const (
	MilestoneSubmitted    = "Submitted"
	MilestoneReview       = "Review"
	MilestoneVerification = "Verification"
	MilestoneApproval     = "Approval"
	MilestoneSettlement   = "Settlement"
)

// milestoneStages maps each fixed milestone to the status that represents
// reaching it. A milestone is completed once the claim's status index
// reaches the index of its mapped status.
var milestoneStages = []struct {
	Name   string
	Status Status
}{
	{MilestoneSubmitted, StatusSubmitted},
	{MilestoneReview, StatusInReview},
	{MilestoneVerification, StatusPendingVerification},
	{MilestoneApproval, StatusPendingApproval},
	{MilestoneSettlement, StatusSettled},
}

func NewMilestones() []Milestone {
	out := make([]Milestone, len(milestoneStages))
	for i, stage := range milestoneStages {
		out[i] = Milestone{Name: stage.Name}
	}
	return out
}

type Claim struct {
	ID             string         `json:"id"`
	Policyholder   Policyholder   `json:"policyholder"`
	Type           string         `json:"type"`
	Amount         float64        `json:"amount"`
	DateSubmitted  time.Time      `json:"date_submitted"`
	DateOfIncident time.Time      `json:"date_of_incident"`
	Status         Status         `json:"status"`
	AssignedTo     string         `json:"assigned_to,omitempty"`
	Documents      []Document     `json:"documents,omitempty"`
	History        []HistoryEntry `json:"history"`
	Notes          []Note         `json:"notes,omitempty"`
	SLA            SLA            `json:"sla"`
	Milestones     []Milestone    `json:"milestones"`
}

// NewClaim creates a freshly submitted claim: status SUBMITTED, the first
// milestone completed and dated, the rest pending, SLA target at the given
// date.
func NewClaim(ph Policyholder, claimType string, amount float64, now, slaTarget time.Time) *Claim {
	c := &Claim{
		ID:            generateClaimID(),
		Policyholder:  ph,
		Type:          claimType,
		Amount:        amount,
		DateSubmitted: dateOnly(now),
		Status:        StatusSubmitted,
		SLA:           SLA{TargetDate: dateOnly(slaTarget)},
		Milestones:    NewMilestones(),
	}
	c.CompleteMilestones(now)
	return c
}

func (c *Claim) WithDocuments(docs ...Document) *Claim {
	c.Documents = append(c.Documents, docs...)
	return c
}

func (c *Claim) WithAssignee(name string) *Claim {
	c.AssignedTo = name
	return c
}

func (c *Claim) AppendHistory(now time.Time, action string) {
	c.History = append(c.History, HistoryEntry{Timestamp: now, Action: action})
}

func (c *Claim) AppendNote(author, text string, now time.Time) {
	c.Notes = append(c.Notes, Note{Author: author, Text: text, Timestamp: now})
}

// CompleteMilestones marks every milestone whose stage has been reached by
// the current status as completed, stamping today's date where a date is
// missing. Completed milestones are never reverted and dates never cleared.
func (c *Claim) CompleteMilestones(now time.Time) {
	idx := c.Status.Index()
	if idx < 0 {
		return
	}
	for i, stage := range milestoneStages {
		if stage.Status.Index() > idx {
			continue
		}
		if !c.Milestones[i].Completed {
			c.Milestones[i].Completed = true
		}
		if c.Milestones[i].Date == nil {
			d := dateOnly(now)
			c.Milestones[i].Date = &d
		}
	}
}

// EvaluateSLA recomputes the derived breach flag. The claim is breached once
// the current day is past the target date; a settled or closed claim is
// never flagged breached, even past its target date.
func (c *Claim) EvaluateSLA(now time.Time) {
	c.SLA.Breached = dateOnly(now).After(c.SLA.TargetDate) && !c.Status.IsTerminalSuccess()
}

// Clone returns a deep copy so readers never share slices with the stored
// claim.
func (c *Claim) Clone() *Claim {
	out := *c
	out.Documents = append([]Document(nil), c.Documents...)
	out.History = append([]HistoryEntry(nil), c.History...)
	out.Notes = append([]Note(nil), c.Notes...)
	out.Milestones = make([]Milestone, len(c.Milestones))
	for i, m := range c.Milestones {
		out.Milestones[i] = m
		if m.Date != nil {
			d := *m.Date
			out.Milestones[i].Date = &d
		}
	}
	return &out
}

func generateClaimID() string {
	return uuid.NewString()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
