package main

import (
	"claims_manager/internal/domain"
	"claims_manager/internal/repository"
	"context"
	"fmt"
	"time"
)

type demoClaim struct {
	policyholder domain.Policyholder
	claimType    string
	amount       float64
	daysAgo      int
	status       domain.Status
	assignedTo   string
	documents    []domain.Document
	note         string
	noteAuthor   string
}

var demoClaims = []demoClaim{
	{
		policyholder: domain.Policyholder{ID: "PH001", Name: "Alice Johnson"},
		claimType:    "Auto Accident",
		amount:       15000.00,
		daysAgo:      2,
		status:       domain.StatusSubmitted,
		assignedTo:   "Claims Officer 1",
		documents: []domain.Document{
			{Name: "Police Report.pdf", Locator: "#", Kind: "pdf"},
			{Name: "Damage Photos.zip", Locator: "#", Kind: "zip"},
		},
		note:       "Initial claim submission received.",
		noteAuthor: "System",
	},
	{
		policyholder: domain.Policyholder{ID: "PH002", Name: "Bob Smith"},
		claimType:    "Home Burglary",
		amount:       5000.00,
		daysAgo:      8,
		status:       domain.StatusInReview,
		assignedTo:   "Claims Officer 2",
		documents: []domain.Document{
			{Name: "Inventory List.xlsx", Locator: "#", Kind: "xlsx"},
			{Name: "Police Report.pdf", Locator: "#", Kind: "pdf"},
		},
		note:       "Initial document review complete. Forwarding to verification.",
		noteAuthor: "Claims Officer 2",
	},
	{
		policyholder: domain.Policyholder{ID: "PH003", Name: "Carol White"},
		claimType:    "Medical Expense",
		amount:       2500.00,
		daysAgo:      25,
		status:       domain.StatusPendingVerification,
		assignedTo:   "Verification Officer 1",
		documents: []domain.Document{
			{Name: "Medical Bills.pdf", Locator: "#", Kind: "pdf"},
			{Name: "Doctor Note.pdf", Locator: "#", Kind: "pdf"},
		},
		note:       "Additional records requested from provider.",
		noteAuthor: "Verification Officer 1",
	},
	{
		policyholder: domain.Policyholder{ID: "PH004", Name: "David Green"},
		claimType:    "Property Damage",
		amount:       8000.00,
		daysAgo:      15,
		status:       domain.StatusApproved,
		assignedTo:   "Finance Team",
		documents: []domain.Document{
			{Name: "Damage Assessment.pdf", Locator: "#", Kind: "pdf"},
			{Name: "Invoice.pdf", Locator: "#", Kind: "pdf"},
		},
		note:       "All documents verified. Approved for full amount.",
		noteAuthor: "Claims Officer 3",
	},
	{
		policyholder: domain.Policyholder{ID: "PH005", Name: "Eva Brown"},
		claimType:    "Travel Cancellation",
		amount:       1200.00,
		daysAgo:      18,
		status:       domain.StatusRejected,
		assignedTo:   "Claims Officer 4",
		documents: []domain.Document{
			{Name: "Booking Confirmation.pdf", Locator: "#", Kind: "pdf"},
		},
		note:       "Claim rejected as per policy terms (clause 3.5 - non-covered event).",
		noteAuthor: "Claims Officer 4",
	},
	{
		policyholder: domain.Policyholder{ID: "PH006", Name: "Frank Miller"},
		claimType:    "Life Insurance",
		amount:       100000.00,
		daysAgo:      30,
		status:       domain.StatusSettled,
		assignedTo:   "Finance Team",
		documents: []domain.Document{
			{Name: "Death Certificate.pdf", Locator: "#", Kind: "pdf"},
			{Name: "Beneficiary Form.pdf", Locator: "#", Kind: "pdf"},
		},
		note:       "Payment disbursed to beneficiary.",
		noteAuthor: "Finance Team",
	},
}

// seedDemoData populates the repository with a handful of claims spread
// across the lifecycle, useful for manual poking at the API.
func seedDemoData(repo repository.ClaimRepository) error {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range demoClaims {
		submitted := now.AddDate(0, 0, -d.daysAgo)
		claim := domain.NewClaim(d.policyholder, d.claimType, d.amount, submitted, submitted.AddDate(0, 0, 20)).
			WithAssignee(d.assignedTo).
			WithDocuments(d.documents...)
		claim.DateOfIncident = submitted.AddDate(0, 0, -1)

		claim.AppendHistory(submitted, fmt.Sprintf("Claim Submitted by %s", d.policyholder.Name))
		claim.AppendHistory(submitted.Add(time.Hour), fmt.Sprintf("Assigned to %s", d.assignedTo))
		claim.AppendNote(d.noteAuthor, d.note, submitted.Add(time.Hour))

		if d.status != domain.StatusSubmitted {
			claim.Status = d.status
			claim.AppendHistory(submitted.Add(24*time.Hour), fmt.Sprintf("Status changed to %s", d.status))
			claim.CompleteMilestones(submitted.Add(24 * time.Hour))
		}
		claim.EvaluateSLA(now)

		if err := repo.Insert(ctx, claim); err != nil {
			return fmt.Errorf("seed claim for %s: %w", d.policyholder.ID, err)
		}
	}

	return nil
}
