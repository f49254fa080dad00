package query

import (
	"context"
	"testing"
	"time"

	"claims_manager/internal/domain"
	"claims_manager/internal/rbac"
	"claims_manager/internal/repository/memory"
)

var (
	admin   = domain.Actor{ID: "1", Role: domain.RoleAdmin, DisplayName: "Admin User"}
	officer = domain.Actor{ID: "2", Role: domain.RoleClaimsOfficer, DisplayName: "Claims Officer 1"}
	finance = domain.Actor{ID: "4", Role: domain.RoleFinanceTeam, DisplayName: "Finance User"}
	alice   = domain.Actor{ID: "PH001", Role: domain.RolePolicyholder, DisplayName: "Alice Johnson"}
)

type seedClaim struct {
	id            string
	phID, phName  string
	claimType     string
	amount        float64
	dateSubmitted time.Time
	status        domain.Status
	assignedTo    string
}

func day(d int) time.Time {
	return time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC)
}

func seedEngine(t *testing.T, seeds []seedClaim) *Engine {
	t.Helper()
	repo := memory.NewClaimRepository()
	for _, s := range seeds {
		c := domain.NewClaim(domain.Policyholder{ID: s.phID, Name: s.phName}, s.claimType, s.amount, s.dateSubmitted, s.dateSubmitted.AddDate(0, 0, 20))
		c.ID = s.id
		c.Status = s.status
		c.AssignedTo = s.assignedTo
		if err := repo.Insert(context.Background(), c); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}
	clock := func() time.Time { return day(28) }
	return NewEngine(repo, rbac.NewGate(nil), nil).WithClock(clock)
}

func defaultSeeds() []seedClaim {
	return []seedClaim{
		{"c1", "PH001", "Alice Johnson", "Auto Accident", 15000, day(1), domain.StatusSubmitted, "Claims Officer 1"},
		{"c2", "PH002", "Bob Smith", "Home Burglary", 5000, day(3), domain.StatusInReview, "Claims Officer 2"},
		{"c3", "PH003", "Carol White", "Medical Expense", 2500, day(5), domain.StatusApproved, "Claims Officer 1"},
		{"c4", "PH001", "Alice Johnson", "Travel Cancellation", 1200, day(7), domain.StatusApproved, "Claims Officer 2"},
		{"c5", "PH004", "David Green", "Property Damage", 5000, day(9), domain.StatusSettled, "Finance Team"},
	}
}

func ids(claims []*domain.Claim) []string {
	out := make([]string, len(claims))
	for i, c := range claims {
		out[i] = c.ID
	}
	return out
}

func assertIDs(t *testing.T, got []*domain.Claim, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, ids(got))
	}
	for i, c := range got {
		if c.ID != want[i] {
			t.Fatalf("expected ids %v, got %v", want, ids(got))
		}
	}
}

func TestListVisible_RoleScopes(t *testing.T) {
	e := seedEngine(t, defaultSeeds())

	// Admin sees everything, default sort dateSubmitted desc.
	all, err := e.ListVisible(context.Background(), admin, ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	assertIDs(t, all, "c5", "c4", "c3", "c2", "c1")

	// Officer sees assignments only.
	mine, _ := e.ListVisible(context.Background(), officer, ListOptions{})
	assertIDs(t, mine, "c3", "c1")

	// Finance sees approved claims only.
	approved, _ := e.ListVisible(context.Background(), finance, ListOptions{})
	assertIDs(t, approved, "c4", "c3")

	// Policyholder sees own claims only.
	own, _ := e.ListVisible(context.Background(), alice, ListOptions{})
	assertIDs(t, own, "c4", "c1")

	// Unknown role sees nothing.
	none, _ := e.ListVisible(context.Background(), domain.Actor{ID: "x", Role: "INTERN"}, ListOptions{})
	if len(none) != 0 {
		t.Errorf("expected empty result for unknown role, got %v", ids(none))
	}
}

func TestListVisible_StatusFilter(t *testing.T) {
	e := seedEngine(t, defaultSeeds())

	approved, _ := e.ListVisible(context.Background(), admin, ListOptions{Status: "APPROVED"})
	assertIDs(t, approved, "c4", "c3")

	// "ALL" disables the filter.
	all, _ := e.ListVisible(context.Background(), admin, ListOptions{Status: StatusAll})
	if len(all) != 5 {
		t.Errorf("expected 5 claims with ALL, got %d", len(all))
	}
}

func TestListVisible_Search(t *testing.T) {
	e := seedEngine(t, defaultSeeds())

	byName, _ := e.ListVisible(context.Background(), admin, ListOptions{Search: "alice"})
	assertIDs(t, byName, "c4", "c1")

	byType, _ := e.ListVisible(context.Background(), admin, ListOptions{Search: "BURGLARY"})
	assertIDs(t, byType, "c2")

	byID, _ := e.ListVisible(context.Background(), admin, ListOptions{Search: "c5"})
	assertIDs(t, byID, "c5")

	nothing, _ := e.ListVisible(context.Background(), admin, ListOptions{Search: "zeppelin"})
	if len(nothing) != 0 {
		t.Errorf("expected no matches, got %v", ids(nothing))
	}
}

func TestListVisible_SortKeys(t *testing.T) {
	e := seedEngine(t, defaultSeeds())

	byAmountAsc, _ := e.ListVisible(context.Background(), admin, ListOptions{SortKey: SortByAmount, Direction: Ascending})
	assertIDs(t, byAmountAsc, "c4", "c3", "c2", "c5", "c1")

	byTypeAsc, _ := e.ListVisible(context.Background(), admin, ListOptions{SortKey: SortByType, Direction: Ascending})
	assertIDs(t, byTypeAsc, "c1", "c2", "c3", "c5", "c4")

	byDateAsc, _ := e.ListVisible(context.Background(), admin, ListOptions{SortKey: SortByDateSubmitted, Direction: Ascending})
	assertIDs(t, byDateAsc, "c1", "c2", "c3", "c4", "c5")
}

func TestListVisible_StableSortPreservesStoreOrder(t *testing.T) {
	// c2 and c5 share amount 5000; ascending amount must keep c2 before c5
	// (store order), descending must too.
	e := seedEngine(t, defaultSeeds())

	asc, _ := e.ListVisible(context.Background(), admin, ListOptions{SortKey: SortByAmount, Direction: Ascending})
	posC2, posC5 := indexOf(asc, "c2"), indexOf(asc, "c5")
	if posC2 > posC5 {
		t.Errorf("ascending: expected c2 before c5 for equal amounts, got %v", ids(asc))
	}

	desc, _ := e.ListVisible(context.Background(), admin, ListOptions{SortKey: SortByAmount, Direction: Descending})
	posC2, posC5 = indexOf(desc, "c2"), indexOf(desc, "c5")
	if posC2 > posC5 {
		t.Errorf("descending: expected c2 before c5 for equal amounts, got %v", ids(desc))
	}
}

func indexOf(claims []*domain.Claim, id string) int {
	for i, c := range claims {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func TestListVisible_EvaluatesSLA(t *testing.T) {
	e := seedEngine(t, defaultSeeds())

	claims, _ := e.ListVisible(context.Background(), admin, ListOptions{SortKey: SortByDateSubmitted, Direction: Ascending})

	// c1 submitted Aug 1, target Aug 21, "now" Aug 28 and not settled: breached.
	if !claims[0].SLA.Breached {
		t.Error("c1 should be flagged breached")
	}
	// c5 is settled: never breached.
	if claims[4].SLA.Breached {
		t.Error("settled c5 must not be flagged breached")
	}
}

func TestSummarize(t *testing.T) {
	e := seedEngine(t, defaultSeeds())

	s, err := e.Summarize(context.Background(), admin)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if s.TotalClaims != 5 {
		t.Errorf("expected 5 total claims, got %d", s.TotalClaims)
	}
	if s.ApprovedClaims != 2 {
		t.Errorf("expected 2 approved, got %d", s.ApprovedClaims)
	}
	if s.PendingClaims != 1 {
		t.Errorf("expected 1 pending, got %d", s.PendingClaims)
	}
	if s.TotalAmount != 28700 {
		t.Errorf("expected total amount 28700, got %f", s.TotalAmount)
	}

	// Scoped actors aggregate over their visible claims only.
	own, _ := e.Summarize(context.Background(), alice)
	if own.TotalClaims != 2 || own.TotalAmount != 16200 {
		t.Errorf("expected policyholder summary over own claims, got %+v", own)
	}
}
