package domain

type Role string

const (
	RoleAdmin               Role = "ADMIN"
	RoleClaimsOfficer       Role = "CLAIMS_OFFICER"
	RoleVerificationOfficer Role = "VERIFICATION_OFFICER"
	RoleFinanceTeam         Role = "FINANCE_TEAM"
	RolePolicyholder        Role = "POLICYHOLDER"
)

// Actor is the identity performing an operation. The engine never relies on
// ambient session state; every call names its actor explicitly.
type Actor struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
}

// Label returns the name used in history entries and notes, falling back to
// the role when the actor has no display name.
func (a Actor) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return string(a.Role)
}
