package rbac

import "claims_manager/internal/domain"

type Permission string

const (
	PermViewDashboard         Permission = "view_dashboard"
	PermManageUsers           Permission = "manage_users"
	PermViewAllClaims         Permission = "view_all_claims"
	PermEditAllClaims         Permission = "edit_all_claims"
	PermApproveClaim          Permission = "approve_claim"
	PermRejectClaim           Permission = "reject_claim"
	PermSettleClaim           Permission = "settle_claim"
	PermViewAuditLogs         Permission = "view_audit_logs"
	PermExportData            Permission = "export_data"
	PermViewAssignedClaims    Permission = "view_assigned_claims"
	PermEditAssignedClaims    Permission = "edit_assigned_claims"
	PermAddClaimNote          Permission = "add_claim_note"
	PermUploadDocuments       Permission = "upload_documents"
	PermVerifyClaimDocuments  Permission = "verify_claim_documents"
	PermRequestAdditionalInfo Permission = "request_additional_info"
	PermViewMyClaims          Permission = "view_my_claims"
	PermSubmitClaim           Permission = "submit_claim"
	PermViewClaimStatus       Permission = "view_claim_status"
	PermViewApprovedClaims    Permission = "view_approved_claims"
)

type Screen string

const (
	ScreenDashboard      Screen = "DASHBOARD"
	ScreenClaimsList     Screen = "CLAIMS_LIST"
	ScreenClaimDetail    Screen = "CLAIM_DETAIL"
	ScreenUserManagement Screen = "USER_MANAGEMENT"
	ScreenAuditLogs      Screen = "AUDIT_LOGS"
	ScreenSubmitClaim    Screen = "SUBMIT_CLAIM"
)

type roleSpec struct {
	permissions []Permission
	screens     []Screen
}

// roleTable is the static role configuration. It is data, not logic: the
// gate never branches on role names, only on table membership and the scope
// predicates below.
var roleTable = map[domain.Role]roleSpec{
	domain.RoleAdmin: {
		permissions: []Permission{
			PermViewDashboard, PermManageUsers, PermViewAllClaims,
			PermEditAllClaims, PermApproveClaim, PermRejectClaim,
			PermSettleClaim, PermViewAuditLogs, PermExportData,
		},
		screens: []Screen{
			ScreenDashboard, ScreenClaimsList, ScreenClaimDetail,
			ScreenUserManagement, ScreenAuditLogs,
		},
	},
	domain.RoleClaimsOfficer: {
		permissions: []Permission{
			PermViewDashboard, PermViewAssignedClaims, PermEditAssignedClaims,
			PermApproveClaim, PermRejectClaim, PermAddClaimNote,
			PermUploadDocuments, PermViewAuditLogs,
		},
		screens: []Screen{ScreenDashboard, ScreenClaimsList, ScreenClaimDetail},
	},
	domain.RoleVerificationOfficer: {
		permissions: []Permission{
			PermViewDashboard, PermViewAssignedClaims, PermVerifyClaimDocuments,
			PermRequestAdditionalInfo, PermAddClaimNote, PermUploadDocuments,
			PermViewAuditLogs,
		},
		screens: []Screen{ScreenDashboard, ScreenClaimsList, ScreenClaimDetail},
	},
	domain.RoleFinanceTeam: {
		permissions: []Permission{
			PermViewDashboard, PermViewApprovedClaims, PermSettleClaim,
			PermViewAuditLogs, PermExportData,
		},
		screens: []Screen{ScreenDashboard, ScreenClaimsList, ScreenClaimDetail},
	},
	domain.RolePolicyholder: {
		permissions: []Permission{
			PermViewMyClaims, PermSubmitClaim, PermUploadDocuments,
			PermViewClaimStatus, PermAddClaimNote,
		},
		screens: []Screen{
			ScreenDashboard, ScreenClaimsList, ScreenClaimDetail,
			ScreenSubmitClaim,
		},
	},
}

// PermissionsOf returns the permission set of a role. An unknown role is
// not an error; it simply has no access.
func PermissionsOf(role domain.Role) []Permission {
	spec, ok := roleTable[role]
	if !ok {
		return nil
	}
	return append([]Permission(nil), spec.permissions...)
}

// ScreensOf returns the screens a role may open. Empty for unknown roles.
func ScreensOf(role domain.Role) []Screen {
	spec, ok := roleTable[role]
	if !ok {
		return nil
	}
	return append([]Screen(nil), spec.screens...)
}

// Grants reports whether the role's permission set contains the permission.
func Grants(role domain.Role, perm Permission) bool {
	for _, p := range roleTable[role].permissions {
		if p == perm {
			return true
		}
	}
	return false
}
