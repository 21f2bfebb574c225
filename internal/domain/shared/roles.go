package shared

// Role is the closed set of actor roles recognized by the backend. The core
// engines never consult roles; the HTTP layer resolves the acting role to a
// capability set before an engine operation is invoked.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleTreasurer Role = "TREASURER"
	RoleSecretary Role = "SECRETARY"
	RoleMember    Role = "MEMBER"
)

// Capability names a single privileged action on the financial core
type Capability string

const (
	CapApproveContribution Capability = "contribution:approve"
	CapCancelContribution  Capability = "contribution:cancel"
	CapCreateContribution  Capability = "contribution:create"
	CapManageExpense       Capability = "expense:manage"
	CapManageFund          Capability = "fund:manage"
	CapCloseYear           Capability = "year:close"
	CapViewLedger          Capability = "ledger:view"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapApproveContribution: true,
		CapCancelContribution:  true,
		CapCreateContribution:  true,
		CapManageExpense:       true,
		CapManageFund:          true,
		CapCloseYear:           true,
		CapViewLedger:          true,
	},
	RoleTreasurer: {
		CapApproveContribution: true,
		CapCancelContribution:  true,
		CapCreateContribution:  true,
		CapManageExpense:       true,
		CapViewLedger:          true,
	},
	RoleSecretary: {
		CapCreateContribution: true,
		CapViewLedger:         true,
	},
	RoleMember: {
		CapCreateContribution: true,
	},
}

// ParseRole maps a role string to a known Role, reporting whether it is valid
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleCapabilities[r]
	return r, ok
}

// Can reports whether the role carries the given capability
func (r Role) Can(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	return caps[c]
}
