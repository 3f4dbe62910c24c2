package domain

import dErrors "seaplan/pkg/domain-errors"

// Role is the closed set of account roles.
//
// Requesters submit navigation plans and carry a credit balance. Reviewers
// decide pending plans and manage restricted zones. Administrators recharge
// requester credit balances.
type Role string

const (
	RoleRequester     Role = "requester"
	RoleReviewer      Role = "reviewer"
	RoleAdministrator Role = "administrator"
)

// ParseRole validates s against the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleRequester, RoleReviewer, RoleAdministrator:
		return Role(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown role")
}

func (r Role) String() string { return string(r) }

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleRequester, RoleReviewer, RoleAdministrator:
		return true
	}
	return false
}

// HoldsBalance reports whether accounts with this role carry a credit
// balance. Only requesters do; presenting any other role to the ledger is a
// usage error.
func (r Role) HoldsBalance() bool { return r == RoleRequester }
