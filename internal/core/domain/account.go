package domain

import (
	"strings"
	"time"
)

// Role is the privilege level of an account. Roles are totally ordered and
// RoleMaster dominates every other role.
type Role string

const (
	RoleMaster      Role = "master"
	RoleGlobalAdmin Role = "global_admin"
	RoleUnitAdmin   Role = "unit_admin"
	RoleOperator    Role = "operator"
)

var roleRank = map[Role]int{
	RoleOperator:    1,
	RoleUnitAdmin:   2,
	RoleGlobalAdmin: 3,
	RoleMaster:      4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Outranks reports whether r is strictly more privileged than other.
func (r Role) Outranks(other Role) bool {
	return roleRank[r] > roleRank[other]
}

// IsTopLevel reports whether the role may choose a viewing context.
func (r Role) IsTopLevel() bool {
	return r == RoleMaster || r == RoleGlobalAdmin
}

// Unit is an organizational division that scopes record visibility.
type Unit string

const (
	UnitPublicJails       Unit = "public_jails"
	UnitPrisonEscort      Unit = "prison_escort"
	UnitSpecialOperations Unit = "special_operations"
	// UnitCentral is reserved for master and global_admin accounts. Used as a
	// viewing context it means "every unit".
	UnitCentral Unit = "general_administration"
)

// Units lists every organizational unit in display order.
var Units = []Unit{UnitPublicJails, UnitPrisonEscort, UnitSpecialOperations, UnitCentral}

// Valid reports whether u belongs to the fixed unit enumeration.
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// AccountStatus is the approval state of an account.
type AccountStatus string

const (
	AccountPending    AccountStatus = "pending"
	AccountAuthorized AccountStatus = "authorized"
	AccountDenied     AccountStatus = "denied"
)

// UserAccount is the identity and authorization unit.
type UserAccount struct {
	Email         string        `json:"email"`
	FullName      string        `json:"full_name"`
	PasswordHash  string        `json:"password_hash"`
	IsTemporary   bool          `json:"is_temporary"`
	Role          Role          `json:"role"`
	Unit          Unit          `json:"unit"`
	Status        AccountStatus `json:"status"`
	IsBlocked     bool          `json:"is_blocked"`
	Justification string        `json:"justification,omitempty"`
	RequestedBy   string        `json:"requested_by,omitempty"`
	RequestDate   time.Time     `json:"request_date"`
	LastSeen      time.Time     `json:"last_seen,omitempty"`
}

// Principal returns the authenticated view of the account.
func (a *UserAccount) Principal() Principal {
	return Principal{Email: a.Email, FullName: a.FullName, Role: a.Role, HomeUnit: a.Unit}
}

// CanSignIn reports whether the account state allows a session at all.
func (a *UserAccount) CanSignIn() bool {
	return !a.IsBlocked && a.Status == AccountAuthorized
}

// NormalizeEmail is the single normalization applied to every email before
// it is used as a lookup or equality key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
