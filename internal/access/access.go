// Package access is the single authorization gate: every protected route
// declares the capability it needs and the policy below decides by role.
package access

import (
	"errors"

	"github.com/carewallet/carewallet/internal/identity"
)

// Capability names an action a caller may perform.
type Capability string

const (
	WalletView      Capability = "wallet:view"
	WalletRecharge  Capability = "wallet:recharge"
	WalletPay       Capability = "wallet:pay"
	WalletRefund    Capability = "wallet:refund"
	FinanceOverview Capability = "finance:overview"
)

var ErrForbidden = errors.New("forbidden")

var policy = map[Capability][]identity.Role{
	WalletView:      {identity.RolePatient, identity.RoleDoctor, identity.RoleAdmin},
	WalletRecharge:  {identity.RolePatient},
	WalletPay:       {identity.RolePatient},
	WalletRefund:    {identity.RoleAdmin},
	FinanceOverview: {identity.RoleAdmin},
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   identity.Role
}

// Allowed reports whether role grants capability. Unknown capabilities are
// denied.
func Allowed(role identity.Role, capability Capability) bool {
	for _, r := range policy[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// Check returns ErrForbidden when p lacks capability.
func (p Principal) Check(capability Capability) error {
	if p.UserID == "" || !Allowed(p.Role, capability) {
		return ErrForbidden
	}
	return nil
}
