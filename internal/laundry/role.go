package laundry

import (
	"fmt"
	"strings"
)

// Role selects which set of pages a session may use.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Roles lists the selectable login roles.
var Roles = []Role{RoleStudent, RoleAdmin}

// ParseRole accepts a role name in any letter case.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// DashboardPath is where a freshly logged-in role lands.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

// Wash service tiers.
const (
	WashNormal   = "Normal"
	WashPremium  = "Premium"
	WashDryClean = "Dry Clean"
)

// WashTypes lists the offered service tiers.
var WashTypes = []string{WashNormal, WashPremium, WashDryClean}

// DetergentTypes lists the detergents a student can pick for an order.
var DetergentTypes = []string{"Standard", "Hypoallergenic"}
