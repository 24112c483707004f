package policy

import (
	"fmt"

	dErrors "privy/pkg/domain-errors"
)

// Role enumerates the requester roles known to the policy table.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAnalyst  Role = "analyst"
	RoleExternal Role = "external"
)

// ParseRole validates and parses a role string.
//
// Usage: call at trust boundaries for external input.
// Errors: returns CodeInvalidInput for unknown roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleAnalyst, RoleExternal:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown role: %q", s))
	}
}

// Sensitivity enumerates data sensitivity levels, ordered low < medium < high.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ParseSensitivity validates and parses a sensitivity string.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(s) {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		return Sensitivity(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown data sensitivity: %q", s))
	}
}

// Rank returns the ordinal position of the sensitivity level for comparisons.
func (s Sensitivity) Rank() int {
	switch s {
	case SensitivityLow:
		return 0
	case SensitivityMedium:
		return 1
	case SensitivityHigh:
		return 2
	default:
		return -1
	}
}

// Request is the policy-table view of an access request.
type Request struct {
	Role         string
	Purpose      string
	Jurisdiction string
	Sensitivity  string
}

// Checks carries the per-check booleans of a policy evaluation.
type Checks struct {
	RoleValid           bool `json:"role_valid"`
	PurposeAllowed      bool `json:"purpose_allowed"`
	JurisdictionAllowed bool `json:"jurisdiction_allowed"`
	SensitivityAllowed  bool `json:"sensitivity_allowed"`
}

// Verdict is the outcome of a policy evaluation. Pure function of the
// request and the static permission table; no lifecycle.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Checks  Checks `json:"checks"`
}
