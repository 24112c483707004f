package policy

import "fmt"

// Static permission tables. The matrix is deliberately data, not code:
// adding a role or purpose is a table edit, never a new branch.
var (
	validPurposes = map[string]bool{
		"analytics":   true,
		"research":    true,
		"marketing":   true,
		"operational": true,
		"compliance":  true,
		"audit":       true,
		"reporting":   true,
	}

	validJurisdictions = map[string]bool{
		"EU": true, "UK": true, "GB": true, "US": true, "US_CA": true,
		"US_VA": true, "US_CO": true, "CA": true, "IN": true, "BR": true,
		"SG": true, "AU": true, "DE": true, "FR": true, "IT": true,
		"ES": true, "NL": true,
	}

	rolePurposes = map[Role]map[string]bool{
		RoleAdmin: {
			"analytics": true, "research": true, "marketing": true,
			"operational": true, "compliance": true, "audit": true,
			"reporting": true,
		},
		RoleAnalyst: {
			"analytics": true, "research": true, "reporting": true,
			"operational": true, "audit": true,
		},
		RoleExternal: {
			"reporting": true, "analytics": true,
		},
	}

	roleMaxSensitivity = map[Role]Sensitivity{
		RoleAdmin:    SensitivityHigh,
		RoleAnalyst:  SensitivityMedium,
		RoleExternal: SensitivityLow,
	}
)

// Service evaluates access requests against the static
// role x purpose x jurisdiction x sensitivity matrix. It is stateless and
// safe for concurrent use.
type Service struct{}

// New creates a policy service.
func New() *Service {
	return &Service{}
}

// Evaluate runs the four policy checks in order. The first failing check
// short-circuits and is reported; success requires all four to pass.
func (s *Service) Evaluate(req Request) Verdict {
	role, err := ParseRole(req.Role)
	if err != nil {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown role %q", req.Role),
			Checks:  Checks{},
		}
	}
	checks := Checks{RoleValid: true}

	if !validPurposes[req.Purpose] {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("purpose %q is not a recognized purpose", req.Purpose),
			Checks:  checks,
		}
	}
	if !validJurisdictions[req.Jurisdiction] {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("jurisdiction %q is not a recognized jurisdiction", req.Jurisdiction),
			Checks:  checks,
		}
	}
	checks.JurisdictionAllowed = true

	sensitivity, err := ParseSensitivity(req.Sensitivity)
	if err != nil {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("sensitivity %q is not a recognized level", req.Sensitivity),
			Checks:  checks,
		}
	}

	if !rolePurposes[role][req.Purpose] {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("purpose %q is not permitted for role %s", req.Purpose, role),
			Checks:  checks,
		}
	}
	checks.PurposeAllowed = true

	if sensitivity.Rank() > roleMaxSensitivity[role].Rank() {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("sensitivity %s exceeds maximum allowed for %s", sensitivity, role),
			Checks:  checks,
		}
	}
	checks.SensitivityAllowed = true

	return Verdict{
		Allowed: true,
		Reason:  "all policy checks passed",
		Checks:  checks,
	}
}
