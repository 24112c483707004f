package compliance

import "time"

// Jurisdiction is a named legal regime carrying a fixed requirement set.
type Jurisdiction string

const (
	JurisdictionEU     Jurisdiction = "EU"     // GDPR
	JurisdictionUSCA   Jurisdiction = "US_CA"  // CCPA
	JurisdictionUSVA   Jurisdiction = "US_VA"  // VCDPA
	JurisdictionUSCO   Jurisdiction = "US_CO"  // CPA
	JurisdictionUK     Jurisdiction = "UK"     // UK GDPR
	JurisdictionIndia  Jurisdiction = "IN"     // DPDP
	JurisdictionBrazil Jurisdiction = "BR"     // LGPD
	JurisdictionCanada Jurisdiction = "CA"     // PIPEDA
	JurisdictionAU     Jurisdiction = "AU"     // Privacy Act
	JurisdictionSG     Jurisdiction = "SG"     // PDPA

	// JurisdictionGlobal is the synthetic fallback when no location maps to
	// a known regime. The merge substitutes the two strictest known laws.
	JurisdictionGlobal Jurisdiction = "GLOBAL"
)

// PurposeLimitation is ordered none < moderate < strict.
type PurposeLimitation string

const (
	PurposeLimitationNone     PurposeLimitation = "none"
	PurposeLimitationModerate PurposeLimitation = "moderate"
	PurposeLimitationStrict   PurposeLimitation = "strict"
)

// Rank returns the ordinal strictness of the limitation for comparisons.
func (p PurposeLimitation) Rank() int {
	switch p {
	case PurposeLimitationModerate:
		return 1
	case PurposeLimitationStrict:
		return 2
	default:
		return 0
	}
}

// Requirements is the per-law attribute bag. Booleans merge by OR, breach
// notification by minimum non-nil hours, purpose limitation by ordinal max.
type Requirements struct {
	ConsentRequired             bool              `json:"consent_required"`
	ExplicitConsentForSensitive bool              `json:"explicit_consent_for_sensitive"`
	RightToErasure              bool              `json:"right_to_erasure"`
	DataPortability             bool              `json:"data_portability"`
	BreachNotificationHours     *int              `json:"breach_notification_hours"`
	DPORequired                 bool              `json:"dpo_required"`
	CrossBorderRestrictions     bool              `json:"cross_border_restrictions"`
	ProfilingOptOut             bool              `json:"profiling_opt_out"`
	AutomatedDecisionRights     bool              `json:"automated_decision_rights"`
	PurposeLimitation           PurposeLimitation `json:"purpose_limitation"`
	DataMinimization            bool              `json:"data_minimization"`
	RetentionLimits             bool              `json:"retention_limits"`
}

// Law is static reference data describing one privacy regime.
type Law struct {
	Name            string       `json:"name"`
	FullName        string       `json:"full_name"`
	Region          string       `json:"region"`
	StrictnessScore float64      `json:"strictness_score"`
	Requirements    Requirements `json:"requirements"`
}

// LawSummary is the list view of a law.
type LawSummary struct {
	Jurisdiction    Jurisdiction `json:"jurisdiction"`
	Name            string       `json:"name"`
	FullName        string       `json:"full_name"`
	Region          string       `json:"region"`
	StrictnessScore float64      `json:"strictness_score"`
}

// Merged is the strictest-requirement combination over a jurisdiction set.
type Merged struct {
	Requirements    Requirements   `json:"merged_requirements"`
	ApplicableLaws  []string       `json:"applicable_laws"`
	StrictnessScore float64        `json:"strictness_score"`
	Jurisdictions   []Jurisdiction `json:"jurisdictions"`
}

// IssueSeverity distinguishes blocking findings from advisory ones.
type IssueSeverity string

const (
	SeverityBlocking IssueSeverity = "blocking"
	SeverityWarning  IssueSeverity = "warning"
)

// Issue is a single compliance finding.
type Issue struct {
	Code     string        `json:"issue"`
	Severity IssueSeverity `json:"severity"`
	Laws     []string      `json:"laws,omitempty"`
	Message  string        `json:"message"`
}

const (
	IssueConsentRequired     = "CONSENT_REQUIRED"
	IssuePurposeLimitation   = "PURPOSE_LIMITATION"
	IssueCrossBorderTransfer = "CROSS_BORDER_TRANSFER"
)

// Request is the compliance view of a data-access request.
type Request struct {
	RequesterID         string
	Purpose             string
	DataSensitivity     string
	ConsentVerified     bool
	DataSubjectLocation string
	RequesterLocation   string
	DataStorageLocation string
}

// Evaluation is the outcome of a compliance check. Compliant iff there are
// no blocking issues; warnings and required actions are advisory.
type Evaluation struct {
	Compliant       bool           `json:"is_compliant"`
	Jurisdictions   []Jurisdiction `json:"jurisdictions"`
	ApplicableLaws  []string       `json:"applicable_laws"`
	StrictnessScore float64        `json:"strictness_score"`
	Requirements    Requirements   `json:"requirements_applied"`
	Issues          []Issue        `json:"compliance_issues"`
	RequiredActions []string       `json:"required_actions"`
	EvaluatedAt     time.Time      `json:"evaluated_at"`
}

// CheckEntry is one row of the bounded compliance-check log.
type CheckEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	RequesterID    string    `json:"requester_id"`
	Purpose        string    `json:"purpose"`
	Sensitivity    string    `json:"sensitivity"`
	Compliant      bool      `json:"is_compliant"`
	ApplicableLaws []string  `json:"applicable_laws"`
	IssueCount     int       `json:"issues_count"`
}

// Report aggregates recent compliance checks.
type Report struct {
	TotalChecks       int            `json:"total_checks"`
	CompliantRequests int            `json:"compliant_requests"`
	ComplianceRate    float64        `json:"compliance_rate"`
	LawsApplied       map[string]int `json:"laws_applied"`
	RecentChecks      []CheckEntry   `json:"recent_checks"`
}
