package risk

// Tier classifies a risk score into coarse bands for reporting.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Factors holds the four independent weight lookups for a request.
// Each factor is in [0, 1].
type Factors struct {
	Role         float64 `json:"role_weight"`
	Sensitivity  float64 `json:"sensitivity_weight"`
	Purpose      float64 `json:"purpose_weight"`
	Jurisdiction float64 `json:"jurisdiction_weight"`
}

// Request is the risk-scorer view of an access request.
type Request struct {
	Role         string
	Purpose      string
	Jurisdiction string
	Sensitivity  string
}

// Assessment is the outcome of a risk evaluation. Deterministic, no state.
type Assessment struct {
	Score            float64 `json:"risk_score"`
	Tier             Tier    `json:"risk_level"`
	Threshold        float64 `json:"threshold"`
	ExceedsThreshold bool    `json:"exceeds_threshold"`
	Factors          Factors `json:"risk_factors"`
}
