package audit

import "time"

// Decision values recorded on audit entries.
const (
	DecisionAllow = "ALLOW"
	DecisionDeny  = "DENY"
)

// Record is the append-only audit entry for a single access decision.
// It is emitted from the decision orchestrator and never mutated afterwards;
// erasure of audit data is a field-anonymization operation, not a row delete.
type Record struct {
	ID           int64
	Timestamp    time.Time
	RequesterID  string
	Role         string
	Purpose      string
	Jurisdiction string
	Sensitivity  string
	Decision     string
	Reason       string
	RiskScore    float64
	Metadata     map[string]any
}

// Query filters audit reads. Zero values mean "no filter".
type Query struct {
	RequesterID string
	Decision    string
	Limit       int
	Offset      int
}

// Stats summarizes recorded decisions.
type Stats struct {
	TotalRequests int
	Allowed       int
	Denied        int
	AllowRate     float64
}
