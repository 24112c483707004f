package budget

import (
	"fmt"
	"time"

	dErrors "privy/pkg/domain-errors"
)

// QueryType classifies how a query aggregates data. Cost grows from
// aggregate to raw.
type QueryType string

const (
	QueryAggregate  QueryType = "aggregate"
	QueryIndividual QueryType = "individual"
	QueryRaw        QueryType = "raw"
)

// ParseQueryType validates and parses a query type string.
func ParseQueryType(s string) (QueryType, error) {
	switch QueryType(s) {
	case QueryAggregate, QueryIndividual, QueryRaw:
		return QueryType(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown query type: %q", s))
	}
}

// AlertLevel signals how depleted a subject's budget is.
type AlertLevel string

const (
	AlertNormal    AlertLevel = "normal"
	AlertWarning   AlertLevel = "warning"
	AlertCritical  AlertLevel = "critical"
	AlertExhausted AlertLevel = "exhausted"
)

// Account is a subject's windowed epsilon budget. Invariant:
// 0 <= Remaining <= Total. The window rolls lazily on the next access after
// it elapses; there is no background sweeper.
type Account struct {
	SubjectID      string
	Total          float64
	Remaining      float64
	WindowStart    time.Time
	WindowDuration time.Duration
	QueryCount     int
	LastQueryAt    *time.Time
}

// AlertLevel derives the depletion alert from the remaining ratio.
func (a Account) AlertLevel() AlertLevel {
	if a.Total <= 0 {
		return AlertExhausted
	}
	ratio := a.Remaining / a.Total
	switch {
	case a.Remaining == 0:
		return AlertExhausted
	case ratio < 0.1:
		return AlertCritical
	case ratio < 0.3:
		return AlertWarning
	default:
		return AlertNormal
	}
}

// Decision is the outcome of a check-and-consume attempt.
type Decision struct {
	Allowed          bool       `json:"allowed"`
	Reason           string     `json:"reason"`
	QueryCost        float64    `json:"query_cost"`
	BudgetRemaining  float64    `json:"budget_remaining"`
	BudgetTotal      float64    `json:"budget_total"`
	BudgetPercentage float64    `json:"budget_percentage"`
	QueryCount       int        `json:"queries_count"`
	AlertLevel       AlertLevel `json:"alert_level"`
	WindowResetsAt   time.Time  `json:"window_resets_at"`
	BlockedUntil     *time.Time `json:"blocked_until,omitempty"`
}

// Status is a read-only snapshot of a subject's budget.
type Status struct {
	SubjectID        string     `json:"subject_id"`
	Total            float64    `json:"total_budget"`
	Remaining        float64    `json:"remaining_budget"`
	BudgetPercentage float64    `json:"budget_percentage"`
	QueryCount       int        `json:"queries_count"`
	WindowStart      time.Time  `json:"window_start"`
	WindowResetsAt   time.Time  `json:"window_resets_at"`
	AlertLevel       AlertLevel `json:"alert_level"`
	LastQueryAt      *time.Time `json:"last_query,omitempty"`
}

// HistoryEntry is one row of the bounded per-subject query history.
type HistoryEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	RequesterID string    `json:"requester_id"`
	Cost        float64   `json:"cost"`
	Allowed     bool      `json:"allowed"`
	Reason      string    `json:"reason"`
	Purpose     string    `json:"purpose"`
}

// ConsumeRequest is one check-and-consume attempt.
type ConsumeRequest struct {
	SubjectID   string
	RequesterID string
	QueryType   QueryType
	Sensitivity string
	NumRecords  int
	Purpose     string
}
