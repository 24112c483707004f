package decision

import (
	"privy/internal/budget"
	"privy/internal/compliance"
	"privy/internal/consent"
	"privy/internal/policy"
	"privy/internal/risk"
)

// Pipeline labels on metrics and audit metadata.
const (
	PipelineBasic    = "basic"
	PipelineEnhanced = "enhanced"
)

// ReasonErasureBlocked is the fixed denial for requesters under an active
// erasure block. It short-circuits every other check and never varies, so
// callers cannot probe the remaining checks for an erased subject.
const ReasonErasureBlocked = "Access permanently blocked: subject data erased under right-to-be-forgotten"

// Request is one access-decision request. The first five fields drive the
// basic pipeline; the rest only matter to the enhanced one.
type Request struct {
	RequesterID  string `json:"requester_id"`
	Role         string `json:"role"`
	Purpose      string `json:"purpose"`
	Jurisdiction string `json:"location"`
	Sensitivity  string `json:"data_sensitivity"`

	// Enhanced pipeline. SubjectID defaults to RequesterID when empty.
	SubjectID         string `json:"subject_id,omitempty"`
	QueryType         string `json:"query_type,omitempty"`
	NumRecords        int    `json:"num_records,omitempty"`
	SubjectLocation   string `json:"data_subject_location,omitempty"`
	RequesterLocation string `json:"requester_location,omitempty"`
	StorageLocation   string `json:"data_storage_location,omitempty"`

	// Transport-supplied audit context. Never an input to any check.
	Device     string `json:"-"`
	RemoteAddr string `json:"-"`
}

// Subject is whose data the request touches.
func (r Request) Subject() string {
	if r.SubjectID != "" {
		return r.SubjectID
	}
	return r.RequesterID
}

// Result is the orchestrated verdict with every sub-check's detail payload.
// Budget and Compliance are nil on the basic pipeline.
type Result struct {
	Decision      string                 `json:"decision"`
	Reason        string                 `json:"reason"`
	RiskScore     float64                `json:"risk_score"`
	PolicyChecks  policy.Verdict         `json:"policy_checks"`
	ConsentStatus consent.Verdict        `json:"consent_status"`
	Risk          risk.Assessment        `json:"risk_assessment"`
	Budget        *budget.Decision       `json:"budget_status,omitempty"`
	Compliance    *compliance.Evaluation `json:"compliance,omitempty"`
	AuditID       int64                  `json:"audit_id,omitempty"`
}
