package consent

import (
	"sort"
	"time"
)

// Record is a subject's consent grant. Grants replace the record wholesale;
// there is no merging of partial grants. Absence of a record means no
// purpose is granted.
type Record struct {
	SubjectID       string          `json:"subject_id"`
	GrantedPurposes map[string]bool `json:"granted_purposes"`
	GrantedAt       time.Time       `json:"granted_at"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

// Purposes returns the granted purposes as a sorted slice for display.
func (r Record) Purposes() []string {
	out := make([]string, 0, len(r.GrantedPurposes))
	for p := range r.GrantedPurposes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Verdict is the outcome of a consent check.
type Verdict struct {
	HasConsent      bool       `json:"has_consent"`
	Reason          string     `json:"reason"`
	GrantedPurposes []string   `json:"granted_purposes,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}
