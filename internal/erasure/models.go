package erasure

import "time"

// DataLayer names one purge target in the fixed fan-out set.
type DataLayer string

const (
	LayerPrimaryDB   DataLayer = "primary_database"
	LayerCache       DataLayer = "cache_layer"
	LayerSearchIndex DataLayer = "search_index"
	LayerMLModels    DataLayer = "ml_models"
	LayerAnalytics   DataLayer = "analytics_store"
	LayerBackups     DataLayer = "backup_systems"
	LayerAuditLogs   DataLayer = "audit_logs"
	LayerThirdParty  DataLayer = "third_party_services"
)

// AllLayers is the fixed ordered purge set.
var AllLayers = []DataLayer{
	LayerPrimaryDB,
	LayerCache,
	LayerSearchIndex,
	LayerMLModels,
	LayerAnalytics,
	LayerBackups,
	LayerAuditLogs,
	LayerThirdParty,
}

// ScopeAll marks a request covering every layer.
const ScopeAll = "all"

// PurgeStatus of an erasure request as a whole.
type PurgeStatus string

const (
	StatusPending    PurgeStatus = "pending"
	StatusInProgress PurgeStatus = "in_progress"
	StatusCompleted  PurgeStatus = "completed"
	StatusPartial    PurgeStatus = "partial"
	StatusFailed     PurgeStatus = "failed"
)

// LayerState of a single layer within a request.
type LayerState string

const (
	LayerCompleted LayerState = "completed"
	LayerSkipped   LayerState = "skipped"
	LayerFailed    LayerState = "failed"
)

// LayerResult records one layer's purge outcome.
type LayerResult struct {
	Status          LayerState     `json:"status"`
	RecordsAffected int            `json:"records_affected,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	Error           string         `json:"error,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
	Details         map[string]any `json:"details,omitempty"`
}

// Outcome is what a layer handler reports on success.
type Outcome struct {
	RecordsAffected int
	Details         map[string]any
}

// Request is one erasure workflow instance. The subject enters the block
// set before any purge runs and is never unblocked, even when every layer
// fails.
type Request struct {
	ID            string                    `json:"request_id"`
	SubjectID     string                    `json:"subject_id"`
	RequestedBy   string                    `json:"requested_by"`
	Reason        string                    `json:"reason"`
	Scope         []string                  `json:"scope"`
	Status        PurgeStatus               `json:"status"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	LayerStatus   map[DataLayer]LayerResult `json:"layer_status"`
	AccessBlocked bool                      `json:"access_blocked"`
	Certificate   *Certificate              `json:"deletion_certificate,omitempty"`
}

// Certificate is the immutable cryptographic proof of a completed purge.
// The subject id appears only as a one-way fingerprint, and consumers can
// recompute CertificateHash from the other fields to verify integrity.
type Certificate struct {
	RequestID           string    `json:"request_id"`
	SubjectFingerprint  string    `json:"subject_id_hash"`
	Timestamp           time.Time `json:"deletion_timestamp"`
	LayersPurged        []string  `json:"layers_purged"`
	ComplianceStandards []string  `json:"compliance_standards"`
	CertificateHash     string    `json:"certificate_hash"`
}
