package token

import "time"

// Status of a capability token. Destruction is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusDestroyed Status = "destroyed"
	StatusNotFound  Status = "not_found"
)

// Destruction reason labels for metrics.
const (
	reasonTTL          = "ttl_expired"
	reasonMaxUses      = "max_uses"
	reasonExhausted    = "all_uses_consumed"
	reasonTaskComplete = "task_completed"
)

// AccessEntry is one row of a token's access log.
type AccessEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	RemainingUses int       `json:"remaining_uses"`
}

// Token is the authoritative server-side record of a capability token.
// The signed JWT carries the same fields but the server record alone
// decides validity: use counting happens here, not in the signed payload.
type Token struct {
	ID          string
	UserID      string
	TaskID      string
	TaskType    string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	MaxUses     int
	CurrentUses int
	DataScope   []string
	AccessLog   []AccessEntry
}

// RemainingUses returns how many consumptions are left.
func (t Token) RemainingUses() int {
	return t.MaxUses - t.CurrentUses
}

// revocation is what survives a token's destruction.
type revocation struct {
	Reason      string
	DestroyedAt time.Time
}

// SelfDestructPolicy documents the three destruction triggers on issuance.
type SelfDestructPolicy struct {
	OnExpiry       bool `json:"on_expiry"`
	OnMaxUses      bool `json:"on_max_uses"`
	OnTaskComplete bool `json:"on_task_complete"`
}

// Issued is the response to a token issuance.
type Issued struct {
	Token              string             `json:"token"`
	TokenID            string             `json:"token_id"`
	TaskID             string             `json:"task_id"`
	ExpiresAt          time.Time          `json:"expires_at"`
	TTLSeconds         int                `json:"max_ttl_seconds"`
	MaxUses            int                `json:"max_uses"`
	DataScope          []string           `json:"data_scope"`
	SelfDestructPolicy SelfDestructPolicy `json:"self_destruct_policy"`
}

// Validation is the outcome of a validate-and-consume attempt. The call
// that consumes the final use reports Valid and Destroyed together.
type Validation struct {
	Valid         bool     `json:"valid"`
	Reason        string   `json:"reason"`
	Destroyed     bool     `json:"destroyed"`
	RemainingUses int      `json:"remaining_uses,omitempty"`
	DataScope     []string `json:"data_scope,omitempty"`
	TaskID        string   `json:"task_id,omitempty"`
	UserID        string   `json:"user_id,omitempty"`
}

// StatusInfo is a read-only view of a token's lifecycle state.
type StatusInfo struct {
	Status        Status     `json:"status"`
	TokenID       string     `json:"token_id"`
	RemainingUses int        `json:"remaining_uses,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	TaskID        string     `json:"task_id,omitempty"`
}

// ActiveToken is the per-user listing view.
type ActiveToken struct {
	TokenID       string    `json:"token_id"`
	TaskID        string    `json:"task_id"`
	RemainingUses int       `json:"remaining_uses"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CompletionSummary reports a task-completion destruction sweep.
type CompletionSummary struct {
	TaskID            string    `json:"task_id"`
	TokensDestroyed   int       `json:"tokens_destroyed"`
	DestructionReason string    `json:"destruction_reason"`
	Timestamp         time.Time `json:"timestamp"`
}
