// Package tracer provides a lightweight tracing abstraction for the decision
// and erasure pipelines.
//
// The internal Tracer interface keeps domain packages decoupled from
// OpenTelemetry APIs while still emitting distributed traces in production.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to
	// child operations. The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashSubjectID returns a SHA-256 hash prefix of a subject ID for safe
// logging in traces. Allows correlation without exposing the raw identifier.
func HashSubjectID(subjectID string) string {
	if subjectID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(subjectID))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the decision and erasure pipelines.
const (
	SpanDecisionEvaluate = "decision.evaluate"
	SpanDecisionEnhanced = "decision.evaluate_enhanced"
	SpanErasureTrigger   = "erasure.trigger"
	SpanErasurePurge     = "erasure.purge_layer"
)

// Attribute keys used by the decision and erasure pipelines.
const (
	AttrRequesterID = "requester_id"
	AttrSubjectID   = "subject_id"
	AttrDecision    = "decision"
	AttrRiskScore   = "risk_score"
	AttrLayer       = "layer"
	AttrLayerStatus = "layer_status"
)

// Event names.
const (
	EventAuditEmitted   = "audit.emitted"
	EventSubjectBlocked = "subject.blocked"
)
