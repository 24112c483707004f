package erasure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"privy/internal/platform/metrics"
	dErrors "privy/pkg/domain-errors"
	platformsync "privy/pkg/platform/sync"
	"privy/pkg/platform/tracer"
)

const defaultReason = "consent_withdrawal"

type Option func(*Service)

// Service orchestrates right-to-be-forgotten erasure. Triggering a request
// blocks the subject immediately, fans the purge out across the registered
// data layers, aggregates per-layer outcomes into an overall status, and
// seals a deletion certificate when every layer completed or was skipped.
//
// The block is applied strictly before any handler runs and is never rolled
// back. Handlers execute in parallel; the status computation joins all of
// them, it never races.
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer

	handlers map[DataLayer]Handler

	keys *platformsync.ShardedMutex

	mu        sync.RWMutex
	blocked   map[string]time.Time
	active    map[string]*Request
	completed []*Request
}

func NewService(auditor AuditAnonymizer, opts ...Option) *Service {
	svc := &Service{
		tracer:   tracer.NewNoop(),
		handlers: defaultHandlers(auditor),
		keys:     platformsync.NewShardedMutex(),
		blocked:  make(map[string]time.Time),
		active:   make(map[string]*Request),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for the purge pipeline.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithHandler replaces the purge handler for one layer.
func WithHandler(layer DataLayer, h Handler) Option {
	return func(s *Service) {
		s.handlers[layer] = h
	}
}

// Trigger starts the erasure workflow for a subject. The subject joins the
// block set before any purge executes; purge handlers then run in parallel
// with per-layer fault isolation. A certificate is attached and the request
// moves to the immutable completed list only when the overall status is
// completed.
// Errors: CodeInvalidInput for a missing subject id.
func (s *Service) Trigger(ctx context.Context, subjectID, requestedBy, reason string, scope []string) (Request, error) {
	if subjectID == "" {
		return Request{}, dErrors.New(dErrors.CodeInvalidInput, "subject_id must not be empty")
	}
	if reason == "" {
		reason = defaultReason
	}
	if len(scope) == 0 {
		scope = []string{ScopeAll}
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanErasureTrigger,
		tracer.String(tracer.AttrSubjectID, tracer.HashSubjectID(subjectID)),
	)
	var retErr error
	defer func() { span.End(retErr) }()

	now := time.Now().UTC()

	s.keys.Lock(subjectID)
	defer s.keys.Unlock(subjectID)

	// Block first. This precedes every purge step and survives purge
	// failure.
	s.mu.Lock()
	s.blocked[subjectID] = now
	s.mu.Unlock()
	span.AddEvent(tracer.EventSubjectBlocked)

	request := &Request{
		ID:            newRequestID(subjectID, now),
		SubjectID:     subjectID,
		RequestedBy:   requestedBy,
		Reason:        reason,
		Scope:         append([]string(nil), scope...),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		LayerStatus:   make(map[DataLayer]LayerResult, len(AllLayers)),
		AccessBlocked: true,
	}
	s.mu.Lock()
	s.active[request.ID] = request
	s.mu.Unlock()

	layerResults := s.executePurge(ctx, request.ID, subjectID, scope)
	status := overallStatus(layerResults)
	finishedAt := time.Now().UTC()

	var cert *Certificate
	if status == StatusCompleted {
		var layers []string
		for layer := range layerResults {
			layers = append(layers, string(layer))
		}
		cert = newCertificate(request.ID, subjectID, layers, finishedAt)
	}

	// The request pointer is already published in s.active, so every
	// post-purge mutation happens under mu; Requests and RequestStatus
	// copy it under mu.RLock.
	s.mu.Lock()
	request.LayerStatus = layerResults
	request.Status = status
	request.UpdatedAt = finishedAt
	request.Certificate = cert
	if status == StatusCompleted {
		delete(s.active, request.ID)
		s.completed = append(s.completed, request)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ErasureRequests.WithLabelValues(string(request.Status)).Inc()
	}
	s.log(ctx, slog.LevelInfo, "erasure_triggered",
		"request_id", request.ID,
		"status", request.Status,
		"requested_by", requestedBy,
	)
	return copyRequest(request), nil
}

// executePurge fans out over the registered layers, joining all results.
// Layers outside the scope are marked skipped without running; a handler
// error or panic records a failed layer and nothing else.
func (s *Service) executePurge(ctx context.Context, requestID, subjectID string, scope []string) map[DataLayer]LayerResult {
	inScope := scopeSet(scope)

	var resultMu sync.Mutex
	results := make(map[DataLayer]LayerResult, len(AllLayers))

	g, ctx := errgroup.WithContext(ctx)
	for layer := range s.handlers {
		layer := layer
		g.Go(func() error {
			result := s.purgeLayer(ctx, layer, requestID, subjectID, inScope)
			resultMu.Lock()
			results[layer] = result
			resultMu.Unlock()
			return nil
		})
	}
	// Handlers never surface errors to the group; failures live in the
	// per-layer results.
	_ = g.Wait()
	return results
}

func (s *Service) purgeLayer(ctx context.Context, layer DataLayer, requestID, subjectID string, inScope map[string]bool) (result LayerResult) {
	if !inScope[ScopeAll] && !inScope[string(layer)] {
		return LayerResult{
			Status:    LayerSkipped,
			Reason:    "Not in scope",
			Timestamp: time.Now().UTC(),
		}
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanErasurePurge,
		tracer.String(tracer.AttrLayer, string(layer)),
	)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrLayerStatus, string(result.Status)))
		span.End(nil)
	}()

	defer func() {
		if r := recover(); r != nil {
			result = s.failedResult(ctx, layer, fmt.Sprintf("handler panic: %v", r))
		}
	}()

	outcome, err := s.handlers[layer](ctx, subjectID, requestID)
	if err != nil {
		return s.failedResult(ctx, layer, err.Error())
	}
	return LayerResult{
		Status:          LayerCompleted,
		RecordsAffected: outcome.RecordsAffected,
		Timestamp:       time.Now().UTC(),
		Details:         outcome.Details,
	}
}

func (s *Service) failedResult(ctx context.Context, layer DataLayer, errMsg string) LayerResult {
	if s.metrics != nil {
		s.metrics.LayerFailures.WithLabelValues(string(layer)).Inc()
	}
	s.log(ctx, slog.LevelError, "layer_purge_failed",
		"layer", layer,
		"error", errMsg,
	)
	return LayerResult{
		Status:    LayerFailed,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	}
}

// IsBlocked is the O(1) membership check the decision orchestrator runs
// before any other verdict.
func (s *Service) IsBlocked(subjectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, blocked := s.blocked[subjectID]
	return blocked
}

// RequestStatus looks up an erasure request by id, active or completed.
// Errors: CodeNotFound for an unknown id.
func (s *Service) RequestStatus(requestID string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if request, ok := s.active[requestID]; ok {
		return copyRequest(request), nil
	}
	for _, request := range s.completed {
		if request.ID == requestID {
			return copyRequest(request), nil
		}
	}
	return Request{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no erasure request %s", requestID))
}

// CertificateForSubject finds a deletion certificate by the subject's
// fingerprint, never by the raw id.
// Errors: CodeNotFound when no completed purge exists for the subject.
func (s *Service) CertificateForSubject(subjectID string) (Certificate, error) {
	fingerprint := SubjectFingerprint(subjectID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, request := range s.completed {
		if request.Certificate != nil && request.Certificate.SubjectFingerprint == fingerprint {
			return *request.Certificate, nil
		}
	}
	return Certificate{}, dErrors.New(dErrors.CodeNotFound, "no deletion certificate for subject")
}

// Requests lists erasure requests, optionally filtered by status.
func (s *Service) Requests(status PurgeStatus) []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Request
	for _, request := range s.active {
		if status == "" || request.Status == status {
			out = append(out, copyRequest(request))
		}
	}
	for _, request := range s.completed {
		if status == "" || request.Status == status {
			out = append(out, copyRequest(request))
		}
	}
	return out
}

// overallStatus joins the per-layer results: completed iff every layer
// completed or was skipped, failed iff any failed and none completed,
// partial otherwise.
func overallStatus(results map[DataLayer]LayerResult) PurgeStatus {
	allDone := true
	anyFailed := false
	anyCompleted := false
	for _, r := range results {
		switch r.Status {
		case LayerCompleted:
			anyCompleted = true
		case LayerFailed:
			anyFailed = true
			allDone = false
		case LayerSkipped:
		default:
			allDone = false
		}
	}
	switch {
	case allDone:
		return StatusCompleted
	case anyFailed && !anyCompleted:
		return StatusFailed
	case anyFailed:
		return StatusPartial
	default:
		return StatusInProgress
	}
}

func scopeSet(scope []string) map[string]bool {
	set := make(map[string]bool, len(scope))
	for _, entry := range scope {
		set[entry] = true
	}
	return set
}

func copyRequest(r *Request) Request {
	out := *r
	out.Scope = append([]string(nil), r.Scope...)
	out.LayerStatus = make(map[DataLayer]LayerResult, len(r.LayerStatus))
	for layer, result := range r.LayerStatus {
		out.LayerStatus[layer] = result
	}
	if r.Certificate != nil {
		cert := *r.Certificate
		out.Certificate = &cert
	}
	return out
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
