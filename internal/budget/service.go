package budget

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"privy/internal/platform/metrics"
	dErrors "privy/pkg/domain-errors"
	platformsync "privy/pkg/platform/sync"
)

const (
	// DefaultEpsilon is the per-subject budget granted per window.
	DefaultEpsilon = 1.0

	// DefaultWindow is the budget reset window.
	DefaultWindow = 24 * time.Hour

	defaultBlockDuration = time.Hour
	historyCap           = 1000
	defaultHistoryLimit  = 50
)

// epsilonCosts is the base cost table, query type x sensitivity.
var epsilonCosts = map[QueryType]map[string]float64{
	QueryAggregate: {
		"low":    0.01,
		"medium": 0.05,
		"high":   0.1,
	},
	QueryIndividual: {
		"low":    0.1,
		"medium": 0.25,
		"high":   0.5,
	},
	QueryRaw: {
		"low":    0.3,
		"medium": 0.5,
		"high":   1.0,
	},
}

type Option func(*Service)

// Service is the privacy budget ledger. Each subject holds a windowed
// epsilon allowance consumed by queries; exhaustion denies further queries
// until the window rolls. Requesters can be temporarily blocked for abuse.
//
// Per-subject read-modify-write sequences (window roll + consume) are
// serialized by a sharded key lock so unrelated subjects never contend.
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	defaultEpsilon float64
	defaultWindow  time.Duration

	keys *platformsync.ShardedMutex

	mu       sync.RWMutex
	accounts map[string]*Account
	history  map[string][]HistoryEntry

	blockMu sync.RWMutex
	blocked map[string]time.Time
}

func NewService(opts ...Option) *Service {
	svc := &Service{
		defaultEpsilon: DefaultEpsilon,
		defaultWindow:  DefaultWindow,
		keys:           platformsync.NewShardedMutex(),
		accounts:       make(map[string]*Account),
		history:        make(map[string][]HistoryEntry),
		blocked:        make(map[string]time.Time),
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

// WithDefaultWindow overrides the default budget reset window.
func WithDefaultWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.defaultWindow = d
		}
	}
}

// Cost computes the epsilon cost of a query: base cost from the fixed
// table, scaled by 1 + ln(n)/10 when more than one record is touched.
// Errors: CodeInvalidInput for unknown query type or sensitivity.
func (s *Service) Cost(queryType QueryType, sensitivity string, numRecords int) (float64, error) {
	bySensitivity, ok := epsilonCosts[queryType]
	if !ok {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown query type: %q", queryType))
	}
	base, ok := bySensitivity[sensitivity]
	if !ok {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown data sensitivity: %q", sensitivity))
	}
	if numRecords > 1 {
		return base * (1 + math.Log(float64(numRecords))/10), nil
	}
	return base, nil
}

// CheckAndConsume checks the requester block list, lazily rolls the
// subject's window, and either consumes the query cost atomically or denies
// without mutating the account. Every attempt, allowed or denied, is
// appended to the subject's bounded history.
// Errors: CodeInvalidInput for unknown enum values, before any state change.
func (s *Service) CheckAndConsume(ctx context.Context, req ConsumeRequest) (Decision, error) {
	if req.SubjectID == "" {
		return Decision{}, dErrors.New(dErrors.CodeInvalidInput, "subject_id must not be empty")
	}
	cost, err := s.Cost(req.QueryType, req.Sensitivity, req.NumRecords)
	if err != nil {
		return Decision{}, err
	}

	now := time.Now().UTC()
	if until, isBlocked := s.checkBlock(req.RequesterID, now); isBlocked {
		s.countDenial("blocked")
		return Decision{
			Allowed:      false,
			Reason:       "Requester temporarily blocked for privacy budget abuse",
			BlockedUntil: &until,
		}, nil
	}

	s.keys.Lock(req.SubjectID)
	defer s.keys.Unlock(req.SubjectID)

	account := s.getOrCreate(req.SubjectID, now)
	s.rollWindow(account, now)
	resetsAt := account.WindowStart.Add(account.WindowDuration)

	if account.Remaining < cost {
		reason := fmt.Sprintf("Privacy budget exhausted for subject %s. Required: %.4fε, Available: %.4fε",
			req.SubjectID, cost, account.Remaining)
		s.appendHistory(req.SubjectID, HistoryEntry{
			Timestamp:   now,
			RequesterID: req.RequesterID,
			Cost:        cost,
			Allowed:     false,
			Reason:      "Budget exhausted",
			Purpose:     req.Purpose,
		})
		s.countDenial("exhausted")
		s.log(ctx, slog.LevelWarn, "budget_denied",
			"subject_id", req.SubjectID,
			"requester_id", req.RequesterID,
			"cost", cost,
			"remaining", account.Remaining,
		)
		return Decision{
			Allowed:         false,
			Reason:          reason,
			QueryCost:       cost,
			BudgetRemaining: account.Remaining,
			BudgetTotal:     account.Total,
			AlertLevel:      AlertExhausted,
			WindowResetsAt:  resetsAt,
		}, nil
	}

	// Round after subtraction so repeated charges cannot accumulate float
	// noise around the alert-level ratio boundaries.
	account.Remaining = round10(account.Remaining - cost)
	account.QueryCount++
	last := now
	account.LastQueryAt = &last

	s.appendHistory(req.SubjectID, HistoryEntry{
		Timestamp:   now,
		RequesterID: req.RequesterID,
		Cost:        cost,
		Allowed:     true,
		Reason:      "Budget consumed",
		Purpose:     req.Purpose,
	})
	if s.metrics != nil {
		s.metrics.BudgetConsumed.Add(cost)
	}

	return Decision{
		Allowed:          true,
		Reason:           fmt.Sprintf("Query allowed. Budget consumed: %.4fε", cost),
		QueryCost:        cost,
		BudgetRemaining:  account.Remaining,
		BudgetTotal:      account.Total,
		BudgetPercentage: roundPct(account.Remaining, account.Total),
		QueryCount:       account.QueryCount,
		AlertLevel:       account.AlertLevel(),
		WindowResetsAt:   resetsAt,
	}, nil
}

// Status returns a snapshot of the subject's budget, lazily rolling the
// window first so an idle account reads as fresh once the window elapsed.
func (s *Service) Status(subjectID string) Status {
	now := time.Now().UTC()

	s.keys.Lock(subjectID)
	defer s.keys.Unlock(subjectID)

	account := s.getOrCreate(subjectID, now)
	s.rollWindow(account, now)

	return Status{
		SubjectID:        subjectID,
		Total:            account.Total,
		Remaining:        round4(account.Remaining),
		BudgetPercentage: roundPct(account.Remaining, account.Total),
		QueryCount:       account.QueryCount,
		WindowStart:      account.WindowStart,
		WindowResetsAt:   account.WindowStart.Add(account.WindowDuration),
		AlertLevel:       account.AlertLevel(),
		LastQueryAt:      account.LastQueryAt,
	}
}

// SetCustomBudget replaces the subject's account wholesale with a fresh
// window and the given allowance.
// Errors: CodeInvalidInput when epsilon is not positive.
func (s *Service) SetCustomBudget(subjectID string, epsilon float64, window time.Duration) (Status, error) {
	if subjectID == "" {
		return Status{}, dErrors.New(dErrors.CodeInvalidInput, "subject_id must not be empty")
	}
	if epsilon <= 0 {
		return Status{}, dErrors.New(dErrors.CodeInvalidInput, "epsilon budget must be positive")
	}
	if window <= 0 {
		window = s.defaultWindow
	}

	s.keys.Lock(subjectID)
	defer s.keys.Unlock(subjectID)

	account := &Account{
		SubjectID:      subjectID,
		Total:          epsilon,
		Remaining:      epsilon,
		WindowStart:    time.Now().UTC(),
		WindowDuration: window,
	}
	s.mu.Lock()
	s.accounts[subjectID] = account
	s.mu.Unlock()

	return Status{
		SubjectID:        subjectID,
		Total:            epsilon,
		Remaining:        epsilon,
		BudgetPercentage: 100,
		WindowStart:      account.WindowStart,
		WindowResetsAt:   account.WindowStart.Add(window),
		AlertLevel:       AlertNormal,
	}, nil
}

// History returns the most recent entries of the subject's bounded query
// history, oldest first.
func (s *Service) History(subjectID string, limit int) []HistoryEntry {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[subjectID]
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return append([]HistoryEntry(nil), entries...)
}

// BlockRequester temporarily bans a requester after repeated exhaustion.
// The block expires lazily on the first check after the deadline.
func (s *Service) BlockRequester(requesterID string, duration time.Duration) time.Time {
	if duration <= 0 {
		duration = defaultBlockDuration
	}
	until := time.Now().UTC().Add(duration)
	s.blockMu.Lock()
	s.blocked[requesterID] = until
	s.blockMu.Unlock()
	if s.metrics != nil {
		s.metrics.BlockedRequests.Inc()
	}
	return until
}

// AllBudgets returns a status snapshot for every known subject.
func (s *Service) AllBudgets() []Status {
	s.mu.RLock()
	subjects := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		subjects = append(subjects, id)
	}
	s.mu.RUnlock()

	out := make([]Status, 0, len(subjects))
	for _, id := range subjects {
		out = append(out, s.Status(id))
	}
	return out
}

// getOrCreate must be called with the subject's key lock held.
func (s *Service) getOrCreate(subjectID string, now time.Time) *Account {
	s.mu.RLock()
	account, ok := s.accounts[subjectID]
	s.mu.RUnlock()
	if ok {
		return account
	}

	account = &Account{
		SubjectID:      subjectID,
		Total:          s.defaultEpsilon,
		Remaining:      s.defaultEpsilon,
		WindowStart:    now,
		WindowDuration: s.defaultWindow,
	}
	s.mu.Lock()
	s.accounts[subjectID] = account
	s.mu.Unlock()
	return account
}

// rollWindow resets the account once its window has elapsed. Called with
// the subject's key lock held; evaluation is lazy, never timer-driven.
func (s *Service) rollWindow(account *Account, now time.Time) {
	if now.Before(account.WindowStart.Add(account.WindowDuration)) {
		return
	}
	account.Remaining = account.Total
	account.WindowStart = now
	account.QueryCount = 0
}

func (s *Service) appendHistory(subjectID string, entry HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append(s.history[subjectID], entry)
	if len(entries) > historyCap {
		entries = entries[len(entries)-historyCap:]
	}
	s.history[subjectID] = entries
}

// checkBlock reports whether the requester is actively blocked, expiring
// stale blocks lazily.
func (s *Service) checkBlock(requesterID string, now time.Time) (time.Time, bool) {
	s.blockMu.RLock()
	until, ok := s.blocked[requesterID]
	s.blockMu.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	if now.Before(until) {
		return until, true
	}
	s.blockMu.Lock()
	if current, still := s.blocked[requesterID]; still && !now.Before(current) {
		delete(s.blocked, requesterID)
	}
	s.blockMu.Unlock()
	return time.Time{}, false
}

func (s *Service) countDenial(reason string) {
	if s.metrics != nil {
		s.metrics.BudgetDenials.WithLabelValues(reason).Inc()
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round10(v float64) float64 {
	return math.Round(v*1e10) / 1e10
}

func roundPct(remaining, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(remaining/total*100*100) / 100
}
