package masking

import (
	"log/slog"
	"sync"
	"time"

	"privy/internal/platform/metrics"
)

const maskingLogCap = 1000

type Option func(*Service)

// Service applies risk-adaptive anonymization. The risk score picks a
// masking level; the level indexes into each field type's ordered strategy
// list. Only mutable state is the bounded operation log.
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu  sync.Mutex
	log []LogEntry
}

func NewService(opts ...Option) *Service {
	svc := &Service{}
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

// LevelFor maps a risk score onto the five masking bands. Bands are
// half-open except the last, which includes 1.0; out-of-range scores mask
// fully.
func LevelFor(riskScore float64) Level {
	switch {
	case riskScore < 0 || riskScore >= 0.8:
		return LevelFull
	case riskScore < 0.2:
		return LevelNone
	case riskScore < 0.4:
		return LevelLight
	case riskScore < 0.6:
		return LevelModerate
	default:
		return LevelHeavy
	}
}

// StrategyFor picks the strategy for a field type at a masking level.
// Unknown field types fall back to the generic list; the level index is
// clamped to the list length so short lists saturate at their heaviest
// strategy.
func StrategyFor(fieldType string, level Level) Strategy {
	strategies, ok := fieldStrategies[fieldType]
	if !ok {
		strategies = fieldStrategies["generic"]
	}

	var idx int
	switch level {
	case LevelNone:
		return StrategyNone
	case LevelLight:
		idx = 0
	case LevelModerate:
		idx = 1
	case LevelHeavy:
		idx = 2
	default:
		idx = 3
	}
	if idx >= len(strategies) {
		idx = len(strategies) - 1
	}
	return strategies[idx]
}

// Mask anonymizes the record according to the risk score. Fields left
// untouched are explicitly marked original_preserved for audit. Every
// invocation lands in the bounded log.
func (s *Service) Mask(data map[string]any, fieldTypes map[string]string, riskScore float64, requesterID, purpose string) Result {
	level := LevelFor(riskScore)
	masked := make(map[string]any, len(data))
	details := make(map[string]FieldDetail, len(data))

	for field, value := range data {
		fieldType, ok := fieldTypes[field]
		if !ok {
			fieldType = "generic"
		}
		strategy := StrategyFor(fieldType, level)

		if strategy == StrategyNone {
			masked[field] = value
			details[field] = FieldDetail{Strategy: StrategyNone, OriginalPreserved: true}
			continue
		}
		masked[field] = applyStrategy(value, fieldType, strategy)
		details[field] = FieldDetail{Strategy: strategy, FieldType: fieldType}
	}

	s.appendLog(LogEntry{
		Timestamp:    time.Now().UTC(),
		RequesterID:  requesterID,
		Purpose:      purpose,
		RiskScore:    riskScore,
		MaskingLevel: level,
		FieldsMasked: fieldNames(details),
		Strategies:   details,
	})
	if s.metrics != nil {
		s.metrics.MaskingOperations.WithLabelValues(string(level)).Inc()
	}

	return Result{
		Data: masked,
		Applied: Applied{
			Level:           level,
			RiskScore:       riskScore,
			FieldsProcessed: len(data),
			Details:         details,
		},
	}
}

// Stats aggregates the bounded masking log.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.log) == 0 {
		return Stats{}
	}

	byLevel := make(map[Level]int)
	for _, entry := range s.log {
		byLevel[entry.MaskingLevel]++
	}

	recent := s.log
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	return Stats{
		TotalOperations:  len(s.log),
		ByLevel:          byLevel,
		RecentOperations: append([]LogEntry(nil), recent...),
	}
}

func (s *Service) appendLog(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
	if len(s.log) > maskingLogCap {
		s.log = s.log[len(s.log)-maskingLogCap:]
	}
}

func fieldNames(details map[string]FieldDetail) []string {
	out := make([]string, 0, len(details))
	for name := range details {
		out = append(out, name)
	}
	return out
}
