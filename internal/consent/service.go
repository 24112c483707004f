package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"privy/internal/platform/metrics"
	dErrors "privy/pkg/domain-errors"
	"privy/pkg/platform/sentinel"
)

type Option func(*Service)

// Service manages per-subject consent grants. A grant fully replaces the
// subject's record and a revoke deletes it; checks are read-only.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, opts ...Option) *Service {
	svc := &Service{store: store}
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

// Grant records consent for the given purposes, replacing any previous
// record for the subject wholesale. expiresIn <= 0 means no expiry.
func (s *Service) Grant(ctx context.Context, subjectID string, purposes []string, expiresIn time.Duration) (Record, error) {
	if subjectID == "" {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "subject_id must not be empty")
	}
	if len(purposes) == 0 {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "purposes must not be empty")
	}

	granted := make(map[string]bool, len(purposes))
	for _, p := range purposes {
		if p == "" {
			return Record{}, dErrors.New(dErrors.CodeBadRequest, "purpose must not be empty")
		}
		granted[p] = true
	}

	record := Record{
		SubjectID:       subjectID,
		GrantedPurposes: granted,
		GrantedAt:       time.Now().UTC(),
	}
	if expiresIn > 0 {
		expiry := record.GrantedAt.Add(expiresIn)
		record.ExpiresAt = &expiry
	}

	if err := s.store.Save(ctx, record); err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save consent")
	}
	s.log(ctx, slog.LevelInfo, "consent_granted",
		"subject_id", subjectID,
		"purposes", record.Purposes(),
	)
	return record, nil
}

// Revoke deletes the subject's consent record. Revoking an absent record is
// not an error; there is nothing left to remove either way.
func (s *Service) Revoke(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "subject_id must not be empty")
	}
	if err := s.store.Delete(ctx, subjectID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke consent")
	}
	s.log(ctx, slog.LevelInfo, "consent_revoked", "subject_id", subjectID)
	return nil
}

// Check reports whether the subject has unexpired consent for the purpose.
// Denials are verdicts, not errors; the reason names what is missing.
func (s *Service) Check(ctx context.Context, subjectID, purpose string) (Verdict, error) {
	record, err := s.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countCheck(purpose, false)
			return Verdict{
				HasConsent: false,
				Reason:     fmt.Sprintf("no consent record exists for subject %s", subjectID),
			}, nil
		}
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent")
	}

	if record.ExpiresAt != nil && time.Now().After(*record.ExpiresAt) {
		s.countCheck(purpose, false)
		return Verdict{
			HasConsent:      false,
			Reason:          fmt.Sprintf("consent expired at %s", record.ExpiresAt.UTC().Format(time.RFC3339)),
			GrantedPurposes: record.Purposes(),
			ExpiresAt:       record.ExpiresAt,
		}, nil
	}

	if !record.GrantedPurposes[purpose] {
		s.countCheck(purpose, false)
		return Verdict{
			HasConsent: false,
			Reason: fmt.Sprintf("purpose %q is not among granted purposes [%s]",
				purpose, strings.Join(record.Purposes(), ", ")),
			GrantedPurposes: record.Purposes(),
			ExpiresAt:       record.ExpiresAt,
		}, nil
	}

	s.countCheck(purpose, true)
	return Verdict{
		HasConsent:      true,
		Reason:          fmt.Sprintf("consent granted for purpose %q", purpose),
		GrantedPurposes: record.Purposes(),
		ExpiresAt:       record.ExpiresAt,
	}, nil
}

// Get returns the subject's consent record.
// Errors: CodeNotFound when no record exists.
func (s *Service) Get(ctx context.Context, subjectID string) (Record, error) {
	record, err := s.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no consent record for subject %s", subjectID))
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent")
	}
	return record, nil
}

func (s *Service) countCheck(purpose string, passed bool) {
	if s.metrics == nil {
		return
	}
	if passed {
		s.metrics.ConsentChecksPassed.WithLabelValues(purpose).Inc()
	} else {
		s.metrics.ConsentChecksFailed.WithLabelValues(purpose).Inc()
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
