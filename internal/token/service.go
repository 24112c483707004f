package token

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"privy/internal/platform/metrics"
	dErrors "privy/pkg/domain-errors"
	platformsync "privy/pkg/platform/sync"
)

const (
	// DefaultTTL bounds a capability token's lifetime when the caller does
	// not ask for one.
	DefaultTTL = 5 * time.Minute

	defaultMaxUses = 1
)

type Option func(*Service)

// Service manages task-scoped self-destructing capability tokens. Each
// token dies on TTL expiry, on use-count exhaustion, or when its task
// completes, whichever comes first. Destruction is idempotent and
// irreversible; destroyed ids live on in a revocation set consulted by
// every later validation.
//
// Per-token read-modify-write sequences (use increment + destroy) are
// serialized by a sharded key lock. mu guards the two maps and every
// record field write; query paths read under mu.RLock.
type Service struct {
	signer  Signer
	logger  *slog.Logger
	metrics *metrics.Metrics

	defaultTTL time.Duration

	keys *platformsync.ShardedMutex

	mu      sync.RWMutex
	active  map[string]*Token
	revoked map[string]revocation
}

func NewService(signer Signer, opts ...Option) *Service {
	svc := &Service{
		signer:     signer,
		defaultTTL: DefaultTTL,
		keys:       platformsync.NewShardedMutex(),
		active:     make(map[string]*Token),
		revoked:    make(map[string]revocation),
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

// WithDefaultTTL overrides the default token lifetime.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// Issue creates a signed capability token plus its authoritative server
// record. The two agree at issuance; afterwards only the record counts.
// Errors: CodeInvalidInput for missing identifiers or non-positive uses.
func (s *Service) Issue(ctx context.Context, userID, taskID, taskType string, ttl time.Duration, maxUses int, dataScope []string) (Issued, error) {
	if userID == "" || taskID == "" {
		return Issued{}, dErrors.New(dErrors.CodeInvalidInput, "user_id and task_id must not be empty")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if maxUses <= 0 {
		maxUses = defaultMaxUses
	}
	if len(dataScope) == 0 {
		dataScope = []string{"*"}
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	tokenID := uuid.NewString()

	signed, err := s.signer.Sign(Claims{
		TokenID:      tokenID,
		UserID:       userID,
		TaskID:       taskID,
		TaskType:     taskType,
		DataScope:    dataScope,
		MaxUses:      maxUses,
		SelfDestruct: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return Issued{}, err
	}

	record := &Token{
		ID:        tokenID,
		UserID:    userID,
		TaskID:    taskID,
		TaskType:  taskType,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
		DataScope: append([]string(nil), dataScope...),
	}
	s.mu.Lock()
	s.active[tokenID] = record
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.TokensIssued.Inc()
	}
	s.log(ctx, slog.LevelInfo, "token_issued",
		"token_id", tokenID,
		"task_id", taskID,
		"max_uses", maxUses,
		"expires_at", expiresAt,
	)

	return Issued{
		Token:      signed,
		TokenID:    tokenID,
		TaskID:     taskID,
		ExpiresAt:  expiresAt,
		TTLSeconds: int(ttl.Seconds()),
		MaxUses:    maxUses,
		DataScope:  record.DataScope,
		SelfDestructPolicy: SelfDestructPolicy{
			OnExpiry:       true,
			OnMaxUses:      true,
			OnTaskComplete: true,
		},
	}, nil
}

// ValidateAndConsume verifies the signature, then consults the server
// record: revoked or unknown ids report destroyed; an elapsed TTL or a
// spent use count destroys the token and fails; otherwise one use is
// consumed, and if that was the last use the token self-destructs within
// the same call while still reporting success.
func (s *Service) ValidateAndConsume(ctx context.Context, signedToken string) Validation {
	claims, err := s.signer.Verify(signedToken)
	if err != nil {
		return Validation{
			Valid:  false,
			Reason: fmt.Sprintf("Invalid token: %v", err),
		}
	}
	tokenID := claims.TokenID

	s.keys.Lock(tokenID)
	defer s.keys.Unlock(tokenID)

	s.mu.RLock()
	_, isRevoked := s.revoked[tokenID]
	record, isActive := s.active[tokenID]
	s.mu.RUnlock()

	if isRevoked {
		return Validation{
			Valid:     false,
			Reason:    "Token has been destroyed (revoked)",
			Destroyed: true,
		}
	}
	if !isActive {
		return Validation{
			Valid:     false,
			Reason:    "Token not found or already destroyed",
			Destroyed: true,
		}
	}

	now := time.Now().UTC()
	if now.After(record.ExpiresAt) {
		s.destroy(tokenID, "TTL expired", reasonTTL)
		return Validation{
			Valid:     false,
			Reason:    "Token self-destructed (TTL expired)",
			Destroyed: true,
		}
	}
	if record.CurrentUses >= record.MaxUses {
		s.destroy(tokenID, "Max uses reached", reasonMaxUses)
		return Validation{
			Valid:     false,
			Reason:    "Token self-destructed (max uses reached)",
			Destroyed: true,
		}
	}

	// Record fields are written under both the key lock and mu, so Status
	// and ActiveTokensForUser can read records under mu.RLock alone.
	s.mu.Lock()
	record.CurrentUses++
	remaining := record.RemainingUses()
	record.AccessLog = append(record.AccessLog, AccessEntry{
		Timestamp:     now,
		Action:        "data_access",
		RemainingUses: remaining,
	})
	s.mu.Unlock()

	if remaining == 0 {
		s.destroy(tokenID, "All uses consumed", reasonExhausted)
		return Validation{
			Valid:     true,
			Reason:    "Token consumed and self-destructed",
			Destroyed: true,
			DataScope: record.DataScope,
			TaskID:    record.TaskID,
			UserID:    record.UserID,
		}
	}

	return Validation{
		Valid:         true,
		Reason:        fmt.Sprintf("Token valid. %d uses remaining.", remaining),
		RemainingUses: remaining,
		DataScope:     record.DataScope,
		TaskID:        record.TaskID,
		UserID:        record.UserID,
	}
}

// CompleteTask destroys every active token for the task regardless of
// remaining TTL or uses. This is the explicit cross-cutting cancellation
// signal; there is no implicit cancellation anywhere else.
func (s *Service) CompleteTask(ctx context.Context, taskID string) CompletionSummary {
	s.mu.RLock()
	var ids []string
	for id, record := range s.active {
		if record.TaskID == taskID {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	destroyed := 0
	for _, id := range ids {
		s.keys.Lock(id)
		s.mu.RLock()
		record, still := s.active[id]
		s.mu.RUnlock()
		if still && record.TaskID == taskID {
			s.destroy(id, fmt.Sprintf("Task %s completed", taskID), reasonTaskComplete)
			destroyed++
		}
		s.keys.Unlock(id)
	}

	s.log(ctx, slog.LevelInfo, "task_completed",
		"task_id", taskID,
		"tokens_destroyed", destroyed,
	)
	return CompletionSummary{
		TaskID:            taskID,
		TokensDestroyed:   destroyed,
		DestructionReason: "task_completion",
		Timestamp:         time.Now().UTC(),
	}
}

// Status reports a token's lifecycle state by id.
func (s *Service) Status(tokenID string) StatusInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, isRevoked := s.revoked[tokenID]; isRevoked {
		return StatusInfo{Status: StatusDestroyed, TokenID: tokenID}
	}
	if record, ok := s.active[tokenID]; ok {
		expires := record.ExpiresAt
		return StatusInfo{
			Status:        StatusActive,
			TokenID:       tokenID,
			RemainingUses: record.RemainingUses(),
			ExpiresAt:     &expires,
			TaskID:        record.TaskID,
		}
	}
	return StatusInfo{Status: StatusNotFound, TokenID: tokenID}
}

// ActiveTokensForUser lists the user's live tokens.
func (s *Service) ActiveTokensForUser(userID string) []ActiveToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ActiveToken
	for id, record := range s.active {
		if record.UserID != userID {
			continue
		}
		out = append(out, ActiveToken{
			TokenID:       id,
			TaskID:        record.TaskID,
			RemainingUses: record.RemainingUses(),
			ExpiresAt:     record.ExpiresAt,
		})
	}
	return out
}

// destroy moves a token from the active set into the revocation set.
// Idempotent; callers hold the token's key lock (or are the only path that
// can reach the id, as at issuance).
func (s *Service) destroy(tokenID, reason, metricLabel string) {
	s.mu.Lock()
	if _, ok := s.active[tokenID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, tokenID)
	s.revoked[tokenID] = revocation{Reason: reason, DestroyedAt: time.Now().UTC()}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.TokensDestroyed.WithLabelValues(metricLabel).Inc()
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
