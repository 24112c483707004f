package consent

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "privy/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemoryStore
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.service = NewService(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestGrant_ValidationErrors() {
	_, err := s.service.Grant(s.ctx, "", []string{"analytics"}, 0)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.Grant(s.ctx, "subject-1", nil, 0)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
}

// TestGrant_ReplacesWholesale verifies a second grant does not merge with
// the first: previously granted purposes disappear unless re-granted.
func (s *ServiceSuite) TestGrant_ReplacesWholesale() {
	_, err := s.service.Grant(s.ctx, "subject-1", []string{"analytics", "research"}, 0)
	require.NoError(s.T(), err)

	_, err = s.service.Grant(s.ctx, "subject-1", []string{"marketing"}, 0)
	require.NoError(s.T(), err)

	v, err := s.service.Check(s.ctx, "subject-1", "analytics")
	require.NoError(s.T(), err)
	assert.False(s.T(), v.HasConsent, "prior grant must be fully replaced")

	v, err = s.service.Check(s.ctx, "subject-1", "marketing")
	require.NoError(s.T(), err)
	assert.True(s.T(), v.HasConsent)
}

func (s *ServiceSuite) TestCheck_NoRecord() {
	v, err := s.service.Check(s.ctx, "subject-absent", "analytics")
	require.NoError(s.T(), err)
	assert.False(s.T(), v.HasConsent)
	assert.Contains(s.T(), v.Reason, "no consent record")
}

// TestCheck_PurposeNotGranted verifies the denial reason lists the granted
// purposes so callers can see exactly what the subject did consent to.
func (s *ServiceSuite) TestCheck_PurposeNotGranted() {
	_, err := s.service.Grant(s.ctx, "subject-1", []string{"analytics"}, 0)
	require.NoError(s.T(), err)

	v, err := s.service.Check(s.ctx, "subject-1", "marketing")
	require.NoError(s.T(), err)
	assert.False(s.T(), v.HasConsent)
	assert.Contains(s.T(), v.Reason, `"marketing"`)
	assert.Contains(s.T(), v.Reason, "analytics")
	assert.Equal(s.T(), []string{"analytics"}, v.GrantedPurposes)
}

// TestCheck_Expired verifies expiry is evaluated lazily on read, with no
// background sweeper mutating records.
func (s *ServiceSuite) TestCheck_Expired() {
	expiry := time.Now().Add(-time.Minute)
	require.NoError(s.T(), s.store.Save(s.ctx, Record{
		SubjectID:       "subject-1",
		GrantedPurposes: map[string]bool{"analytics": true},
		GrantedAt:       time.Now().Add(-time.Hour),
		ExpiresAt:       &expiry,
	}))

	v, err := s.service.Check(s.ctx, "subject-1", "analytics")
	require.NoError(s.T(), err)
	assert.False(s.T(), v.HasConsent)
	assert.Contains(s.T(), v.Reason, "expired")
}

func (s *ServiceSuite) TestCheck_Granted() {
	_, err := s.service.Grant(s.ctx, "subject-1", []string{"analytics"}, time.Hour)
	require.NoError(s.T(), err)

	v, err := s.service.Check(s.ctx, "subject-1", "analytics")
	require.NoError(s.T(), err)
	assert.True(s.T(), v.HasConsent)
	require.NotNil(s.T(), v.ExpiresAt)
}

func (s *ServiceSuite) TestRevoke_RemovesRecord() {
	_, err := s.service.Grant(s.ctx, "subject-1", []string{"analytics"}, 0)
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.service.Revoke(s.ctx, "subject-1"))

	v, err := s.service.Check(s.ctx, "subject-1", "analytics")
	require.NoError(s.T(), err)
	assert.False(s.T(), v.HasConsent)

	// Revoking again is a no-op, not an error.
	assert.NoError(s.T(), s.service.Revoke(s.ctx, "subject-1"))
}

func (s *ServiceSuite) TestGet_NotFound() {
	_, err := s.service.Get(s.ctx, "subject-absent")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestStore_ReturnsCopies verifies mutating a returned record does not leak
// back into the store.
func (s *ServiceSuite) TestStore_ReturnsCopies() {
	_, err := s.service.Grant(s.ctx, "subject-1", []string{"analytics"}, 0)
	require.NoError(s.T(), err)

	record, err := s.service.Get(s.ctx, "subject-1")
	require.NoError(s.T(), err)
	record.GrantedPurposes["marketing"] = true

	v, err := s.service.Check(s.ctx, "subject-1", "marketing")
	require.NoError(s.T(), err)
	assert.False(s.T(), v.HasConsent)
}
