package auth

import (
	"context"
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
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = NewService("test-signing-key")
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestLogin_ValidCredentials() {
	for username, password := range map[string]string{
		"admin":    "admin123",
		"analyst":  "analyst123",
		"external": "external123",
	} {
		session, err := s.service.Login(s.ctx, username, password)
		require.NoError(s.T(), err, username)
		assert.Equal(s.T(), "bearer", session.TokenType)
		assert.Equal(s.T(), username, session.Role)
		assert.NotEmpty(s.T(), session.AccessToken)
	}
}

func (s *ServiceSuite) TestLogin_WrongPassword() {
	_, err := s.service.Login(s.ctx, "admin", "nope")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// TestLogin_UnknownUserSameError: unknown users and wrong passwords fail
// identically, so the endpoint cannot enumerate accounts.
func (s *ServiceSuite) TestLogin_UnknownUserSameError() {
	_, wrongPassword := s.service.Login(s.ctx, "admin", "nope")
	_, unknownUser := s.service.Login(s.ctx, "ghost", "nope")
	require.Error(s.T(), wrongPassword)
	require.Error(s.T(), unknownUser)
	assert.Equal(s.T(), wrongPassword.Error(), unknownUser.Error())
}

func (s *ServiceSuite) TestVerify_RoundTrip() {
	session, err := s.service.Login(s.ctx, "analyst", "analyst123")
	require.NoError(s.T(), err)

	claims, err := s.service.Verify(session.AccessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "analyst", claims.Subject)
	assert.Equal(s.T(), "analyst", claims.Role)
}

func (s *ServiceSuite) TestVerify_WrongKey() {
	session, err := s.service.Login(s.ctx, "admin", "admin123")
	require.NoError(s.T(), err)

	other := NewService("another-key")
	_, err = other.Verify(session.AccessToken)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestVerify_Expired() {
	svc := NewService("test-signing-key", WithTokenTTL(time.Nanosecond))
	session, err := svc.Login(s.ctx, "admin", "admin123")
	require.NoError(s.T(), err)

	time.Sleep(time.Millisecond)
	_, err = svc.Verify(session.AccessToken)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestVerify_Tampered() {
	session, err := s.service.Login(s.ctx, "admin", "admin123")
	require.NoError(s.T(), err)

	_, err = s.service.Verify(session.AccessToken + "x")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
