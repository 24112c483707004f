package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestEvaluate_AdminAllowedEverywhere() {
	for _, purpose := range []string{"analytics", "research", "marketing", "operational", "compliance", "audit", "reporting"} {
		v := s.service.Evaluate(Request{Role: "admin", Purpose: purpose, Jurisdiction: "EU", Sensitivity: "high"})
		assert.True(s.T(), v.Allowed, "admin should be allowed for %s", purpose)
		assert.True(s.T(), v.Checks.RoleValid)
		assert.True(s.T(), v.Checks.PurposeAllowed)
		assert.True(s.T(), v.Checks.JurisdictionAllowed)
		assert.True(s.T(), v.Checks.SensitivityAllowed)
	}
}

// TestEvaluate_ExternalHighSensitivityDenied verifies the sensitivity cap
// and its reason text, which downstream consumers surface verbatim.
func (s *ServiceSuite) TestEvaluate_ExternalHighSensitivityDenied() {
	v := s.service.Evaluate(Request{Role: "external", Purpose: "reporting", Jurisdiction: "US", Sensitivity: "high"})
	assert.False(s.T(), v.Allowed)
	assert.Equal(s.T(), "sensitivity high exceeds maximum allowed for external", v.Reason)
	assert.True(s.T(), v.Checks.RoleValid)
	assert.True(s.T(), v.Checks.PurposeAllowed)
	assert.False(s.T(), v.Checks.SensitivityAllowed)
}

func (s *ServiceSuite) TestEvaluate_UnknownRole() {
	v := s.service.Evaluate(Request{Role: "superuser", Purpose: "analytics", Jurisdiction: "EU", Sensitivity: "low"})
	assert.False(s.T(), v.Allowed)
	assert.False(s.T(), v.Checks.RoleValid)
}

func (s *ServiceSuite) TestEvaluate_UnknownPurpose() {
	v := s.service.Evaluate(Request{Role: "admin", Purpose: "surveillance", Jurisdiction: "EU", Sensitivity: "low"})
	assert.False(s.T(), v.Allowed)
	assert.Contains(s.T(), v.Reason, "surveillance")
	assert.False(s.T(), v.Checks.PurposeAllowed)
}

func (s *ServiceSuite) TestEvaluate_UnknownJurisdiction() {
	v := s.service.Evaluate(Request{Role: "admin", Purpose: "analytics", Jurisdiction: "XX", Sensitivity: "low"})
	assert.False(s.T(), v.Allowed)
	assert.False(s.T(), v.Checks.JurisdictionAllowed)
}

// TestEvaluate_RolePurposeMatrix verifies the role allowlists deny purposes
// the role does not hold even when the purpose is globally valid.
func (s *ServiceSuite) TestEvaluate_RolePurposeMatrix() {
	v := s.service.Evaluate(Request{Role: "analyst", Purpose: "marketing", Jurisdiction: "EU", Sensitivity: "low"})
	assert.False(s.T(), v.Allowed)
	assert.Contains(s.T(), v.Reason, "marketing")
	assert.Contains(s.T(), v.Reason, "analyst")

	v = s.service.Evaluate(Request{Role: "external", Purpose: "research", Jurisdiction: "EU", Sensitivity: "low"})
	assert.False(s.T(), v.Allowed)
}

// TestEvaluate_Stateless verifies a denial leaves no trace: the same allowed
// request succeeds before and after unrelated denials.
func (s *ServiceSuite) TestEvaluate_Stateless() {
	ok := Request{Role: "analyst", Purpose: "analytics", Jurisdiction: "EU", Sensitivity: "medium"}
	assert.True(s.T(), s.service.Evaluate(ok).Allowed)
	for i := 0; i < 5; i++ {
		s.service.Evaluate(Request{Role: "external", Purpose: "marketing", Jurisdiction: "EU", Sensitivity: "high"})
	}
	assert.True(s.T(), s.service.Evaluate(ok).Allowed)
}

func TestParseSensitivity_Rank(t *testing.T) {
	assert.Less(t, SensitivityLow.Rank(), SensitivityMedium.Rank())
	assert.Less(t, SensitivityMedium.Rank(), SensitivityHigh.Rank())
}
