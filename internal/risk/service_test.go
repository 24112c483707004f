package risk

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

// TestAssess_Deterministic verifies the same request always produces the
// same assessment. The scorer carries no state between calls.
func (s *ServiceSuite) TestAssess_Deterministic() {
	req := Request{Role: "analyst", Purpose: "analytics", Jurisdiction: "EU", Sensitivity: "medium"}
	first := s.service.Assess(req)
	for i := 0; i < 10; i++ {
		assert.Equal(s.T(), first, s.service.Assess(req))
	}
}

// TestAssess_ScoreBounds verifies scores stay in [0, 1] for every factor
// combination, including unknown values hitting the default weight.
func (s *ServiceSuite) TestAssess_ScoreBounds() {
	roles := []string{"admin", "analyst", "external", "unknown"}
	purposes := []string{"compliance", "marketing", "unknown"}
	jurisdictions := []string{"EU", "US", "ZZ"}
	sensitivities := []string{"low", "high", "unknown"}

	for _, r := range roles {
		for _, p := range purposes {
			for _, j := range jurisdictions {
				for _, sv := range sensitivities {
					a := s.service.Assess(Request{Role: r, Purpose: p, Jurisdiction: j, Sensitivity: sv})
					assert.GreaterOrEqual(s.T(), a.Score, 0.0)
					assert.LessOrEqual(s.T(), a.Score, 1.0)
				}
			}
		}
	}
}

// TestAssess_UnknownFactorUsesDefault verifies the explicit unknown policy:
// a value absent from the tables contributes exactly 0.5.
func (s *ServiceSuite) TestAssess_UnknownFactorUsesDefault() {
	a := s.service.Assess(Request{Role: "analyst", Purpose: "analytics", Jurisdiction: "ZZ", Sensitivity: "medium"})
	assert.Equal(s.T(), defaultFactorWeight, a.Factors.Jurisdiction)
}

// TestAssess_ThresholdIsStrict verifies that a score exactly at the
// threshold does not flag. Only strictly greater scores exceed.
func (s *ServiceSuite) TestAssess_ThresholdIsStrict() {
	// external + marketing + US + high:
	// 0.25*0.9 + 0.35*0.9 + 0.25*0.8 + 0.15*0.5 = 0.815
	high := s.service.Assess(Request{Role: "external", Purpose: "marketing", Jurisdiction: "US", Sensitivity: "high"})
	assert.Equal(s.T(), 0.815, high.Score)
	assert.True(s.T(), high.ExceedsThreshold)
	assert.Equal(s.T(), TierHigh, high.Tier)

	svc := New(WithThreshold(0.815))
	at := svc.Assess(Request{Role: "external", Purpose: "marketing", Jurisdiction: "US", Sensitivity: "high"})
	assert.False(s.T(), at.ExceedsThreshold, "score equal to threshold must not flag")
}

// TestAssess_LowRiskAdmin verifies an internal low-sensitivity request
// scores in the low tier and stays under the default threshold.
func (s *ServiceSuite) TestAssess_LowRiskAdmin() {
	// admin + compliance + EU + low:
	// 0.25*0.1 + 0.35*0.2 + 0.25*0.2 + 0.15*0.3 = 0.19
	a := s.service.Assess(Request{Role: "admin", Purpose: "compliance", Jurisdiction: "EU", Sensitivity: "low"})
	assert.Equal(s.T(), 0.19, a.Score)
	assert.Equal(s.T(), TierLow, a.Tier)
	assert.False(s.T(), a.ExceedsThreshold)
}

// TestAssess_TierBoundaries verifies the half-open tier bands.
func (s *ServiceSuite) TestAssess_TierBoundaries() {
	assert.Equal(s.T(), TierLow, tierFor(0.0))
	assert.Equal(s.T(), TierLow, tierFor(0.2999))
	assert.Equal(s.T(), TierMedium, tierFor(0.3))
	assert.Equal(s.T(), TierMedium, tierFor(0.5999))
	assert.Equal(s.T(), TierHigh, tierFor(0.6))
	assert.Equal(s.T(), TierHigh, tierFor(1.0))
}
