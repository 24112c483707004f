package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = NewService()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestDetectJurisdictions_GeoMapping() {
	js := s.service.DetectJurisdictions("DE", "UK", "US_CA")
	assert.ElementsMatch(s.T(), []Jurisdiction{JurisdictionEU, JurisdictionUK, JurisdictionUSCA}, js)

	// Case-insensitive lookup.
	js = s.service.DetectJurisdictions("de", "", "")
	assert.Equal(s.T(), []Jurisdiction{JurisdictionEU}, js)

	// Bare CA maps to California, not Canada.
	js = s.service.DetectJurisdictions("CA", "", "")
	assert.Equal(s.T(), []Jurisdiction{JurisdictionUSCA}, js)
}

func (s *ServiceSuite) TestDetectJurisdictions_GlobalFallback() {
	js := s.service.DetectJurisdictions("XX", "YY", "")
	assert.Equal(s.T(), []Jurisdiction{JurisdictionGlobal}, js)

	js = s.service.DetectJurisdictions("", "", "")
	assert.Equal(s.T(), []Jurisdiction{JurisdictionGlobal}, js)
}

// TestMergeStrictest_GlobalSubstitutesStrictest verifies GLOBAL and the
// empty set both resolve to the two strictest known regimes.
func (s *ServiceSuite) TestMergeStrictest_GlobalSubstitutesStrictest() {
	for _, input := range [][]Jurisdiction{nil, {JurisdictionGlobal}, {JurisdictionGlobal, JurisdictionSG}} {
		merged := s.service.MergeStrictest(input)
		assert.ElementsMatch(s.T(), []string{"GDPR", "DPDP"}, merged.ApplicableLaws)
		assert.Equal(s.T(), 0.95, merged.StrictnessScore)
	}
}

func (s *ServiceSuite) TestMergeStrictest_BooleanOR() {
	// CCPA alone does not require consent; adding Singapore flips it.
	ccpa := s.service.MergeStrictest([]Jurisdiction{JurisdictionUSCA})
	assert.False(s.T(), ccpa.Requirements.ConsentRequired)

	both := s.service.MergeStrictest([]Jurisdiction{JurisdictionUSCA, JurisdictionSG})
	assert.True(s.T(), both.Requirements.ConsentRequired)
	assert.Equal(s.T(), 0.75, both.StrictnessScore)
}

func (s *ServiceSuite) TestMergeStrictest_BreachHoursMinimum() {
	merged := s.service.MergeStrictest([]Jurisdiction{JurisdictionBrazil})
	assert.Nil(s.T(), merged.Requirements.BreachNotificationHours)

	merged = s.service.MergeStrictest([]Jurisdiction{JurisdictionBrazil, JurisdictionEU})
	require.NotNil(s.T(), merged.Requirements.BreachNotificationHours)
	assert.Equal(s.T(), 72, *merged.Requirements.BreachNotificationHours)
}

func (s *ServiceSuite) TestMergeStrictest_PurposeLimitationOrdinal() {
	merged := s.service.MergeStrictest([]Jurisdiction{JurisdictionUSCA})
	assert.Equal(s.T(), PurposeLimitationModerate, merged.Requirements.PurposeLimitation)

	merged = s.service.MergeStrictest([]Jurisdiction{JurisdictionUSCA, JurisdictionEU})
	assert.Equal(s.T(), PurposeLimitationStrict, merged.Requirements.PurposeLimitation)
}

// TestMergeStrictest_UnknownJurisdictionContributesNothing covers regimes in
// the geography table that carry no law definition (US_VA, US_CO, AU).
func (s *ServiceSuite) TestMergeStrictest_UnknownJurisdictionContributesNothing() {
	merged := s.service.MergeStrictest([]Jurisdiction{JurisdictionUSVA, JurisdictionAU})
	assert.Empty(s.T(), merged.ApplicableLaws)
	assert.Equal(s.T(), 0.0, merged.StrictnessScore)
	assert.False(s.T(), merged.Requirements.ConsentRequired)
}

func (s *ServiceSuite) TestEvaluate_ConsentBlocking() {
	eval := s.service.Evaluate(s.ctx, Request{
		RequesterID:         "req-1",
		Purpose:             "analytics",
		DataSubjectLocation: "DE",
		RequesterLocation:   "DE",
	})
	assert.False(s.T(), eval.Compliant)
	require.NotEmpty(s.T(), eval.Issues)
	assert.Equal(s.T(), IssueConsentRequired, eval.Issues[0].Code)
	assert.Equal(s.T(), SeverityBlocking, eval.Issues[0].Severity)
	assert.Contains(s.T(), eval.RequiredActions, "Obtain user consent before processing")
}

// TestEvaluate_WarningsDoNotFail verifies advisory findings leave the
// request compliant when consent is verified.
func (s *ServiceSuite) TestEvaluate_WarningsDoNotFail() {
	eval := s.service.Evaluate(s.ctx, Request{
		RequesterID:         "req-1",
		Purpose:             "marketing",
		ConsentVerified:     true,
		DataSubjectLocation: "DE",
		RequesterLocation:   "US_CA",
	})
	assert.True(s.T(), eval.Compliant)

	var codes []string
	for _, issue := range eval.Issues {
		assert.Equal(s.T(), SeverityWarning, issue.Severity)
		codes = append(codes, issue.Code)
	}
	assert.Contains(s.T(), codes, IssuePurposeLimitation)
	assert.Contains(s.T(), codes, IssueCrossBorderTransfer)
}

func (s *ServiceSuite) TestEvaluate_DataMinimizationAction() {
	eval := s.service.Evaluate(s.ctx, Request{
		RequesterID:         "req-1",
		Purpose:             "analytics",
		DataSensitivity:     "high",
		ConsentVerified:     true,
		DataSubjectLocation: "DE",
		RequesterLocation:   "DE",
	})
	assert.True(s.T(), eval.Compliant)
	assert.Contains(s.T(), eval.RequiredActions, "Apply data minimization - only collect necessary fields")
}

func (s *ServiceSuite) TestLawDetails() {
	law, err := s.service.LawDetails(JurisdictionEU)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "GDPR", law.Name)

	_, err = s.service.LawDetails(JurisdictionGlobal)
	assert.Error(s.T(), err)
}

func (s *ServiceSuite) TestLawsSummary() {
	summary := s.service.LawsSummary()
	assert.Len(s.T(), summary, 6)
	names := make(map[string]bool)
	for _, l := range summary {
		names[l.Name] = true
	}
	assert.True(s.T(), names["GDPR"] && names["CCPA"] && names["DPDP"] && names["UK GDPR"] && names["LGPD"] && names["PDPA"])
}

// TestReport_BoundedLog verifies the check log caps at 1000 entries and the
// report aggregates only the requested window.
func (s *ServiceSuite) TestReport_BoundedLog() {
	for i := 0; i < 1100; i++ {
		s.service.Evaluate(s.ctx, Request{
			RequesterID:         "req-1",
			Purpose:             "analytics",
			ConsentVerified:     true,
			DataSubjectLocation: "DE",
			RequesterLocation:   "DE",
		})
	}
	s.service.mu.Lock()
	assert.LessOrEqual(s.T(), len(s.service.log), 1000)
	s.service.mu.Unlock()

	report := s.service.Report(50)
	assert.Equal(s.T(), 50, report.TotalChecks)
	assert.Equal(s.T(), 50, report.CompliantRequests)
	assert.Equal(s.T(), 100.0, report.ComplianceRate)
	assert.Equal(s.T(), 50, report.LawsApplied["GDPR"])
	assert.Len(s.T(), report.RecentChecks, 10)
}
