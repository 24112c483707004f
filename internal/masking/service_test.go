package masking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.service = NewService()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// TestLevelFor_Bands verifies the half-open band boundaries, with the top
// band inclusive of 1.0.
func TestLevelFor_Bands(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0.0, LevelNone},
		{0.19, LevelNone},
		{0.2, LevelLight},
		{0.39, LevelLight},
		{0.4, LevelModerate},
		{0.59, LevelModerate},
		{0.6, LevelHeavy},
		{0.79, LevelHeavy},
		{0.8, LevelFull},
		{1.0, LevelFull},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.score), "score %.2f", tc.score)
	}
}

func TestStrategyFor_IndexAndClamp(t *testing.T) {
	assert.Equal(t, StrategyNone, StrategyFor("email", LevelNone))
	assert.Equal(t, StrategyHash, StrategyFor("email", LevelLight))
	assert.Equal(t, StrategyDomainOnly, StrategyFor("email", LevelModerate))
	assert.Equal(t, StrategySynthetic, StrategyFor("email", LevelHeavy))
	assert.Equal(t, StrategyRedact, StrategyFor("email", LevelFull))

	// Three-entry lists saturate at their heaviest strategy.
	assert.Equal(t, StrategyRedact, StrategyFor("ssn", LevelHeavy))
	assert.Equal(t, StrategyRedact, StrategyFor("ssn", LevelFull))

	// Unknown field types use the generic list.
	assert.Equal(t, StrategyPartial, StrategyFor("nickname", LevelLight))
}

func TestStrategies_Deterministic(t *testing.T) {
	assert.Equal(t, hashValue("alice@corp.com"), hashValue("alice@corp.com"))
	assert.True(t, strings.HasPrefix(hashValue("x"), "HASH_"))
	assert.Len(t, hashValue("x"), len("HASH_")+12)

	assert.Equal(t, "ali*************", partialMask("alice@corp.com**", 3))
	assert.Equal(t, "***", partialMask("abc", 3))

	assert.Equal(t, "***@corp.com", extractDomain("alice@corp.com"))
	assert.Equal(t, "[MASKED_EMAIL]", extractDomain("not-an-email"))

	assert.Equal(t, "************3456", lastNChars("1111222233334456"[:12]+"3456", 4))
	assert.Equal(t, "A.B.", toInitials("alice bishop"))
	assert.Equal(t, pseudonym("alice"), pseudonym("alice"))
	assert.True(t, strings.HasPrefix(pseudonym("alice"), "User_"))

	assert.Equal(t, "1990", extractYear("1990-04-12"))
	assert.Equal(t, "[YEAR]", extractYear("unknown"))

	assert.Equal(t, "192.168.0.0/16", maskIP("192.168.4.27"))
	assert.Equal(t, "[MASKED_IP]", maskIP("::1"))

	assert.Equal(t, "$1,000-$10,000", toRange("$2,500.00"))
	assert.Equal(t, "$100,000+", toRange("250000"))
	assert.Equal(t, "[RANGE]", toRange("n/a"))
}

// TestMask_NoneLevelPreservesOriginals verifies low-risk requests pass data
// through untouched, with the preservation flagged for audit.
func (s *ServiceSuite) TestMask_NoneLevelPreservesOriginals() {
	result := s.service.Mask(
		map[string]any{"email": "alice@corp.com", "name": "Alice Bishop"},
		map[string]string{"email": "email", "name": "name"},
		0.1, "req-1", "analytics",
	)
	assert.Equal(s.T(), LevelNone, result.Applied.Level)
	assert.Equal(s.T(), "alice@corp.com", result.Data["email"])
	assert.True(s.T(), result.Applied.Details["email"].OriginalPreserved)
}

func (s *ServiceSuite) TestMask_FullLevelRedacts() {
	result := s.service.Mask(
		map[string]any{"email": "alice@corp.com", "phone": "555-0100"},
		map[string]string{"email": "email", "phone": "phone"},
		0.95, "req-1", "analytics",
	)
	assert.Equal(s.T(), LevelFull, result.Applied.Level)
	assert.Equal(s.T(), "[REDACTED]", result.Data["email"])
	assert.Equal(s.T(), "[REDACTED]", result.Data["phone"])
	assert.False(s.T(), result.Applied.Details["email"].OriginalPreserved)
}

// TestMask_LevelMonotonic verifies a higher risk tier never reveals more
// raw data than a lower one: once a field stops being preserved it stays
// masked at every higher tier.
func (s *ServiceSuite) TestMask_LevelMonotonic() {
	scores := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	data := map[string]any{"email": "alice@corp.com"}
	types := map[string]string{"email": "email"}

	prevPreserved := true
	for _, score := range scores {
		result := s.service.Mask(data, types, score, "req-1", "analytics")
		preserved := result.Applied.Details["email"].OriginalPreserved
		if !prevPreserved {
			assert.False(s.T(), preserved, "score %.1f must not reveal more than a lower tier", score)
		}
		prevPreserved = preserved
	}
}

func (s *ServiceSuite) TestMask_UnknownFieldTypeUsesGeneric() {
	result := s.service.Mask(
		map[string]any{"note": "confidential text"},
		map[string]string{},
		0.3, "req-1", "analytics",
	)
	assert.Equal(s.T(), StrategyPartial, result.Applied.Details["note"].Strategy)
	assert.Equal(s.T(), "con*************", result.Data["note"])
}

func (s *ServiceSuite) TestMask_NilValueStaysNil() {
	result := s.service.Mask(
		map[string]any{"email": nil},
		map[string]string{"email": "email"},
		0.9, "req-1", "analytics",
	)
	assert.Nil(s.T(), result.Data["email"])
}

// TestStats_BoundedLog verifies the operation log caps at 1000 entries.
func (s *ServiceSuite) TestStats_BoundedLog() {
	data := map[string]any{"email": "alice@corp.com"}
	types := map[string]string{"email": "email"}
	for i := 0; i < 1100; i++ {
		s.service.Mask(data, types, 0.5, "req-1", "analytics")
	}

	stats := s.service.Stats()
	assert.Equal(s.T(), 1000, stats.TotalOperations)
	assert.Equal(s.T(), 1000, stats.ByLevel[LevelModerate])
	assert.Len(s.T(), stats.RecentOperations, 10)
}

func (s *ServiceSuite) TestStats_Empty() {
	stats := s.service.Stats()
	assert.Equal(s.T(), 0, stats.TotalOperations)
	assert.Empty(s.T(), stats.ByLevel)
}
