package risk

import "math"

// defaultFactorWeight is the explicit "unknown = medium risk" policy: any
// categorical value absent from the factor tables scores 0.5.
const defaultFactorWeight = 0.5

// DefaultThreshold is the score above which a request is flagged.
const DefaultThreshold = 0.7

// Fixed contribution weights of the four factors. They sum to 1, so the
// weighted score is already in [0, 1] before clamping.
const (
	weightRole         = 0.25
	weightSensitivity  = 0.35
	weightPurpose      = 0.25
	weightJurisdiction = 0.15
)

// Factor tables. Values express how risky each categorical value is on its
// own; the weighted sum combines them.
var (
	roleFactors = map[string]float64{
		"admin":    0.1,
		"analyst":  0.4,
		"external": 0.9,
	}

	sensitivityFactors = map[string]float64{
		"low":    0.2,
		"medium": 0.5,
		"high":   0.9,
	}

	purposeFactors = map[string]float64{
		"compliance":  0.2,
		"audit":       0.2,
		"operational": 0.3,
		"analytics":   0.4,
		"research":    0.5,
		"reporting":   0.5,
		"marketing":   0.8,
	}

	jurisdictionFactors = map[string]float64{
		"EU": 0.3, "UK": 0.3, "GB": 0.3, "US": 0.5, "US_CA": 0.4,
		"IN": 0.4, "BR": 0.4, "SG": 0.4, "CA": 0.4, "AU": 0.4,
	}
)

// Service computes a weighted multi-factor heuristic risk score.
// It is stateless and safe for concurrent use.
type Service struct {
	threshold float64
}

// Option configures the Service.
type Option func(*Service)

// WithThreshold overrides the exceeds-threshold boundary.
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.threshold = t
		}
	}
}

// New creates a risk scorer with the default threshold.
func New(opts ...Option) *Service {
	s := &Service{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess looks up the four factors, computes the fixed weighted sum, clamps
// to [0, 1] and classifies the result. The threshold comparison is strictly
// greater-than: a score exactly at the threshold does not flag.
func (s *Service) Assess(req Request) Assessment {
	factors := Factors{
		Role:         factorOrDefault(roleFactors, req.Role),
		Sensitivity:  factorOrDefault(sensitivityFactors, req.Sensitivity),
		Purpose:      factorOrDefault(purposeFactors, req.Purpose),
		Jurisdiction: factorOrDefault(jurisdictionFactors, req.Jurisdiction),
	}

	score := weightRole*factors.Role +
		weightSensitivity*factors.Sensitivity +
		weightPurpose*factors.Purpose +
		weightJurisdiction*factors.Jurisdiction
	score = clamp01(score)
	// Round to avoid float noise leaking into reasons and audit records.
	score = math.Round(score*10000) / 10000

	return Assessment{
		Score:            score,
		Tier:             tierFor(score),
		Threshold:        s.threshold,
		ExceedsThreshold: score > s.threshold,
		Factors:          factors,
	}
}

func factorOrDefault(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return defaultFactorWeight
}

func tierFor(score float64) Tier {
	switch {
	case score < 0.3:
		return TierLow
	case score < 0.6:
		return TierMedium
	default:
		return TierHigh
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
