package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	dErrors "privy/pkg/domain-errors"
)

const (
	complianceLogCap     = 1000
	defaultStorageLoc    = "US"
	defaultReportLimit   = 50
	recentChecksInReport = 10
)

type Option func(*Service)

// Service resolves applicable privacy regimes from geography and merges
// their requirements, always keeping the strictest option. Law definitions
// are static; the only mutable state is the bounded check log.
type Service struct {
	logger *slog.Logger

	mu  sync.Mutex
	log []CheckEntry
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

// DetectJurisdictions maps each non-empty location through the geography
// table, case-insensitively. When nothing matches, the synthetic GLOBAL
// jurisdiction applies. The result is sorted for determinism.
func (s *Service) DetectJurisdictions(subjectLoc, requesterLoc, storageLoc string) []Jurisdiction {
	seen := make(map[Jurisdiction]bool)
	for _, loc := range []string{subjectLoc, requesterLoc, storageLoc} {
		if loc == "" {
			continue
		}
		if j, ok := geoMapping[strings.ToUpper(loc)]; ok {
			seen[j] = true
		}
	}
	if len(seen) == 0 {
		return []Jurisdiction{JurisdictionGlobal}
	}
	out := make([]Jurisdiction, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i] < out[k] })
	return out
}

// MergeStrictest combines the requirements of every applicable law, always
// choosing the strictest option: booleans OR, breach notification takes the
// minimum hours, purpose limitation the ordinal maximum, strictness score
// the maximum. GLOBAL or an empty set substitutes the two strictest known
// regimes. Jurisdictions without a law definition contribute nothing.
func (s *Service) MergeStrictest(jurisdictions []Jurisdiction) Merged {
	if len(jurisdictions) == 0 || containsGlobal(jurisdictions) {
		jurisdictions = []Jurisdiction{JurisdictionEU, JurisdictionIndia}
	}

	merged := Requirements{PurposeLimitation: PurposeLimitationNone}
	var laws []string
	var maxStrictness float64

	for _, j := range jurisdictions {
		law, ok := privacyLaws[j]
		if !ok {
			continue
		}
		laws = append(laws, law.Name)
		if law.StrictnessScore > maxStrictness {
			maxStrictness = law.StrictnessScore
		}

		r := law.Requirements
		merged.ConsentRequired = merged.ConsentRequired || r.ConsentRequired
		merged.ExplicitConsentForSensitive = merged.ExplicitConsentForSensitive || r.ExplicitConsentForSensitive
		merged.RightToErasure = merged.RightToErasure || r.RightToErasure
		merged.DataPortability = merged.DataPortability || r.DataPortability
		merged.DPORequired = merged.DPORequired || r.DPORequired
		merged.CrossBorderRestrictions = merged.CrossBorderRestrictions || r.CrossBorderRestrictions
		merged.ProfilingOptOut = merged.ProfilingOptOut || r.ProfilingOptOut
		merged.AutomatedDecisionRights = merged.AutomatedDecisionRights || r.AutomatedDecisionRights
		merged.DataMinimization = merged.DataMinimization || r.DataMinimization
		merged.RetentionLimits = merged.RetentionLimits || r.RetentionLimits

		if r.BreachNotificationHours != nil {
			if merged.BreachNotificationHours == nil || *r.BreachNotificationHours < *merged.BreachNotificationHours {
				h := *r.BreachNotificationHours
				merged.BreachNotificationHours = &h
			}
		}
		if r.PurposeLimitation.Rank() > merged.PurposeLimitation.Rank() {
			merged.PurposeLimitation = r.PurposeLimitation
		}
	}

	return Merged{
		Requirements:    merged,
		ApplicableLaws:  laws,
		StrictnessScore: maxStrictness,
		Jurisdictions:   jurisdictions,
	}
}

// Evaluate runs detection plus merge over the request's data flow and
// flags findings. Only blocking issues make a request non-compliant;
// warnings carry remediation actions but do not fail the check.
func (s *Service) Evaluate(ctx context.Context, req Request) Evaluation {
	storage := req.DataStorageLocation
	if storage == "" {
		storage = defaultStorageLoc
	}
	jurisdictions := s.DetectJurisdictions(req.DataSubjectLocation, req.RequesterLocation, storage)
	merged := s.MergeStrictest(jurisdictions)
	reqs := merged.Requirements

	var issues []Issue
	var actions []string

	if reqs.ConsentRequired && !req.ConsentVerified {
		issues = append(issues, Issue{
			Code:     IssueConsentRequired,
			Severity: SeverityBlocking,
			Laws:     merged.ApplicableLaws,
			Message:  "Explicit consent required but not verified",
		})
		actions = append(actions, "Obtain user consent before processing")
	}

	if reqs.PurposeLimitation == PurposeLimitationStrict && !strictPurposeAllowlist[req.Purpose] {
		issues = append(issues, Issue{
			Code:     IssuePurposeLimitation,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Purpose %q may not meet strict purpose limitation", req.Purpose),
		})
	}

	if reqs.DataMinimization && req.DataSensitivity == "high" {
		actions = append(actions, "Apply data minimization - only collect necessary fields")
	}

	if reqs.CrossBorderRestrictions && req.DataSubjectLocation != req.RequesterLocation {
		issues = append(issues, Issue{
			Code:     IssueCrossBorderTransfer,
			Severity: SeverityWarning,
			Message:  "Cross-border data transfer - ensure adequate safeguards",
		})
		actions = append(actions, "Verify Standard Contractual Clauses or adequacy decision")
	}

	compliant := true
	for _, issue := range issues {
		if issue.Severity == SeverityBlocking {
			compliant = false
			break
		}
	}

	eval := Evaluation{
		Compliant:       compliant,
		Jurisdictions:   jurisdictions,
		ApplicableLaws:  merged.ApplicableLaws,
		StrictnessScore: merged.StrictnessScore,
		Requirements:    reqs,
		Issues:          issues,
		RequiredActions: actions,
		EvaluatedAt:     time.Now().UTC(),
	}

	s.appendLog(req, eval)
	if s.logger != nil && !compliant {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "compliance_check_failed",
			slog.String("requester_id", req.RequesterID),
			slog.String("purpose", req.Purpose),
			slog.Int("issues", len(issues)),
		)
	}
	return eval
}

// LawDetails returns the static definition for a jurisdiction.
// Errors: CodeNotFound when the jurisdiction has no law definition.
func (s *Service) LawDetails(jurisdiction Jurisdiction) (Law, error) {
	law, ok := privacyLaws[jurisdiction]
	if !ok {
		return Law{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no law definition for jurisdiction %s", jurisdiction))
	}
	return law, nil
}

// LawsSummary lists every supported privacy law, ordered by jurisdiction.
func (s *Service) LawsSummary() []LawSummary {
	out := make([]LawSummary, 0, len(privacyLaws))
	for j, law := range privacyLaws {
		out = append(out, LawSummary{
			Jurisdiction:    j,
			Name:            law.Name,
			FullName:        law.FullName,
			Region:          law.Region,
			StrictnessScore: law.StrictnessScore,
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Jurisdiction < out[k].Jurisdiction })
	return out
}

// Report aggregates the most recent checks from the bounded log.
func (s *Service) Report(limit int) Report {
	if limit <= 0 {
		limit = defaultReportLimit
	}

	s.mu.Lock()
	recent := s.log
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	recent = append([]CheckEntry(nil), recent...)
	s.mu.Unlock()

	compliant := 0
	lawsApplied := make(map[string]int)
	for _, entry := range recent {
		if entry.Compliant {
			compliant++
		}
		for _, law := range entry.ApplicableLaws {
			lawsApplied[law]++
		}
	}

	report := Report{
		TotalChecks:       len(recent),
		CompliantRequests: compliant,
		LawsApplied:       lawsApplied,
	}
	if len(recent) > 0 {
		report.ComplianceRate = math.Round(float64(compliant)/float64(len(recent))*100*100) / 100
	}
	tail := recent
	if len(tail) > recentChecksInReport {
		tail = tail[len(tail)-recentChecksInReport:]
	}
	report.RecentChecks = tail
	return report
}

func (s *Service) appendLog(req Request, eval Evaluation) {
	entry := CheckEntry{
		Timestamp:      eval.EvaluatedAt,
		RequesterID:    req.RequesterID,
		Purpose:        req.Purpose,
		Sensitivity:    req.DataSensitivity,
		Compliant:      eval.Compliant,
		ApplicableLaws: eval.ApplicableLaws,
		IssueCount:     len(eval.Issues),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
	if len(s.log) > complianceLogCap {
		s.log = s.log[len(s.log)-complianceLogCap:]
	}
}

func containsGlobal(js []Jurisdiction) bool {
	for _, j := range js {
		if j == JurisdictionGlobal {
			return true
		}
	}
	return false
}
