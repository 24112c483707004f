package decision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"privy/internal/audit"
	"privy/internal/budget"
	"privy/internal/compliance"
	"privy/internal/consent"
	"privy/internal/platform/metrics"
	"privy/internal/policy"
	"privy/internal/risk"
	dErrors "privy/pkg/domain-errors"
	"privy/pkg/platform/tracer"
)

// Consumer-side views of the sub-check services. Each is the minimal
// surface the orchestrator needs, so tests can stand in any one check.
type (
	PolicyEvaluator interface {
		Evaluate(req policy.Request) policy.Verdict
	}
	ConsentChecker interface {
		Check(ctx context.Context, subjectID, purpose string) (consent.Verdict, error)
	}
	RiskAssessor interface {
		Assess(req risk.Request) risk.Assessment
	}
	BudgetLedger interface {
		CheckAndConsume(ctx context.Context, req budget.ConsumeRequest) (budget.Decision, error)
	}
	ComplianceResolver interface {
		Evaluate(ctx context.Context, req compliance.Request) compliance.Evaluation
	}
	ErasureGate interface {
		IsBlocked(subjectID string) bool
	}
	AuditAppender interface {
		Append(ctx context.Context, record audit.Record) (int64, error)
	}
)

type Option func(*Service)

// Service orchestrates access decisions. The basic pipeline runs policy,
// consent and risk; the enhanced pipeline adds budget and compliance. Every
// check runs and every failing reason is collected, so a denial is always
// fully explained. The erasure block is the one exception: it
// short-circuits with a fixed reason before anything else.
//
// The orchestrator holds no locks of its own; the audit append happens
// after all sub-checks returned, never inside them.
type Service struct {
	policies    PolicyEvaluator
	consents    ConsentChecker
	risks       RiskAssessor
	budgets     BudgetLedger
	compliances ComplianceResolver
	erasures    ErasureGate
	auditor     AuditAppender

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

func NewService(
	policies PolicyEvaluator,
	consents ConsentChecker,
	risks RiskAssessor,
	budgets BudgetLedger,
	compliances ComplianceResolver,
	erasures ErasureGate,
	auditor AuditAppender,
	opts ...Option,
) *Service {
	svc := &Service{
		policies:    policies,
		consents:    consents,
		risks:       risks,
		budgets:     budgets,
		compliances: compliances,
		erasures:    erasures,
		auditor:     auditor,
		tracer:      tracer.NewNoop(),
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

// WithTracer sets the tracer for the decision pipelines.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Evaluate runs the basic pipeline: erasure block, then policy, consent
// and risk. ALLOW requires all three checks to pass.
// Errors: only infrastructure failures (consent store, audit store);
// denials are verdicts.
func (s *Service) Evaluate(ctx context.Context, req Request) (Result, error) {
	return s.evaluate(ctx, req, PipelineBasic)
}

// EvaluateEnhanced runs the enhanced pipeline: the basic checks plus
// privacy budget and legal compliance. The budget check is itself a
// consume attempt, so an enhanced request charges the subject's epsilon
// even when another check denies.
// Errors: CodeInvalidInput for an unknown query type, before any charge.
func (s *Service) EvaluateEnhanced(ctx context.Context, req Request) (Result, error) {
	return s.evaluate(ctx, req, PipelineEnhanced)
}

func (s *Service) evaluate(ctx context.Context, req Request, pipeline string) (Result, error) {
	spanName := tracer.SpanDecisionEvaluate
	if pipeline == PipelineEnhanced {
		spanName = tracer.SpanDecisionEnhanced
	}
	ctx, span := s.tracer.Start(ctx, spanName,
		tracer.String(tracer.AttrRequesterID, tracer.HashSubjectID(req.RequesterID)),
	)
	var retErr error
	defer func() { span.End(retErr) }()

	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.DecisionLatency.Observe(time.Since(started).Seconds())
		}
	}()

	if s.erasures.IsBlocked(req.RequesterID) || s.erasures.IsBlocked(req.Subject()) {
		span.AddEvent(tracer.EventSubjectBlocked)
		result := Result{
			Decision: audit.DecisionDeny,
			Reason:   ReasonErasureBlocked,
		}
		if err := s.emitAudit(ctx, span, req, pipeline, &result, map[string]any{"rtbf_blocked": true}); err != nil {
			retErr = err
			return Result{}, err
		}
		s.count(audit.DecisionDeny, pipeline)
		return result, nil
	}

	policyVerdict := s.policies.Evaluate(policy.Request{
		Role:         req.Role,
		Purpose:      req.Purpose,
		Jurisdiction: req.Jurisdiction,
		Sensitivity:  req.Sensitivity,
	})

	consentVerdict, err := s.consents.Check(ctx, req.Subject(), req.Purpose)
	if err != nil {
		retErr = err
		return Result{}, err
	}

	assessment := s.risks.Assess(risk.Request{
		Role:         req.Role,
		Purpose:      req.Purpose,
		Jurisdiction: req.Jurisdiction,
		Sensitivity:  req.Sensitivity,
	})
	if s.metrics != nil {
		s.metrics.RiskScoreObserve.Observe(assessment.Score)
	}
	span.SetAttributes(tracer.Float64(tracer.AttrRiskScore, assessment.Score))

	var reasons []string
	if !policyVerdict.Allowed {
		reasons = append(reasons, "Policy: "+policyVerdict.Reason)
	}
	if !consentVerdict.HasConsent {
		reasons = append(reasons, "Consent: "+consentVerdict.Reason)
	}
	if assessment.ExceedsThreshold {
		reasons = append(reasons, fmt.Sprintf("Risk: Score %v exceeds threshold %v",
			assessment.Score, assessment.Threshold))
	}

	result := Result{
		RiskScore:     assessment.Score,
		PolicyChecks:  policyVerdict,
		ConsentStatus: consentVerdict,
		Risk:          assessment,
	}
	metadata := map[string]any{
		"policy_checks":            policyVerdict.Checks,
		"risk_factors":             assessment.Factors,
		"risk_level":               assessment.Tier,
		"consent_granted_purposes": consentVerdict.GrantedPurposes,
	}

	if pipeline == PipelineEnhanced {
		budgetDecision, complianceEval, err := s.enhancedChecks(ctx, req, consentVerdict.HasConsent)
		if err != nil {
			retErr = err
			return Result{}, err
		}
		result.Budget = &budgetDecision
		result.Compliance = &complianceEval
		metadata["budget_status"] = budgetDecision
		metadata["compliance"] = map[string]any{
			"is_compliant":     complianceEval.Compliant,
			"applicable_laws":  complianceEval.ApplicableLaws,
			"strictness_score": complianceEval.StrictnessScore,
		}

		if !budgetDecision.Allowed {
			reasons = append(reasons, "Budget: "+budgetDecision.Reason)
		}
		if !complianceEval.Compliant {
			reasons = append(reasons, "Compliance: "+blockingSummary(complianceEval.Issues))
		}
	}

	if len(reasons) == 0 {
		result.Decision = audit.DecisionAllow
		if pipeline == PipelineEnhanced {
			reasons = append(reasons, "All checks passed: policy compliant, consent granted, risk acceptable, budget available, legally compliant")
		} else {
			reasons = append(reasons, "All checks passed: policy compliant, consent granted, risk acceptable")
		}
	} else {
		result.Decision = audit.DecisionDeny
	}
	result.Reason = strings.Join(reasons, " | ")

	if err := s.emitAudit(ctx, span, req, pipeline, &result, metadata); err != nil {
		retErr = err
		return Result{}, err
	}
	s.count(result.Decision, pipeline)
	s.log(ctx, slog.LevelInfo, "decision_evaluated",
		"pipeline", pipeline,
		"requester_id", req.RequesterID,
		"decision", result.Decision,
		"risk_score", result.RiskScore,
	)
	return result, nil
}

// enhancedChecks runs the two extra sub-checks of the enhanced pipeline.
func (s *Service) enhancedChecks(ctx context.Context, req Request, consentVerified bool) (budget.Decision, compliance.Evaluation, error) {
	queryType := req.QueryType
	if queryType == "" {
		queryType = string(budget.QueryAggregate)
	}
	budgetDecision, err := s.budgets.CheckAndConsume(ctx, budget.ConsumeRequest{
		SubjectID:   req.Subject(),
		RequesterID: req.RequesterID,
		QueryType:   budget.QueryType(queryType),
		Sensitivity: req.Sensitivity,
		NumRecords:  req.NumRecords,
		Purpose:     req.Purpose,
	})
	if err != nil {
		return budget.Decision{}, compliance.Evaluation{}, err
	}

	complianceEval := s.compliances.Evaluate(ctx, compliance.Request{
		RequesterID:         req.RequesterID,
		Purpose:             req.Purpose,
		DataSensitivity:     req.Sensitivity,
		ConsentVerified:     consentVerified,
		DataSubjectLocation: req.SubjectLocation,
		RequesterLocation:   req.RequesterLocation,
		DataStorageLocation: req.StorageLocation,
	})
	return budgetDecision, complianceEval, nil
}

// emitAudit writes exactly one record per outcome. The append runs after
// every sub-check returned; no service lock is held here.
func (s *Service) emitAudit(ctx context.Context, span tracer.Span, req Request, pipeline string, result *Result, metadata map[string]any) error {
	metadata["pipeline"] = pipeline
	if req.Device != "" {
		metadata["device"] = req.Device
	}
	if req.RemoteAddr != "" {
		metadata["remote_addr"] = req.RemoteAddr
	}

	id, err := s.auditor.Append(ctx, audit.Record{
		Timestamp:    time.Now().UTC(),
		RequesterID:  req.RequesterID,
		Role:         req.Role,
		Purpose:      req.Purpose,
		Jurisdiction: req.Jurisdiction,
		Sensitivity:  req.Sensitivity,
		Decision:     result.Decision,
		Reason:       result.Reason,
		RiskScore:    result.RiskScore,
		Metadata:     metadata,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit record")
	}
	result.AuditID = id
	span.AddEvent(tracer.EventAuditEmitted)
	span.SetAttributes(tracer.String(tracer.AttrDecision, result.Decision))
	return nil
}

// blockingSummary joins the blocking issue messages; warnings stay out of
// the denial reason.
func blockingSummary(issues []compliance.Issue) string {
	var msgs []string
	for _, issue := range issues {
		if issue.Severity == compliance.SeverityBlocking {
			msgs = append(msgs, issue.Message)
		}
	}
	if len(msgs) == 0 {
		return "compliance requirements not met"
	}
	return strings.Join(msgs, "; ")
}

func (s *Service) count(decision, pipeline string) {
	if s.metrics != nil {
		s.metrics.Decisions.WithLabelValues(decision, pipeline).Inc()
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
