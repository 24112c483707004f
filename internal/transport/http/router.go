package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"privy/internal/platform/metrics"
	"privy/internal/platform/middleware"
)

// Services bundles the domain collaborators the transport layer delegates
// to. Handlers stay thin; all business logic lives behind these interfaces.
type Services struct {
	Auth       AuthService
	Decision   DecisionService
	Consent    ConsentService
	Masking    MaskingService
	Token      TokenService
	Erasure    ErasureService
	Budget     BudgetService
	Compliance ComplianceService
	Audit      AuditReader
}

// Handler is the thin HTTP layer over the decision engine and its
// supporting services.
type Handler struct {
	services Services
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(services Services, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		metrics:  m,
	}
}

// NewRouter wires all endpoints with the middleware stack. The metrics
// endpoint sits outside /api and skips auth so scrapers can reach it.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Device)
	r.Use(middleware.Latency(h.metrics))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.handleHealth)
		api.Post("/auth/login", h.handleLogin)

		api.Group(func(authed chi.Router) {
			authed.Use(h.requireAuth)

			authed.Post("/request-data", h.handleRequestData)
			authed.Post("/request-data/enhanced", h.handleRequestDataEnhanced)

			authed.Post("/consent", h.handleGrantConsent)
			authed.Get("/consent/{subjectID}", h.handleGetConsent)
			authed.Delete("/consent/{subjectID}", h.handleRevokeConsent)

			authed.Post("/mask", h.handleMask)
			authed.Get("/mask/stats", h.handleMaskStats)

			authed.Post("/tokens", h.handleIssueToken)
			authed.Post("/tokens/validate", h.handleValidateToken)
			authed.Post("/tokens/complete-task", h.handleCompleteTask)
			authed.Get("/tokens/{tokenID}", h.handleTokenStatus)
			authed.Get("/tokens/user/{userID}", h.handleActiveTokens)

			authed.Post("/rtbf", h.handleTriggerErasure)
			authed.Get("/rtbf/requests", h.handleErasureRequests)
			authed.Get("/rtbf/requests/{requestID}", h.handleErasureStatus)
			authed.Get("/rtbf/certificate/{subjectID}", h.handleDeletionCertificate)
			authed.Get("/rtbf/blocked/{subjectID}", h.handleErasureBlocked)

			authed.Get("/budget/{subjectID}", h.handleBudgetStatus)
			authed.Get("/budget/{subjectID}/history", h.handleBudgetHistory)

			authed.Get("/compliance/laws", h.handleComplianceLaws)
			authed.Get("/compliance/laws/{jurisdiction}", h.handleComplianceLawDetails)
			authed.Get("/compliance/report", h.handleComplianceReport)

			authed.Group(func(admin chi.Router) {
				admin.Use(h.requireRole("admin"))

				admin.Get("/audit-logs", h.handleAuditLogs)
				admin.Get("/audit-logs/stats", h.handleAuditStats)
				admin.Get("/budget", h.handleAllBudgets)
				admin.Post("/budget/custom", h.handleSetCustomBudget)
				admin.Post("/budget/block", h.handleBlockRequester)
			})
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "privy",
	})
}
