package httptransport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"privy/internal/compliance"
)

type ComplianceService interface {
	LawDetails(jurisdiction compliance.Jurisdiction) (compliance.Law, error)
	LawsSummary() []compliance.LawSummary
	Report(limit int) compliance.Report
}

func (h *Handler) handleComplianceLaws(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.services.Compliance.LawsSummary())
}

func (h *Handler) handleComplianceLawDetails(w http.ResponseWriter, r *http.Request) {
	jurisdiction := compliance.Jurisdiction(strings.ToUpper(chi.URLParam(r, "jurisdiction")))
	law, err := h.services.Compliance.LawDetails(jurisdiction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, law)
}

func (h *Handler) handleComplianceReport(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.services.Compliance.Report(limit))
}
