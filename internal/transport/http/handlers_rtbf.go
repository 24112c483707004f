package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privy/internal/erasure"
)

type ErasureService interface {
	Trigger(ctx context.Context, subjectID, requestedBy, reason string, scope []string) (erasure.Request, error)
	RequestStatus(requestID string) (erasure.Request, error)
	CertificateForSubject(subjectID string) (erasure.Certificate, error)
	Requests(status erasure.PurgeStatus) []erasure.Request
	IsBlocked(subjectID string) bool
}

func (h *Handler) handleTriggerErasure(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string   `json:"subject_id"`
		Reason    string   `json:"reason"`
		Scope     []string `json:"scope"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	requestedBy := body.SubjectID
	if claims, ok := claimsFrom(r.Context()); ok {
		requestedBy = claims.Subject
	}

	request, err := h.services.Erasure.Trigger(r.Context(), body.SubjectID, requestedBy, body.Reason, body.Scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *Handler) handleErasureRequests(w http.ResponseWriter, r *http.Request) {
	status := erasure.PurgeStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, h.services.Erasure.Requests(status))
}

func (h *Handler) handleErasureStatus(w http.ResponseWriter, r *http.Request) {
	request, err := h.services.Erasure.RequestStatus(chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *Handler) handleDeletionCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.services.Erasure.CertificateForSubject(chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleErasureBlocked(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	writeJSON(w, http.StatusOK, map[string]any{
		"subject_id": subjectID,
		"blocked":    h.services.Erasure.IsBlocked(subjectID),
	})
}
