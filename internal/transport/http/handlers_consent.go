package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privy/internal/consent"
)

type ConsentService interface {
	Grant(ctx context.Context, subjectID string, purposes []string, expiresIn time.Duration) (consent.Record, error)
	Revoke(ctx context.Context, subjectID string) error
	Get(ctx context.Context, subjectID string) (consent.Record, error)
}

func (h *Handler) handleGrantConsent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID    string   `json:"subject_id"`
		Purposes     []string `json:"purposes"`
		ExpiresHours float64  `json:"expires_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	expiresIn := time.Duration(body.ExpiresHours * float64(time.Hour))
	record, err := h.services.Consent.Grant(r.Context(), body.SubjectID, body.Purposes, expiresIn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	record, err := h.services.Consent.Get(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Consent.Revoke(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
