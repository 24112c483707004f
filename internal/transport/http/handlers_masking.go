package httptransport

import (
	"encoding/json"
	"net/http"

	"privy/internal/masking"
)

type MaskingService interface {
	Mask(data map[string]any, fieldTypes map[string]string, riskScore float64, requesterID, purpose string) masking.Result
	Stats() masking.Stats
}

func (h *Handler) handleMask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data        map[string]any    `json:"data"`
		FieldTypes  map[string]string `json:"field_types"`
		RiskScore   float64           `json:"risk_score"`
		RequesterID string            `json:"requester_id"`
		Purpose     string            `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if len(body.Data) == 0 {
		writeBadRequest(w, "data is required")
		return
	}

	result := h.services.Masking.Mask(body.Data, body.FieldTypes, body.RiskScore, body.RequesterID, body.Purpose)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleMaskStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.services.Masking.Stats())
}
