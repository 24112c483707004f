package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"privy/internal/decision"
	"privy/internal/platform/middleware"
)

type DecisionService interface {
	Evaluate(ctx context.Context, req decision.Request) (decision.Result, error)
	EvaluateEnhanced(ctx context.Context, req decision.Request) (decision.Result, error)
}

func (h *Handler) handleRequestData(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecisionRequest(w, r)
	if !ok {
		return
	}
	result, err := h.services.Decision.Evaluate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRequestDataEnhanced(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecisionRequest(w, r)
	if !ok {
		return
	}
	result, err := h.services.Decision.EvaluateEnhanced(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeDecisionRequest parses and validates the shared request body and
// attaches the transport-only audit context (device, remote address).
func (h *Handler) decodeDecisionRequest(w http.ResponseWriter, r *http.Request) (decision.Request, bool) {
	var req decision.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return decision.Request{}, false
	}
	switch {
	case req.RequesterID == "":
		writeBadRequest(w, "requester_id is required")
		return decision.Request{}, false
	case req.Role == "":
		writeBadRequest(w, "role is required")
		return decision.Request{}, false
	case req.Purpose == "":
		writeBadRequest(w, "purpose is required")
		return decision.Request{}, false
	case req.Jurisdiction == "":
		writeBadRequest(w, "location is required")
		return decision.Request{}, false
	case req.Sensitivity == "":
		writeBadRequest(w, "data_sensitivity is required")
		return decision.Request{}, false
	}

	if dev, ok := middleware.GetDevice(r.Context()); ok {
		req.Device = dev.Browser + " on " + dev.OS
	}
	req.RemoteAddr = r.RemoteAddr
	return req, true
}
