package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"privy/internal/audit"
)

type AuditReader interface {
	List(ctx context.Context, q audit.Query) ([]audit.Record, error)
	Stats(ctx context.Context) (audit.Stats, error)
}

const maxAuditLogLimit = 1000

func (h *Handler) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := audit.Query{
		RequesterID: r.URL.Query().Get("requester_id"),
		Decision:    r.URL.Query().Get("decision"),
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if q.Limit > maxAuditLogLimit {
		q.Limit = maxAuditLogLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	records, err := h.services.Audit.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Audit.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
