package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"privy/internal/budget"
)

type BudgetService interface {
	Status(subjectID string) budget.Status
	History(subjectID string, limit int) []budget.HistoryEntry
	SetCustomBudget(subjectID string, epsilon float64, window time.Duration) (budget.Status, error)
	BlockRequester(requesterID string, duration time.Duration) time.Time
	AllBudgets() []budget.Status
}

func (h *Handler) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.services.Budget.Status(chi.URLParam(r, "subjectID")))
}

func (h *Handler) handleBudgetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	subjectID := chi.URLParam(r, "subjectID")
	writeJSON(w, http.StatusOK, map[string]any{
		"subject_id": subjectID,
		"history":    h.services.Budget.History(subjectID, limit),
	})
}

func (h *Handler) handleSetCustomBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID  string  `json:"subject_id"`
		Epsilon    float64 `json:"epsilon"`
		ResetHours float64 `json:"reset_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	window := time.Duration(body.ResetHours * float64(time.Hour))
	status, err := h.services.Budget.SetCustomBudget(body.SubjectID, body.Epsilon, window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleBlockRequester(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequesterID     string  `json:"requester_id"`
		DurationMinutes float64 `json:"duration_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if body.RequesterID == "" {
		writeBadRequest(w, "requester_id is required")
		return
	}

	duration := time.Duration(body.DurationMinutes * float64(time.Minute))
	until := h.services.Budget.BlockRequester(body.RequesterID, duration)
	writeJSON(w, http.StatusOK, map[string]any{
		"requester_id":  body.RequesterID,
		"blocked_until": until,
	})
}

func (h *Handler) handleAllBudgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.services.Budget.AllBudgets())
}
