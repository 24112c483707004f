package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privy/internal/token"
)

type TokenService interface {
	Issue(ctx context.Context, userID, taskID, taskType string, ttl time.Duration, maxUses int, dataScope []string) (token.Issued, error)
	ValidateAndConsume(ctx context.Context, signedToken string) token.Validation
	CompleteTask(ctx context.Context, taskID string) token.CompletionSummary
	Status(tokenID string) token.StatusInfo
	ActiveTokensForUser(userID string) []token.ActiveToken
}

func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID     string   `json:"user_id"`
		TaskID     string   `json:"task_id"`
		TaskType   string   `json:"task_type"`
		TTLSeconds int      `json:"ttl_seconds"`
		MaxUses    int      `json:"max_uses"`
		DataScope  []string `json:"data_scope"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	ttl := time.Duration(body.TTLSeconds) * time.Second
	issued, err := h.services.Token.Issue(r.Context(), body.UserID, body.TaskID, body.TaskType, ttl, body.MaxUses, body.DataScope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

func (h *Handler) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if body.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	// Validation outcomes, including destroyed tokens, are verdicts with a
	// 200 status; the payload carries valid=false and the reason.
	writeJSON(w, http.StatusOK, h.services.Token.ValidateAndConsume(r.Context(), body.Token))
}

func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if body.TaskID == "" {
		writeBadRequest(w, "task_id is required")
		return
	}

	writeJSON(w, http.StatusOK, h.services.Token.CompleteTask(r.Context(), body.TaskID))
}

func (h *Handler) handleTokenStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.services.Token.Status(chi.URLParam(r, "tokenID")))
}

func (h *Handler) handleActiveTokens(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"tokens":  h.services.Token.ActiveTokensForUser(userID),
	})
}
