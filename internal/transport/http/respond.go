package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "privy/pkg/domain-errors"
)

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// best-effort fallback; don't override status for the caller
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError centralizes domain error translation to HTTP responses.
// Every handler funnels errors through here so the JSON envelope stays
// consistent.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		writeJSON(w, domainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}

func writeBadRequest(w http.ResponseWriter, description string) {
	writeError(w, dErrors.New(dErrors.CodeBadRequest, description))
}

// domainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func domainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeSignatureInvalid:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeMissingConsent, dErrors.CodeInvalidConsent:
		return http.StatusForbidden
	case dErrors.CodePolicyViolation:
		return http.StatusPreconditionFailed
	case dErrors.CodeBudgetExhausted, dErrors.CodeRequesterBlocked:
		return http.StatusTooManyRequests
	case dErrors.CodeTokenDestroyed:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
