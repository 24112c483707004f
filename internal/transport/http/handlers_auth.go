package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"privy/internal/auth"
	dErrors "privy/pkg/domain-errors"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (auth.Session, error)
	Verify(tokenString string) (auth.Claims, error)
}

type claimsKey struct{}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	session, err := h.services.Auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// requireAuth validates the bearer token and stashes its claims in the
// request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := h.services.Auth.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates an already-authenticated route to a single role.
func (h *Handler) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r.Context())
			if !ok || claims.Role != role {
				writeError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}
