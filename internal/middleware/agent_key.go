package middleware

import (
	"crypto/subtle"
	"net/http"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/utils"
)

const AgentKeyHeader = "x-agent-api-key"

// RequireAgentKey guards server-to-server routes called by the voice agent.
// With no key configured the routes are closed.
func RequireAgentKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				utils.Error(w, apperr.Unavailable("Agent API key is not configured."), false)
				return
			}
			got := r.Header.Get(AgentKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				utils.Error(w, apperr.Unauthorized("Invalid agent API key"), false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
