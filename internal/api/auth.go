package api

import (
	"crypto/subtle"
	"log"
	"net/http"
)

// APIKeyHeader carries the shared secret for write endpoints
const APIKeyHeader = "X-Api-Key"

// RequireAPIKey rejects requests whose X-Api-Key does not match key.
// An empty key disables the check.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				log.Printf("🔒 Rejected score submit from %s: bad API key", GetClientIP(r))
				writeError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
