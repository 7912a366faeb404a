package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// ShopperSession resolves the slot key that cart and comparison state live
// under. Signed-in shoppers get a stable key derived from their user id so
// state follows them across devices; anonymous shoppers get the session id
// from the X-Session-Id header, minted on first contact and echoed back so
// the client can persist it.
func ShopperSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if userID := UserIDFromContext(ctx); userID != uuid.Nil {
				sessionID = "user:" + userID.String()
			} else {
				sessionID = sanitizeSessionID(r.Header.Get(sessionIDHeader))
				if sessionID == "" {
					sessionID = uuid.NewString()
				}
				w.Header().Set(sessionIDHeader, sessionID)
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sanitizeSessionID accepts only UUID-shaped session ids so clients cannot
// pick arbitrary Redis key suffixes.
func sanitizeSessionID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := uuid.Parse(raw); err != nil {
		return ""
	}
	return strings.ToLower(raw)
}
