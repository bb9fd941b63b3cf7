package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/akkm9120/sctp02-crud-mongo/internal/httputil"
)

type contextKey string

const claimsKey contextKey = "claims"

// Middleware requires a bearer token in the Authorization header and stores
// the verified claims in the request context. Failures are reported as 400.
func Middleware(tokens *TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				logger.WarnContext(r.Context(), "no authorization header", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindAuthentication, "Login required to access this route")
				return
			}

			var token string
			if parts := strings.Fields(header); len(parts) > 1 {
				token = parts[1]
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token", "error", err)
				httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindAuthentication, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// GetUserID extracts the user id from context
func GetUserID(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

// GetEmail extracts email from context
func GetEmail(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Email, true
}
