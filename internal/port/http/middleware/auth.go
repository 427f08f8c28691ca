package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/user/usecase"
)

type contextKey string

const principalCtxKey = contextKey("principal")

// JWTAuth authenticates requests with a Bearer token and attaches the
// resulting Principal to the request context. Downstream code trusts the
// principal as-is; the user record is not reloaded per request.
func JWTAuth(jwtSecret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				unauthorized(w, "Access denied. No token provided.")
				return
			}

			claims, err := usecase.ParseToken(parts[1], jwtSecret)
			if err != nil {
				log.Debugf("JWTAuth: token rejected: %v", err)
				unauthorized(w, "Token is not valid")
				return
			}

			principal := domain.Principal{
				UserID: claims.UserID,
				Role:   claims.Role,
				Name:   claims.Name,
				Email:  claims.Email,
			}

			ctx := context.WithValue(r.Context(), principalCtxKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated principal attached by
// JWTAuth, or false when the request skipped the middleware.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey).(domain.Principal)
	return principal, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"status":"error","message":"` + message + `"}`))
}
