package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/crhubottom/school-flow-project/internal/auth"
	"github.com/crhubottom/school-flow-project/internal/domain"
	"github.com/crhubottom/school-flow-project/internal/service"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

// Auth creates authentication middleware. Every request must carry a bearer
// ID token the verifier accepts; the resulting principal is stored in the
// request context and enqueued on the profile mirror, which is how a signed-in
// user's profile document stays fresh.
func Auth(verifier auth.Verifier, mirror *service.ProfileMirror) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"code":401,"message":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, `{"code":401,"message":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			rawToken := strings.TrimPrefix(authHeader, "Bearer ")
			if rawToken == "" {
				http.Error(w, `{"code":401,"message":"empty bearer token"}`, http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			principal, err := verifier.Verify(ctx, rawToken)
			if err != nil {
				http.Error(w, `{"code":401,"message":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			if mirror != nil {
				mirror.Enqueue(principal)
			}

			ctx = context.WithValue(ctx, PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipalFromContext retrieves the acting principal from the request
// context. Returns nil outside the auth middleware.
func GetPrincipalFromContext(ctx context.Context) *domain.Principal {
	principal, _ := ctx.Value(PrincipalContextKey).(*domain.Principal)
	return principal
}
