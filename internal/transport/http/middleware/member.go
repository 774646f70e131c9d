package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-verify-mail/internal/domain"
	jwtinfra "github.com/go-verify-mail/internal/infrastructure/jwt"
)

type contextKey string

const CallerKey contextKey = "caller"

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// MemberInfo resolves the caller from the Bearer JWT and stores a *domain.Caller
// in the request context. It never rejects: a missing or invalid token yields a
// signed-out caller, and handlers decide what that means.
func MemberInfo(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := &domain.Caller{}
			if claims, ok := verifyBearer(tokens, r.Header.Get("Authorization")); ok {
				caller = &domain.Caller{UserID: claims.UserID, Username: claims.Username, SignedIn: true}
			}
			ctx := context.WithValue(r.Context(), CallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyBearer(tokens TokenVerifier, header string) (*jwtinfra.Claims, bool) {
	if tokens == nil || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

// CallerFromContext returns the caller stored by MemberInfo, or nil when the
// middleware did not run.
func CallerFromContext(ctx context.Context) *domain.Caller {
	c, _ := ctx.Value(CallerKey).(*domain.Caller)
	return c
}
