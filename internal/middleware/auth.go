package middleware

import (
	"net/http"
	"strings"
)

// TokenVerifier checks an unlock token.
type TokenVerifier interface {
	VerifyToken(token string) error
}

type UnlockMiddleware struct {
	verifier TokenVerifier
}

func NewUnlockMiddleware(verifier TokenVerifier) *UnlockMiddleware {
	return &UnlockMiddleware{verifier: verifier}
}

// RequireUnlock rejects requests without a valid "Bearer" unlock token.
func (m *UnlockMiddleware) RequireUnlock(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if err := m.verifier.VerifyToken(strings.TrimPrefix(authz, "Bearer ")); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
