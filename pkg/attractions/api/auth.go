package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/lestrrat-go/jwx/jwt"
)

const authFailedMessage = "Auth failed"

type contextKey string

// ClaimsKey is the context key holding the verified token claims
const ClaimsKey contextKey = "attractions_claims"

// AuthGate verifies HS256 bearer tokens signed with a shared secret.
type AuthGate struct {
	ja *jwtauth.JWTAuth
}

// NewAuthGate creates a gate for tokens signed with secret.
func NewAuthGate(secret string) *AuthGate {
	return &AuthGate{ja: jwtauth.New("HS256", []byte(secret), nil)}
}

// Handler only lets requests with a valid bearer token through. Everything
// else gets 401 and the wrapped handler never runs.
func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return jwtauth.Verify(g.ja, jwtauth.TokenFromHeader)(g.authenticate(next))
}

func (g *AuthGate) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err == nil && token == nil {
			err = jwtauth.ErrUnauthorized
		}
		if err == nil {
			err = jwt.Validate(token)
		}
		if err != nil {
			slog.Warn("Authentication failed", "method", r.Method, "path", r.URL.Path, "error", err)
			renderMessage(w, r, http.StatusUnauthorized, authFailedMessage)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IssueToken signs claims. A positive ttl sets the exp claim.
func (g *AuthGate) IssueToken(claims map[string]interface{}, ttl time.Duration) (string, error) {
	c := make(map[string]interface{}, len(claims)+2)
	for k, v := range claims {
		c[k] = v
	}
	jwtauth.SetIssuedNow(c)
	if ttl > 0 {
		jwtauth.SetExpiryIn(c, ttl)
	}
	_, tokenString, err := g.ja.Encode(c)
	return tokenString, err
}

// ClaimsFromContext returns the claims attached by the auth gate.
func ClaimsFromContext(ctx context.Context) (map[string]interface{}, bool) {
	claims, ok := ctx.Value(ClaimsKey).(map[string]interface{})
	return claims, ok
}
