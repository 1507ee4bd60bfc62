package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedEcho(gate *AuthGate) http.Handler {
	return gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		sub, _ := claims["sub"].(string)
		_, _ = w.Write([]byte(sub))
	}))
}

func TestAuthGate_AcceptsValidToken(t *testing.T) {
	gate := NewAuthGate(testSecret)
	token, err := gate.IssueToken(map[string]interface{}{"sub": "user-42", "email": "a@b.c"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedEcho(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestAuthGate_TokenWithoutExpiry(t *testing.T) {
	gate := NewAuthGate(testSecret)
	token, err := gate.IssueToken(map[string]interface{}{"sub": "service"}, 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedEcho(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthGate_RejectsBadCredentials(t *testing.T) {
	gate := NewAuthGate(testSecret)
	ja := jwtauth.New("HS256", []byte(testSecret), nil)

	expiredClaims := map[string]interface{}{"sub": "user-1"}
	jwtauth.SetExpiry(expiredClaims, time.Now().Add(-time.Hour))
	_, expired, err := ja.Encode(expiredClaims)
	require.NoError(t, err)

	futureClaims := map[string]interface{}{"sub": "user-1", "nbf": time.Now().Add(time.Hour).Unix()}
	_, notYetValid, err := ja.Encode(futureClaims)
	require.NoError(t, err)

	_, foreign, err := jwtauth.New("HS256", []byte("other-secret"), nil).Encode(map[string]interface{}{"sub": "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer abc"},
		{"wrong scheme", "Token " + foreign},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
		{"not yet valid", "Bearer " + notYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedEcho(gate).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"Auth failed"}`, w.Body.String())
		})
	}
}

func TestIssueToken_DoesNotModifyClaims(t *testing.T) {
	gate := NewAuthGate(testSecret)
	claims := map[string]interface{}{"sub": "user-1"}

	_, err := gate.IssueToken(claims, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"sub": "user-1"}, claims)
}

func TestLinks(t *testing.T) {
	links := NewLinks("https://api.example.com/")

	assert.Equal(t, "https://api.example.com/attractions/", links.Collection())
	assert.Equal(t, "https://api.example.com/attractions/abc", links.Attraction("abc"))
}
