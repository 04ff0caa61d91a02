package auth

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// key types for context values
type ctxKey string

const ctxKeyAuthInfo ctxKey = "plugger.authInfo"

// AuthInfo holds extracted authentication information for the request.
type AuthInfo struct {
	// Subject (sub claim) from the validated token; empty for anonymous
	// requests when anonymous access is allowed.
	Subject string
}

// FromContext returns the AuthInfo stored in the request context, or nil.
func FromContext(ctx context.Context) *AuthInfo {
	v := ctx.Value(ctxKeyAuthInfo)
	if v == nil {
		return nil
	}
	if ai, ok := v.(*AuthInfo); ok {
		return ai
	}
	return nil
}

// NewMiddleware returns an HTTP middleware that validates HS256 bearer
// tokens signed with secret. With allowAnon set, requests without an
// Authorization header pass through unauthenticated; a present but invalid
// token is still rejected.
func NewMiddleware(secret []byte, allowAnon bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if !allowAnon {
					http.Error(w, "authorization required", http.StatusUnauthorized)
					return
				}
				ctx := context.WithValue(r.Context(), ctxKeyAuthInfo, &AuthInfo{})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				log.Printf("[auth] token rejected: %v", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ai := &AuthInfo{}
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, _ := claims["sub"].(string); sub != "" {
					ai.Subject = sub
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyAuthInfo, ai)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}
