package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles issued by the identity collaborator.
const (
	RoleDriver = "DRIVER"
	RoleAdmin  = "ADMIN"
)

type contextKey string

const (
	subjectKey contextKey = "auth.subject"
	roleKey    contextKey = "auth.role"
)

// Authenticator verifies tokens minted by the identity service. This engine
// only consumes them; it never issues tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireRole verifies the bearer token and admits only the given roles.
func (a *Authenticator) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				authError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims := &authClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return a.secret, nil
			})
			if err != nil || !token.Valid {
				authError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				authError(w, http.StatusForbidden, "insufficient role for this resource")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated caller id (driver id for driver tokens,
// admin id for admin tokens).
func Subject(ctx context.Context) string {
	if v, ok := ctx.Value(subjectKey).(string); ok {
		return v
	}
	return ""
}

func Role(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey).(string); ok {
		return v
	}
	return ""
}

func authError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	code := "unauthorized"
	if status == http.StatusForbidden {
		code = "forbidden"
	}
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
