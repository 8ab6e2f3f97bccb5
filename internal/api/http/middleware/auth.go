// Package middleware provides the gin middleware chain: bearer-token
// auth, per-client rate limiting, request logging and metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/regtrace/regtrace/internal/observability/logging"
)

const (
	// ContextKeyUserID stores the authenticated subject on the gin context
	ContextKeyUserID = "user_id"

	// ContextKeyUserRole stores the authenticated role
	ContextKeyUserRole = "user_role"
)

// Claims are the JWT claims the API accepts
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens on protected routes
type AuthMiddleware struct {
	secret    []byte
	skipPaths map[string]bool
	logger    logging.Logger
}

// NewAuthMiddleware creates the bearer-token middleware. Paths in
// skipPaths bypass authentication entirely.
func NewAuthMiddleware(secret string, skipPaths []string, logger logging.Logger) *AuthMiddleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &AuthMiddleware{secret: []byte(secret), skipPaths: skip, logger: logger}
}

// Handler returns the gin handler
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.skipPaths[c.FullPath()] || m.skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			m.logger.Debug("token rejected", logging.Error(err))
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ContextKeyUserID, claims.Subject)
		c.Set(ContextKeyUserRole, claims.Role)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "AUTH_001",
			"message": message,
		},
	})
}
