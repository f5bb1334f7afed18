package middleware

import (
	"net/http"
	"strings"

	"nganya/internal/domain"
	"nganya/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	authRoleKey    = "auth_role"
	authSubjectKey = "auth_subject"
)

// AuthOptional reads a bearer token when one is sent. Requests without a
// token, or with a bad one, pass through unauthenticated.
func AuthOptional(tokens services.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				c.Set(authRoleKey, claims.Role)
				c.Set(authSubjectKey, claims.Subject)
			}
		}
		c.Next()
	}
}

// RequireRoles admits only authenticated callers holding one of roles.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, _, ok := AuthIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if _, ok := allowed[role]; !ok {
			abort(c, http.StatusForbidden, "Role not allowed")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}

// AuthIdentity returns the role and identity id of the authenticated caller.
func AuthIdentity(c *gin.Context) (domain.Role, string, bool) {
	role, ok := c.Get(authRoleKey)
	if !ok {
		return "", "", false
	}
	subject, _ := c.Get(authSubjectKey)
	r, _ := role.(domain.Role)
	s, _ := subject.(string)
	return r, s, r != "" && s != ""
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
