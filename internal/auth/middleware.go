package auth

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/profitcalc/profitcalc-backend/internal/users"
)

// WithUser authenticates the request and guarantees a users row for
// the caller. With a Firebase client it verifies the bearer token;
// without one it trusts the X-User-Id header, which is only
// acceptable for local development.
func WithUser(authClient *fbauth.Client, userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uid, email, name string

		if authClient != nil {
			token := extractBearer(c)
			if token == "" {
				abortUnauthorized(c, "missing authorization token")
				return
			}
			decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
			if err != nil {
				abortUnauthorized(c, "invalid token")
				return
			}
			uid = decoded.UID
			if v, ok := decoded.Claims["email"].(string); ok {
				email = v
			}
			if v, ok := decoded.Claims["name"].(string); ok {
				name = v
			}
		} else {
			uid = strings.TrimSpace(c.GetHeader("X-User-Id"))
			if uid == "" {
				abortUnauthorized(c, "missing X-User-Id header")
				return
			}
			email = c.GetHeader("X-User-Email")
			name = c.GetHeader("X-User-Name")
		}

		userID, err := userRepo.EnsureUser(c.Request.Context(), uid, email, name)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false, "message": "ensure user: " + err.Error(),
			})
			return
		}

		c.Set(CtxProviderUID, uid)
		c.Set(CtxUserID, userID)
		c.Next()
	}
}

// RequireAdmin gates the admin operation surface. The capability
// check runs once per request, before any handler logic.
func RequireAdmin(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := userRepo.GetRole(c.Request.Context(), UserID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false, "message": "role lookup failed",
			})
			return
		}
		if !role.CanAdminister() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false, "message": "admin access required",
			})
			return
		}
		c.Set(CtxRole, string(role))
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return header[7:]
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false, "message": msg,
	})
}
