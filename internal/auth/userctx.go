package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxProviderUID = "provider_uid"
	CtxUserID      = "user_id"
	CtxRole        = "role"
)

// UserID returns the internal user id set by WithUser, or "".
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// ProviderUID returns the identity provider's UID for the caller.
func ProviderUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxProviderUID))
}
