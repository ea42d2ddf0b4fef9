package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// defaultAdminKey is only for local development; deployments must set
// ADMIN_API_KEY.
const defaultAdminKey = "admin-dev-key-change-in-production"

// AdminMiddleware guards the operational endpoints with a shared API key.
type AdminMiddleware struct {
	apiKey string
}

// NewAdminMiddleware creates the admin gate. An empty key falls back to
// the development-only default.
func NewAdminMiddleware(apiKey string) *AdminMiddleware {
	if apiKey == "" {
		apiKey = defaultAdminKey
	}
	return &AdminMiddleware{apiKey: apiKey}
}

// RequireAdminAuth rejects requests that do not present the admin API key.
func (am *AdminMiddleware) RequireAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.ValidateAdminKey(adminKeyFrom(c)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Valid admin API key required for this endpoint",
			})
			return
		}
		c.Next()
	}
}

// adminKeyFrom pulls the presented key from the request. A Bearer token,
// the X-API-Key header, and an api_key query parameter are accepted, in
// that order.
func adminKeyFrom(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
	}
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	return c.Query("api_key")
}

// ValidateAdminKey reports whether the supplied key matches the admin key.
// Comparison is constant time.
func (am *AdminMiddleware) ValidateAdminKey(key string) bool {
	return subtle.ConstantTimeCompare([]byte(key), []byte(am.apiKey)) == 1
}
