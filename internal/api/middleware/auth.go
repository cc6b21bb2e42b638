package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the operator key when no Authorization header is sent
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth guards operator routes with a bcrypt-hashed shared key.
// An empty hash rejects every request.
func AdminAuth(keyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			logger.Warn("Admin request rejected: ADMIN_API_KEY_HASH not configured", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "admin access is not configured"})
			return
		}

		apiKey := strings.TrimSpace(c.GetHeader(AdminKeyHeader))
		if apiKey == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				apiKey = strings.TrimSpace(parts[1])
			}
		}
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing admin key"})
			return
		}

		if !VerifyAPIKey(apiKey, keyHash) {
			logger.Warn("Admin request rejected: invalid key", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid admin key"})
			return
		}
		c.Next()
	}
}

// HashAPIKey hashes an API key using bcrypt
func HashAPIKey(apiKey string) (string, error) {
	// Use a cost of 10 for API keys (faster than passwords)
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey verifies an API key against a hash
func VerifyAPIKey(apiKey, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil
}
