package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppProxySignature computes the signature Shopify appends to app proxy requests:
// every parameter except "signature" as key=value (repeated values joined by ","),
// sorted and concatenated without a separator, HMAC-SHA256 with the app secret, hex encoded.
func AppProxySignature(q url.Values, secret string) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(q[k], ","))
	}
	sort.Strings(parts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAppProxySignature checks the signature parameter of an app proxy request
func VerifyAppProxySignature(q url.Values, secret string) bool {
	if secret == "" {
		return false
	}
	got, err := hex.DecodeString(q.Get("signature"))
	if err != nil || len(got) == 0 {
		return false
	}
	expected, _ := hex.DecodeString(AppProxySignature(q, secret))
	return hmac.Equal(expected, got)
}

// AppProxyAuth rejects storefront requests that were not signed by the shop's app proxy
func AppProxyAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !VerifyAppProxySignature(c.Request.URL.Query(), secret) {
			logger.Warn("Rejected unsigned proxy request",
				zap.String("path", c.Request.URL.Path),
				zap.String("shop", c.Query("shop")),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		c.Next()
	}
}
