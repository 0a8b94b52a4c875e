package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// principalKey is the Gin context key set by BearerAuth on success.
const principalKey = "principal"

// BearerAuth requires "Authorization: Bearer <token>" matching one of the
// given tokens. Empty tokens are ignored; with no non-empty token configured
// every request passes unauthenticated. principal names the caller for
// logging and rate-limit keys.
func BearerAuth(principal string, tokens ...string) gin.HandlerFunc {
	var accepted [][]byte
	for _, t := range tokens {
		if t != "" {
			accepted = append(accepted, []byte(t))
		}
	}

	return func(c *gin.Context) {
		if len(accepted) == 0 {
			c.Next()
			return
		}

		got, ok := bearerToken(c.GetHeader("Authorization"))
		if ok {
			for _, want := range accepted {
				if subtle.ConstantTimeCompare([]byte(got), want) == 1 {
					c.Set(principalKey, principal)
					c.Next()
					return
				}
			}
		}

		LoggerFrom(c).Warn().Str("principal", principal).Msg("bearer authentication failed")
		c.Header("WWW-Authenticate", `Bearer realm="job-monitor"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "unauthorized",
			"message":    "missing or invalid bearer token",
		})
	}
}

// PrincipalFrom returns the principal set by BearerAuth, or "".
func PrincipalFrom(c *gin.Context) string {
	v, _ := c.Get(principalKey)
	return asString(v)
}

func bearerToken(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
