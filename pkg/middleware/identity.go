package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tertulia-im/tertulia/internal/sanitize"
)

// CallerHeader carries the caller-supplied name. Any request claiming a name
// is trusted at face value; there is no session or token behind it.
const CallerHeader = "X-Chat-Name"

const callerKey = "caller"

// CallerIdentity extracts the caller name from the request header, sanitizes
// it and stores it on the gin context. Handlers that require an identity fail
// closed when Caller returns "".
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if name := sanitize.Name(c.GetHeader(CallerHeader)); name != "" {
			c.Set(callerKey, name)
		}
		c.Next()
	}
}

// Caller returns the name stored by CallerIdentity, or "" when the request
// carried none.
func Caller(c *gin.Context) string {
	if v, ok := c.Get(callerKey); ok {
		if s, ok2 := v.(string); ok2 {
			return s
		}
	}
	return ""
}
