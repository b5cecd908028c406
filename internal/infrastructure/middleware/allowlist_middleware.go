package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAllowlistMiddleware restricts access to the configured client IPs. An
// empty list allows everyone.
func NewAllowlistMiddleware(allowedHosts []string, logger *zap.SugaredLogger) gin.HandlerFunc {
	if len(allowedHosts) == 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		allowed[host] = struct{}{}
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if _, ok := allowed[ip]; !ok {
			logger.Warnw("rejected client", "ip", ip, "path", c.Request.URL.Path)
			c.String(http.StatusForbidden, "You're not allowed to access this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}
