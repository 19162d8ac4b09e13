package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"ecomai/internal/logger"
)

func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// A client that hung up mid-response is not a server fault.
		if err, ok := recovered.(error); ok {
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
				c.Abort()
				return
			}
		}

		if gin.IsDebugging() {
			logger.Error("[Recovery] panic recovered: %v\n%s", recovered, string(debug.Stack()))
		} else {
			logger.Error("[Recovery] panic recovered: %v", recovered)
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
