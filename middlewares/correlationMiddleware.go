package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/pos_ledger/utils"
)

const CorrelationIdHeader = "X-Correlation-Id"

// CorrelationMiddleware propagates the caller's correlation id or mints one, and echoes it back.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.Request.Header.Get(CorrelationIdHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Writer.Header().Set(CorrelationIdHeader, cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}
