package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationHeader = "X-Correlation-ID"

// Correlation assigns every request an id, echoing the caller's when
// provided, so log lines across the pipeline can be tied together.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("correlation_id", id)
		c.Writer.Header().Set(CorrelationHeader, id)
		c.Next()
	}
}
