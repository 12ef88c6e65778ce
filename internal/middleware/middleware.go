package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// RequestLogger logs a structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("clientIP", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
