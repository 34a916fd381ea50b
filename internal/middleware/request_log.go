package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

type RequestLogger struct {
	log *logger.Logger
}

func NewRequestLogger(baseLog *logger.Logger) *RequestLogger {
	return &RequestLogger{log: baseLog.With("Middleware", "RequestLogger")}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rl.log.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"requestId", c.GetString("request_id"),
		)
	}
}
