package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/lendera-api/pkg/logger"
)

// RequestLogger logs every request except health checks, at a level
// derived from the response status
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if path == "/api/v1/health" {
			return
		}

		latency := time.Since(start)

		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		userAgent := c.Request.UserAgent()

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", statusCode),
			slog.String("ip", clientIP),
			slog.Duration("latency", latency),
			slog.String("user_agent", userAgent),
		}

		if errorMessage != "" {
			attrs = append(attrs, slog.String("error", errorMessage))
		}

		if actorID := GetActorID(c); actorID != 0 {
			attrs = append(attrs, slog.Uint64("actor_id", uint64(actorID)))
		}

		msg := "Request handled"
		switch {
		case statusCode >= 500:
			logger.Log.ErrorContext(c.Request.Context(), msg, attrs...)
		case statusCode >= 400:
			logger.Log.WarnContext(c.Request.Context(), msg, attrs...)
		default:
			logger.Log.InfoContext(c.Request.Context(), msg, attrs...)
		}
	}
}
