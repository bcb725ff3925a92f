package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ErrorHandler turns the last error attached with c.Error into the
// {success:false, message} envelope. Unexpected errors are logged and
// reported as a generic 500.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		appErr := apperr.From(err)
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("unhandled_error", GetRequestID(c), "request failed", err,
				slog.String("path", c.Request.URL.Path))
		}
		c.JSON(appErr.Status, gin.H{"success": false, "message": appErr.Message})
	}
}

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic", GetRequestID(c), "recovered from panic", fmt.Errorf("%v", recovered),
			slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": apperr.Internal().Message,
		})
	})
}

// RateLimit is a global token bucket shared by all clients.
func RateLimit(rps float64, burst int, log *logger.Logger) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.Warn("rate_limited", GetRequestID(c), "rate limit exceeded",
				slog.String("client_ip", c.ClientIP()))
			c.Header("Retry-After", "1")
			c.Error(apperr.New(http.StatusTooManyRequests, "Rate limit exceeded"))
			c.Abort()
			return
		}
		c.Next()
	}
}
