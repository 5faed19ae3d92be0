package middleware

import (
	"errors"   // Error inspection
	"fmt"      // Panic formatting
	"net/http" // HTTP status codes

	"wallet_api/internal/apperr" // Typed errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// ErrorHandler renders the last error recorded on the context as JSON.
// With dev set the response also carries the error kind and cause.
func ErrorHandler(dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		// Nothing to do when the chain succeeded or already answered
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperr.StatusOf(err)

		message := err.Error()
		if status >= http.StatusInternalServerError && !dev {
			message = http.StatusText(status) // Hide driver details outside development
		}
		var body any
		var validation *apperr.ValidationError
		if errors.As(err, &validation) && len(validation.Fields) > 0 {
			body = validation.Fields
		}
		details := gin.H{}
		if dev {
			details = gin.H{"kind": apperr.KindOf(err), "status": status, "cause": err.Error()}
		}
		c.JSON(status, gin.H{"message": message, "body": body, "error": details})
	}
}

// Recovery turns a panic into a 500 rendered by ErrorHandler
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.WriterLevel(logrus.ErrorLevel), func(c *gin.Context, rec any) {
		Abort(c, fmt.Errorf("panic: %v", rec))
	})
}

// NoRoute answers unknown paths with a 404
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		Abort(c, apperr.NotFound("route", c.Request.Method+" "+c.Request.URL.Path))
	}
}
