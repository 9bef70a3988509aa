package apperr

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Respond writes err as the standard failure envelope and aborts the chain.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		zap.L().Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(500, gin.H{"success": false, "error": "server error"})
		return
	}

	body := gin.H{"success": false, "error": e.Msg}
	if e.Detail != "" {
		body["detail"] = e.Detail
	}
	status := e.Kind.HTTPStatus()
	if status >= 500 {
		zap.L().Error(e.Msg, zap.String("kind", e.Kind.String()), zap.String("path", c.FullPath()), zap.Error(e.Err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
