package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// loopbackOnly rejects requests that do not come from this machine or that
// address a non-local host name (DNS rebinding).
func loopbackOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLoopbackRequest(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{JSONKeyError: HTTPErrorForbiddenText})
			return
		}
		if !isSafeLocalHost(c.Request.Host) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{JSONKeyError: HTTPErrorForbiddenHost})
			return
		}
		c.Next()
	}
}

// requireSession guards mutating routes with the session token.
func requireSession(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(SessionHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{JSONKeyError: HTTPErrorUnauthorized})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("local api request failed", "method", c.Request.Method, "path", c.FullPath(), "status", c.Writer.Status())
		}
	}
}
