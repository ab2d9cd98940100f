package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDContextKey = "requestID"

// RequestID tags every request with a correlation id. The id travels in
// the X-Request-Id response header and in every error body and log line
// for the request, so a client report can be matched to server logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDContextKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	v, ok := c.Get(requestIDContextKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// ErrorBody is the uniform error response: a coarse category plus the
// request's correlation id, never internal detail.
func ErrorBody(c *gin.Context, category string) gin.H {
	return gin.H{"error": gin.H{"type": category, "req_uuid": RequestIDFrom(c)}}
}
