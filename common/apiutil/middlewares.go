package apiutil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out of the service
	RequestIDHeader = "X-Request-ID"
	// TraceIDKey is the gin context key holding the request id
	TraceIDKey = "trace_id"
)

// RequestIDMiddleware accepts an incoming X-Request-ID or generates one,
// stores it in the context and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(TraceIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetTraceID returns the request id stored by RequestIDMiddleware
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return c.GetHeader(RequestIDHeader)
}
