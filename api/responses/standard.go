package responses

import (
	"time"

	"github.com/Aidin1998/bookshelf/common/apiutil"
	"github.com/Aidin1998/bookshelf/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ProblemContentType is the media type of problem documents
const ProblemContentType = "application/problem+json"

// Text sends a plain text response
func Text(c *gin.Context, status int, body string) {
	c.String(status, body)
}

// JSON sends a JSON response
func JSON(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

// Error sends an error response using RFC 7807 format
func Error(c *gin.Context, problemDetails *errors.ProblemDetails) {
	if problemDetails.TraceID == "" {
		if traceID := apiutil.GetTraceID(c); traceID != "" {
			problemDetails.WithTraceID(traceID)
		}
	}
	if _, ok := problemDetails.Extra["timestamp"]; !ok {
		problemDetails.WithExtra("timestamp", time.Now().UTC().Format(time.RFC3339))
	}

	c.Header("Content-Type", ProblemContentType)
	c.AbortWithStatusJSON(problemDetails.Status, problemDetails)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, detail string, validationErrors ...errors.ValidationError) {
	problemDetails := errors.NewValidationError(detail, c.Request.URL.Path)
	if len(validationErrors) > 0 {
		problemDetails.WithValidationErrors(validationErrors)
	}
	Error(c, problemDetails)
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, detail string) {
	Error(c, errors.NewNotFoundError(detail, c.Request.URL.Path))
}

// InternalServerError sends a 500 Internal Server Error response
func InternalServerError(c *gin.Context, detail string) {
	Error(c, errors.NewInternalError(detail, c.Request.URL.Path))
}

// ServiceUnavailable sends a 503 Service Unavailable response
func ServiceUnavailable(c *gin.Context, detail string) {
	Error(c, errors.NewServiceUnavailableError(detail, c.Request.URL.Path))
}

