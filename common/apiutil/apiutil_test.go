package apiutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(), MetricsMiddleware())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return router
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())
}

func TestRequestIDMiddleware_RejectsOversizedID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

type bookBody struct {
	Name string `json:"name" binding:"required"`
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	UseJSONFieldNames()
	gin.SetMode(gin.TestMode)

	var got error
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var body bookBody
		got = c.ShouldBindJSON(&body)
	})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Error(t, got)
	fieldErrs := FieldErrors(got)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "name", fieldErrs[0].Field)
	assert.Equal(t, "required", fieldErrs[0].Code)
	assert.Equal(t, "name is required", fieldErrs[0].Message)
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(fmt.Errorf("unexpected EOF")))
}
