package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewValidationError("invalid book id \"abc\"", "/api/books/abc").
		WithTraceID("req-1").
		WithValidationErrors([]ValidationError{{Field: "name", Message: "name is required", Code: "required"}}).
		WithExtra("timestamp", "2024-01-01T00:00:00Z")

	raw, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeValidationError, got["type"])
	assert.Equal(t, TitleValidationError, got["title"])
	assert.EqualValues(t, http.StatusBadRequest, got["status"])
	assert.Equal(t, "/api/books/abc", got["instance"])
	assert.Equal(t, "req-1", got["trace_id"])
	assert.Equal(t, "2024-01-01T00:00:00Z", got["timestamp"])
	assert.Len(t, got["errors"], 1)
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	raw, err := json.Marshal(NewInternalError("", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"`+TypeInternalError+`","title":"Internal Server Error","status":500}`, string(raw))
}

func TestProblemDetails_ExtraCannotOverrideStandardMembers(t *testing.T) {
	problem := NewNotFoundError("book 7 not found", "/api/books/7").WithExtra("status", 200)

	raw, err := json.Marshal(problem)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.EqualValues(t, http.StatusNotFound, got["status"])
}

func TestConstructorsStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("", "").Status)
	assert.Equal(t, http.StatusServiceUnavailable, NewServiceUnavailableError("", "").Status)
	assert.Equal(t, "boom", NewInternalError("boom", "").Error())
}
