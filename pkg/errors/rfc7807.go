// Package errors provides error responses using the RFC 7807 Problem Details standard
package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Standard error functions
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// Problem type URIs
const (
	TypeValidationError    = "https://bookshelf.dev/problems/validation-error"
	TypeNotFound           = "https://bookshelf.dev/problems/not-found"
	TypeInternalError      = "https://bookshelf.dev/problems/internal-error"
	TypeServiceUnavailable = "https://bookshelf.dev/problems/service-unavailable"
)

// Problem titles
const (
	TitleValidationError    = "Validation Error"
	TitleNotFound           = "Not Found"
	TitleInternalError      = "Internal Server Error"
	TitleServiceUnavailable = "Service Unavailable"
)

// ValidationError represents a validation error for RFC 7807
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	TraceID  string                 `json:"trace_id,omitempty"`
	Errors   []ValidationError      `json:"errors,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return p.Detail
}

// WithTraceID adds a trace ID to the problem details
func (p *ProblemDetails) WithTraceID(traceID string) *ProblemDetails {
	p.TraceID = traceID
	return p
}

// WithValidationErrors adds validation errors to the problem details
func (p *ProblemDetails) WithValidationErrors(errors []ValidationError) *ProblemDetails {
	p.Errors = errors
	return p
}

// WithExtra adds extra fields to the problem details (they will be serialized at the top level)
func (p *ProblemDetails) WithExtra(key string, value interface{}) *ProblemDetails {
	if p.Extra == nil {
		p.Extra = make(map[string]interface{})
	}
	p.Extra[key] = value
	return p
}

// MarshalJSON writes extra fields at the top level next to the standard members
func (p *ProblemDetails) MarshalJSON() ([]byte, error) {
	result := make(map[string]interface{}, 7+len(p.Extra))
	for k, v := range p.Extra {
		result[k] = v
	}
	result["type"] = p.Type
	result["title"] = p.Title
	result["status"] = p.Status
	if p.Detail != "" {
		result["detail"] = p.Detail
	}
	if p.Instance != "" {
		result["instance"] = p.Instance
	}
	if p.TraceID != "" {
		result["trace_id"] = p.TraceID
	}
	if len(p.Errors) > 0 {
		result["errors"] = p.Errors
	}
	return json.Marshal(result)
}

// NewValidationError creates a validation error problem
func NewValidationError(detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     TypeValidationError,
		Title:    TitleValidationError,
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	}
}

// NewNotFoundError creates a not found error problem
func NewNotFoundError(detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     TypeNotFound,
		Title:    TitleNotFound,
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	}
}

// NewInternalError creates an internal server error problem
func NewInternalError(detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     TypeInternalError,
		Title:    TitleInternalError,
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	}
}

// NewServiceUnavailableError creates a service unavailable error problem
func NewServiceUnavailableError(detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     TypeServiceUnavailable,
		Title:    TitleServiceUnavailable,
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: instance,
	}
}
