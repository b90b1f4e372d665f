package apiutil

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Aidin1998/bookshelf/pkg/errors"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// UseJSONFieldNames makes gin's binding validator report fields by their
// json name, so problem documents refer to "name" rather than "Name".
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// FieldErrors converts binding validation failures into problem field errors.
// It returns nil when err carries no field information (e.g. malformed JSON).
func FieldErrors(err error) []errors.ValidationError {
	var fieldsError validator.ValidationErrors
	if !errors.As(err, &fieldsError) {
		return nil
	}
	out := make([]errors.ValidationError, 0, len(fieldsError))
	for _, fieldErr := range fieldsError {
		out = append(out, errors.ValidationError{
			Field:   fieldErr.Field(),
			Value:   fieldErr.Value(),
			Message: fieldMessage(fieldErr),
			Code:    fieldErr.Tag(),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag())
	}
}
