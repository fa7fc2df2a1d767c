package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/dyehouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes gin binding errors report JSON or form field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// ValidationDetails flattens binding and payload validation failures into
// response details. ok is false when err is neither.
func ValidationDetails(err error) (details []dto.ValidationDetail, ok bool) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			details = append(details, dto.ValidationDetail{Field: f.Field, Message: f.Message})
		}
		return details, true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   validation.FieldPath(fe.Namespace()),
				Message: validation.Message(fe),
			})
		}
		return details, true
	}
	return nil, false
}
