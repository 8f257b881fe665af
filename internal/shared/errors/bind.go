package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UseJSONFieldNames makes validation errors report the json tag of a field
// instead of its Go name.
func UseJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
}

// FromBindError maps a request decoding failure to a problem. Struct tag
// violations list each offending field; malformed bodies are a bad request.
func FromBindError(err error) ProblemDetail {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return ErrBadRequest.WithDetail(err.Error())
	}
	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fieldPath(fe)] = describeRule(fe)
	}
	return NewValidationProblem(fields)
}

// fieldPath drops the root struct name: CreateOrderRequest.items[0].productId -> items[0].productId.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}
