package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts validator/v10 to echo.Validator.  Field names in
// errors are the request's JSON names, not the Go field names.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// fieldErrors flattens a validation failure into field -> message.  It
// returns nil when err is not a validation failure.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = fieldMessage(fe)
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// and slice fields read like "specializations[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if unit := lengthUnit(fe.Kind()); unit != "" {
			return fmt.Sprintf("must have at least %s %s", fe.Param(), unit)
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if unit := lengthUnit(fe.Kind()); unit != "" {
			return fmt.Sprintf("must have at most %s %s", fe.Param(), unit)
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

func lengthUnit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "items"
	}
	return ""
}
