package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
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
	return v
}

// validationDetail renders validation errors as "field: reason" pairs.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid input"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return field + ": field required"
	case "email":
		return field + ": value is not a valid email address"
	default:
		return fmt.Sprintf("%s: failed %s validation", field, tag)
	}
}
