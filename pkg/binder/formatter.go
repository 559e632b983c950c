package binder

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

const (
	date     = "date"
	email    = "email"
	gte      = "gte"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case mx:
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%q can have at most %s characters", field, err.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, err.Param())
	case mn:
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%q must have at least %s characters", field, err.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case ne:
		return fmt.Sprintf("%q can't be %s", field, err.Param())
	case oneof:
		return fmt.Sprintf("%q must be one of: %s", field, strings.Join(strings.Split(err.Param(), " "), ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	}

	return fmt.Sprintf("%q is invalid", field)
}
