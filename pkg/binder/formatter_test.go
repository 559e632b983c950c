package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{date, "", 0, `"chapter_number" should be in the format of YYYY-MM-DD`},
		{email, "", 0, `"chapter_number" is not a valid email`},
		{gte, "0", 0, `"chapter_number" must be greater than or equal to 0`},
		// String min/max
		{mx, "20", reflect.String, `"chapter_number" can have at most 20 characters`},
		{mn, "2", reflect.String, `"chapter_number" must have at least 2 characters`},
		// Numeric min/max
		{mx, "50", reflect.Int, `"chapter_number" must be less than or equal to 50`},
		{mx, "100", reflect.Int64, `"chapter_number" must be less than or equal to 100`},
		{mn, "1", reflect.Int, `"chapter_number" must be greater than or equal to 1`},
		{mn, "0", reflect.Float64, `"chapter_number" must be greater than or equal to 0`},
		// Other
		{ne, "20", 0, `"chapter_number" can't be 20`},
		{oneof, "asc desc", 0, `"chapter_number" must be one of: asc, desc`},
		{required, "", 0, `"chapter_number" is required`},
		{"alphanum", "", 0, `"chapter_number" is invalid`},
	}

	for _, tt := range cases {
		err := mockFieldError{tag: tt.tag, field: "chapter_number", param: tt.param, kind: tt.kind}
		msg := formatValidationError(&err)
		assert.Equal(t, tt.msg, msg)
	}
}
