package binder

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Title string `json:"title" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

var (
	goodJSON             = `{"title":" Dune "}`
	unknownFieldsErrJSON = `{"title":"Dune","narator":"Jane"}`
	typeErrJSON          = `{"title":123}`
	validationErrJSON    = `{"title":"0123456789"}`
)

func TestBind(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json and application/x-www-form-urlencoded", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "narator"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"title" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "Dune", p.Title)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "can have at most 9 characters")
	})

	t.Run("rejects an empty body on mutating methods", func(tt *testing.T) {
		c := newContext("", echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Request body can't be empty")
	})
}

func TestBindQuery(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	type query struct {
		Page  int `query:"page" default:"1" validate:"min=1"`
		Limit int `query:"limit" validate:"max=100"`
	}

	t.Run("decodes query params on GET", func(tt *testing.T) {
		c := newQueryContext("page=3")
		q := query{}
		err = b.Bind(&q, c)
		require.NoError(tt, err)
		assert.Equal(tt, 3, q.Page)
	})

	t.Run("applies defaults when a param is absent", func(tt *testing.T) {
		c := newQueryContext("")
		q := query{}
		err = b.Bind(&q, c)
		require.NoError(tt, err)
		assert.Equal(tt, 1, q.Page)
	})

	t.Run("returns a good message for conversion errors", func(tt *testing.T) {
		c := newQueryContext("page=abc")
		q := query{}
		err = b.Bind(&q, c)
		assert.Contains(tt, err.Error(), `"page" should be of type int`)
	})

	t.Run("validates query params", func(tt *testing.T) {
		c := newQueryContext("limit=500")
		q := query{}
		err = b.Bind(&q, c)
		assert.Contains(tt, err.Error(), `"limit" must be less than or equal to 100`)
	})
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}

func newQueryContext(rawQuery string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.GET, "/?"+rawQuery, nil)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
