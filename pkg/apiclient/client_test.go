package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	t.Parallel()
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestFetchPage(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chapters", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("audiobook_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"chapters": []map[string]int{
				{"id": 4, "chapter_number": 40},
				{"id": 5, "chapter_number": 50},
			},
			"page":           2,
			"total_pages":    3,
			"items_per_page": 10,
			"total":          25,
		})
	}))
	defer srv.Close()

	client, err := New(Options{BaseURL: srv.URL, Token: "sekrit"})
	require.NoError(t, err)

	page, err := client.FetchPage(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Chapters, 2)
	assert.Equal(t, 4, page.Chapters[0].ID)
	assert.Equal(t, 40, page.Chapters[0].Number)
}

func TestUpdateChapterNumber(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/chapters/4", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"chapter_number": 41}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 4, "chapter_number": 41}`))
	}))
	defer srv.Close()

	client, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.UpdateChapterNumber(context.Background(), 4, 41))
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "not found", status: http.StatusNotFound, check: IsNotFound},
		{name: "bad request", status: http.StatusBadRequest, check: IsValidationError},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, check: IsValidationError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":"oops","message":"it broke","status_code":400}}`))
			}))
			defer srv.Close()

			client, err := New(Options{BaseURL: srv.URL})
			require.NoError(t, err)

			err = client.UpdateChapterNumber(context.Background(), 1, 2)
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestErrorClassification_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	err = client.UpdateChapterNumber(context.Background(), 1, 2)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsValidationError(err))
	assert.False(t, IsNetworkError(err))
}

func TestNetworkError(t *testing.T) {
	t.Parallel()
	// Nothing is listening here.
	client, err := New(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.FetchPage(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}
