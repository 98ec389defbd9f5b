package fetch_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ide-mentor/mentor-api/internal/fetch"
)

func TestHTTPFetch(t *testing.T) {
	ctx := t.Context()

	t.Run("ReturnsBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("image bytes"))
		}))
		defer srv.Close()

		body, err := fetch.NewHTTPFetcher(srv.Client()).Fetch(ctx, srv.URL)
		require.NoError(t, err, "failed to fetch")
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err, "failed to read body")
		assert.Equal(t, "image bytes", string(data))
	})

	t.Run("RejectsNonOKStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := fetch.NewHTTPFetcher(srv.Client()).Fetch(ctx, srv.URL)
		require.Error(t, err, "expected fetch failure")
		assert.Contains(t, err.Error(), "invalid status code: 404")
	})

	t.Run("InvalidURL", func(t *testing.T) {
		_, err := fetch.NewHTTPFetcher(http.DefaultClient).Fetch(ctx, "://bad")
		assert.Error(t, err, "expected fetch failure")
	})
}
