package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/services/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{
		AppName:          "MovieMatrix",
		TestMode:         true,
		DefaultFromEmail: mail.Address{Name: "MovieMatrix", Address: "noreply@moviematrix.test"},
		OmdbBaseURL:      srv.URL,
		OmdbApiKey:       "test-key",
	}
	return NewClient(conf, logger.NewTestLogger()), srv
}

func TestClientFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("full match", func(t *testing.T) {
		var gotQuery map[string]string
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"apikey": r.URL.Query().Get("apikey"),
				"t":      r.URL.Query().Get("t"),
				"y":      r.URL.Query().Get("y"),
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"Title": "Inception",
				"Year": "2010",
				"Director": "Christopher Nolan",
				"Genre": "Action, Adventure, Sci-Fi",
				"Poster": "https://img.omdbapi.com/inception.jpg",
				"imdbRating": "8.8",
				"Response": "True"
			}`))
		})

		info, err := client.Fetch(ctx, "Inception", "2010")
		require.NoError(t, err)
		require.NotNil(t, info)

		assert.Equal(t, "test-key", gotQuery["apikey"])
		assert.Equal(t, "Inception", gotQuery["t"])
		assert.Equal(t, "2010", gotQuery["y"])

		assert.Equal(t, "Inception", info.Title)
		assert.Equal(t, null.StringFrom("Christopher Nolan"), info.Director)
		assert.Equal(t, null.IntFrom(2010), info.Year)
		assert.Equal(t, null.StringFrom("Action, Adventure, Sci-Fi"), info.Genre)
		assert.Equal(t, null.StringFrom("https://img.omdbapi.com/inception.jpg"), info.PosterURL)
		assert.Equal(t, null.Float64From(8.8), info.IMDBRating)
	})

	t.Run("year omitted from query when blank", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, hasYear := r.URL.Query()["y"]
			assert.False(t, hasYear)
			_, _ = w.Write([]byte(`{"Title": "Heat", "Year": "1995", "Response": "True"}`))
		})

		info, err := client.Fetch(ctx, "Heat", "")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, null.IntFrom(1995), info.Year)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
		})

		info, err := client.Fetch(ctx, "No Such Movie", "")
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("N/A fields map to null", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"Title": "Obscure Short",
				"Year": "N/A",
				"Director": "N/A",
				"Genre": "N/A",
				"Poster": "N/A",
				"imdbRating": "N/A",
				"Response": "True"
			}`))
		})

		info, err := client.Fetch(ctx, "Obscure Short", "")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.False(t, info.Year.Valid)
		assert.False(t, info.Director.Valid)
		assert.False(t, info.Genre.Valid)
		assert.False(t, info.PosterURL.Valid)
		assert.False(t, info.IMDBRating.Valid)
	})

	t.Run("series year range keeps leading year", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Title": "Sherlock", "Year": "2010–2017", "Response": "True"}`))
		})

		info, err := client.Fetch(ctx, "Sherlock", "")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, null.IntFrom(2010), info.Year)
	})

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		info, err := client.Fetch(ctx, "Inception", "")
		assert.Error(t, err)
		assert.Nil(t, info)
	})
}
