package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/movie"
)

const notAvailable = "N/A"

// Client looks movies up on the OMDb API (https://www.omdbapi.com).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  core.Logger
}

var _ movie.InfoClient = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: conf.OmdbBaseURL,
		apiKey:  conf.OmdbApiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// payload is the subset of the OMDb response we care about.
// Missing fields come back as the literal string "N/A".
type payload struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Fetch queries OMDb by title (and optionally year).
// An unknown movie is a miss, not an error: it returns (nil, nil).
func (c *Client) Fetch(ctx context.Context, title, year string) (*movie.Info, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	if year != "" {
		q.Set("y", year)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building OMDb request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling OMDb")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("OMDb returned status %d", res.StatusCode)
	}

	var p payload
	if err = json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decoding OMDb response")
	}

	if p.Response != "True" {
		c.logger.Debug(fmt.Sprintf("OMDb miss for %q: %s", title, p.Error))
		return nil, nil
	}
	return c.toInfo(p), nil
}

func (c *Client) toInfo(p payload) *movie.Info {
	return &movie.Info{
		Title:      p.Title,
		Director:   nullString(p.Director),
		Year:       parseYear(p.Year),
		Genre:      nullString(p.Genre),
		PosterURL:  nullString(p.Poster),
		IMDBRating: parseRating(p.IMDBRating),
	}
}

func nullString(s string) null.String {
	if s == "" || s == notAvailable {
		return null.String{}
	}
	return null.StringFrom(s)
}

// parseYear handles both plain years ("2010") and series ranges
// ("2010–2012"): only the leading digits count.
func parseYear(s string) null.Int {
	if s == "" || s == notAvailable {
		return null.Int{}
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	y, err := strconv.Atoi(s[:end])
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(y)
}

func parseRating(s string) null.Float64 {
	if s == "" || s == notAvailable {
		return null.Float64{}
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float64{}
	}
	return null.Float64From(r)
}
