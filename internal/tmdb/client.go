// Package tmdb is a small client for the TMDB v3 API: movie details, credits,
// title search and weekly trending. Responses are cached in Redis when a
// cache is configured, and calls go through a circuit breaker so an outage
// degrades the catalog instead of stalling every request.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/MRuhan17/Movie-Recommender/internal/cache"
	"github.com/MRuhan17/Movie-Recommender/internal/config"
	"github.com/MRuhan17/Movie-Recommender/internal/metrics"
)

var (
	// ErrNotConfigured is returned by every call when no API key is set.
	ErrNotConfigured = errors.New("tmdb: api key not configured")
	// ErrNotFound means TMDB answered 404 for the requested resource.
	ErrNotFound = errors.New("tmdb: not found")
	// ErrUnavailable means the circuit is open and the call was not attempted.
	ErrUnavailable = errors.New("tmdb: unavailable")
)

// CastLimit is how many billed cast members are kept per movie.
const CastLimit = 5

type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[any]
	cacheTTL time.Duration
	log      zerolog.Logger

	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient builds a client from cfg. cacheTTL <= 0 disables caching of
// responses even when Redis is available.
func NewClient(cfg config.TMDBConfig, cacheTTL time.Duration, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		http:           &http.Client{Timeout: timeout},
		cacheTTL:       cacheTTL,
		log:            log,
		maxRetries:     2,
		retryBaseDelay: 500 * time.Millisecond,
	}
	c.cb = c.newBreaker()
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

// =======================================================
//  Endpoints
// =======================================================

func (c *Client) Details(ctx context.Context, id int) (*MovieDetails, error) {
	return fetch[MovieDetails](ctx, c, "details", "/movie/"+strconv.Itoa(id), nil)
}

func (c *Client) Credits(ctx context.Context, id int) (*Credits, error) {
	return fetch[Credits](ctx, c, "credits", "/movie/"+strconv.Itoa(id)+"/credits", nil)
}

// Search runs a title search. page starts at 1.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))
	return fetch[Page](ctx, c, "search", "/search/movie", params)
}

// Trending returns the weekly trending movies. page starts at 1.
func (c *Client) Trending(ctx context.Context, page int) (*Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))
	return fetch[Page](ctx, c, "trending", "/trending/movie/week", params)
}

// Movie fetches details and credits for id. A credits failure is logged and
// the movie is returned without director or cast.
func (c *Client) Movie(ctx context.Context, id int) (*Movie, error) {
	d, err := c.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	m := &Movie{Details: *d}

	cr, err := c.Credits(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Int("tmdb_id", id).Msg("credits lookup failed")
		return m, nil
	}
	m.Director = cr.Director()
	m.Cast = cr.TopCast(CastLimit)
	return m, nil
}

// =======================================================
//  Transport
// =======================================================

func fetch[T any](ctx context.Context, c *Client, endpoint, path string, params url.Values) (*T, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	key := cacheKey(path, params)
	if c.cacheTTL > 0 {
		var cached T
		ok, err := cache.GetJSON(ctx, key, &cached)
		if err != nil {
			c.log.Debug().Err(err).Str("key", key).Msg("tmdb cache read failed")
		} else if ok {
			metrics.TMDBRequests.WithLabelValues(endpoint, "cache_hit").Inc()
			return &cached, nil
		}
	}

	out, err := castResult[T](c.execute(endpoint, func() (any, error) {
		var v T
		if err := c.get(ctx, path, params, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}))
	if err != nil {
		return nil, err
	}

	if c.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, key, out, c.cacheTTL); err != nil {
			c.log.Debug().Err(err).Str("key", key).Msg("tmdb cache write failed")
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + q.Encode()

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tmdb %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", path, err)
	}
	return nil
}

// doRequest retries 429 answers with exponential backoff, honouring
// Retry-After when present.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("rate limited after %d retries", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<attempt)
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			delay = time.Duration(s) * time.Second
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func cacheKey(path string, params url.Values) string {
	if len(params) == 0 {
		return "tmdb:" + path
	}
	return "tmdb:" + path + "?" + params.Encode()
}
