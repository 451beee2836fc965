// Package openf1 is a caching, deduplicating, retrying client for the
// OpenF1 REST API. It is the data-access layer of the companion app: every
// screen reads through a single shared Client, which keeps redundant UI
// reads from turning into redundant upstream requests.
package openf1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Lachezar14/f1-companion-sub001/pkg/cachestore"
	"github.com/Lachezar14/f1-companion-sub001/pkg/gate"
)

const (
	// DefaultBaseURL is the public OpenF1 API root.
	DefaultBaseURL = "https://api.openf1.org/v1"
	// DefaultRequestTimeout bounds a single upstream round trip. A timeout
	// is treated like any other network failure: retried, then resolved via
	// the stale fallback if one is available.
	DefaultRequestTimeout = 20 * time.Second
	// DefaultFreshTTL is how long a cache entry is served without
	// revalidation.
	DefaultFreshTTL = 10 * time.Minute
	// DefaultStaleCeiling is the maximum entry age still acceptable as a
	// fallback when every network attempt fails.
	DefaultStaleCeiling = 24 * time.Hour
)

// APIError describes a non-2xx response from the upstream API.
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openf1: %s returned status %d", e.Endpoint, e.StatusCode)
}

// Config holds construction-time settings for the Client.
type Config struct {
	// BaseURL overrides the upstream API root. Defaults to DefaultBaseURL.
	BaseURL string
	// RequestTimeout overrides the per-request timeout.
	RequestTimeout time.Duration
	// FreshTTL overrides how long cache entries are served without a
	// network call.
	FreshTTL time.Duration
	// StaleCeiling overrides the maximum entry age usable as an error
	// fallback.
	StaleCeiling time.Duration
	// MaxConcurrent overrides the upstream concurrency bound.
	MaxConcurrent int64
}

// Client is the cached fetch engine. It is safe for concurrent use; one
// instance is constructed per process and shared by every caller, so the
// in-flight registry and concurrency gate are process-wide by construction
// while remaining injectable for tests.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	store        cachestore.Store
	gate         *gate.Gate
	flight       singleflight.Group
	freshTTL     time.Duration
	staleCeiling time.Duration
	logger       zerolog.Logger
}

// NewClient creates a Client reading and writing cache entries through
// store. A nil cfg uses defaults throughout.
func NewClient(cfg *Config, store cachestore.Store, logger zerolog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("cache store cannot be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	freshTTL := cfg.FreshTTL
	if freshTTL <= 0 {
		freshTTL = DefaultFreshTTL
	}
	staleCeiling := cfg.StaleCeiling
	if staleCeiling <= 0 {
		staleCeiling = DefaultStaleCeiling
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		store:        store,
		gate:         gate.New(cfg.MaxConcurrent),
		freshTTL:     freshTTL,
		staleCeiling: staleCeiling,
		logger:       logger.With().Str("component", "OpenF1Client").Logger(),
	}, nil
}

// Get fetches an endpoint through the cache and decodes the JSON payload
// into T. Concurrent calls for the same (endpoint, parameters) pair share a
// single upstream round trip and all receive its result.
func Get[T any](ctx context.Context, c *Client, endpoint string, params url.Values, opts ...FetchOption) (T, error) {
	var zero T
	raw, err := c.GetRaw(ctx, endpoint, params, opts...)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return out, nil
}

// GetRaw is Get without the decode step: it returns the cached or freshly
// fetched JSON payload as-is.
//
// Callers joining an in-flight fetch share its result and its lifetime;
// there is no per-caller cancellation of a shared fetch.
func (c *Client) GetRaw(ctx context.Context, endpoint string, params url.Values, opts ...FetchOption) (json.RawMessage, error) {
	cfg := defaultFetchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	key := CacheKey(endpoint, params)

	// singleflight is the in-flight registry: the first caller for a key
	// runs resolve, later callers for the same key wait on it, and the key
	// is removed once the call settles regardless of outcome.
	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		return c.resolve(ctx, key, endpoint, params, cfg)
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

// resolve runs the cache-then-network algorithm for a single deduplicated
// fetch: fresh cache hit, otherwise gated network attempts with backoff,
// write-back on success, stale fallback on total failure.
func (c *Client) resolve(ctx context.Context, key, endpoint string, params url.Values, cfg fetchConfig) (json.RawMessage, error) {
	logger := c.logger.With().
		Str("endpoint", endpoint).
		Str("request_id", uuid.NewString()).
		Logger()

	entry, cacheErr := c.store.Get(ctx, key)
	haveEntry := cacheErr == nil
	if cacheErr != nil && !errors.Is(cacheErr, cachestore.ErrNotFound) {
		// A broken store degrades to a cache miss; the fetch path stays up.
		logger.Warn().Err(cacheErr).Msg("Cache read failed, treating as miss.")
	}

	if haveEntry && entry.Age(time.Now()) < c.freshTTL {
		logger.Debug().Msg("Fresh cache hit.")
		return entry.Data, nil
	}

	var lastErr error
attempts:
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		if attempt > 0 {
			delay := cfg.retryDelay * time.Duration(1<<(attempt-1))
			logger.Debug().Int("attempt", attempt+1).Dur("backoff", delay).Msg("Backing off before retry.")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				break attempts
			}
		}

		var body []byte
		err := c.gate.Run(ctx, func(ctx context.Context) error {
			var fetchErr error
			body, fetchErr = c.doRequest(ctx, endpoint, params)
			return fetchErr
		})
		if err == nil {
			freshEntry := cachestore.Entry{Data: body, Timestamp: time.Now()}
			if writeErr := c.store.Set(ctx, key, freshEntry); writeErr != nil {
				logger.Warn().Err(writeErr).Msg("Cache write failed, serving uncached result.")
			}
			return body, nil
		}

		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Upstream fetch failed.")
	}

	if cfg.useStaleOnError && haveEntry && entry.Age(time.Now()) < c.staleCeiling {
		logger.Info().Time("cached_at", entry.Timestamp).Msg("All attempts failed, serving stale cache entry.")
		return entry.Data, nil
	}

	return nil, fmt.Errorf("fetching %s after %d attempt(s): %w", endpoint, cfg.maxRetries+1, lastErr)
}

// doRequest performs one GET against the upstream API.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + "/" + endpoint
	if encoded := params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	return body, nil
}

// ClearCache removes every persisted entry in this cache's namespace.
// In-flight fetches are unaffected; they re-populate the cache when they
// complete.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.clearPrefix(ctx, cachestore.KeyPrefix)
}

// ClearEndpoint removes only the entries cached for one endpoint, leaving
// the rest of the cache untouched.
func (c *Client) ClearEndpoint(ctx context.Context, endpoint string) error {
	return c.clearPrefix(ctx, EndpointPrefix(endpoint))
}

func (c *Client) clearPrefix(ctx context.Context, prefix string) error {
	keys, err := c.store.ListKeys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("listing cache keys for %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.RemoveMany(ctx, keys); err != nil {
		return fmt.Errorf("removing cache keys for %s: %w", prefix, err)
	}
	c.logger.Info().Str("prefix", prefix).Int("removed", len(keys)).Msg("Cleared cache entries.")
	return nil
}
