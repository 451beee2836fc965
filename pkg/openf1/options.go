package openf1

import "time"

const (
	// DefaultMaxRetries is the number of additional attempts made after the
	// first failed fetch.
	DefaultMaxRetries = 2
	// DefaultRetryDelay is the base backoff delay; retry n (1-based) waits
	// DefaultRetryDelay * 2^(n-1) before running.
	DefaultRetryDelay = 1 * time.Second
)

// fetchConfig holds the per-call knobs of the fetch engine.
type fetchConfig struct {
	maxRetries      int
	retryDelay      time.Duration
	useStaleOnError bool
}

func defaultFetchConfig() fetchConfig {
	return fetchConfig{
		maxRetries:      DefaultMaxRetries,
		retryDelay:      DefaultRetryDelay,
		useStaleOnError: true,
	}
}

// FetchOption customizes a single Get call.
type FetchOption func(*fetchConfig)

// WithMaxRetries sets how many additional attempts follow a failed fetch.
// Zero disables retries entirely.
func WithMaxRetries(n int) FetchOption {
	return func(cfg *fetchConfig) {
		if n >= 0 {
			cfg.maxRetries = n
		}
	}
}

// WithRetryDelay sets the base delay for exponential backoff between
// attempts.
func WithRetryDelay(d time.Duration) FetchOption {
	return func(cfg *fetchConfig) {
		if d > 0 {
			cfg.retryDelay = d
		}
	}
}

// WithoutStaleFallback makes the call fail outright when every network
// attempt fails, instead of serving a stale cache entry.
func WithoutStaleFallback() FetchOption {
	return func(cfg *fetchConfig) {
		cfg.useStaleOnError = false
	}
}
