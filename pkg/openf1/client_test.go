package openf1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lachezar14/f1-companion-sub001/pkg/cachestore"
	"github.com/Lachezar14/f1-companion-sub001/pkg/openf1"
)

// newTestClient wires a Client to a fake upstream and a fresh in-memory
// store, so every test runs against isolated state.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*openf1.Client, *cachestore.InMemoryStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := cachestore.NewInMemoryStore()
	client, err := openf1.NewClient(&openf1.Config{BaseURL: server.URL}, store, zerolog.Nop())
	require.NoError(t, err)
	return client, store
}

func seedEntry(t *testing.T, store cachestore.Store, endpoint string, params url.Values, data string, age time.Duration) {
	t.Helper()
	entry := cachestore.Entry{
		Data:      json.RawMessage(data),
		Timestamp: time.Now().Add(-age),
	}
	require.NoError(t, store.Set(context.Background(), openf1.CacheKey(endpoint, params), entry))
}

func TestClient_DeduplicatesConcurrentFetches(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	entered := make(chan struct{})
	proceed := make(chan struct{})
	handler := func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			close(entered)
		}
		<-proceed
		_, _ = w.Write([]byte(`[{"lap_number":7}]`))
	}

	client, _ := newTestClient(t, handler)
	params := url.Values{"session_key": {"9158"}}

	const callers = 5
	results := make([]json.RawMessage, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.GetRaw(ctx, "laps", params)
		}(i)
	}

	// Hold the upstream response until every caller has had time to join
	// the in-flight fetch.
	<-entered
	time.Sleep(100 * time.Millisecond)
	close(proceed)
	wg.Wait()

	assert.Equal(t, int32(1), requests.Load(), "Concurrent identical calls must share one round trip")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `[{"lap_number":7}]`, string(results[i]))
	}
}

func TestClient_InFlightKeyIsReleasedAfterSettling(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.GetRaw(ctx, "stints", nil)
	require.NoError(t, err)

	// Clear the cache so a second call cannot be served as a fresh hit; it
	// must issue a new request rather than latch onto the finished one.
	require.NoError(t, client.ClearCache(ctx))
	_, err = client.GetRaw(ctx, "stints", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, 1, store.Len())
}

func TestClient_FreshCacheHitSkipsNetwork(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`[{"x":2}]`))
	})

	params := url.Values{"meeting_key": {"1219"}}
	seedEntry(t, store, "sessions", params, `[{"x":1}]`, 5*time.Minute)

	raw, err := client.GetRaw(ctx, "sessions", params)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":1}]`, string(raw), "A fresh entry is served as-is")
	assert.Equal(t, int32(0), requests.Load(), "No network call for a fresh entry")
}

func TestClient_SuccessfulFetchWritesBack(t *testing.T) {
	ctx := context.Background()

	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"position":1}]`))
	})

	params := url.Values{"session_key": {"9158"}}
	before := time.Now()
	_, err := client.GetRaw(ctx, "position", params)
	require.NoError(t, err)

	entry, err := store.Get(ctx, openf1.CacheKey("position", params))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"position":1}]`, string(entry.Data))
	assert.False(t, entry.Timestamp.Before(before), "Write-back must carry the fetch time")
}

func TestClient_StaleFallbackWhenAllAttemptsFail(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	seedEntry(t, store, "drivers", nil, `[{"full_name":"Max Verstappen"}]`, 15*time.Minute)

	raw, err := client.GetRaw(ctx, "drivers", nil, openf1.WithRetryDelay(time.Millisecond))
	require.NoError(t, err, "A stale entry inside the ceiling rescues the call")
	assert.JSONEq(t, `[{"full_name":"Max Verstappen"}]`, string(raw))
	assert.Equal(t, int32(3), requests.Load(), "Default is one attempt plus two retries")
}

func TestClient_FailsWithoutUsableFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("Entry older than the staleness ceiling", func(t *testing.T) {
		client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		seedEntry(t, store, "drivers", nil, `[{"x":1}]`, 25*time.Hour)

		_, err := client.GetRaw(ctx, "drivers", nil, openf1.WithRetryDelay(time.Millisecond))
		require.Error(t, err)

		var apiErr *openf1.APIError
		require.ErrorAs(t, err, &apiErr, "The last network error surfaces to the caller")
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	})

	t.Run("Stale fallback disabled", func(t *testing.T) {
		client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		seedEntry(t, store, "drivers", nil, `[{"x":1}]`, 15*time.Minute)

		_, err := client.GetRaw(ctx, "drivers", nil,
			openf1.WithRetryDelay(time.Millisecond), openf1.WithoutStaleFallback())
		require.Error(t, err)
	})

	t.Run("No cache entry at all", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.GetRaw(ctx, "weather", nil, openf1.WithRetryDelay(time.Millisecond))
		require.Error(t, err)
		var apiErr *openf1.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "weather", apiErr.Endpoint)
	})
}

func TestClient_ExponentialBackoffBetweenAttempts(t *testing.T) {
	ctx := context.Background()
	const baseDelay = 40 * time.Millisecond

	var requests atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	start := time.Now()
	_, err := client.GetRaw(ctx, "intervals", nil,
		openf1.WithMaxRetries(2), openf1.WithRetryDelay(baseDelay))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
	// Retry 1 waits baseDelay, retry 2 waits 2*baseDelay.
	assert.GreaterOrEqual(t, elapsed, 3*baseDelay, "Backoff delays must precede retries 2 and 3")
}

func TestClient_ZeroRetriesFailsFast(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetRaw(ctx, "pit", nil, openf1.WithMaxRetries(0))
	require.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestClient_ParameterOrderAddressesSameEntry(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})

	first := url.Values{}
	first.Set("driver_number", "44")
	first.Set("session_key", "9158")

	second := url.Values{}
	second.Set("session_key", "9158")
	second.Set("driver_number", "44")

	_, err := client.GetRaw(ctx, "laps", first)
	require.NoError(t, err)
	_, err = client.GetRaw(ctx, "laps", second)
	require.NoError(t, err)

	assert.Equal(t, int32(1), requests.Load(), "Logically identical requests must share one cache entry")
}

// failingStore errors on every operation, simulating a broken persistent
// substrate.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (cachestore.Entry, error) {
	return cachestore.Entry{}, errors.New("store unavailable")
}
func (failingStore) Set(context.Context, string, cachestore.Entry) error {
	return errors.New("store unavailable")
}
func (failingStore) ListKeys(context.Context, string) ([]string, error) {
	return nil, errors.New("store unavailable")
}
func (failingStore) RemoveMany(context.Context, []string) error {
	return errors.New("store unavailable")
}

func TestClient_FetchSurvivesBrokenCacheStore(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lap_number":1}]`))
	}))
	t.Cleanup(server.Close)

	client, err := openf1.NewClient(&openf1.Config{BaseURL: server.URL}, failingStore{}, zerolog.Nop())
	require.NoError(t, err)

	raw, err := client.GetRaw(ctx, "laps", nil)
	require.NoError(t, err, "Cache read and write failures must not abort the fetch")
	assert.JSONEq(t, `[{"lap_number":1}]`, string(raw))
}

func TestClient_ClearOperations(t *testing.T) {
	ctx := context.Background()

	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	seedEntry(t, store, "laps", url.Values{"a": {"1"}}, `[]`, time.Minute)
	seedEntry(t, store, "laps", url.Values{"a": {"2"}}, `[]`, time.Minute)
	seedEntry(t, store, "drivers", nil, `[]`, time.Minute)

	t.Run("ClearEndpoint removes only that endpoint's entries", func(t *testing.T) {
		require.NoError(t, client.ClearEndpoint(ctx, "laps"))

		remaining, err := store.ListKeys(ctx, cachestore.KeyPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{openf1.CacheKey("drivers", nil)}, remaining)
	})

	t.Run("ClearCache removes everything in the namespace", func(t *testing.T) {
		require.NoError(t, client.ClearCache(ctx))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Clearing an empty cache is a no-op", func(t *testing.T) {
		require.NoError(t, client.ClearCache(ctx))
	})
}

func TestClient_RequiresStore(t *testing.T) {
	_, err := openf1.NewClient(nil, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestGet_DecodeFailure(t *testing.T) {
	ctx := context.Background()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := openf1.Get[[]openf1.Lap](ctx, client, "laps", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding laps response")
}
