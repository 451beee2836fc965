package openf1

import (
	"net/url"

	"github.com/Lachezar14/f1-companion-sub001/pkg/cachestore"
)

// CacheKey derives the persistent cache key for an (endpoint, parameters)
// pair. url.Values.Encode sorts parameters by name, so two logically
// identical requests always map to the same key no matter the order the
// parameters were added in.
func CacheKey(endpoint string, params url.Values) string {
	key := cachestore.KeyPrefix + endpoint
	if encoded := params.Encode(); encoded != "" {
		key += "?" + encoded
	}
	return key
}

// EndpointPrefix returns the key prefix shared by every cache entry for an
// endpoint, for use with prefix-scoped clearing.
func EndpointPrefix(endpoint string) string {
	return cachestore.KeyPrefix + endpoint
}
