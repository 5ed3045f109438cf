package redis

// KeyPrefixCache is the prefix for cached query resolutions
const KeyPrefixCache = "otot:resolve:"

// CacheKey returns the Redis key for a normalized query
func CacheKey(query string) string {
	return KeyPrefixCache + query
}
