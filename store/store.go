// Package store contains the key-value providers used to persist cache
// entries. A provider stores opaque []byte records keyed by string and
// knows nothing about HTTP or freshness; that logic lives in the
// middleware on top.
package store

// Provider is the interface for a cache storage provider.
// It stores and retrieves []byte values, which represent encoded cache
// entries. A single key maps to a single record: Put fully replaces any
// prior value, and the replacement must be atomic at the key level, so
// that readers never observe a partially written record.
//
// Implementations must be thread-safe!
type Provider interface {
	// Get returns the stored record for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	Get(key string) ([]byte, bool, error)
	// Put stores the given record under the given key,
	// replacing any previous record stored under the same key.
	Put(key string, value []byte) error
	// Purge removes the record for the given key.
	// It is a utility method that is not used by the cache middleware.
	Purge(key string)
	// Close releases any resources held by the provider.
	Close() error
}
