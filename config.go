package midas

import (
	"time"

	"github.com/pmbanugo/midas-cache/store"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAge is the freshness lifetime applied when the config
	// leaves MaxAge unset.
	DefaultMaxAge = time.Hour
	// DefaultStaleWhileRevalidate is the stale grace window applied when
	// the config leaves StaleWhileRevalidate unset.
	DefaultStaleWhileRevalidate = 5 * time.Minute
)

// DefaultCacheableStatusCodes lists the response status codes written to
// the cache when the config leaves CacheableStatusCodes unset.
var DefaultCacheableStatusCodes = []int{
	200, 301, 302, 307, 308,
}

type Config struct {
	// StoragePath is the location of the persistent store, passed to the
	// SQLite provider. Required unless Store is set.
	StoragePath string
	// Store overrides the SQLite store opened at StoragePath.
	// Use it to plug in one of the providers from the store package,
	// or your own implementation.
	Store store.Provider
	// MaxAge is the freshness lifetime for entries whose origin response
	// carried neither a Cache-Control max-age directive nor an Expires
	// header, measured from the entry's write time.
	// Default: 1 hour
	MaxAge time.Duration
	// StaleWhileRevalidate is the grace window after an entry stops being
	// fresh during which it is still served while a refresh runs in the
	// background. A negative value disables background refreshes, in which
	// case entries past their freshness lifetime are treated as misses.
	// Default: 5 minutes
	StaleWhileRevalidate time.Duration
	// CacheableStatusCodes is the set of response status codes eligible
	// for caching.
	// Default: DefaultCacheableStatusCodes
	CacheableStatusCodes []int
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// Metrics receives cache disposition and failure counts. Optional.
	Metrics *Metrics
}
