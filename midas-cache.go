// Package midas is an HTTP response cache implemented as Go middleware.
// It stores cacheable GET and HEAD responses in a persistent key-value
// store and serves them on subsequent identical requests without invoking
// the wrapped handler. Freshness follows the origin's Cache-Control
// max-age directive or Expires header, with a configured default lifetime
// when neither is present, and a stale-while-revalidate grace window
// during which stale entries are served immediately while the cache is
// refreshed in the background.
package midas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pmbanugo/midas-cache/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Cache is the caching middleware instance. It owns the storage provider
// for its lifetime: the provider is opened (or adopted) on New and released
// on Close.
type Cache struct {
	store     store.Provider
	maxAge    time.Duration
	stale     time.Duration
	cacheable map[int]struct{}
	log       zerolog.Logger
	metrics   *Metrics
}

// New initializes the cache middleware instance.
// It opens a SQLite store at cfg.StoragePath unless cfg.Store is set.
func New(cfg Config) (*Cache, error) {
	provider := cfg.Store
	if provider == nil {
		if cfg.StoragePath == "" {
			return nil, errors.New("midas: either StoragePath or Store is required")
		}
		sqlite, err := store.NewSQLite(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("midas: opening store: %w", err)
		}
		provider = sqlite
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	staleWindow := cfg.StaleWhileRevalidate
	if staleWindow == 0 {
		staleWindow = DefaultStaleWhileRevalidate
	}
	if staleWindow < 0 {
		staleWindow = 0
	}

	codes := cfg.CacheableStatusCodes
	if codes == nil {
		codes = DefaultCacheableStatusCodes
	}
	cacheable := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		cacheable[code] = struct{}{}
	}

	// use the global logger if not specified in config
	var logger zerolog.Logger
	if cfg.Logger == nil {
		logger = log.Logger
	} else {
		logger = *cfg.Logger
	}

	return &Cache{
		store:     provider,
		maxAge:    maxAge,
		stale:     staleWindow,
		cacheable: cacheable,
		log:       logger,
		metrics:   cfg.Metrics,
	}, nil
}

// Close releases the underlying storage provider.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Middleware wraps next with caching. It can be passed to http middleware
// providers as a constructor:
//
//	cache, _ := midas.New(midas.Config{StoragePath: "cache.db"})
//	handler := cache.Middleware(yourHandler)
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.serve(w, r, next)
	})
}

func (c *Cache) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	logger := c.requestLogger(r)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		var cs CacheStatus
		cs.Forward(CacheStatusFwdMethod)
		w.Header().Add(cacheStatusHeader, cs.String())
		c.metrics.request("bypass")
		next.ServeHTTP(w, r)
		return
	}

	key := Key(r)
	entry := c.readEntry(key, logger)

	switch Evaluate(entry, time.Now(), c.maxAge, c.stale) {
	case Fresh:
		var cs CacheStatus
		cs.Hit()
		c.metrics.request("hit")
		c.sendEntry(w, entry, cs, logger)
		c.logRequest(r, key, cs)
	case StaleRevalidatable:
		var cs CacheStatus
		cs.Forward(CacheStatusFwdStale)
		c.metrics.request("stale")
		c.sendEntry(w, entry, cs, logger)
		c.logRequest(r, key, cs)
		// the request must not be used once this handler returns, so the
		// detached copy is made here, not on the refresh goroutine
		req := r.Clone(context.Background())
		req.Body = nil
		go c.refreshBackground(next, req, key)
	default:
		var cs CacheStatus
		cs.Forward(CacheStatusFwdMiss)
		c.metrics.request("miss")
		c.refresh(w, r, next, key, cs, logger)
		c.logRequest(r, key, cs)
	}
}

// Key returns the cache key for a request: the method and the exact URL,
// including any query string. No normalization is performed, so URLs that
// differ only in case, trailing slashes or query parameter order produce
// distinct keys. Request headers are ignored entirely, so content
// negotiation collapses to a single cached variant per method and URL.
func Key(r *http.Request) string {
	return r.Method + ":" + r.URL.String()
}

// readEntry is the typed read side of the store. Any store error or corrupt
// record is treated as a miss, so cache failures degrade to origin fetches
// instead of request errors.
func (c *Cache) readEntry(key string, logger *zerolog.Logger) *Entry {
	b, ok, err := c.store.Get(key)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Could not read from cache")
		return nil
	}
	if !ok {
		return nil
	}
	entry, err := decodeEntry(b)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Corrupt cache entry, treating as miss")
		return nil
	}
	return entry
}

// writeEntry fully replaces any record previously stored under key.
func (c *Cache) writeEntry(key string, entry Entry) error {
	b, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return c.store.Put(key, b)
}

func (c *Cache) sendEntry(w http.ResponseWriter, entry *Entry, cs CacheStatus, logger *zerolog.Logger) {
	w.Header().Add(cacheStatusHeader, cs.String())
	if err := entry.Response.send(w); err != nil {
		logger.Error().Err(err).Msg("Could not write response body to client")
	}
}

// requestLogger returns the hlog logger from the request context,
// falling back to the instance logger when none is installed.
func (c *Cache) requestLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		return &c.log
	}
	return logger
}

func (c *Cache) logRequest(r *http.Request, key string, cs CacheStatus) {
	isHit := 0
	if cs.IsHit() {
		isHit = 1
	}
	c.requestLogger(r).Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("key", key).
		Str("cache-status", cs.String()).
		Int("hit", isHit).
		Msg("Sending response to client")
}
