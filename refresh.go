package midas

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// refresh synchronously invokes the origin handler, tees its response to
// the client, and writes it back to the cache when eligible. The client
// starts receiving the response as the handler produces it; the write-back
// happens once the handler returns. A handler panic propagates to the
// caller unmodified and no cache write occurs.
func (c *Cache) refresh(w http.ResponseWriter, r *http.Request, next http.Handler, key string, cs CacheStatus, logger *zerolog.Logger) {
	w.Header().Add(cacheStatusHeader, cs.String())
	rs := NewResponseSaver(w)
	next.ServeHTTP(rs, r)
	c.writeBack(key, rs, logger)
}

// refreshBackground re-invokes the origin handler for a stale entry after
// the stale response has already been served. The request must already be
// detached: a clone with a fresh context, no deadline and no body, made
// before the triggering handler returned. Any failure or panic is reported
// and contained so it can never affect request serving. Concurrent stale
// hits on the same key each start their own refresh; the store's per-key
// atomicity makes the last completed write win.
func (c *Cache) refreshBackground(next http.Handler, req *http.Request, key string) {
	defer func() {
		if v := recover(); v != nil {
			c.metrics.refreshError()
			c.log.Error().Interface("panic", v).Str("key", key).Msg("Background refresh panicked")
		}
	}()
	rs := NewResponseSaver(nil)
	next.ServeHTTP(rs, req)
	c.writeBack(key, rs, &c.log)
}

// writeBack stores the captured response under key when its status code is
// in the cacheable set. Failures are logged and swallowed: caching is best
// effort and must never turn into a request error.
func (c *Cache) writeBack(key string, rs *ResponseSaver, logger *zerolog.Logger) {
	if _, ok := c.cacheable[rs.StatusCode()]; !ok {
		logger.Debug().Str("key", key).Int("http-status", rs.StatusCode()).Msg("Non-cacheable response")
		return
	}
	now := time.Now()
	entry := Entry{
		Response:     newCachedResponse(rs),
		Timestamp:    now.UnixMilli(),
		Expires:      computeExpires(rs.Header(), now),
		LastModified: rs.Header().Get("Last-Modified"),
		ETag:         rs.Header().Get("ETag"),
	}
	if err := c.writeEntry(key, entry); err != nil {
		c.metrics.writeFailure()
		logger.Error().Err(err).Str("key", key).Msg("Could not write to cache")
		return
	}
	logger.Debug().Str("key", key).Int64("expires", entry.Expires).Msg("Cache write")
}
