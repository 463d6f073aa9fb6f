package midas

import "fmt"

const (
	cacheStatusHeader = "Cache-Status"
	cacheStatusLabel  = "Midas-Cache"
)

type CacheStatusStatus string

const (
	CacheStatusHit CacheStatusStatus = "hit"
	CacheStatusFwd CacheStatusStatus = "fwd"
)

type CacheStatusFwdReason string

const (
	// The request method's semantics require the request to be forwarded.
	CacheStatusFwdMethod CacheStatusFwdReason = "method"

	// The cache did not contain a usable response for the request URI.
	CacheStatusFwdMiss CacheStatusFwdReason = "miss"

	// The cache contained a response for the request, but it was stale.
	CacheStatusFwdStale CacheStatusFwdReason = "stale"
)

// CacheStatus represents the disposition of one request through the cache,
// rendered as a Cache-Status response header in the shape of RFC 9211:
// the middleware's label followed by a hit flag or a forward reason.
type CacheStatus struct {
	status    CacheStatusStatus
	fwdReason CacheStatusFwdReason
}

func (cs *CacheStatus) Hit() {
	cs.status = CacheStatusHit
}

func (cs *CacheStatus) Forward(reason CacheStatusFwdReason) {
	cs.status = CacheStatusFwd
	cs.fwdReason = reason
}

// IsHit reports whether the request was served from the cache while fresh.
// It is false for stale serves, misses and bypasses.
func (cs CacheStatus) IsHit() bool {
	return cs.status == CacheStatusHit
}

func (cs CacheStatus) String() string {
	status := fmt.Sprintf("%s; %s", cacheStatusLabel, cs.status)
	if cs.status == CacheStatusFwd && cs.fwdReason != "" {
		status = fmt.Sprintf("%s=%s", status, cs.fwdReason)
	}
	return status
}
