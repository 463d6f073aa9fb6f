package midas

import "time"

// Freshness classifies a cache entry relative to a point in time.
type Freshness int

const (
	// Fresh entries are served directly from the cache.
	Fresh Freshness = iota
	// StaleRevalidatable entries are served from the cache while a
	// background refresh is triggered.
	StaleRevalidatable
	// Expired entries are treated as cache misses.
	Expired
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case StaleRevalidatable:
		return "stale"
	default:
		return "expired"
	}
}

// Evaluate classifies an entry at the given instant. It is a pure function
// of its inputs so freshness decisions can be tested in isolation.
//
// An entry carrying its own expiry (derived from the origin response at
// write time) is fresh until exactly that instant; otherwise maxAge
// measured from the write timestamp decides. The stale window is always
// measured from the write timestamp using the configured maxAge, even when
// the entry carries its own expiry. This keeps the window predictable, but
// it is not strictly tied to the actual expiry when the origin overrode it;
// see the stale window note in DESIGN.md.
func Evaluate(e *Entry, now time.Time, maxAge, staleWhileRevalidate time.Duration) Freshness {
	if e == nil {
		return Expired
	}
	nowMs := now.UnixMilli()
	age := nowMs - e.Timestamp
	if e.Expires > 0 {
		if nowMs < e.Expires {
			return Fresh
		}
	} else if age < maxAge.Milliseconds() {
		return Fresh
	}
	if staleWhileRevalidate > 0 && age < (maxAge + staleWhileRevalidate).Milliseconds() {
		return StaleRevalidatable
	}
	return Expired
}
