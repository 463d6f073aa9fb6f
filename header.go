package midas

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

type CacheControl struct {
	m map[string]string
}

func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.m[directive]
	return val, ok
}

func ParseCacheControl(header string) CacheControl {
	m := make(map[string]string)
	for _, directive := range splitDirectives(header) {
		parts := strings.SplitN(strings.TrimSpace(directive), "=", 2)
		var val string
		if len(parts) > 1 {
			val = strings.Trim(parts[1], `"`)
		}
		m[parts[0]] = val
	}
	return CacheControl{m}
}

// splitDirectives splits a Cache-Control value on commas, except commas
// inside a quoted directive argument such as private="Set-Cookie, X-Y".
func splitDirectives(header string) []string {
	var directives []string
	var inQuotes bool
	start := 0
	for i := 0; i < len(header); i++ {
		switch header[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				directives = append(directives, header[start:i])
				start = i + 1
			}
		}
	}
	return append(directives, header[start:])
}

// computeExpires derives the absolute expiry instant for a response being
// written to the cache, in milliseconds since epoch. A Cache-Control
// max-age directive takes precedence over the Expires header. Zero means
// neither was usable and the configured default lifetime applies.
func computeExpires(header http.Header, now time.Time) int64 {
	cc := ParseCacheControl(header.Get("Cache-Control"))
	if val, ok := cc.Get("max-age"); ok {
		if seconds, err := strconv.Atoi(val); err == nil && seconds >= 0 {
			return now.Add(time.Duration(seconds) * time.Second).UnixMilli()
		}
	}
	if expires := header.Get("Expires"); expires != "" {
		if t, err := http.ParseTime(expires); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
