package midas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// CachedResponse is a serializable snapshot of an HTTP response.
// Header names are canonicalized and flattened to single values; when a
// header appears multiple times, the last value wins. Header ordering is
// not preserved. Body bytes and the header set survive a serialization
// roundtrip unchanged.
type CachedResponse struct {
	Body       []byte            `json:"body"`
	Headers    map[string]string `json:"headers"`
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
}

// Entry is the persisted cache record. It is created only by a successful
// write-back after a cacheable origin response and is always replaced
// whole, never mutated in place.
type Entry struct {
	Response CachedResponse `json:"response"`
	// Timestamp is the instant the entry was written,
	// in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`
	// Expires is the absolute instant after which the entry is no longer
	// fresh, in milliseconds since epoch. Zero means no expiry could be
	// derived from the origin response, and the configured max age
	// measured from Timestamp applies instead.
	Expires int64 `json:"expires,omitempty"`
	// LastModified and ETag are validators carried through from the
	// origin response. They are not yet used for conditional revalidation.
	LastModified string `json:"lastModified,omitempty"`
	ETag         string `json:"etag,omitempty"`
}

var errInvalidEntry = errors.New("invalid cache entry")

func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

// decodeEntry validates the stored record in addition to decoding it.
// Any mismatch is reported as an error, which callers treat as a miss.
func decodeEntry(b []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	if e.Response.Status == 0 || e.Timestamp == 0 {
		return nil, errInvalidEntry
	}
	return &e, nil
}

// newCachedResponse snapshots the response recorded by a ResponseSaver.
// The saver already holds its own copy of the body, so the response the
// client received is never consumed here. The cache status annotation is
// skipped so that replaying the entry later does not duplicate it.
func newCachedResponse(rs *ResponseSaver) CachedResponse {
	headers := make(map[string]string, len(rs.Header()))
	for name, values := range rs.Header() {
		name = http.CanonicalHeaderKey(name)
		if name == cacheStatusHeader || len(values) == 0 {
			continue
		}
		headers[name] = values[len(values)-1]
	}
	status := rs.StatusCode()
	return CachedResponse{
		Body:       rs.Body(),
		Headers:    headers,
		Status:     status,
		StatusText: http.StatusText(status),
	}
}

// send replays the snapshot onto a live response writer.
func (cr CachedResponse) send(w http.ResponseWriter) error {
	for name, value := range cr.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(cr.Status)
	_, err := w.Write(cr.Body)
	return err
}

// HTTPResponse reconstructs an http.Response from the snapshot.
// It is a pure in-memory construction and cannot fail.
func (cr CachedResponse) HTTPResponse() *http.Response {
	header := make(http.Header, len(cr.Headers))
	for name, value := range cr.Headers {
		header.Set(name, value)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cr.Status, cr.StatusText),
		StatusCode:    cr.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cr.Body)),
		ContentLength: int64(len(cr.Body)),
	}
}
