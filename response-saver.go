package midas

import (
	"bytes"
	"net/http"
)

// ResponseSaver is a wrapper around http.ResponseWriter that saves the
// response to a buffer. It optionally tees the response to the underlying
// http.ResponseWriter, so the client receives the response while the
// cache keeps its own copy of the status, headers and body.
type ResponseSaver struct {
	rw           http.ResponseWriter
	body         *bytes.Buffer
	header       http.Header
	status       int
	wroteHeaders bool
}

// NewResponseSaver returns a new ResponseSaver.
// If w is not nil, the response will be written (tee'd) to it in addition
// to being saved.
func NewResponseSaver(w http.ResponseWriter) *ResponseSaver {
	rs := &ResponseSaver{
		rw:   w,
		body: &bytes.Buffer{},
	}
	if w == nil {
		rs.header = http.Header{}
	} else {
		// sharing the header map with the underlying writer means headers
		// set by the handler reach the client without copying
		rs.header = w.Header()
	}
	return rs
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) Header() http.Header {
	return t.header
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) WriteHeader(statusCode int) {
	t.wroteHeaders = true
	t.status = statusCode
	if t.rw != nil {
		t.rw.WriteHeader(statusCode)
	}
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) Write(b []byte) (int, error) {
	if !t.wroteHeaders {
		t.WriteHeader(http.StatusOK)
	}
	if t.rw != nil {
		t.rw.Write(b)
	}
	return t.body.Write(b)
}

// Body returns the recorded response body.
func (t *ResponseSaver) Body() []byte {
	return t.body.Bytes()
}

// StatusCode returns the status code of the response. Handlers that never
// call WriteHeader get the implicit 200, matching net/http semantics.
func (t *ResponseSaver) StatusCode() int {
	if !t.wroteHeaders {
		return http.StatusOK
	}
	return t.status
}
