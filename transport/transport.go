// Package transport defines the boundary between httphook and the code that
// actually moves bytes over the network.
//
// A [Sender] receives a fully materialized [Request] and reports exactly one
// [Outcome] to the supplied [Completion], possibly from another goroutine.
// [HTTP] is backed by net/http, [Resty] by go-resty, and [Stub] returns a
// canned outcome for tests and offline runs.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request is a transport-ready request. Body is nil when no payload is attached.
type Request struct {
	Method  string
	URL     *url.URL
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// HTTPRequest converts r into an *http.Request bound to ctx. The request
// timeout is not applied here; senders decide how to honor it.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for k, v := range r.Header {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	return req, nil
}

// Outcome is what a Sender hands back. When Err is set the other fields are
// not meaningful. A zero StatusCode with a nil Err means no HTTP response was
// obtained.
type Outcome struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	Err        error
}

// Completion receives the outcome of a single Send.
type Completion func(Outcome)

// Sender dispatches requests. Implementations must invoke done exactly once
// per call to Send.
type Sender interface {
	Send(ctx context.Context, req *Request, done Completion)
}

// SenderFunc adapts an ordinary function to the Sender interface.
type SenderFunc func(ctx context.Context, req *Request, done Completion)

func (f SenderFunc) Send(ctx context.Context, req *Request, done Completion) {
	f(ctx, req, done)
}
