// Package request describes single HTTP calls declaratively and turns them
// into transport-ready requests.
//
// A descriptor comes in two variants: [Request], which carries no payload,
// and [WithBody], which carries an optional typed value serialized to JSON.
// Both implement [Descriptor]; the HTTP method is supplied at
// materialization time by the calling operation.
//
//	req := request.New("https://api.example.com/people",
//		request.WithHeader("Accept", "application/json"),
//		request.WithTimeout(5*time.Second),
//	)
//	tr, err := req.Materialize(http.MethodGet)
package request

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/pontusntengnas/httphook/errs"
	"github.com/pontusntengnas/httphook/transport"
)

// DefaultTimeout is applied when a descriptor does not specify one.
const DefaultTimeout = 20 * time.Second

// Descriptor is implemented by both request variants.
type Descriptor interface {
	// URL returns the raw URL the descriptor was built with.
	URL() string
	// Materialize builds a transport request for method. Failures are *errs.Error.
	Materialize(method string) (*transport.Request, error)
}

// fields is the validated view of a descriptor.
type fields struct {
	Method  string            `json:"method" validate:"oneof=GET POST PUT DELETE"`
	Headers map[string]string `json:"headers" validate:"dive,keys,required,endkeys"`
	Timeout time.Duration     `json:"timeout" validate:"gte=0"`
}

// Request is a descriptor without a body.
type Request struct {
	url     string
	headers map[string]string
	timeout *time.Duration
}

// New creates a descriptor without a body.
func New(rawURL string, opts ...Option) *Request {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	return &Request{
		url:     rawURL,
		headers: s.headers,
		timeout: s.timeout,
	}
}

func (r *Request) URL() string { return r.url }

// Headers returns a copy of the descriptor's headers.
func (r *Request) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// Timeout returns the effective timeout.
func (r *Request) Timeout() time.Duration {
	if r.timeout == nil {
		return DefaultTimeout
	}
	return *r.timeout
}

// Materialize validates the descriptor and builds a transport request.
// It fails with errs.NoURL for an empty URL, errs.BadURL for a malformed
// one, and errs.Exception for any other invalid field.
func (r *Request) Materialize(method string) (*transport.Request, error) {
	if r.url == "" {
		return nil, errs.NoURL
	}

	u, err := url.Parse(r.url)
	if err != nil || !wellFormed(r.url, u) {
		return nil, errs.BadURL
	}

	f := fields{
		Method:  method,
		Headers: r.headers,
		Timeout: r.Timeout(),
	}
	if msg, ok := check(f); !ok {
		return nil, errs.Exception(msg)
	}

	header := make(http.Header, len(r.headers))
	for k, v := range r.headers {
		header.Add(k, v)
	}

	return &transport.Request{
		Method:  method,
		URL:     u,
		Header:  header,
		Timeout: f.Timeout,
	}, nil
}

// wellFormed rejects what url.Parse lets through: unescaped whitespace or
// control characters, and URLs with neither a host nor a path.
func wellFormed(raw string, u *url.URL) bool {
	if strings.ContainsFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) {
		return false
	}

	return u.Host != "" || u.Path != "" || u.Opaque != ""
}

// WithBody is a descriptor carrying an optional JSON body of type B.
type WithBody[B any] struct {
	Request
	body *B
}

// NewWithBody creates a descriptor with a body. A nil body is legal and
// attaches no payload. The pointed-to value is copied.
func NewWithBody[B any](rawURL string, body *B, opts ...Option) *WithBody[B] {
	r := &WithBody[B]{Request: *New(rawURL, opts...)}
	if body != nil {
		b := *body
		r.body = &b
	}
	return r
}

// Body returns the descriptor's body, or nil.
func (r *WithBody[B]) Body() *B {
	return r.body
}

// Materialize builds the transport request and, if a body is present,
// serializes it as JSON. Content-Type defaults to application/json unless a
// header supplied one. Serialization failures are reported as errs.Exception.
func (r *WithBody[B]) Materialize(method string) (*transport.Request, error) {
	req, err := r.Request.Materialize(method)
	if err != nil {
		return nil, err
	}

	if r.body == nil {
		return req, nil
	}

	payload, err := json.Marshal(r.body)
	if err != nil {
		return nil, errs.Exception(err.Error())
	}

	req.Body = payload
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
