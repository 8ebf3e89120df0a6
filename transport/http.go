package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// defaultMaxBodySize caps how much of a response body is buffered into an
// Outcome. Responses larger than this are reported as a transport failure.
const defaultMaxBodySize = 32 << 20 // 32MB

// HTTP is a Sender backed by the std-lib *http.Client. Each Send runs on its
// own goroutine and buffers the full response body.
type HTTP struct {
	c           *http.Client
	logger      *slog.Logger
	maxBodySize int64
}

// Build creates an HTTP sender. If not specified, a copy of
// http.DefaultClient using http.DefaultTransport is used.
func Build(optFns ...Option) (*HTTP, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying transport option: %w", err)
		}
	}

	h := &HTTP{
		c:           &http.Client{},
		logger:      slog.Default(),
		maxBodySize: defaultMaxBodySize,
	}

	if opts.client != nil {
		h.c = opts.client
	}

	if opts.logger != nil {
		h.logger = opts.logger
	}

	if opts.maxBodySize != nil {
		h.maxBodySize = *opts.maxBodySize
	}

	if opts.noFollowRedirects {
		h.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		rt = opts.client.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.userAgent != "" {
		rt = userAgent{value: opts.userAgent, base: rt}
	}
	h.c.Transport = rt

	return h, nil
}

// Send performs req asynchronously and reports the result to done.
func (h *HTTP) Send(ctx context.Context, req *Request, done Completion) {
	go func() {
		done(h.do(ctx, req))
	}()
}

func (h *HTTP) do(ctx context.Context, req *Request) Outcome {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return Outcome{Err: err}
	}

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return Outcome{Err: fmt.Errorf("exec http do: %w", err)}
	}
	defer func() {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			h.logger.Error("failed to discard unused body", "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			h.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBodySize+1))
	if err != nil {
		return Outcome{Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > h.maxBodySize {
		return Outcome{Err: fmt.Errorf("response body exceeds %d bytes", h.maxBodySize)}
	}

	return Outcome{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
