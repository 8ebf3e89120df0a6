package transport

import (
	"errors"
	"log/slog"
	"net/http"
)

// Option is a functional option for configuring an [HTTP] sender via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	userAgent         string
	noFollowRedirects bool
	maxBodySize       *int64
	logger            *slog.Logger
}

// WithClient replaces the default [http.Client] used by the sender.
func WithClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithRoundTripper sets a custom [http.RoundTripper] as the base transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("round tripper must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithNoFollowRedirects hands 3xx responses back as-is instead of following them.
func WithNoFollowRedirects() Option {
	return func(o *options) error {
		o.noFollowRedirects = true
		return nil
	}
}

// WithMaxBodySize caps the number of response bytes buffered per request.
func WithMaxBodySize(n int64) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.New("max body size must be greater than zero")
		}
		o.maxBodySize = &n
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the sender.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
