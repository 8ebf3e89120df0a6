package request

import "time"

// Option is a functional option for [New] and [NewWithBody].
type Option func(*settings)

type settings struct {
	headers map[string]string
	timeout *time.Duration
}

// WithHeaders adds every entry of headers to the descriptor.
func WithHeaders(headers map[string]string) Option {
	return func(s *settings) {
		if s.headers == nil {
			s.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			s.headers[k] = v
		}
	}
}

// WithHeader adds a single header to the descriptor.
func WithHeader(name, value string) Option {
	return func(s *settings) {
		if s.headers == nil {
			s.headers = make(map[string]string)
		}
		s.headers[name] = value
	}
}

// WithTimeout overrides DefaultTimeout. Zero disables the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = &d
	}
}
