package hook

import (
	"errors"

	"go.opentelemetry.io/otel/trace"

	"github.com/pontusntengnas/httphook/response"
	"github.com/pontusntengnas/httphook/transport"
)

// Option defines optional settings for a Hook.
//
// WithSender replaces the default net/http transport.
// WithDecoder sets how JSON results are decoded.
// WithLogger injects a custom logger.
// WithTracer enables a span per call.
type Option func(*options) error

type options struct {
	sender  transport.Sender
	decoder response.Decoder
	logger  Logger
	tracer  trace.Tracer
	closers []func() error
}

func WithSender(s transport.Sender) Option {
	return func(o *options) error {
		if s == nil {
			return errors.New("sender must not be nil")
		}
		o.sender = s
		return nil
	}
}

func WithDecoder(d response.Decoder) Option {
	return func(o *options) error {
		o.decoder = d
		return nil
	}
}

func WithLogger(l Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// WithTracer injects the given tracer into the Hook.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// withCloser registers fn to run on Close.
func withCloser(fn func() error) Option {
	return func(o *options) error {
		o.closers = append(o.closers, fn)
		return nil
	}
}
