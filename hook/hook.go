// Package hook runs declarative HTTP calls and reports their progress to a
// caller-supplied callback.
//
// Each call notifies its [Sink] exactly twice: first with Loading set,
// synchronously and before any I/O, then once more with either a Result or
// an Err. The second notification runs on whatever goroutine the configured
// [transport.Sender] uses to complete the request; the hook itself starts
// none.
//
//	h, err := hook.Build()
//	if err != nil {
//		return err
//	}
//
//	hook.Get(ctx, h, request.New("https://api.example.com/people/1"), func(cb hook.Callback[Person]) {
//		switch {
//		case cb.Loading:
//			showSpinner()
//		case cb.Err != nil:
//			showError(cb.Err)
//		default:
//			render(*cb.Result)
//		}
//	})
package hook

import (
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pontusntengnas/httphook/response"
	"github.com/pontusntengnas/httphook/transport"
)

// Logger is the side channel a Hook reports to. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Hook dispatches calls through its Sender and decodes their results.
// A Hook is immutable after Build and safe for concurrent use.
type Hook struct {
	sender  transport.Sender
	decoder response.Decoder
	logger  Logger
	tracer  trace.Tracer
	closers []func() error
}

// Build creates a Hook with the provided options. If no Sender is given,
// a net/http backed transport with default settings is used.
func Build(optFns ...Option) (*Hook, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying hook option: %w", err)
		}
	}

	h := &Hook{
		decoder: opts.decoder,
		logger:  slog.Default(),
		tracer:  noop.NewTracerProvider().Tracer("no-op tracer"),
		closers: opts.closers,
	}

	if opts.logger != nil {
		h.logger = opts.logger
	}

	if opts.tracer != nil {
		h.tracer = opts.tracer
	}

	switch opts.sender {
	case nil:
		sender, err := transport.Build()
		if err != nil {
			return nil, fmt.Errorf("building default transport: %w", err)
		}
		h.sender = sender
	default:
		h.sender = opts.sender
	}

	return h, nil
}

// Close releases resources the Hook was assembled with, such as an open
// fixture store. It is a no-op for hooks that own nothing.
func (h *Hook) Close() error {
	var errList []error
	for _, fn := range h.closers {
		if err := fn(); err != nil {
			errList = append(errList, err)
		}
	}

	return errors.Join(errList...)
}
