package hook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pontusntengnas/httphook/errs"
	"github.com/pontusntengnas/httphook/request"
	"github.com/pontusntengnas/httphook/response"
	"github.com/pontusntengnas/httphook/transport"
)

// Get performs a GET call and decodes the JSON result into T.
func Get[T any](ctx context.Context, h *Hook, desc request.Descriptor, sink Sink[T]) {
	Do(ctx, h, http.MethodGet, desc, sink)
}

// Post performs a POST call and decodes the JSON result into T. Pass a
// [request.WithBody] descriptor to attach a payload.
func Post[T any](ctx context.Context, h *Hook, desc request.Descriptor, sink Sink[T]) {
	Do(ctx, h, http.MethodPost, desc, sink)
}

// Put performs a PUT call and decodes the JSON result into T.
func Put[T any](ctx context.Context, h *Hook, desc request.Descriptor, sink Sink[T]) {
	Do(ctx, h, http.MethodPut, desc, sink)
}

// Delete performs a DELETE call and decodes the JSON result into T.
func Delete[T any](ctx context.Context, h *Hook, desc request.Descriptor, sink Sink[T]) {
	Do(ctx, h, http.MethodDelete, desc, sink)
}

// Do performs a call with the given method and decodes the JSON result into T
// using the Hook's decoder. Decoding only runs when the response was a
// non-empty success.
func Do[T any](ctx context.Context, h *Hook, method string, desc request.Descriptor, sink Sink[T]) {
	run(ctx, h, method, desc, sink, func(raw []byte) (T, error) {
		return response.Decode[T](h.decoder, raw)
	})
}

// Raw performs a call and hands back the response body as-is, without JSON
// decoding.
func (h *Hook) Raw(ctx context.Context, method string, desc request.Descriptor, sink Sink[[]byte]) {
	run(ctx, h, method, desc, sink, func(raw []byte) ([]byte, error) {
		return raw, nil
	})
}

// run is the pipeline shared by every operation: report loading, materialize,
// send, interpret, convert, and report exactly one terminal callback.
func run[T any](ctx context.Context, h *Hook, method string, desc request.Descriptor, sink Sink[T], convert func([]byte) (T, error)) {
	if sink == nil {
		sink = func(Callback[T]) {}
	}

	sink(Callback[T]{Loading: true})

	var rawURL string
	if desc != nil {
		rawURL = desc.URL()
	}

	c := call{
		id:     uuid.NewString(),
		method: method,
		url:    rawURL,
		logger: h.logger,
	}

	ctx, span := h.tracer.Start(ctx, "httphook "+method, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", rawURL),
		attribute.String("httphook.call_id", c.id),
	)
	c.span = span

	h.logger.Info(method+" request", c.attrs()...)

	fail := func(err error) {
		c.failed(err)
		sink(Callback[T]{Err: err})
	}

	if desc == nil {
		fail(errs.Exception("request descriptor is nil"))
		return
	}

	req, err := desc.Materialize(method)
	if err != nil {
		fail(err)
		return
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	var settled atomic.Bool
	h.sender.Send(ctx, req, func(o transport.Outcome) {
		if !settled.CompareAndSwap(false, true) {
			h.logger.Error("duplicate transport completion ignored", c.attrs()...)
			return
		}

		if o.StatusCode > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", o.StatusCode))
		}

		raw, err := response.Interpret(o)
		if err != nil {
			fail(err)
			return
		}

		val, err := convert(raw)
		if err != nil {
			fail(err)
			return
		}

		span.End()
		sink(Callback[T]{Result: &val})
	})
}

// call carries the per-call identity used for logging and tracing.
type call struct {
	id     string
	method string
	url    string
	logger Logger
	span   trace.Span
}

func (c call) attrs(extra ...any) []any {
	return append([]any{"method", c.method, "url", c.url, "call_id", c.id}, extra...)
}

func (c call) failed(err error) {
	c.logger.Error(describe(err), c.attrs("error", err)...)

	c.span.RecordError(err)
	c.span.SetStatus(codes.Error, err.Error())
	c.span.End()
}

// describe returns the log line for a failed call.
func describe(err error) string {
	e, ok := errors.AsType[*errs.Error](err)
	if !ok {
		return err.Error()
	}

	switch e.Kind {
	case errs.KindNoURL:
		return "URL is empty"
	case errs.KindBadURL:
		return "Invalid URL"
	case errs.KindHTTPStatus:
		return fmt.Sprintf("HTTP Response status code: %d", e.StatusCode)
	}

	return e.Message
}
