// Package testapi is an in-memory JSON people service used to exercise hooks
// end to end against a real HTTP server.
package testapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Person is the resource the service stores.
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gte=0,lte=150"`
}

// Handler is a http.Handler that returns an error.
type Handler func(w http.ResponseWriter, r *http.Request) error

// API routes requests to the people store.
type API struct {
	mux    *http.ServeMux
	log    *slog.Logger
	tracer trace.Tracer

	mu     sync.Mutex
	people map[int]Person
	nextID int
}

// Option configures an API.
type Option func(*API)

// WithLogger injects the given logger into the API.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		a.log = log
	}
}

// WithTracer injects the given tracer into the API.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *API) {
		a.tracer = tracer
	}
}

// New creates an API with an empty store.
func New(optFns ...Option) *API {
	a := &API{
		mux:    http.NewServeMux(),
		log:    slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("no-op tracer"),
		people: make(map[int]Person),
		nextID: 1,
	}

	for _, opt := range optFns {
		opt(a)
	}

	a.handle(http.MethodGet, "/people/{id}", a.getPerson)
	a.handle(http.MethodPost, "/people", a.createPerson)
	a.handle(http.MethodPut, "/people/{id}", a.updatePerson)
	a.handle(http.MethodDelete, "/people/{id}", a.deletePerson)
	a.handle(http.MethodGet, "/raw", a.raw)
	a.handle(http.MethodGet, "/headers", a.headers)
	a.handle(http.MethodGet, "/status/{code}", a.status)
	a.handle(http.MethodGet, "/slow", a.slow)

	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) handle(method, path string, handler Handler) {
	h := func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.startSpan(r)
		defer span.End()

		err := handler(w, r.WithContext(ctx))
		if err == nil {
			return
		}

		code := http.StatusInternalServerError
		if apiErr, ok := GetError(err); ok {
			code = apiErr.Code
		}

		a.log.Error("testapi", "path", r.URL.Path, "status", code, "error", err)

		if err := RespondJSON(w, code, map[string]string{"error": err.Error()}); err != nil {
			a.log.Error("testapi", "respond", err)
		}
	}

	a.mux.HandleFunc(fmt.Sprintf("%s %s", method, path), h)
}

// startSpan continues any trace propagated by the caller.
func (a *API) startSpan(r *http.Request) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ctx, span := a.tracer.Start(ctx, "testapi.handler")
	span.SetAttributes(attribute.String("path", r.RequestURI))

	return ctx, span
}

// /////////////////////////////////////////////////////////////////

func (a *API) getPerson(w http.ResponseWriter, r *http.Request) error {
	id, err := ParamInt(r, "id")
	if err != nil {
		return NewError(http.StatusBadRequest, err)
	}

	a.mu.Lock()
	p, ok := a.people[id]
	a.mu.Unlock()

	if !ok {
		return NewError(http.StatusNotFound, fmt.Errorf("person[%d] not found", id))
	}

	return RespondJSON(w, http.StatusOK, p)
}

func (a *API) createPerson(w http.ResponseWriter, r *http.Request) error {
	var p Person
	if err := Decode(r, &p); err != nil {
		return NewError(http.StatusBadRequest, err)
	}

	a.mu.Lock()
	p.ID = a.nextID
	a.nextID++
	a.people[p.ID] = p
	a.mu.Unlock()

	return RespondJSON(w, http.StatusCreated, p)
}

func (a *API) updatePerson(w http.ResponseWriter, r *http.Request) error {
	id, err := ParamInt(r, "id")
	if err != nil {
		return NewError(http.StatusBadRequest, err)
	}

	var p Person
	if err := Decode(r, &p); err != nil {
		return NewError(http.StatusBadRequest, err)
	}
	p.ID = id

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.people[id]; !ok {
		return NewError(http.StatusNotFound, fmt.Errorf("person[%d] not found", id))
	}
	a.people[id] = p

	return RespondJSON(w, http.StatusOK, p)
}

func (a *API) deletePerson(w http.ResponseWriter, r *http.Request) error {
	id, err := ParamInt(r, "id")
	if err != nil {
		return NewError(http.StatusBadRequest, err)
	}

	a.mu.Lock()
	p, ok := a.people[id]
	delete(a.people, id)
	a.mu.Unlock()

	if !ok {
		return NewError(http.StatusNotFound, fmt.Errorf("person[%d] not found", id))
	}

	return RespondJSON(w, http.StatusOK, p)
}

func (a *API) raw(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", ContentTypeTextPlain)
	_, err := w.Write([]byte("hook-test"))
	return err
}

func (a *API) headers(w http.ResponseWriter, r *http.Request) error {
	out := make(map[string]string, len(r.Header))
	for k := range r.Header {
		out[k] = r.Header.Get(k)
	}

	return RespondJSON(w, http.StatusOK, out)
}

func (a *API) status(w http.ResponseWriter, r *http.Request) error {
	code, err := ParamInt(r, "code")
	if err != nil || code < 200 || code > 599 {
		return NewError(http.StatusBadRequest, fmt.Errorf("invalid status code %q", r.PathValue("code")))
	}

	return RespondJSON(w, code, map[string]int{"status": code})
}

// slow waits for the duration in the ms query parameter, or until the client gives up.
func (a *API) slow(w http.ResponseWriter, r *http.Request) error {
	ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
	if err != nil {
		return NewError(http.StatusBadRequest, fmt.Errorf("query param[ms] must be integer: %w", err))
	}

	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-r.Context().Done():
		return nil
	}

	return RespondJSON(w, http.StatusOK, map[string]int{"slept_ms": ms})
}
