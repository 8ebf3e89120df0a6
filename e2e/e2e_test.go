package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pontusntengnas/httphook/errs"
	"github.com/pontusntengnas/httphook/hook"
	"github.com/pontusntengnas/httphook/internal/testapi"
	"github.com/pontusntengnas/httphook/request"
	"github.com/pontusntengnas/httphook/throttle"
	"github.com/pontusntengnas/httphook/transport"
)

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

var discard = slog.New(slog.DiscardHandler)

func newTestAPI(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(testapi.New(testapi.WithLogger(discard)))
	t.Cleanup(srv.Close)

	return srv.URL
}

// senders returns one hook per transport implementation.
func senders(t *testing.T, opts ...transport.Option) map[string]*hook.Hook {
	t.Helper()

	httpSender, err := transport.Build(opts...)
	if err != nil {
		t.Fatalf("building transport: %v", err)
	}

	out := make(map[string]*hook.Hook)
	for name, s := range map[string]transport.Sender{
		"http":  httpSender,
		"resty": transport.NewResty(0),
	} {
		out[name] = newHook(t, s)
	}

	return out
}

func newHook(t *testing.T, s transport.Sender) *hook.Hook {
	t.Helper()

	h, err := hook.Build(hook.WithSender(s), hook.WithLogger(discard))
	if err != nil {
		t.Fatalf("building hook: %v", err)
	}

	return h
}

// await runs call and returns its settled callback after checking that
// loading was reported first and nothing followed.
func await[T any](t *testing.T, call func(hook.Sink[T])) hook.Callback[T] {
	t.Helper()

	ch := make(chan hook.Callback[T], 4)
	call(func(cb hook.Callback[T]) { ch <- cb })

	next := func() hook.Callback[T] {
		select {
		case cb := <-ch:
			return cb
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for callback")
			return hook.Callback[T]{}
		}
	}

	if first := next(); !first.Loading {
		t.Fatalf("expected loading first, got %+v", first)
	}

	settled := next()
	if !settled.Settled() {
		t.Fatalf("expected settled callback, got %+v", settled)
	}

	select {
	case extra := <-ch:
		t.Fatalf("unexpected callback after settling: %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}

	return settled
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_CRUD(t *testing.T) {
	for name, h := range senders(t) {
		t.Run(name, func(t *testing.T) {
			baseURL := newTestAPI(t)
			ctx := context.Background()

			created := await(t, func(s hook.Sink[testapi.Person]) {
				hook.Post(ctx, h, request.NewWithBody(baseURL+"/people", &testapi.Person{Name: "Alice", Age: 30}), s)
			})
			if created.Err != nil {
				t.Fatalf("creating person: %v", created.Err)
			}
			if diff := cmp.Diff(&testapi.Person{ID: 1, Name: "Alice", Age: 30}, created.Result); diff != "" {
				t.Fatalf("created mismatch (-want +got):\n%s", diff)
			}

			personURL := baseURL + "/people/" + strconv.Itoa(created.Result.ID)

			updated := await(t, func(s hook.Sink[testapi.Person]) {
				hook.Put(ctx, h, request.NewWithBody(personURL, &testapi.Person{Name: "Alice", Age: 31}), s)
			})
			if updated.Err != nil {
				t.Fatalf("updating person: %v", updated.Err)
			}

			got := await(t, func(s hook.Sink[testapi.Person]) {
				hook.Get(ctx, h, request.New(personURL), s)
			})
			if got.Err != nil {
				t.Fatalf("getting person: %v", got.Err)
			}
			if got.Result.Age != 31 {
				t.Errorf("age = %d, want 31", got.Result.Age)
			}

			deleted := await(t, func(s hook.Sink[testapi.Person]) {
				hook.Delete(ctx, h, request.New(personURL), s)
			})
			if deleted.Err != nil {
				t.Fatalf("deleting person: %v", deleted.Err)
			}

			gone := await(t, func(s hook.Sink[testapi.Person]) {
				hook.Get(ctx, h, request.New(personURL), s)
			})
			if code, ok := errs.StatusCode(gone.Err); !ok || code != http.StatusNotFound {
				t.Errorf("expected 404 after delete, got: %v", gone.Err)
			}
		})
	}
}

func TestE2E_Raw(t *testing.T) {
	for name, h := range senders(t) {
		t.Run(name, func(t *testing.T) {
			baseURL := newTestAPI(t)

			got := await(t, func(s hook.Sink[[]byte]) {
				h.Raw(context.Background(), http.MethodGet, request.New(baseURL+"/raw"), s)
			})
			if got.Err != nil {
				t.Fatalf("expected no error, got: %v", got.Err)
			}
			if string(*got.Result) != "hook-test" {
				t.Errorf("raw = %q, want %q", *got.Result, "hook-test")
			}
		})
	}
}

func TestE2E_StatusCodes(t *testing.T) {
	codes := []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable}

	for name, h := range senders(t) {
		t.Run(name, func(t *testing.T) {
			baseURL := newTestAPI(t)

			for _, code := range codes {
				got := await(t, func(s hook.Sink[map[string]int]) {
					hook.Get(context.Background(), h, request.New(baseURL+"/status/"+strconv.Itoa(code)), s)
				})

				if !errors.Is(got.Err, errs.HTTPStatus(code)) {
					t.Errorf("expected status %d, got: %v", code, got.Err)
				}
			}
		})
	}
}

func TestE2E_ValidationRejected(t *testing.T) {
	baseURL := newTestAPI(t)
	h := senders(t)["http"]

	got := await(t, func(s hook.Sink[testapi.Person]) {
		hook.Post(context.Background(), h, request.NewWithBody(baseURL+"/people", &testapi.Person{Age: 200}), s)
	})

	if code, ok := errs.StatusCode(got.Err); !ok || code != http.StatusBadRequest {
		t.Errorf("expected 400, got: %v", got.Err)
	}
}

func TestE2E_Headers(t *testing.T) {
	baseURL := newTestAPI(t)
	h := senders(t, transport.WithUserAgent("httphook-e2e"))["http"]

	got := await(t, func(s hook.Sink[[]byte]) {
		h.Raw(context.Background(), http.MethodGet, request.New(baseURL+"/headers",
			request.WithHeader("X-Trace", "abc"),
			request.WithHeaders(map[string]string{"Accept": "application/json"}),
		), s)
	})
	if got.Err != nil {
		t.Fatalf("expected no error, got: %v", got.Err)
	}

	var headers map[string]string
	if err := json.Unmarshal(*got.Result, &headers); err != nil {
		t.Fatalf("decoding headers: %v", err)
	}

	for k, want := range map[string]string{
		"User-Agent": "httphook-e2e",
		"X-Trace":    "abc",
		"Accept":     "application/json",
	} {
		if headers[k] != want {
			t.Errorf("%s = %q, want %q", k, headers[k], want)
		}
	}
}

func TestE2E_Timeout(t *testing.T) {
	for name, h := range senders(t) {
		t.Run(name, func(t *testing.T) {
			baseURL := newTestAPI(t)

			start := time.Now()
			got := await(t, func(s hook.Sink[map[string]int]) {
				hook.Get(context.Background(), h, request.New(baseURL+"/slow?ms=2000", request.WithTimeout(50*time.Millisecond)), s)
			})

			if !errors.Is(got.Err, errs.ErrNetwork) {
				t.Errorf("expected network error, got: %v", got.Err)
			}
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Errorf("expected timeout to cut the call short, took %v", elapsed)
			}
		})
	}
}

func TestE2E_Throttle(t *testing.T) {
	baseURL := newTestAPI(t)

	base, err := transport.Build()
	if err != nil {
		t.Fatalf("building transport: %v", err)
	}

	throttled, err := throttle.New(throttle.Config{RPS: 5, Burst: 1}, func() *slog.Logger { return discard }, base)
	if err != nil {
		t.Fatalf("building throttle: %v", err)
	}
	h := newHook(t, throttled)

	// Burst of 1 at 5 rps: the second and third calls each wait roughly 200ms.
	const minDuration = 350 * time.Millisecond

	start := time.Now()
	for range 3 {
		got := await(t, func(s hook.Sink[[]byte]) {
			h.Raw(context.Background(), http.MethodGet, request.New(baseURL+"/raw"), s)
		})
		if got.Err != nil {
			t.Fatalf("expected no error, got: %v", got.Err)
		}
	}

	if elapsed := time.Since(start); elapsed < minDuration {
		t.Errorf("expected throttling to take at least %v, took %v", minDuration, elapsed)
	}
}
