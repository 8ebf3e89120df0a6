package throttle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/pontusntengnas/httphook/transport"
)

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		rps    int
		burst  int
		expErr error
	}{
		{
			name:   "Invalid RPS (zero)",
			rps:    0,
			burst:  10,
			expErr: ErrMustNotBeZero,
		},
		{
			name:   "Invalid RPS (negative)",
			rps:    -5,
			burst:  10,
			expErr: ErrMustNotBeZero,
		},
		{
			name:   "Invalid Burst (zero)",
			rps:    10,
			burst:  0,
			expErr: ErrMustNotBeZero,
		},
		{
			name:  "Valid input",
			rps:   10,
			burst: 20,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(Config{RPS: tc.rps, Burst: tc.burst}, nil, &transport.Stub{})

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if s == nil {
				t.Error("exp non-nil Sender")
			}
		})
	}
}

func TestThrottle_Behavior(t *testing.T) {
	testCases := []struct {
		name          string
		rps           int
		burst         int
		numRequests   int
		reqTimeout    time.Duration
		expectReqErrs int
		minDuration   time.Duration
		maxDuration   time.Duration
	}{
		{
			name:        "High Limits",
			rps:         10000,
			burst:       100,
			numRequests: 50,
			maxDuration: 200 * time.Millisecond,
		},
		{
			name:          "Low Limit - Exceed Burst & Timeout Waiting",
			rps:           5,
			burst:         2,
			numRequests:   5,
			reqTimeout:    50 * time.Millisecond,
			expectReqErrs: 3,
		},
		{
			name:        "Low Limit - Exceed Burst - Succeed Waiting",
			rps:         10,
			burst:       5,
			numRequests: 8,
			reqTimeout:  time.Second,
			// (8-5) calls / 10 RPS, minus slack for limiter creation.
			minDuration: 250 * time.Millisecond,
		},
	}

	u, _ := url.Parse("https://example.com")

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := &transport.Stub{Outcome: transport.Outcome{StatusCode: http.StatusOK, Body: []byte(`{"status":"ok"}`)}}

			s, err := New(Config{RPS: tc.rps, Burst: tc.burst}, func() *slog.Logger { return nil }, next)
			if err != nil {
				t.Fatal(err)
			}

			var wg sync.WaitGroup
			errs := make([]error, tc.numRequests)

			start := time.Now()
			for i := 0; i < tc.numRequests; i++ {
				wg.Add(1)

				ctx := context.Background()
				cancel := context.CancelFunc(func() {})
				if tc.reqTimeout > 0 {
					ctx, cancel = context.WithTimeout(ctx, tc.reqTimeout)
				}

				s.Send(ctx, &transport.Request{Method: http.MethodGet, URL: u}, func(o transport.Outcome) {
					defer wg.Done()
					defer cancel()
					errs[i] = o.Err
				})
			}
			wg.Wait()
			duration := time.Since(start)

			failed := 0
			for _, err := range errs {
				if err == nil {
					continue
				}
				failed++
				if !errors.Is(err, ErrWaitingFailed) {
					t.Errorf("expected ErrWaitingFailed, got: %v", err)
				}
			}

			if failed != tc.expectReqErrs {
				t.Errorf("expected %d failed requests; got %d", tc.expectReqErrs, failed)
			}
			if got := len(next.Requests()); got != tc.numRequests-failed {
				t.Errorf("expected %d requests to reach next sender, got %d", tc.numRequests-failed, got)
			}
			if tc.minDuration > 0 && duration < tc.minDuration {
				t.Errorf("expected throttle to slow calls to >= %v, took %v", tc.minDuration, duration)
			}
			if tc.maxDuration > 0 && duration > tc.maxDuration {
				t.Errorf("expected calls to be fast (< %v), took %v", tc.maxDuration, duration)
			}
		})
	}
}

func TestThrottle_PreCancelledContext(t *testing.T) {
	next := &transport.Stub{}
	s, err := New(Config{RPS: 20, Burst: 10}, nil, next)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got transport.Outcome
	s.Send(ctx, &transport.Request{Method: http.MethodGet}, func(o transport.Outcome) { got = o })

	if !errors.Is(got.Err, ErrContextEnded) || !errors.Is(got.Err, context.Canceled) {
		t.Errorf("expected ErrContextEnded wrapping context.Canceled, got: %v", got.Err)
	}
	if len(next.Requests()) != 0 {
		t.Error("expected pre-cancelled request not to reach next sender")
	}
}
