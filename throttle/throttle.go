// Package throttle provides a [transport.Sender] decorator that rate-limits
// outbound requests using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// When tokens are available the request is handed to the next sender on the
// caller's goroutine. Otherwise the wait happens on a new goroutine, so Send
// never blocks the caller.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/pontusntengnas/httphook/transport"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// throttle is a transport.Sender, using the time/rate token
// bucket limiter to restrict outbound calls.
type throttle struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	next    transport.Sender
	logFn   func() *slog.Logger
}

// New returns a transport.Sender that throttles outbound requests before
// passing them to next. logFn lazily resolves the logger at request time;
// a nil-returning logFn disables throttle logging.
func New(cfg Config, logFn func() *slog.Logger, next transport.Sender) (transport.Sender, error) {
	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", cfg.RPS, cfg.Burst, ErrMustNotBeZero)
	}
	if next == nil {
		return nil, errors.New("next sender must not be nil")
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		rps:     cfg.RPS,
		burst:   cfg.Burst,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) Send(ctx context.Context, req *transport.Request, done transport.Completion) {
	if err := ctx.Err(); err != nil {
		done(transport.Outcome{Err: fmt.Errorf("%w early: %w", ErrContextEnded, err)})
		return
	}

	if t.limiter.Allow() {
		t.next.Send(ctx, req, done)
		return
	}

	go t.wait(ctx, req, done)
}

func (t *throttle) wait(ctx context.Context, req *transport.Request, done transport.Completion) {
	logger := t.logFn()
	if logger != nil {
		logger.Info("throttle tokens exhausted", "rate", t.rps, "burst", t.burst, "url", req.URL.String())
	}

	start := time.Now()

	err := t.limiter.Wait(ctx)
	waited := time.Since(start)
	if logger != nil {
		logger.Info("throttle wait complete", "waited", waited.String(), "rate", t.rps, "burst", t.burst)
	}
	if err != nil {
		done(transport.Outcome{Err: fmt.Errorf("%w: %w", ErrWaitingFailed, err)})
		return
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		done(transport.Outcome{Err: fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)})
		return
	}

	t.next.Send(ctx, req, done)
}
