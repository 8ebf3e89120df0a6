package transport

import (
	"context"
	"sync"
	"time"
)

// Stub is a simulated Sender that answers every request with the same
// Outcome. It records the requests it receives.
//
// By default the completion runs synchronously on the caller's goroutine;
// set Async to deliver it from a new goroutine, after Delay if non-zero.
type Stub struct {
	Outcome Outcome
	Delay   time.Duration
	Async   bool

	mu       sync.Mutex
	requests []*Request
}

// Send records req and reports the configured outcome.
func (s *Stub) Send(_ context.Context, req *Request, done Completion) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	deliver := func() {
		if s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		done(s.Outcome)
	}

	if s.Async {
		go deliver()
		return
	}

	deliver()
}

// Requests returns the requests received so far.
func (s *Stub) Requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Request, len(s.requests))
	copy(out, s.requests)
	return out
}
