package transport

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Resty adapts resty.Client to the Sender interface.
type Resty struct {
	client *resty.Client
}

// NewResty creates a Resty sender whose client-wide timeout is timeout.
// Per-request timeouts are still applied from Request.Timeout.
func NewResty(timeout time.Duration) *Resty {
	c := resty.New()
	c.SetTimeout(timeout)
	return &Resty{client: c}
}

// NewRestyFrom wraps an existing, caller-configured resty.Client.
func NewRestyFrom(c *resty.Client) *Resty {
	return &Resty{client: c}
}

// Send performs req asynchronously and reports the result to done.
func (r *Resty) Send(ctx context.Context, req *Request, done Completion) {
	go func() {
		done(r.do(ctx, req))
	}()
}

func (r *Resty) do(ctx context.Context, req *Request) Outcome {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	rr := r.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		rr.SetHeaderMultiValues(req.Header)
	}
	if req.Body != nil {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(req.Method, req.URL.String())
	if err != nil {
		return Outcome{Err: err}
	}

	return Outcome{
		Body:       resp.Body(),
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
	}
}
