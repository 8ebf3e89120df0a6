package hook

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-resty/resty/v2"

	"github.com/pontusntengnas/httphook/config"
	"github.com/pontusntengnas/httphook/logging"
	"github.com/pontusntengnas/httphook/response"
	"github.com/pontusntengnas/httphook/throttle"
	"github.com/pontusntengnas/httphook/transport"
	"github.com/pontusntengnas/httphook/transport/fixture"
)

// FromConfig assembles a Hook from cfg. Logs go to stderr in the configured
// format. Options in optFns are applied after the config-derived ones and
// take precedence. Call Close on the returned Hook to release the fixture
// store and flush the logger.
func FromConfig(cfg *config.Config, optFns ...Option) (*Hook, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	sender, err := networkSender(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Throttled() {
		sender, err = throttle.New(throttle.Config{RPS: cfg.ThrottleRPS, Burst: cfg.ThrottleBurst}, logger.Slog, sender)
		if err != nil {
			return nil, fmt.Errorf("building throttle: %w", err)
		}
	}

	closers := []func() error{logger.Sync}

	if cfg.FixtureMode != "" {
		store, err := fixture.Open(cfg.FixturePath, logger.Slog())
		if err != nil {
			return nil, fmt.Errorf("opening fixture store: %w", err)
		}
		closers = append(closers, store.Close)

		switch cfg.FixtureMode {
		case config.FixtureRecord:
			sender = store.Recorder(sender)
		case config.FixtureReplay:
			sender = store.Replayer()
		}
	}

	var decOpts []response.DecoderOption
	if cfg.UseJSONNumber {
		decOpts = append(decOpts, response.WithJSONNumber())
	}
	if cfg.DisallowUnknownFields {
		decOpts = append(decOpts, response.WithDisallowUnknownFields())
	}

	opts := []Option{
		WithSender(sender),
		WithDecoder(response.NewDecoder(decOpts...)),
		WithLogger(logger),
	}
	for _, fn := range closers {
		opts = append(opts, withCloser(fn))
	}

	h, err := Build(append(opts, optFns...)...)
	if err != nil {
		for _, fn := range closers {
			_ = fn()
		}
		return nil, err
	}

	return h, nil
}

func networkSender(cfg *config.Config, logger *logging.Logger) (transport.Sender, error) {
	switch cfg.Transport {
	case config.TransportResty:
		rc := resty.New()
		rc.SetTimeout(cfg.Timeout)
		if cfg.UserAgent != "" {
			rc.SetHeader("User-Agent", cfg.UserAgent)
		}
		if cfg.NoFollowRedirects {
			rc.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}))
		}
		return transport.NewRestyFrom(rc), nil
	}

	topts := []transport.Option{
		transport.WithLogger(logger.Slog()),
		transport.WithClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.UserAgent != "" {
		topts = append(topts, transport.WithUserAgent(cfg.UserAgent))
	}
	if cfg.NoFollowRedirects {
		topts = append(topts, transport.WithNoFollowRedirects())
	}
	if cfg.MaxBodyBytes > 0 {
		topts = append(topts, transport.WithMaxBodySize(cfg.MaxBodyBytes))
	}

	sender, err := transport.Build(topts...)
	if err != nil {
		return nil, fmt.Errorf("building transport: %w", err)
	}

	return sender, nil
}
