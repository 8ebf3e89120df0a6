// Package httphook exposes hook builders.
//
// A hook performs declarative HTTP calls and reports each one to a callback
// twice: once when it starts loading and once when it settles. See the hook
// package for the call operations and request for building descriptors.
package httphook

import (
	"fmt"

	"github.com/pontusntengnas/httphook/config"
	"github.com/pontusntengnas/httphook/hook"
)

// New instantiates a new *hook.Hook with the provided options.
// If not specified, a net/http backed transport and slog.Default are used.
func New(opts ...hook.Option) (*hook.Hook, error) {
	return hook.Build(opts...)
}

// Load instantiates a *hook.Hook from HTTPHOOK_ environment variables, an
// optional .env file and the config file named by HTTPHOOK_CONFIG_FILE.
// The returned hook must be closed.
func Load(opts ...hook.Option) (*hook.Hook, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return hook.FromConfig(cfg, opts...)
}
