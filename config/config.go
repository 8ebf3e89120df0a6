// Package config loads hook settings from the environment, an optional
// .env file and an optional config file.
//
// Every key can be set through an HTTPHOOK_ prefixed environment variable,
// for example HTTPHOOK_TRANSPORT=resty or HTTPHOOK_THROTTLE_RPS=10.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "HTTPHOOK"

// Transports.
const (
	TransportHTTP  = "http"
	TransportResty = "resty"
)

// Fixture modes.
const (
	FixtureRecord = "record"
	FixtureReplay = "replay"
)

// Config holds the settings a hook can be assembled from. Empty Transport,
// LogLevel and LogFormat mean http, info and json.
type Config struct {
	Transport         string        `mapstructure:"transport" validate:"omitempty,oneof=http resty"`
	UserAgent         string        `mapstructure:"user_agent"`
	TimeoutSeconds    int64         `mapstructure:"timeout_seconds" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"-"`
	NoFollowRedirects bool          `mapstructure:"no_follow_redirects"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" validate:"gte=0"`

	ThrottleRPS   int `mapstructure:"throttle_rps" validate:"gte=0"`
	ThrottleBurst int `mapstructure:"throttle_burst" validate:"gte=0,required_with=ThrottleRPS"`

	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json text zap"`

	FixturePath string `mapstructure:"fixture_path" validate:"required_with=FixtureMode"`
	FixtureMode string `mapstructure:"fixture_mode" validate:"omitempty,oneof=record replay"`

	UseJSONNumber         bool `mapstructure:"use_json_number"`
	DisallowUnknownFields bool `mapstructure:"disallow_unknown_fields"`
}

// Throttled reports whether outbound calls should be rate limited.
func (c Config) Throttled() bool {
	return c.ThrottleRPS > 0
}

// Load reads the configuration. A .env file in the working directory is
// applied first when present. If file is empty, HTTPHOOK_CONFIG_FILE is
// consulted; an empty value means no config file.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("transport", TransportHTTP)
	v.SetDefault("user_agent", "")
	v.SetDefault("timeout_seconds", 0)
	v.SetDefault("no_follow_redirects", false)
	v.SetDefault("max_body_bytes", 0)
	v.SetDefault("throttle_rps", 0)
	v.SetDefault("throttle_burst", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("fixture_path", "")
	v.SetDefault("fixture_mode", "")
	v.SetDefault("use_json_number", false)
	v.SetDefault("disallow_unknown_fields", false)
	v.SetDefault("config_file", "")

	v.AutomaticEnv()

	if file == "" {
		file = v.GetString("config_file")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Transport = strings.ToLower(cfg.Transport)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.FixtureMode = strings.ToLower(cfg.FixtureMode)
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field values and combinations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())
