// Package config loads client configuration from a file with environment
// overrides and maps it onto the construction-time config structs.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/provider"
	"github.com/RustForNeo/neoclient/pkg/transport"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// NEOCLIENT_TRANSPORT_ENDPOINT overrides transport.endpoint.
const EnvPrefix = "NEOCLIENT"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Network   NetworkConfig   `mapstructure:"network"`
	Transport TransportConfig `mapstructure:"transport"`
	Retry     RetryConfig     `mapstructure:"retry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// NetworkConfig identifies the chain. The magic goes into the signed
// payload, so a wrong value makes every signature invalid for the node.
type NetworkConfig struct {
	Magic uint32 `mapstructure:"magic"`
}

type TransportConfig struct {
	Kind           string          `mapstructure:"kind"` // http, websocket, ipc
	Endpoint       string          `mapstructure:"endpoint"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	DialTimeout    time.Duration   `mapstructure:"dial_timeout"`
	Reconnect      ReconnectConfig `mapstructure:"reconnect"`
}

type ReconnectConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	InitialDelay  time.Duration `mapstructure:"initial_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
}

type RetryConfig struct {
	MaxRetries     int                  `mapstructure:"max_retries"`
	InitialDelay   time.Duration        `mapstructure:"initial_delay"`
	MaxDelay       time.Duration        `mapstructure:"max_delay"`
	BackoffFactor  float64              `mapstructure:"backoff_factor"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	CooldownPeriod   time.Duration `mapstructure:"cooldown_period"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Load reads the file at path and applies NEOCLIENT_* environment
// overrides on top.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = string(transport.KindHTTP)
	}

	return &cfg, nil
}

// TransportConfig converts the loaded values into a transport
// configuration, falling back to production defaults for unset fields.
func (c *Config) TransportConfig() transport.Config {
	tc := transport.DefaultConfig(transport.Kind(c.Transport.Kind), c.Transport.Endpoint)
	if c.Transport.RequestTimeout > 0 {
		tc.RequestTimeout = c.Transport.RequestTimeout
	}
	if c.Transport.DialTimeout > 0 {
		tc.DialTimeout = c.Transport.DialTimeout
	}

	rc := c.Transport.Reconnect
	tc.Reconnect.Enabled = rc.Enabled
	if rc.MaxAttempts > 0 {
		tc.Reconnect.MaxAttempts = rc.MaxAttempts
	}
	if rc.InitialDelay > 0 {
		tc.Reconnect.InitialDelay = rc.InitialDelay
	}
	if rc.MaxDelay > 0 {
		tc.Reconnect.MaxDelay = rc.MaxDelay
	}
	if rc.BackoffFactor > 0 {
		tc.Reconnect.BackoffFactor = rc.BackoffFactor
	}
	return tc
}

// RetryConfig converts the loaded values into the retry layer's
// configuration, falling back to production defaults for unset fields.
func (c *Config) RetryConfig() provider.RetryConfig {
	pc := provider.DefaultRetryConfig()
	if c.Retry.MaxRetries > 0 {
		pc.MaxRetries = c.Retry.MaxRetries
	}
	if c.Retry.InitialDelay > 0 {
		pc.InitialDelay = c.Retry.InitialDelay
	}
	if c.Retry.MaxDelay > 0 {
		pc.MaxDelay = c.Retry.MaxDelay
	}
	if c.Retry.BackoffFactor > 0 {
		pc.BackoffFactor = c.Retry.BackoffFactor
	}

	cb := c.Retry.CircuitBreaker
	pc.CircuitBreaker.Enabled = cb.Enabled
	if cb.FailureThreshold > 0 {
		pc.CircuitBreaker.FailureThreshold = cb.FailureThreshold
	}
	if cb.SuccessThreshold > 0 {
		pc.CircuitBreaker.SuccessThreshold = cb.SuccessThreshold
	}
	if cb.CooldownPeriod > 0 {
		pc.CircuitBreaker.CooldownPeriod = cb.CooldownPeriod
	}
	return pc
}

// Middleware assembles the configured layers outermost-first: rate limit
// when enabled, then the retry layer.
func (c *Config) Middleware(lg logging.Logger) []provider.Middleware {
	var stack []provider.Middleware
	if c.RateLimit.Enabled {
		stack = append(stack, provider.NewRateLimitMiddleware(c.RateLimit.RequestsPerSecond, c.RateLimit.Burst))
	}
	stack = append(stack, provider.NewRetryMiddleware(c.RetryConfig(), lg))
	return stack
}

// Logger builds the configured zap logger.
func (c *Config) Logger() logging.Logger {
	return logging.New("neoclient", c.Log.Level)
}
