package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	StrategyRoundRobin = "round-robin"
	StrategyRandom     = "random"
)

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type UpstreamConfig struct {
	BaseURLs     []string `mapstructure:"base_urls"`
	Strategy     string   `mapstructure:"strategy"`
	Timeout      string   `mapstructure:"timeout"`
	EscapeParams bool     `mapstructure:"escape_params"`
	MaxBodyBytes int64    `mapstructure:"max_body_bytes"`
}

type CircuitBreakerConfig struct {
	Threshold    int    `mapstructure:"threshold"`
	ResetTimeout string `mapstructure:"reset_timeout"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
	Path     string `mapstructure:"path"`
}

type MetricsConfig struct {
	PrometheusPath string `mapstructure:"prometheus_path"`
	StatsPath      string `mapstructure:"stats_path"`
	BufferSize     int    `mapstructure:"buffer_size"`
}

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Upstream       UpstreamConfig       `mapstructure:"upstream"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	HealthCheck    HealthCheckConfig    `mapstructure:"health_check"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
}

// Load reads config.yaml from the given directories (./config and . when none
// are given), layers environment variables on top and validates the result.
// A missing config file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("upstream.base_urls", []string{"https://api.example"})
	v.SetDefault("upstream.strategy", StrategyRoundRobin)
	v.SetDefault("upstream.timeout", "60s")
	v.SetDefault("upstream.escape_params", true)
	v.SetDefault("upstream.max_body_bytes", 10<<20)
	v.SetDefault("circuit_breaker.threshold", 0)
	v.SetDefault("circuit_breaker.reset_timeout", "30s")
	v.SetDefault("health_check.interval", "0s")
	v.SetDefault("health_check.path", "/")
	v.SetDefault("metrics.prometheus_path", "/metrics")
	v.SetDefault("metrics.stats_path", "/stats")
	v.SetDefault("metrics.buffer_size", 1000)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(ValidateHostPort),
					),
					validation.Field(&sc.ReadTimeout, validation.Required, validation.By(validateDuration)),
					validation.Field(&sc.WriteTimeout, validation.Required, validation.By(validateDuration)),
					validation.Field(&sc.IdleTimeout, validation.Required, validation.By(validateDuration)),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Upstream,
			validation.Required,
			validation.By(func(value interface{}) error {
				uc, ok := value.(UpstreamConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an UpstreamConfig")
				}
				return validation.ValidateStruct(&uc,
					validation.Field(&uc.BaseURLs,
						validation.Required,
						validation.Length(1, 0),
						validation.Each(validation.By(validateBaseURL)),
					),
					validation.Field(&uc.Strategy,
						validation.Required,
						validation.In(StrategyRoundRobin, StrategyRandom),
					),
					validation.Field(&uc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&uc.MaxBodyBytes,
						validation.Required,
						validation.Min(int64(1)),
					),
				)
			}),
		),
		validation.Field(&c.CircuitBreaker,
			validation.By(func(value interface{}) error {
				cb, ok := value.(CircuitBreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CircuitBreakerConfig")
				}
				return validation.ValidateStruct(&cb,
					validation.Field(&cb.Threshold, validation.Min(0)),
					validation.Field(&cb.ResetTimeout,
						validation.Required.When(cb.Threshold > 0),
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&hc.Path, validation.By(validatePath)),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.PrometheusPath, validation.By(validatePath)),
					validation.Field(&mc.StatsPath, validation.By(validatePath)),
					validation.Field(&mc.BufferSize, validation.Required, validation.Min(1)),
				)
			}),
		),
	)
}

// Duration parses a duration that has already passed validation.
// Invalid or empty input yields zero.
func Duration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// ValidateHostPort accepts "host:port" and ":port" listen addresses.
func ValidateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if durationStr == "" {
		return nil
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validatePath(value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if p == "" {
		return nil
	}

	if !strings.HasPrefix(p, "/") {
		return validation.NewError("validation_invalid_path", "path must start with /")
	}

	if strings.ContainsAny(p, "{}") || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return validation.NewError("validation_invalid_path", "path must not contain braces or whitespace")
	}

	return nil
}

func validateBaseURL(value interface{}) error {
	baseURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if baseURL == "" {
		return validation.NewError("validation_empty_url", "upstream URL cannot be empty")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	if parsedURL.RawQuery != "" {
		return validation.NewError("validation_unexpected_query", "URL must not carry a query string")
	}

	return nil
}
