package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Signing   SigningConfig   `mapstructure:"signing"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// SigningConfig carries the shared-secret material for the tokenization API.
// SecretKey is never logged or echoed by any endpoint.
type SigningConfig struct {
	SecretKey  string `mapstructure:"secret_key"`
	MerchantID string `mapstructure:"merchant_id"`
	NonceBytes int    `mapstructure:"nonce_bytes"` // nonce length is 2x this in hex chars
}

type UpstreamConfig struct {
	Endpoint         string        `mapstructure:"endpoint"`
	APIVersion       string        `mapstructure:"api_version"`
	ResponseCharset  string        `mapstructure:"response_charset"` // legacy single-byte body encoding
	Timeout          time.Duration `mapstructure:"timeout"`
	ToleranceSeconds int           `mapstructure:"tolerance_seconds"` // enforced upstream; echoed for operators
	RetryAttempts    int           `mapstructure:"retry_attempts"`    // total attempts incl. the first
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RateLimitConfig controls the optional Redis-backed limiter on the
// tokenize endpoint. Disabled limiting needs no Redis at all.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled"`
	RequestsPerMinute int64 `mapstructure:"requests_per_minute"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CTP_ (Card Token Proxy).
// Nested keys use underscore: CTP_SIGNING_SECRET_KEY, CTP_UPSTREAM_ENDPOINT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("signing.secret_key", "")
	v.SetDefault("signing.merchant_id", "")
	v.SetDefault("signing.nonce_bytes", 16)
	v.SetDefault("upstream.endpoint", "")
	v.SetDefault("upstream.api_version", "v1")
	v.SetDefault("upstream.response_charset", "windows-1254")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.tolerance_seconds", 60)
	v.SetDefault("upstream.retry_attempts", 1)
	v.SetDefault("upstream.retry_base_delay", "500ms")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CTP_UPSTREAM_ENDPOINT -> upstream.endpoint
	v.SetEnvPrefix("CTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Signing.SecretKey == "" {
		return fmt.Errorf("signing.secret_key is required")
	}
	if c.Signing.MerchantID == "" {
		return fmt.Errorf("signing.merchant_id is required")
	}
	if c.Signing.NonceBytes != 16 && c.Signing.NonceBytes != 32 {
		return fmt.Errorf("signing.nonce_bytes must be 16 or 32, got %d", c.Signing.NonceBytes)
	}
	if c.Upstream.Endpoint == "" {
		return fmt.Errorf("upstream.endpoint is required")
	}
	if c.Upstream.RetryAttempts < 1 {
		return fmt.Errorf("upstream.retry_attempts must be at least 1, got %d", c.Upstream.RetryAttempts)
	}
	return nil
}
