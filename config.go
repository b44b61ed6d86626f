package megasena

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	API            *APIConfig     `mapstructure:"api"`
	Cache          *CacheConfig   `mapstructure:"cache"`
	Redis          *RedisConfig   `mapstructure:"redis"`
	CircuitBreaker *BreakerConfig `mapstructure:"circuit_breaker"`
	Server         *ServerConfig  `mapstructure:"server"`
}

// APIConfig configures the upstream lottery API access
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LookupTimeout  time.Duration `mapstructure:"lookup_timeout"`
	HistoryWindow  int           `mapstructure:"history_window"`
	LookupWindow   int           `mapstructure:"lookup_window"`
	Concurrency    int           `mapstructure:"concurrency"`
}

// CacheConfig selects the cache backend and the per-key-kind TTLs
type CacheConfig struct {
	Kind             string        `mapstructure:"kind"`
	ProcessedDataTTL time.Duration `mapstructure:"processed_data_ttl"`
	EstimateTTL      time.Duration `mapstructure:"estimate_ttl"`
	DrawTTL          time.Duration `mapstructure:"draw_ttl"`
}

// RedisConfig configures the optional shared cache backend
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BreakerConfig configures the upstream circuit breaker
type BreakerConfig struct {
	Name             string        `mapstructure:"name"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	RecoveryTimeout  time.Duration `mapstructure:"recovery_timeout"`
}

// ServerConfig configures the HTTP surface of the service binary
type ServerConfig struct {
	Addr               string   `mapstructure:"addr"`
	CORSOrigins        []string `mapstructure:"cors_origins"`
	RateLimitEnabled   bool     `mapstructure:"rate_limit_enabled"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	WarmupEnabled      bool     `mapstructure:"warmup_enabled"`
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrConfigInvalid.WithDetails("api.base_url is required")
	}
	if c.API.RequestTimeout <= 0 || c.API.LookupTimeout <= 0 {
		return ErrConfigInvalid.WithDetails("api timeouts must be positive")
	}
	if c.API.HistoryWindow <= 0 || c.API.LookupWindow <= 0 {
		return ErrConfigInvalid.WithDetails("api scan windows must be positive")
	}
	if c.API.Concurrency <= 0 {
		return ErrConfigInvalid.WithDetails("api.concurrency must be positive")
	}

	if c.Cache.Kind != CacheKindMemory && c.Cache.Kind != CacheKindRedis {
		return ErrConfigInvalid.WithDetails(
			fmt.Sprintf("cache.kind must be %q or %q", CacheKindMemory, CacheKindRedis))
	}
	if c.Cache.ProcessedDataTTL <= 0 || c.Cache.EstimateTTL <= 0 || c.Cache.DrawTTL <= 0 {
		return ErrConfigInvalid.WithDetails("cache TTLs must be positive")
	}

	if c.Cache.Kind == CacheKindRedis && c.Redis.Addr == "" {
		return ErrConfigInvalid.WithDetails("redis.addr is required for the redis cache")
	}

	if c.CircuitBreaker.FailureThreshold == 0 {
		return ErrConfigInvalid.WithDetails("circuit_breaker.failure_threshold must be positive")
	}
	if c.CircuitBreaker.RecoveryTimeout <= 0 {
		return ErrConfigInvalid.WithDetails("circuit_breaker.recovery_timeout must be positive")
	}

	if c.Server.RateLimitEnabled && c.Server.RateLimitPerMinute <= 0 {
		return ErrConfigInvalid.WithDetails("server.rate_limit_per_minute must be positive")
	}

	return nil
}

// ConfigManager loads and watches the service configuration
type ConfigManager struct {
	viper  *viper.Viper
	config *Config
}

// NewConfigManager creates a configuration manager reading config.yaml
// from the usual locations, with MEGASENA_ environment overrides.
func NewConfigManager() *ConfigManager {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/megasena")
	v.AddConfigPath("$HOME/.megasena")

	v.SetEnvPrefix("MEGASENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{viper: v}
}

// LoadConfig reads, unmarshals and validates the configuration.
// A missing config file is fine; defaults apply.
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	cm.setDefaults()

	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cm.config = config
	return config, nil
}

func (cm *ConfigManager) setDefaults() {
	cm.viper.SetDefault("api.base_url", DefaultBaseURL)
	cm.viper.SetDefault("api.request_timeout", "10s")
	cm.viper.SetDefault("api.lookup_timeout", "5s")
	cm.viper.SetDefault("api.history_window", DefaultHistoryWindow)
	cm.viper.SetDefault("api.lookup_window", DefaultLookupWindow)
	cm.viper.SetDefault("api.concurrency", DefaultFetchConcurrency)

	cm.viper.SetDefault("cache.kind", CacheKindMemory)
	cm.viper.SetDefault("cache.processed_data_ttl", "1h")
	cm.viper.SetDefault("cache.estimate_ttl", "30m")
	cm.viper.SetDefault("cache.draw_ttl", "24h")

	cm.viper.SetDefault("redis.addr", "localhost:6379")
	cm.viper.SetDefault("redis.password", "")
	cm.viper.SetDefault("redis.db", 0)
	cm.viper.SetDefault("redis.pool_size", 50)
	cm.viper.SetDefault("redis.min_idle_conns", 10)
	cm.viper.SetDefault("redis.dial_timeout", "5s")
	cm.viper.SetDefault("redis.read_timeout", "3s")
	cm.viper.SetDefault("redis.write_timeout", "3s")

	cm.viper.SetDefault("circuit_breaker.name", DefaultBreakerName)
	cm.viper.SetDefault("circuit_breaker.failure_threshold", DefaultFailureThreshold)
	cm.viper.SetDefault("circuit_breaker.recovery_timeout", "30s")

	cm.viper.SetDefault("server.addr", ":8000")
	cm.viper.SetDefault("server.cors_origins", []string{"http://localhost:8080", "http://localhost:3000"})
	cm.viper.SetDefault("server.rate_limit_enabled", true)
	cm.viper.SetDefault("server.rate_limit_per_minute", 60)
	cm.viper.SetDefault("server.warmup_enabled", true)
}

// WatchConfig reloads the configuration when the file changes.
// Invalid updates are dropped without disturbing the running service.
func (cm *ConfigManager) WatchConfig(callback func(*Config)) {
	cm.viper.WatchConfig()
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config := &Config{}
		if err := cm.viper.Unmarshal(config); err != nil {
			return
		}
		if err := config.Validate(); err != nil {
			return
		}

		cm.config = config
		if callback != nil {
			callback(config)
		}
	})
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config { return cm.config }

// DefaultConfig returns the built-in defaults without touching disk
func DefaultConfig() *Config {
	return &Config{
		API: &APIConfig{
			BaseURL:        DefaultBaseURL,
			RequestTimeout: DefaultRequestTimeout,
			LookupTimeout:  DefaultLookupTimeout,
			HistoryWindow:  DefaultHistoryWindow,
			LookupWindow:   DefaultLookupWindow,
			Concurrency:    DefaultFetchConcurrency,
		},
		Cache: &CacheConfig{
			Kind:             CacheKindMemory,
			ProcessedDataTTL: DefaultProcessedDataTTL,
			EstimateTTL:      DefaultEstimateTTL,
			DrawTTL:          DefaultDrawTTL,
		},
		Redis: &RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     50,
			MinIdleConns: 10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		CircuitBreaker: &BreakerConfig{
			Name:             DefaultBreakerName,
			FailureThreshold: DefaultFailureThreshold,
			RecoveryTimeout:  DefaultRecoveryTimeout,
		},
		Server: &ServerConfig{
			Addr:               ":8000",
			CORSOrigins:        []string{"http://localhost:8080", "http://localhost:3000"},
			RateLimitEnabled:   true,
			RateLimitPerMinute: 60,
			WarmupEnabled:      true,
		},
	}
}
