package model

import "time"

// Config is the complete runtime configuration. Field names double as the
// viper keys (catalog.path, server.addr, ...) and the config file layout.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Engine      EngineConfig      `yaml:"engine" mapstructure:"engine"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// CatalogConfig selects the regulatory source. An empty path uses the
// embedded dataset.
type CatalogConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"` // auto, json, yaml, html
}

// CacheConfig controls catalog snapshot memoization
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// FetchConfig applies when catalog.path is an http(s) URL
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

type EngineConfig struct {
	ContextWindow   int      `yaml:"context_window" mapstructure:"context_window"`
	BaseSpecialties []string `yaml:"base_specialties" mapstructure:"base_specialties"`
}

type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig is the HTTP API listener. TrustedClients are client
// addresses exempt from rate limiting.
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	TrustedClients    []string      `yaml:"trusted_clients" mapstructure:"trusted_clients"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json, console
}

type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Format: "auto",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.medfactors/cache by the CLI
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Fetch: FetchConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "medfactors/0.1 (+https://github.com/ppiankov/medfactors)",
			MaxBytes:      10 << 20,
			RespectRobots: true,
		},
		Engine: EngineConfig{
			ContextWindow:   50,
			BaseSpecialties: []string{},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			RequestsPerSecond: 20,
			Burst:             40,
			MaxBodyBytes:      1 << 20,
			TrustedClients:    []string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
