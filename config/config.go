package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hactl/internal/application"
	"hactl/internal/domain"
	"hactl/internal/infra"
	"hactl/internal/intent"
	"hactl/internal/matching"
)

type Config struct {
	HomeAssistant HomeAssistantConfig `yaml:"home_assistant"`
	Resolver      matching.Config     `yaml:"resolver"`
	Classifier    intent.Config       `yaml:"classifier"`
	Dispatcher    DispatcherConfig    `yaml:"dispatcher"`
	HTTP          HTTPConfig          `yaml:"http"`
	Cache         CacheConfig         `yaml:"cache"`
	Pushover      PushoverConfig      `yaml:"pushover"`
	Log           LogConfig           `yaml:"log"`
	Retry         infra.RetryConfig   `yaml:"retry"`
}

type HomeAssistantConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type DispatcherConfig struct {
	Keyword string `yaml:"keyword"`
	// Domains restricts resolution to these entity domains. Empty means all.
	Domains     []string `yaml:"domains"`
	MaxParallel int      `yaml:"max_parallel"`
}

type HTTPConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
	// RateLimit is requests per minute per IP. Zero disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

type CacheConfig struct {
	// Backend is "none", "memory" or "redis".
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	// RefreshInterval re-fetches the snapshot in the background while serving. Zero disables it.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password"`
	RedisKey        string        `yaml:"redis_key"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML and fills in defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.HomeAssistant.URL == "" {
		c.HomeAssistant.URL = "http://localhost:8123"
	}
	if c.HomeAssistant.Timeout == 0 {
		c.HomeAssistant.Timeout = 15 * time.Second
	}

	defaults := matching.DefaultConfig()
	if c.Resolver.Threshold <= 0 {
		c.Resolver.Threshold = defaults.Threshold
	}
	if c.Resolver.StopWords == nil {
		c.Resolver.StopWords = defaults.StopWords
	}
	if c.Resolver.PrefixDomains == nil {
		c.Resolver.PrefixDomains = defaults.PrefixDomains
	}

	if c.Dispatcher.Keyword == "" {
		c.Dispatcher.Keyword = domain.DefaultKeyword
	}
	if c.Dispatcher.MaxParallel == 0 {
		c.Dispatcher.MaxParallel = application.DefaultMaxParallel
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Second
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}

	retry := infra.DefaultRetryConfig()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = retry.MaxAttempts
	}
	if c.Retry.InitialDelay == 0 {
		c.Retry.InitialDelay = retry.InitialDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = retry.MaxDelay
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = retry.Multiplier
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Resolver.Threshold > 1 {
		return fmt.Errorf("resolver.threshold must be in (0, 1], got %v", c.Resolver.Threshold)
	}
	switch c.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be none, memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// DispatcherConfig assembles the dispatcher's construction-time settings.
func (c *Config) DispatcherConfig() application.DispatcherConfig {
	return application.DispatcherConfig{
		Keyword:    c.Dispatcher.Keyword,
		Domains:    c.Dispatcher.Domains,
		Resolver:   c.Resolver,
		Classifier: c.Classifier,
	}
}
