package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything the server needs at startup.
type Config struct {
	NewsAPIKey     string `yaml:"news_api_key"`
	NewsAPIBaseURL string `yaml:"news_api_base_url"`
	Country        string `yaml:"country"`
	UserAgent      string `yaml:"user_agent"`

	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
	Env         string `yaml:"env"`
	AdminToken  string `yaml:"admin_token"`

	CacheTTL           time.Duration `yaml:"cache_ttl"`
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval"`
	RedisAddr          string        `yaml:"redis_addr"`

	RateLimitMax    int           `yaml:"rate_limit_max"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

// Default returns the built-in settings. NewsAPIKey is left empty on purpose.
func Default() *Config {
	return &Config{
		NewsAPIBaseURL:     "https://newsapi.org/v2",
		Country:            "us",
		UserAgent:          "TrendPulse-API/1.0",
		Port:               "3000",
		FrontendURL:        "*",
		Env:                EnvDevelopment,
		CacheTTL:           5 * time.Minute,
		CacheSweepInterval: 10 * time.Minute,
		RateLimitMax:       100,
		RateLimitWindow:    15 * time.Minute,
	}
}

// IsProduction reports whether detailed errors must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	if c.NewsAPIKey == "" {
		return errors.New("NEWS_API_KEY environment variable is required")
	}
	if _, err := url.ParseRequestURI(c.NewsAPIBaseURL); err != nil {
		return fmt.Errorf("invalid news api base url: %s", c.NewsAPIBaseURL)
	}
	if c.FrontendURL != "*" && !strings.HasPrefix(c.FrontendURL, "http://") && !strings.HasPrefix(c.FrontendURL, "https://") {
		return fmt.Errorf("frontend url must be * or an http(s) origin: %s", c.FrontendURL)
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache ttl must be positive")
	}
	if c.RateLimitMax < 1 {
		return errors.New("rate limit max must be at least 1")
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

// Load builds a Config from defaults, then the optional YAML file at path,
// then environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.NewsAPIKey = envOrDefault("NEWS_API_KEY", c.NewsAPIKey)
	c.NewsAPIBaseURL = envOrDefault("NEWS_API_BASE_URL", c.NewsAPIBaseURL)
	c.Country = envOrDefault("NEWS_COUNTRY", c.Country)
	c.Port = envOrDefault("PORT", c.Port)
	c.FrontendURL = envOrDefault("FRONTEND_URL", c.FrontendURL)
	c.Env = envOrDefault("APP_ENV", c.Env)
	c.AdminToken = envOrDefault("ADMIN_TOKEN", c.AdminToken)
	c.RedisAddr = envOrDefault("REDIS_ADDR", c.RedisAddr)

	var err error
	if c.CacheTTL, err = envDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.CacheSweepInterval, err = envDuration("CACHE_SWEEP_INTERVAL", c.CacheSweepInterval); err != nil {
		return err
	}
	if c.RateLimitWindow, err = envDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_MAX %q: %w", v, err)
		}
		c.RateLimitMax = n
	}
	return nil
}

func envOrDefault(key, d string) string {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	return v
}

func envDuration(key string, d time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return d, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}
