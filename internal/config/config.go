package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration.
type Config struct {
	// Ban log backend
	BanAPIURL     string        `koanf:"ban_api_url"`
	BanAPIKey     string        `koanf:"ban_api_key"`
	BanAPITimeout time.Duration `koanf:"ban_api_timeout"`

	// External profile services
	IdentityAPIURL     string        `koanf:"identity_api_url"`
	AvatarAPIURL       string        `koanf:"avatar_api_url"`
	LookupTimeout      time.Duration `koanf:"lookup_timeout"`
	ResolveConcurrency int           `koanf:"resolve_concurrency"`

	// Refresh cadence
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	CountdownTick   time.Duration `koanf:"countdown_tick"`

	// Serving
	ListenAddr  string `koanf:"listen_addr"`
	HealthAddr  string `koanf:"health_addr"`
	MetricsAddr string `koanf:"metrics_addr"`

	// Operational
	MetricsEnabled bool   `koanf:"metrics_enabled"`
	LogLevel       string `koanf:"log_level"`
	LogFormat      string `koanf:"log_format"`
	APIDebug       bool   `koanf:"api_debug"`
}

// sanitise removes a single layer of matching surrounding quotes from all string
// fields. This normalises values from Docker --env-file which does not strip
// shell quoting.
func (c *Config) sanitise() {
	c.BanAPIURL = stripEnvQuotes(c.BanAPIURL)
	c.BanAPIKey = stripEnvQuotes(c.BanAPIKey)
	c.IdentityAPIURL = stripEnvQuotes(c.IdentityAPIURL)
	c.AvatarAPIURL = stripEnvQuotes(c.AvatarAPIURL)
	c.ListenAddr = stripEnvQuotes(c.ListenAddr)
	c.HealthAddr = stripEnvQuotes(c.HealthAddr)
	c.MetricsAddr = stripEnvQuotes(c.MetricsAddr)
	c.LogLevel = stripEnvQuotes(c.LogLevel)
	c.LogFormat = stripEnvQuotes(c.LogFormat)
}

// defaults sets sensible default values.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"ban_api_timeout":     "15s",
		"identity_api_url":    "https://users.roblox.com",
		"avatar_api_url":      "https://thumbnails.roblox.com",
		"lookup_timeout":      "10s",
		"resolve_concurrency": 8,
		"refresh_interval":    "20s",
		"countdown_tick":      "500ms",
		"listen_addr":         ":8080",
		"health_addr":         ":8081",
		"metrics_addr":        ":9090",
		"metrics_enabled":     true,
		"log_level":           "info",
		"log_format":          "json",
	}
}

// stripEnvQuotes removes a single layer of matching surrounding single or double
// quotes from s. This normalises values set via Docker --env-file, which does not
// strip shell quoting. Only symmetric pairs are stripped: 'x' → x, "x" → x.
// Unpaired or mismatched quotes are left as-is.
func stripEnvQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '\'' && s[len(s)-1] == '\'') ||
		(s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}

// Load reads configuration from environment variables, applying _FILE secret injection.
func Load() (*Config, error) {
	// Use "." as delimiter so that env vars with "_" in their names are
	// treated as flat keys, not nested paths. E.g. BAN_API_URL → "ban_api_url"
	// maps to struct tag koanf:"ban_api_url" without any nesting.
	k := koanf.New(".")

	// Apply defaults first
	defs := defaults()
	if err := k.Load(&rawProvider{data: defs}, nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Load from environment — use "." as delimiter so env vars aren't split
	// by "_". Our env var names don't contain ".", so they stay flat.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	// Inject _FILE secrets
	if err := injectFileSecrets(k); err != nil {
		return nil, fmt.Errorf("inject file secrets: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Strip Docker env-file quoting from all string values
	cfg.sanitise()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and semantic constraints.
func (c *Config) Validate() error {
	if c.BanAPIURL == "" {
		return fmt.Errorf("BAN_API_URL is required")
	}

	for _, pair := range []struct{ name, url string }{
		{"BAN_API_URL", c.BanAPIURL},
		{"IDENTITY_API_URL", c.IdentityAPIURL},
		{"AVATAR_API_URL", c.AvatarAPIURL},
	} {
		if !strings.HasPrefix(pair.url, "http://") && !strings.HasPrefix(pair.url, "https://") {
			return fmt.Errorf("%s must start with http:// or https://; got %q", pair.name, pair.url)
		}
	}

	if c.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be >= 1s; got %s", c.RefreshInterval)
	}
	if c.CountdownTick <= 0 {
		return fmt.Errorf("COUNTDOWN_TICK must be > 0; got %s", c.CountdownTick)
	}
	if c.ResolveConcurrency < 1 || c.ResolveConcurrency > 64 {
		return fmt.Errorf("RESOLVE_CONCURRENCY must be 1–64; got %d", c.ResolveConcurrency)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be > 0; got %s", c.LookupTimeout)
	}
	if c.BanAPITimeout <= 0 {
		return fmt.Errorf("BAN_API_TIMEOUT must be > 0; got %s", c.BanAPITimeout)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of trace,debug,info,warn,error,fatal,panic; got %q", c.LogLevel)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text; got %q", c.LogFormat)
	}

	return nil
}

// injectFileSecrets reads _FILE env vars and injects their file contents.
var fileSecretKeys = []string{
	"ban_api_key",
}

func injectFileSecrets(k *koanf.Koanf) error {
	for _, key := range fileSecretKeys {
		fileKey := key + "_file"
		filePath := k.String(fileKey)
		if filePath == "" {
			// Also check uppercased env var with _FILE suffix
			envKey := strings.ToUpper(key) + "_FILE"
			filePath = os.Getenv(envKey)
		}
		if filePath == "" {
			continue
		}
		// Strip quotes from file path in case it was quoted in Docker --env-file
		filePath = stripEnvQuotes(filePath)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading secret file for %s (%s): %w", key, filePath, err)
		}
		val := strings.TrimSpace(string(content))
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("setting %s from file: %w", key, err)
		}
	}
	return nil
}

// rawProvider implements koanf.Provider for a map[string]interface{}.
type rawProvider struct {
	data map[string]interface{}
}

// Read returns the config map directly (no Parser needed).
func (r *rawProvider) Read() (map[string]interface{}, error) {
	return r.data, nil
}

// ReadBytes is not used by rawProvider; koanf calls Read() when no Parser is given.
func (r *rawProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("rawProvider does not support ReadBytes")
}
