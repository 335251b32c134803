// Package config resolves the CLI's runtime configuration. Values are
// read once per process from the environment (with an optional yaml
// config file at lower precedence) and are immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL targets a local platform instance; the host guard
	// still validates it before any request.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultReviewWebBaseURL is the platform web origin used for
	// review deep links when none is configured.
	DefaultReviewWebBaseURL = "https://trade-nexus.lona.agency"
)

// Config holds everything the CLI reads from its environment.
type Config struct {
	// BaseURL is the platform API origin, trailing slash trimmed.
	BaseURL string
	// BearerToken is the preferred credential (PLATFORM_API_BEARER_TOKEN,
	// legacy PLATFORM_API_TOKEN).
	BearerToken string
	// APIKey is the alternate credential (PLATFORM_API_KEY).
	APIKey string

	// reviewWebBaseURL is resolved lazily: only review-run commands need
	// it, and a bad value must not break registration or key commands.
	reviewWebBaseURL string
}

// Load reads configuration from the environment, layered over an optional
// yaml config file named by TRADING_CLI_CONFIG.
func Load() (*Config, error) {
	v := viper.New()

	if path := strings.TrimSpace(os.Getenv("TRADING_CLI_CONFIG")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", path, err)
		}
	}

	bindings := map[string][]string{
		"base_url":            {"PLATFORM_API_BASE_URL"},
		"bearer_token":        {"PLATFORM_API_BEARER_TOKEN", "PLATFORM_API_TOKEN"},
		"api_key":             {"PLATFORM_API_KEY"},
		"review_web_base_url": {"REVIEW_WEB_BASE_URL", "TRADE_NEXUS_WEB_BASE_URL"},
	}
	for key, envVars := range bindings {
		keys := append([]string{key}, envVars...)
		if err := v.BindEnv(keys...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{
		BaseURL:          firstNonEmpty(v.GetString("base_url"), DefaultBaseURL),
		BearerToken:      strings.TrimSpace(v.GetString("bearer_token")),
		APIKey:           strings.TrimSpace(v.GetString("api_key")),
		reviewWebBaseURL: firstNonEmpty(v.GetString("review_web_base_url"), DefaultReviewWebBaseURL),
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return cfg, nil
}

// HasCredentials reports whether any platform credential is configured.
func (c *Config) HasCredentials() bool {
	return c.BearerToken != "" || c.APIKey != ""
}

// ReviewWebBaseURL validates and returns the review web origin, trailing
// slash trimmed. The value must be an absolute http(s) URL.
func (c *Config) ReviewWebBaseURL() (string, error) {
	parsed, err := url.Parse(c.reviewWebBaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", errors.New("REVIEW_WEB_BASE_URL must be an absolute http(s) URL.")
	}
	return strings.TrimSuffix(c.reviewWebBaseURL, "/"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
