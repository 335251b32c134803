// Package hostguard enforces the platform API boundary: the CLI may only
// talk to the sanctioned platform host or a local loopback, never to a
// direct market-data/exchange provider.
package hostguard

import (
	"errors"
	"net/url"
	"strings"
)

// PlatformAPIHost is the only non-loopback hostname the CLI may target.
// Matching is exact; subdomains and superstrings never qualify.
const PlatformAPIHost = "api-nexus.lona.agency"

// loopbackHosts are accepted for local development against a mock or a
// port-forwarded platform instance.
var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
	"[::1]":     true,
}

// blockedProviderHints identify direct provider hosts by name fragment.
// A hint match rejects the URL even when the host is not otherwise known,
// so the guard fails closed on anything that smells like an exchange.
var blockedProviderHints = []string{
	"lona",
	"live-engine",
	"binance",
	"alpaca",
	"kraken",
	"coinbase",
}

// Validate checks a configured base URL against the boundary policy.
// It performs no network I/O. The two failure messages are deliberately
// distinct: a blocked-hint hit reports a boundary violation, a plain
// allow-list miss reports a misconfiguration.
func Validate(rawURL string) error {
	normalized := strings.TrimSpace(rawURL)
	if normalized == "" {
		return errors.New("PLATFORM_API_BASE_URL is required.")
	}

	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" {
		return errors.New("PLATFORM_API_BASE_URL must be an absolute http(s) URL.")
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return errors.New("PLATFORM_API_BASE_URL must be an absolute http(s) URL.")
	}

	hostname := strings.ToLower(parsed.Hostname())

	// The platform host itself contains a blocked fragment, so the exact
	// match must be exempt. Nothing else is.
	isPlatformHost := hostname == PlatformAPIHost

	for _, hint := range blockedProviderHints {
		if strings.Contains(hostname, hint) && !isPlatformHost {
			return errors.New("Boundary violation: CLI must target Platform API only (no direct provider hosts).")
		}
	}

	if !isPlatformHost && !loopbackHosts[hostname] {
		return errors.New("PLATFORM_API_BASE_URL host must be " + PlatformAPIHost + " or a local loopback host.")
	}

	return nil
}
