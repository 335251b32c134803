package hostguard

import (
	"strings"
	"testing"
)

func TestValidateAllowsPlatformAndLoopbackHosts(t *testing.T) {
	hosts := []string{
		"api-nexus.lona.agency",
		"localhost",
		"127.0.0.1",
		"0.0.0.0",
		"[::1]",
	}
	schemes := []string{"http", "https"}

	for _, host := range hosts {
		for _, scheme := range schemes {
			url := scheme + "://" + host + ":3000"
			if err := Validate(url); err != nil {
				t.Errorf("Validate(%q) = %v, want nil", url, err)
			}
		}
	}
}

func TestValidateRejectsBlockedProviderHosts(t *testing.T) {
	urls := []string{
		"https://gateway.lona.agency",
		"https://live-engine.internal",
		"https://api.binance.com",
		"https://data.alpaca.markets",
		"https://api.kraken.com",
		"https://api.pro.coinbase.com",
		// Spoofing: the allowed host embedded as a superstring still
		// contains the blocked fragment and must fail.
		"https://api-nexus.lona.agency.evil.com",
	}

	for _, url := range urls {
		err := Validate(url)
		if err == nil {
			t.Errorf("Validate(%q) = nil, want boundary violation", url)
			continue
		}
		if !strings.Contains(err.Error(), "Boundary violation") {
			t.Errorf("Validate(%q) = %q, want boundary violation message", url, err)
		}
	}
}

func TestValidateRejectsUnknownHostsWithConfigMessage(t *testing.T) {
	// Hosts that carry no blocked hint get the more specific
	// misconfiguration message, not the boundary one.
	urls := []string{
		"https://evil.com/api-nexus.lona.agency",
		"https://example.com",
		"https://api.trade-nexus.io",
	}

	for _, url := range urls {
		err := Validate(url)
		if err == nil {
			t.Errorf("Validate(%q) = nil, want error", url)
			continue
		}
		if !strings.Contains(err.Error(), "local loopback host") {
			t.Errorf("Validate(%q) = %q, want allow-list miss message", url, err)
		}
		if strings.Contains(err.Error(), "Boundary violation") {
			t.Errorf("Validate(%q) = %q, should not be a boundary violation", url, err)
		}
	}
}

func TestValidateRejectsMalformedURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"relative", "/just/a/path"},
		{"no scheme", "localhost:3000"},
		{"bad scheme", "ftp://localhost"},
		{"garbage", "::::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.url); err == nil {
				t.Errorf("Validate(%q) = nil, want error", tt.url)
			}
		})
	}
}

func TestValidateIsCaseInsensitive(t *testing.T) {
	if err := Validate("https://API-NEXUS.LONA.AGENCY"); err != nil {
		t.Errorf("uppercase platform host rejected: %v", err)
	}
	if err := Validate("https://API.BINANCE.COM"); err == nil {
		t.Error("uppercase blocked host accepted")
	}
}
