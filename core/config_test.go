package core

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Ensure no leftover env from the host shell
	for _, key := range []string{"API_BASE_URL", "WS_BASE_URL", "PAGE_SIZE", "HTTP_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("Expected API base %q, got %q", DefaultAPIBaseURL, cfg.APIBaseURL)
	}
	if cfg.WSBaseURL != DefaultWSBaseURL {
		t.Errorf("Expected WS base %q, got %q", DefaultWSBaseURL, cfg.WSBaseURL)
	}
	if cfg.PageSize != 10 {
		t.Errorf("Expected default page size 10, got %d", cfg.PageSize)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxFileSize != 5*1024*1024 {
		t.Errorf("Expected default max file size 5MB, got %d", cfg.MaxFileSize)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://gen.example.com/api/")
	t.Setenv("WS_BASE_URL", "wss://gen.example.com/api")
	t.Setenv("PAGE_SIZE", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	// Trailing slash is stripped so endpoint joins stay clean
	if cfg.APIBaseURL != "https://gen.example.com/api" {
		t.Errorf("Unexpected API base: %q", cfg.APIBaseURL)
	}
	if cfg.WSBaseURL != "wss://gen.example.com/api" {
		t.Errorf("Unexpected WS base: %q", cfg.WSBaseURL)
	}
	if cfg.PageSize != 25 {
		t.Errorf("Expected page size 25, got %d", cfg.PageSize)
	}
}

func TestLoadConfigRejectsBadSchemes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"http scheme on ws url", "WS_BASE_URL", "http://localhost:5000/api"},
		{"ws scheme on api url", "API_BASE_URL", "ws://localhost:5000/api"},
		{"missing host", "API_BASE_URL", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_BASE_URL", "")
			t.Setenv("WS_BASE_URL", "")
			t.Setenv(tt.key, tt.val)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoadConfigRejectsInvalidPageSize(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("WS_BASE_URL", "")
	t.Setenv("PAGE_SIZE", "0")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for PAGE_SIZE=0")
	}
}
