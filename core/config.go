package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default endpoints match a local development backend.
const (
	DefaultAPIBaseURL = "http://localhost:5000/api"
	DefaultWSBaseURL  = "ws://localhost:5000/api"
)

// Config holds all configuration values for the client.
type Config struct {
	// Backend endpoints
	APIBaseURL string // Base URL for REST calls (e.g., http://localhost:5000/api)
	WSBaseURL  string // Base URL for the push channel (e.g., ws://localhost:5000/api)

	// View configuration
	PageSize int // Records per page requested from monitored collections

	// HTTP configuration
	HTTPTimeout          time.Duration // Timeout for REST calls (generate, upload)
	AllowSelfSignedCerts bool

	// Local paths
	DownloadsDir string // Where downloaded dataset artifacts are written
	JournalPath  string // SQLite activity journal ("" disables the journal)
	LogFile      string // Structured log output file

	// Upload limits
	MaxFileSize int64 // Maximum size of an offered config file in bytes
}

// LoadConfig loads configuration from environment variables. Every value has
// a development default, so a bare environment points the client at a local
// backend. Call godotenv.Load before this to honor a .env file.
func LoadConfig() (*Config, error) {
	apiBase := strings.TrimRight(GetEnvOrDefault("API_BASE_URL", DefaultAPIBaseURL), "/")
	wsBase := strings.TrimRight(GetEnvOrDefault("WS_BASE_URL", DefaultWSBaseURL), "/")

	if err := validateBaseURL(apiBase, "API_BASE_URL", "http", "https"); err != nil {
		return nil, err
	}
	if err := validateBaseURL(wsBase, "WS_BASE_URL", "ws", "wss"); err != nil {
		return nil, err
	}

	pageSize := ParseIntEnv("PAGE_SIZE", 10)
	if pageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", pageSize)
	}

	return &Config{
		APIBaseURL:           apiBase,
		WSBaseURL:            wsBase,
		PageSize:             pageSize,
		HTTPTimeout:          ParseDurationEnv("HTTP_TIMEOUT", 60),
		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
		DownloadsDir:         GetEnvOrDefault("DOWNLOADS_DIR", "./downloads"),
		JournalPath:          GetEnvOrDefault("JOURNAL_DB_PATH", "./activity.db"),
		LogFile:              GetEnvOrDefault("LOG_FILE", "client.log"),
		// 5MB matches the backend's upload limit
		MaxFileSize: ParseInt64Env("MAX_FILE_SIZE", 5*1024*1024),
	}, nil
}

// validateBaseURL checks that a base URL parses and uses an allowed scheme.
func validateBaseURL(raw, varName string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidBaseURL(varName, raw, err.Error())
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return ErrInvalidBaseURL(varName, raw, "missing host")
			}
			return nil
		}
	}
	return ErrInvalidBaseURL(varName, raw,
		fmt.Sprintf("scheme must be one of %v", schemes))
}

// GetHTTPClient returns an HTTP client configured with TLS settings based on
// AllowSelfSignedCerts. All REST calls to the backend should use this client
// so the TLS configuration is respected.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with the configured HTTPTimeout.
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, cfg.HTTPTimeout)
}
