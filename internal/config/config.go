// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults applied by MergeWithDefaults when neither the file nor a flag sets a value.
const (
	DefaultPort              = "8080"
	DefaultBulkLimit         = 200
	DefaultCertificatePrefix = "CERT"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Storage
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL
	SnapshotPath string `json:"snapshot_path,omitempty"` // JSON snapshot for the in-memory store

	// Server
	Port string `json:"port,omitempty"` // HTTP listen port

	// Authorization
	JurisdictionMap string `json:"jurisdiction_map,omitempty"` // Path to province -> city map; embedded default when empty

	// Lifecycle
	TrustedDocumentHosts []string `json:"trusted_document_hosts,omitempty"` // Host substrings accepted for verification documents
	BulkLimit            int      `json:"bulk_limit,omitempty"`             // Maximum ids per bulk request
	CertificatePrefix    string   `json:"certificate_prefix,omitempty"`     // Prefix for generated certificate numbers
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.DatabaseURL != "" && c.SnapshotPath != "" {
		return fmt.Errorf("config error: 'database_url' and 'snapshot_path' are mutually exclusive")
	}

	if c.BulkLimit < 0 {
		return fmt.Errorf("config error: 'bulk_limit' must be non-negative")
	}

	if strings.ContainsAny(c.CertificatePrefix, " \t\n") {
		return fmt.Errorf("config error: 'certificate_prefix' must not contain whitespace")
	}

	for _, host := range c.TrustedDocumentHosts {
		if strings.TrimSpace(host) == "" {
			return fmt.Errorf("config error: 'trusted_document_hosts' must not contain empty entries")
		}
	}

	// Validate file paths exist (if specified)
	if c.JurisdictionMap != "" {
		if _, err := os.Stat(c.JurisdictionMap); os.IsNotExist(err) {
			return fmt.Errorf("config error: jurisdiction map not found: %s", c.JurisdictionMap)
		}
	}
	if c.SnapshotPath != "" {
		if _, err := os.Stat(c.SnapshotPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: snapshot file not found: %s", c.SnapshotPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the package defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SnapshotPath == "" {
		result.SnapshotPath = defaults.SnapshotPath
	}
	if result.Port == "" {
		result.Port = defaults.Port
	}
	if result.JurisdictionMap == "" {
		result.JurisdictionMap = defaults.JurisdictionMap
	}
	if result.CertificatePrefix == "" {
		result.CertificatePrefix = defaults.CertificatePrefix
	}

	// Slice fields
	if len(result.TrustedDocumentHosts) == 0 && len(defaults.TrustedDocumentHosts) > 0 {
		result.TrustedDocumentHosts = append([]string(nil), defaults.TrustedDocumentHosts...)
	}

	// Int fields: use default if zero
	if result.BulkLimit == 0 {
		result.BulkLimit = defaults.BulkLimit
	}

	if result.Port == "" {
		result.Port = DefaultPort
	}
	if result.BulkLimit == 0 {
		result.BulkLimit = DefaultBulkLimit
	}
	if result.CertificatePrefix == "" {
		result.CertificatePrefix = DefaultCertificatePrefix
	}

	return result
}

// FromEnv returns the settings available from the environment:
// DATABASE_URL, PORT and JURISDICTION_MAP.
func FromEnv() Config {
	return Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            os.Getenv("PORT"),
		JurisdictionMap: os.Getenv("JURISDICTION_MAP"),
	}
}
