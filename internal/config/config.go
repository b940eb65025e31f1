// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/audit-sheets/internal/manifest"
)

// Config is the run configuration. It is assembled once at startup from a config file,
// the environment and CLI flags (in increasing priority) and validated before the first
// report is processed.
type Config struct {
	// Destination store
	SheetID             string `json:"sheet_id,omitempty" yaml:"sheet_id,omitempty" validate:"required_unless=DryRun true"`
	ServiceAccountEmail string `json:"service_account_email,omitempty" yaml:"service_account_email,omitempty" validate:"required_unless=DryRun true"`
	PrivateKey          string `json:"private_key,omitempty" yaml:"private_key,omitempty" validate:"required_unless=DryRun true"`

	// Input
	Manifest     string `json:"manifest,omitempty" yaml:"manifest,omitempty" validate:"required_without=ManifestFile"`       // JSON-serialized manifest
	ManifestFile string `json:"manifest_file,omitempty" yaml:"manifest_file,omitempty" validate:"required_without=Manifest"` // Path to manifest.json

	// Behavior
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL URL for the run ledger (optional)
	DryRun      bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`           // Synchronize against an in-memory copy of the spreadsheet
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Debug logging
}

// LoadConfig loads configuration from a JSON or YAML file (chosen by extension).
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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.PrivateKey = NormalizePrivateKey(cfg.PrivateKey)
	return &cfg, nil
}

// Validate checks that the configuration is complete and consistent
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			names := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				names = append(names, fmt.Sprintf("'%s' (%s)", fieldName(fe.StructField()), fe.Tag()))
			}
			return fmt.Errorf("config error: invalid or missing %s", strings.Join(names, ", "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	if err := validate.Var(c.ServiceAccountEmail, "omitempty,email"); err != nil {
		return fmt.Errorf("config error: 'service_account_email' is not an email address")
	}

	if c.Manifest != "" && c.ManifestFile != "" {
		return fmt.Errorf("config error: 'manifest' and 'manifest_file' are mutually exclusive")
	}

	if c.PrivateKey != "" && !strings.Contains(c.PrivateKey, "PRIVATE KEY-----") {
		return fmt.Errorf("config error: 'private_key' is not a PEM encoded key")
	}

	if c.ManifestFile != "" {
		if _, err := os.Stat(c.ManifestFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: manifest file not found: %s", c.ManifestFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// It is used to layer the environment over a config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.SheetID == "" {
		result.SheetID = defaults.SheetID
	}
	if result.ServiceAccountEmail == "" {
		result.ServiceAccountEmail = defaults.ServiceAccountEmail
	}
	if result.PrivateKey == "" {
		result.PrivateKey = defaults.PrivateKey
	}
	// The manifest sources are alternatives: only inherit when neither is set
	if result.Manifest == "" && result.ManifestFile == "" {
		result.Manifest = defaults.Manifest
		result.ManifestFile = defaults.ManifestFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Bool fields: cannot distinguish unset from false, so either source enables them
	result.DryRun = result.DryRun || defaults.DryRun
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Entries parses the configured manifest
func (c *Config) Entries() ([]manifest.Entry, error) {
	if c.ManifestFile != "" {
		return manifest.LoadFile(c.ManifestFile)
	}
	return manifest.Parse([]byte(c.Manifest))
}

// Redacted returns a copy safe to log
func (c *Config) Redacted() Config {
	r := *c
	if r.PrivateKey != "" {
		r.PrivateKey = "[redacted]"
	}
	if r.DatabaseURL != "" {
		r.DatabaseURL = "[redacted]"
	}
	if len(r.Manifest) > 64 {
		r.Manifest = r.Manifest[:64] + "..."
	}
	return r
}

func fieldName(structField string) string {
	switch structField {
	case "SheetID":
		return "sheet_id"
	case "ServiceAccountEmail":
		return "service_account_email"
	case "PrivateKey":
		return "private_key"
	case "Manifest":
		return "manifest"
	case "ManifestFile":
		return "manifest_file"
	default:
		return structField
	}
}
