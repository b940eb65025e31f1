package config

import (
	"os"
	"strings"
)

// Environment variables read by FromEnv. The names match the CI workflow that runs the audits.
const (
	EnvSheetID             = "GOOGLE_SHEET_ID"
	EnvServiceAccountEmail = "GOOGLE_SERVICE_ACCOUNT_EMAIL"
	EnvPrivateKey          = "GOOGLE_PRIVATE_KEY"
	EnvManifest            = "MANIFEST"
	EnvDatabaseURL         = "DATABASE_URL"
)

// FromEnv builds a Config from the process environment
func FromEnv() Config {
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from an arbitrary variable lookup
func FromLookup(getenv func(string) string) Config {
	return Config{
		SheetID:             strings.TrimSpace(getenv(EnvSheetID)),
		ServiceAccountEmail: strings.TrimSpace(getenv(EnvServiceAccountEmail)),
		PrivateKey:          NormalizePrivateKey(getenv(EnvPrivateKey)),
		Manifest:            getenv(EnvManifest),
		DatabaseURL:         strings.TrimSpace(getenv(EnvDatabaseURL)),
	}
}

// NormalizePrivateKey turns a key stored on one line (with literal "\n" sequences, possibly
// wrapped in quotes) back into PEM text ending in a single newline.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) >= 2 && key[0] == '"' && key[len(key)-1] == '"' {
		key = key[1 : len(key)-1]
	}
	key = strings.ReplaceAll(key, `\r\n`, "\n")
	key = strings.ReplaceAll(key, `\n`, "\n")
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return key + "\n"
}
