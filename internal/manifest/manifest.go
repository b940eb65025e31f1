// Package manifest parses the job manifest that lists the audit reports produced by a CI run.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrEmptyManifest is returned when no manifest content was supplied
	ErrEmptyManifest = fmt.Errorf("manifest is empty")
	// ErrInvalidManifest is returned when the manifest is not a JSON list of entries
	ErrInvalidManifest = fmt.Errorf("invalid manifest")
)

// Entry points at one audit report. Summary holds optional precomputed category scores.
type Entry struct {
	JSONPath string         `json:"jsonPath"`
	HTMLPath string         `json:"htmlPath,omitempty"`
	Summary  map[string]any `json:"summary,omitempty"`
}

// Name returns the path that best identifies the entry in logs
func (e Entry) Name() string {
	if e.JSONPath != "" {
		return e.JSONPath
	}
	return e.HTMLPath
}

// Parse decodes a JSON-serialized manifest. Each entry needs a jsonPath or an htmlPath.
func Parse(data []byte) ([]Entry, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyManifest
	}

	var entries *[]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: manifest is null", ErrInvalidManifest)
	}

	for i, e := range *entries {
		if e.JSONPath == "" && e.HTMLPath == "" {
			return nil, fmt.Errorf("%w: entry %d has neither jsonPath nor htmlPath", ErrInvalidManifest, i)
		}
	}

	return *entries, nil
}

// LoadFile reads and parses a manifest.json written by the audit runner
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file %s: %w", path, err)
	}
	return Parse(data)
}
