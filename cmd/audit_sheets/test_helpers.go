package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the audit_sheets binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "audit_sheets"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/audit_sheets ./cmd/audit_sheets'", binaryPath)
	}

	return binaryPath
}
