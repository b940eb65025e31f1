package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCommand_DryRun(t *testing.T) {
	clearEnv(t)
	manifestPath := writeManifest(t, "central_page1.json", "central_page2_v10.json")

	output, err := executeCommand(t, "sync", "--dry-run", "--manifest-file", manifestPath)
	require.NoError(t, err)

	assert.Contains(t, output, "SYNC SUMMARY")
	assert.Contains(t, output, "Appended:  2")
	assert.Contains(t, output, "central.co.th: 2 rows")
	assert.Contains(t, output, "ALL ENTRIES SYNCHRONIZED")
}

func TestSyncCommand_FailedEntryExitsNonZero(t *testing.T) {
	clearEnv(t)
	manifestPath := writeManifest(t, "central_page1.json", "malformed.json", "central_page2_v10.json")

	output, err := executeCommand(t, "sync", "--dry-run", "--manifest-file", manifestPath)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "1 of 3 entries failed")
	assert.Contains(t, output, "Appended:  2")
	assert.Contains(t, output, "FAILED ENTRIES")
	assert.Contains(t, output, "malformed.json")
}

func TestSyncCommand_ManifestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MANIFEST", fmt.Sprintf(`[{"jsonPath": %q}]`, fixturePath(t, "central_page1.json")))

	output, err := executeCommand(t, "sync", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "Appended:  1")
}

func TestSyncCommand_ConfigFile(t *testing.T) {
	clearEnv(t)
	manifestPath := writeManifest(t, "central_page1.json")

	cfgPath := filepath.Join(t.TempDir(), "audit.yaml")
	content := fmt.Sprintf("manifest_file: %s\ndry_run: true\n", manifestPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	output, err := executeCommand(t, "sync", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, output, "Appended:  1")
}

func TestSyncCommand_MissingCredentials(t *testing.T) {
	clearEnv(t)
	manifestPath := writeManifest(t, "central_page1.json")

	_, err := executeCommand(t, "sync", "--manifest-file", manifestPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheet_id")
}

func TestSyncCommand_MissingManifest(t *testing.T) {
	clearEnv(t)

	_, err := executeCommand(t, "sync", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest")
}

func TestSyncCommand_EmptyManifest(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))

	_, err := executeCommand(t, "sync", "--dry-run", "--manifest-file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read manifest")
}

func TestSyncCommand_NoEntries(t *testing.T) {
	clearEnv(t)
	t.Setenv("MANIFEST", "[]")

	output, err := executeCommand(t, "sync", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "Entries:   0")
}
