package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/audit-sheets/internal/config"
)

// executeCommand runs rootCmd in-process with fresh flag state and returns its stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// clearEnv keeps a developer's .env from reaching the commands under test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvSheetID,
		config.EnvServiceAccountEmail,
		config.EnvPrivateKey,
		config.EnvManifest,
		config.EnvDatabaseURL,
	} {
		t.Setenv(key, "")
	}
}

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "internal", "report", "testdata", name))
	require.NoError(t, err)
	return path
}

// writeManifest writes a manifest.json listing the given fixtures
func writeManifest(t *testing.T, fixtures ...string) string {
	t.Helper()
	entries := make([]map[string]string, 0, len(fixtures))
	for _, name := range fixtures {
		entries = append(entries, map[string]string{"jsonPath": fixturePath(t, name)})
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
