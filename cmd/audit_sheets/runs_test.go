package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsCommand_InvalidRunID(t *testing.T) {
	clearEnv(t)

	_, err := executeCommand(t, "runs", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run id")
}

func TestRunsCommand_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := executeCommand(t, "runs", "6f1c1f36-1d0c-4b7a-9b3e-2f1d7c9a0b11")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}
