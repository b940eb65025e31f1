package main

import (
	"encoding/json"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCommand_JSON(t *testing.T) {
	output, err := executeCommand(t, "extract", fixturePath(t, "central_page1.json"))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &fields))
	assert.Equal(t, "https://central.co.th/page1", fields["requestedUrl"])
	assert.Equal(t, false, fields["audit.viewport"])
	assert.Equal(t, 3412.5, fields["audit.first-contentful-paint"])
	assert.NotContains(t, fields, "audit.manual-check")

	assert.True(t, strings.HasPrefix(strings.TrimSpace(output), "{\n  \"requestedUrl\""), "metadata comes first")
}

func TestExtractCommand_HTMLMatchesJSON(t *testing.T) {
	fromJSON, err := executeCommand(t, "extract", fixturePath(t, "central_page1.json"))
	require.NoError(t, err)
	fromHTML, err := executeCommand(t, "extract", fixturePath(t, "central_page1.html"))
	require.NoError(t, err)

	assert.JSONEq(t, fromJSON, fromHTML)
}

func TestExtractCommand_Table(t *testing.T) {
	output, err := executeCommand(t, "extract", "--table", fixturePath(t, "central_page1.json"))
	require.NoError(t, err)

	assert.Contains(t, output, "ROW for central.co.th")
	assert.Contains(t, output, "audit.is-on-https = true")
}

func TestExtractCommand_Malformed(t *testing.T) {
	_, err := executeCommand(t, "extract", fixturePath(t, "malformed.json"))
	assert.Error(t, err)
}

func TestExtractCommand_MissingArgument(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "extract")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "accepts 1 arg(s), received 0")
}
