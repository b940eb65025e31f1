package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LighthouseCIManifest(t *testing.T) {
	data := `[
		{
			"url": "https://central.co.th/page1",
			"isRepresentativeRun": true,
			"htmlPath": "/tmp/lhci/central_co_th-page1.html",
			"jsonPath": "/tmp/lhci/central_co_th-page1.json",
			"summary": {"performance": 0.72, "accessibility": 0.98, "seo": 1}
		},
		{"jsonPath": "/tmp/lhci/central_co_th-page2.json"}
	]`

	entries, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "/tmp/lhci/central_co_th-page1.json", entries[0].JSONPath)
	assert.Equal(t, "/tmp/lhci/central_co_th-page1.html", entries[0].HTMLPath)
	assert.Equal(t, 0.72, entries[0].Summary["performance"])
	assert.Nil(t, entries[1].Summary)
	assert.Equal(t, "/tmp/lhci/central_co_th-page2.json", entries[1].Name())
}

func TestParse_Null(t *testing.T) {
	for _, data := range []string{"null", " null\n"} {
		entries, err := Parse([]byte(data))
		assert.ErrorIs(t, err, ErrInvalidManifest)
		assert.Nil(t, entries)
	}

	entries, err := Parse([]byte("[]"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("  \n"))
	assert.ErrorIs(t, err, ErrEmptyManifest)
}

func TestParse_NotAList(t *testing.T) {
	_, err := Parse([]byte(`{"jsonPath": "a.json"}`))
	assert.True(t, errors.Is(err, ErrInvalidManifest))
}

func TestParse_EntryWithoutPaths(t *testing.T) {
	_, err := Parse([]byte(`[{"jsonPath": "a.json"}, {"summary": {}}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidManifest)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestEntry_NameFallsBackToHTML(t *testing.T) {
	e := Entry{HTMLPath: "report.html"}
	assert.Equal(t, "report.html", e.Name())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"jsonPath": "r.json"}]`), 0644))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r.json", entries[0].JSONPath)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read manifest file")
}
