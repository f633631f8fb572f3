package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsEmptyPathReturnsDefaults(t *testing.T) {
	opts, err := LoadOptions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoadOptionsOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "watch_rooms:\n  - Gudang\nafter_hours_start: 18\nafter_hours_end: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gudang"}, opts.WatchRooms)
	assert.Equal(t, 18, opts.AfterHoursStart)
	assert.Equal(t, 5, opts.AfterHoursEnd)
}

func TestLoadOptionsMissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOptionsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch_rooms: {nope"), 0o644))

	_, err := LoadOptions(path)
	assert.Error(t, err)
}
