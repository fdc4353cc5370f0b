package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Settings(t *testing.T) {
	store := New(t.TempDir())

	settings, err := store.ReadSettings()
	require.NoError(t, err)
	assert.Empty(t, settings.DisabledEntries)

	loc := time.FixedZone("CET", 3600)
	settings.DisabledEntries = []time.Time{
		time.Date(2024, 1, 2, 13, 0, 0, 0, loc),
		time.Date(2024, 1, 2, 14, 15, 0, 0, loc),
	}
	require.NoError(t, store.WriteSettings(settings))

	read, err := store.ReadSettings()
	require.NoError(t, err)
	require.Len(t, read.DisabledEntries, 2)
	assert.True(t, read.DisabledEntries[0].Equal(settings.DisabledEntries[0]))
	assert.True(t, read.DisabledEntries[1].Equal(settings.DisabledEntries[1]))
}

func TestStore_Settings_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("not json"), 0644))

	_, err := New(dir).ReadSettings()
	assert.Error(t, err)
}

func TestStore_CourseCache(t *testing.T) {
	store := New(t.TempDir())

	_, ok := store.ReadCourseCache()
	assert.False(t, ok)

	payload := []byte(`{"courses":[]}`)
	require.NoError(t, store.WriteCourseCache(payload))

	read, ok := store.ReadCourseCache()
	require.True(t, ok)
	assert.Equal(t, payload, read)
}
