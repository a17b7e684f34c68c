package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage/file"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage/storagetest"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
)

// Compile-time interface check
var _ storage.Backend = (*file.Backend)(nil)

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return file.New(file.Config{Dir: t.TempDir()})
	})
}

func TestSections_AreIndependent(t *testing.T) {
	b := file.New(file.Config{Dir: t.TempDir()})
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveWaypoints("srv", []waypoint.Waypoint{waypoint.New(1, 2, 3)}))
	s := radar.DefaultSettings()
	s.X = 77
	require.NoError(t, b.SaveSettings("srv", s))

	items, err := b.LoadWaypoints("srv")
	require.NoError(t, err)
	require.Len(t, items, 1, "saving settings must keep waypoints")

	got, found, err := b.LoadSettings("srv")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 77, got.X)
}

func TestPath_SanitizesKey(t *testing.T) {
	dir := t.TempDir()
	b := file.New(file.Config{Dir: dir})

	assert.Equal(t, filepath.Join(dir, "world_Alpha_1.json"), b.Path("world:Alpha/1"))
	assert.Equal(t, filepath.Join(dir, "default.json"), b.Path(""))
}

func TestInit_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "radar")
	b := file.New(file.Config{Dir: dir})
	require.NoError(t, b.Init())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	b := file.New(file.Config{Dir: dir})
	require.NoError(t, os.WriteFile(b.Path("bad"), []byte(`{not json`), 0644))

	_, _, err := b.LoadSettings("bad")
	assert.Error(t, err)
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	b := file.New(file.Config{Dir: dir})
	require.NoError(t, b.SaveSettings("k", radar.DefaultSettings()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}
