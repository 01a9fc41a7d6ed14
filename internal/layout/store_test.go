package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "presets")
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Empty(t, s.List())
}

func TestNewStoreRejectsEmptyDir(t *testing.T) {
	_, err := NewStore("", nil)
	require.Error(t, err)
}

func TestRecordAndGet(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	p, err := s.Record("Edit Layout")
	require.NoError(t, err)
	assert.Equal(t, "Edit Layout", p.Name)
	assert.Equal(t, "Edit_Layout.preset", p.File)
	assert.False(t, p.SavedAt.IsZero())

	got, ok := s.Get("Edit Layout")
	require.True(t, ok)
	assert.Equal(t, p.File, got.File)
}

func TestManifestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	_, err = s.Record("Grading")
	require.NoError(t, err)
	_, err = s.Record("Audio Mix")
	require.NoError(t, err)

	reopened, err := NewStore(dir, nil)
	require.NoError(t, err)
	presets := reopened.List()
	require.Len(t, presets, 2)
	assert.Equal(t, "Audio Mix", presets[0].Name)
	assert.Equal(t, "Grading", presets[1].Name)
}

func TestAdoptsLooseFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dropped.preset"), []byte("x"), 0o644))

	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	p, ok := s.Get("Dropped")
	require.True(t, ok)
	assert.Equal(t, "Dropped.preset", p.File)
}

func TestRemoveDeletesFileAndEntry(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	p, err := s.Record("Temp")
	require.NoError(t, err)
	path := filepath.Join(dir, p.File)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, s.Remove("Temp"))
	_, ok := s.Get("Temp")
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveUnknownPreset(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Error(t, s.Remove("nope"))
}

func TestPresetPathSanitizesNames(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	path := s.PresetPath("My Layout/|?*2")
	assert.Equal(t, "My_Layout2.preset", filepath.Base(path))

	fallback := s.PresetPath("///")
	assert.Equal(t, "preset.preset", filepath.Base(fallback))
}
