package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempSettingsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := settingsDir
	settingsDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { settingsDir = orig })
	return dir
}

func TestLoadSettingsMissingFile(t *testing.T) {
	useTempSettingsDir(t)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Empty(t, s.TrainURL)
}

func TestSaveLoadSettings(t *testing.T) {
	dir := useTempSettingsDir(t)

	require.NoError(t, SaveSettings(Settings{TrainURL: "http://trainer:9000/train"}))
	_, err := os.Stat(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "http://trainer:9000/train", s.TrainURL)
}

func TestLoadSettingsInvalidJSON(t *testing.T) {
	dir := useTempSettingsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{"), 0o644))

	_, err := LoadSettings()
	assert.Error(t, err)
}
