package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Settings are the user preferences remembered between runs
type Settings struct {
	TrainURL string `json:"trainUrl,omitempty"`
}

// settingsDir is overridden in tests
var settingsDir = func() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine user config directory")
	}
	return filepath.Join(dir, "boolnet"), nil
}

// SettingsPath returns the location of the settings file
func SettingsPath() (string, error) {
	dir, err := settingsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// LoadSettings reads the settings file. A missing file yields empty settings.
func LoadSettings() (Settings, error) {
	var s Settings
	path, err := SettingsPath()
	if err != nil {
		return s, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, errors.Wrapf(err, "failed to read settings %q", path)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "failed to parse settings %q", path)
	}
	return s, nil
}

// SaveSettings writes the settings file, creating its directory if needed
func SaveSettings(s Settings) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create settings directory for %q", path)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write settings %q", path)
	}
	return nil
}
