// Package settings loads and persists user preferences as a yaml overlay on
// built-in defaults.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// settingsFilePath returns the path of the settings file, creating the
// containing directory if needed.
func settingsFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, "labeledit")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "settings.yml"), nil
}

// GetEffectiveSettings returns the effective settings (defaults overlaid with
// file overrides if any). If anything goes wrong, it returns defaults.
func GetEffectiveSettings() Settings {
	settings := defaultSettings
	path, err := settingsFilePath()
	if err != nil {
		return settings
	}
	if _, err := os.Stat(path); err != nil {
		// no file or other stat error -> return defaults
		return settings
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings
	}
	if v, ok := m["marker_color"]; ok {
		if vs, oks := v.(string); oks {
			settings.MarkerColor = vs
		}
	}
	if v, ok := m["marker_size"]; ok {
		if vi, oki := v.(int); oki {
			settings.MarkerSize = vi
		}
	}
	if v, ok := m["marker_thickness"]; ok {
		if vi, oki := v.(int); oki {
			settings.MarkerThickness = vi
		}
	}
	if v, ok := m["frame_cache_frames"]; ok {
		if vi, oki := v.(int); oki {
			settings.FrameCacheFrames = vi
		}
	}
	if v, ok := m["instance_id"]; ok {
		if vs, oks := v.(string); oks {
			settings.InstanceID = vs
		}
	}
	return settings
}

// Save writes the settings file, replacing any previous contents.
func Save(s Settings) error {
	path, err := settingsFilePath()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// EnsureInstanceID generates and persists an instance ID on first run,
// returning the effective settings either way.
func EnsureInstanceID() (Settings, error) {
	s := GetEffectiveSettings()
	if s.InstanceID != "" {
		return s, nil
	}
	s.InstanceID = uuid.New().String()
	if err := Save(s); err != nil {
		return s, fmt.Errorf("failed to persist instance id: %w", err)
	}
	return s, nil
}
