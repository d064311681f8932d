package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lol-blacklist/internal/model"

	"gopkg.in/yaml.v3"
)

// LoadSettings reads the settings file. A missing file yields defaults with no error;
// an unreadable one yields defaults together with the parse error.
func LoadSettings(path string) (model.Settings, error) {
	settings := model.DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &settings)
	} else {
		err = json.Unmarshal(data, &settings)
	}
	if err != nil {
		return model.DefaultSettings(), fmt.Errorf("parse settings %s: %w", path, err)
	}
	settings.Region = model.ParseRegion(string(settings.Region))
	return settings, nil
}

// SaveSettings writes the whole settings file.
func SaveSettings(path string, settings model.Settings) error {
	settings.Region = model.ParseRegion(string(settings.Region))

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(&settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	// The file holds the API key.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
