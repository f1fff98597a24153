package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveGlobal saves a key-value pair to ~/.config/reldocs/config.yaml.
func SaveGlobal(key, value string) error {
	if !knownKeys[key] {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(KnownKeys(), ", "))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", globalConfigDir, globalConfigFile)
	return saveTo(configPath, key, value, 0o600)
}

// SaveLocal saves a key-value pair to .reldocs.yaml in the git root.
func SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if !knownKeys[key] {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(KnownKeys(), ", "))
	}

	// Local config is shared and should be readable
	return saveTo(filepath.Join(gitRoot, localConfigName), key, value, 0o644)
}

func saveTo(configPath, key, value string, mode os.FileMode) error {
	var existing map[string]any
	if data, readErr := os.ReadFile(configPath); readErr == nil {
		_ = yaml.Unmarshal(data, &existing)
	}
	if existing == nil {
		existing = make(map[string]any)
	}

	existing[key] = parseValue(value)

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, mode)
}

// DeleteGlobalKey removes a key from the global config.
func DeleteGlobalKey(key string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", globalConfigDir, globalConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil // Nothing to delete
	}

	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil
	}

	delete(existing, key)

	data, err = yaml.Marshal(existing)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}
