package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"listpick/internal/eventbus"
)

// SelectionState is the remembered selection, stored next to the config
type SelectionState struct {
	Values []string `toml:"values"`
}

// StatePath resolves where the selection of cfg, loaded from configPath, is kept
func StatePath(cfg *Config, configPath string) string {
	if cfg.StateFile != "" {
		if filepath.IsAbs(cfg.StateFile) || configPath == "" {
			return cfg.StateFile
		}
		return filepath.Join(filepath.Dir(configPath), cfg.StateFile)
	}
	if configPath == "" {
		return ".listpick-state.toml"
	}
	return filepath.Join(filepath.Dir(configPath), ".listpick-state.toml")
}

// LoadSelection reads a remembered selection. A missing file is an empty selection.
func (cs *configService) LoadSelection(path string) (*SelectionState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &SelectionState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection state: %w", err)
	}

	var st SelectionState
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse selection state: %w", err)
	}
	return &st, nil
}

// SaveSelection writes the selected values
func (cs *configService) SaveSelection(path string, values []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := toml.Marshal(SelectionState{Values: values})
	if err != nil {
		return fmt.Errorf("failed to marshal selection state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write selection state: %w", err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.SelectionSavedEvent{Path: path, Values: values})
	}
	return nil
}
