package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"listpick/internal/domain"
	"listpick/internal/eventbus"
)

// Selection modes accepted in the config file and on the command line
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// ErrInvalidMode is returned for an unknown selection mode
var ErrInvalidMode = errors.New("invalid selection mode")

// Config represents the application configuration
type Config struct {
	Version           int          `toml:"version"`
	Title             string       `toml:"title"`
	Mode              string       `toml:"mode"`
	RememberSelection bool         `toml:"remember_selection"`
	StateFile         string       `toml:"state_file,omitempty"`
	Items             []ItemConfig `toml:"items"`
	UISettings        UISettings   `toml:"ui"`
}

// ItemConfig is one [[items]] entry
type ItemConfig struct {
	Label    string `toml:"label"`
	Value    string `toml:"value,omitempty"`
	Selected bool   `toml:"selected,omitempty"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowIndex     bool   `toml:"show_index"`
	MaxHeight     int    `toml:"max_height"`
	CursorColor   string `toml:"cursor_color"`
	SelectedColor string `toml:"selected_color"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Title:   "listpick",
		Mode:    ModeSingle,
		UISettings: UISettings{
			MaxHeight:     20,
			CursorColor:   "99",
			SelectedColor: "78",
		},
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case ModeSingle, ModeMulti:
		c.Mode = strings.ToLower(c.Mode)
	case "multiple":
		c.Mode = ModeMulti
	default:
		return fmt.Errorf("%q: %w", c.Mode, ErrInvalidMode)
	}
	if c.UISettings.MaxHeight <= 0 {
		c.UISettings.MaxHeight = 20
	}
	return nil
}

// BuildItems turns the configured entries into items
func (c *Config) BuildItems() []*domain.Item {
	items := make([]*domain.Item, 0, len(c.Items))
	for _, ic := range c.Items {
		if strings.TrimSpace(ic.Label) == "" {
			continue
		}
		it := domain.NewItem(ic.Label, ic.Value)
		it.Preselected = ic.Selected
		items = append(items, it)
	}
	return items
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	LoadSelection(path string) (*SelectionState, error)
	SaveSelection(path string, values []string) error
	DefaultPath() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "listpick", "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// DefaultPath returns the per-user config file location
func (cs *configService) DefaultPath() string {
	return cs.filePath
}

// Load loads the per-user configuration, or defaults when there is none
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:  path,
			Items: len(cfg.Items),
		})
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: path})
	}

	return nil
}
