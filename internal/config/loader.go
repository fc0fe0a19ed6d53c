package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	configDir  = ".config/modeldeck"
	configFile = "config.json"
)

// testConfigPath overrides ConfigPath in tests.
var testConfigPath string

// SetTestConfigPath points Load and Save at path. Tests only.
func SetTestConfigPath(path string) { testConfigPath = path }

// ResetTestConfigPath undoes SetTestConfigPath.
func ResetTestConfigPath() { testConfigPath = "" }

// rawConfig is the unmarshaling intermediary. Durations are strings and
// optional booleans are pointers so absent keys keep their defaults.
type rawConfig struct {
	Adapters    rawAdaptersConfig    `json:"adapters" yaml:"adapters" toml:"adapters"`
	Coordinator rawCoordinatorConfig `json:"coordinator" yaml:"coordinator" toml:"coordinator"`
	Keymap      rawKeymapConfig      `json:"keymap" yaml:"keymap" toml:"keymap"`
	UI          rawUIConfig          `json:"ui" yaml:"ui" toml:"ui"`
	History     rawHistoryConfig     `json:"history" yaml:"history" toml:"history"`
	Metrics     rawMetricsConfig     `json:"metrics" yaml:"metrics" toml:"metrics"`
}

type rawAdaptersConfig struct {
	ArtifactDir string          `json:"artifactDir" yaml:"artifactDir" toml:"artifactDir"`
	LexiconPath string          `json:"lexiconPath" yaml:"lexiconPath" toml:"lexiconPath"`
	Enabled     map[string]bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	Default     string          `json:"default" yaml:"default" toml:"default"`
}

type rawCoordinatorConfig struct {
	PollInterval string `json:"pollInterval" yaml:"pollInterval" toml:"pollInterval"`
}

type rawKeymapConfig struct {
	Overrides map[string]string `json:"overrides" yaml:"overrides" toml:"overrides"`
}

type rawUIConfig struct {
	ShowFooter *bool          `json:"showFooter" yaml:"showFooter" toml:"showFooter"`
	Theme      rawThemeConfig `json:"theme" yaml:"theme" toml:"theme"`
}

type rawThemeConfig struct {
	Name      string            `json:"name" yaml:"name" toml:"name"`
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty"`
}

type rawHistoryConfig struct {
	Enabled *bool  `json:"enabled" yaml:"enabled" toml:"enabled"`
	DBPath  string `json:"dbPath" yaml:"dbPath" toml:"dbPath"`
	Limit   *int   `json:"limit" yaml:"limit" toml:"limit"`
}

type rawMetricsConfig struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path. The format follows the
// extension: .json, .yaml/.yml or .toml. If path is empty,
// ~/.config/modeldeck/config.json is used. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
		if path == "" {
			return finish(cfg)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg)
		}
		return nil, err
	}

	var raw rawConfig
	if err := unmarshal(path, data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if err := mergeConfig(cfg, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.Adapters.ArtifactDir = ExpandPath(cfg.Adapters.ArtifactDir)
	cfg.Adapters.LexiconPath = ExpandPath(cfg.Adapters.LexiconPath)
	cfg.History.DBPath = ExpandPath(cfg.History.DBPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshal(path string, data []byte, raw *rawConfig) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, raw)
	case ".toml":
		return toml.Unmarshal(data, raw)
	case ".json", "":
		return json.Unmarshal(data, raw)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) error {
	// Adapters
	if raw.Adapters.ArtifactDir != "" {
		cfg.Adapters.ArtifactDir = raw.Adapters.ArtifactDir
	}
	if raw.Adapters.LexiconPath != "" {
		cfg.Adapters.LexiconPath = raw.Adapters.LexiconPath
	}
	for k, v := range raw.Adapters.Enabled {
		cfg.Adapters.Enabled[k] = v
	}
	if raw.Adapters.Default != "" {
		cfg.Adapters.Default = raw.Adapters.Default
	}

	// Coordinator
	if raw.Coordinator.PollInterval != "" {
		d, err := time.ParseDuration(raw.Coordinator.PollInterval)
		if err != nil {
			return fmt.Errorf("coordinator.pollInterval: %w", err)
		}
		cfg.Coordinator.PollInterval = d
	}

	// Keymap
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.Theme.Name != "" {
		cfg.UI.Theme.Name = raw.UI.Theme.Name
	}
	for k, v := range raw.UI.Theme.Overrides {
		cfg.UI.Theme.Overrides[k] = v
	}

	// History
	if raw.History.Enabled != nil {
		cfg.History.Enabled = *raw.History.Enabled
	}
	if raw.History.DBPath != "" {
		cfg.History.DBPath = raw.History.DBPath
	}
	if raw.History.Limit != nil {
		cfg.History.Limit = *raw.History.Limit
	}

	// Metrics
	if raw.Metrics.Addr != "" {
		cfg.Metrics.Addr = raw.Metrics.Addr
	}
	return nil
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// Dir returns the directory holding the config file.
func Dir() string {
	if p := ConfigPath(); p != "" {
		return filepath.Dir(p)
	}
	return ""
}
