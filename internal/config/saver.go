package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// saveConfig is the marshaling intermediary that uses string durations.
type saveConfig struct {
	Adapters    saveAdaptersConfig    `json:"adapters" yaml:"adapters" toml:"adapters"`
	Coordinator saveCoordinatorConfig `json:"coordinator" yaml:"coordinator" toml:"coordinator"`
	Keymap      rawKeymapConfig       `json:"keymap" yaml:"keymap" toml:"keymap"`
	UI          saveUIConfig          `json:"ui" yaml:"ui" toml:"ui"`
	History     saveHistoryConfig     `json:"history" yaml:"history" toml:"history"`
	Metrics     rawMetricsConfig      `json:"metrics,omitempty" yaml:"metrics,omitempty" toml:"metrics,omitempty"`
}

type saveAdaptersConfig struct {
	ArtifactDir string          `json:"artifactDir,omitempty" yaml:"artifactDir,omitempty" toml:"artifactDir,omitempty"`
	LexiconPath string          `json:"lexiconPath,omitempty" yaml:"lexiconPath,omitempty" toml:"lexiconPath,omitempty"`
	Enabled     map[string]bool `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Default     string          `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
}

type saveCoordinatorConfig struct {
	PollInterval string `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty" toml:"pollInterval,omitempty"`
}

type saveUIConfig struct {
	ShowFooter *bool          `json:"showFooter" yaml:"showFooter" toml:"showFooter"`
	Theme      rawThemeConfig `json:"theme" yaml:"theme" toml:"theme"`
}

type saveHistoryConfig struct {
	Enabled *bool  `json:"enabled" yaml:"enabled" toml:"enabled"`
	DBPath  string `json:"dbPath,omitempty" yaml:"dbPath,omitempty" toml:"dbPath,omitempty"`
	Limit   int    `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"`
}

// toSaveConfig converts Config to the serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Adapters: saveAdaptersConfig{
			ArtifactDir: cfg.Adapters.ArtifactDir,
			LexiconPath: cfg.Adapters.LexiconPath,
			Enabled:     cfg.Adapters.Enabled,
			Default:     cfg.Adapters.Default,
		},
		Coordinator: saveCoordinatorConfig{
			PollInterval: cfg.Coordinator.PollInterval.String(),
		},
		Keymap: rawKeymapConfig{Overrides: cfg.Keymap.Overrides},
		UI: saveUIConfig{
			ShowFooter: &cfg.UI.ShowFooter,
			Theme:      rawThemeConfig{Name: cfg.UI.Theme.Name, Overrides: cfg.UI.Theme.Overrides},
		},
		History: saveHistoryConfig{
			Enabled: &cfg.History.Enabled,
			DBPath:  cfg.History.DBPath,
			Limit:   cfg.History.Limit,
		},
		Metrics: rawMetricsConfig{Addr: cfg.Metrics.Addr},
	}
}

// Save writes the config to ConfigPath.
func Save(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("no config path")
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path in the format its extension names. JSON files
// keep top-level keys this version does not know about.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	sc := toSaveConfig(cfg)

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(sc)
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(sc)
		data = buf.Bytes()
	case ".json", "":
		data, err = marshalJSONPreserving(path, sc)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// marshalJSONPreserving merges sc over the top-level keys already in path.
func marshalJSONPreserving(path string, sc saveConfig) ([]byte, error) {
	merged := map[string]json.RawMessage{}
	if existing, err := os.ReadFile(path); err == nil {
		// A corrupt file is overwritten rather than blocking the save.
		_ = json.Unmarshal(existing, &merged)
	}

	ours, err := json.Marshal(sc)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(ours, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.MarshalIndent(merged, "", "  ")
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	return SaveThemeTo(ConfigPath(), themeName)
}

// SaveThemeTo updates only the theme name in the config at path.
func SaveThemeTo(path, themeName string) error {
	if path == "" {
		return fmt.Errorf("no config path")
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	return SaveTo(path, cfg)
}
