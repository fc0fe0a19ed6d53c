package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Adapters    AdaptersConfig    `json:"adapters"`
	Coordinator CoordinatorConfig `json:"coordinator"`
	Keymap      KeymapConfig      `json:"keymap"`
	UI          UIConfig          `json:"ui"`
	History     HistoryConfig     `json:"history"`
	Metrics     MetricsConfig     `json:"metrics"`
}

// AdaptersConfig configures which adapters exist and where they write.
type AdaptersConfig struct {
	ArtifactDir string          `json:"artifactDir"` // generated images and clips
	LexiconPath string          `json:"lexiconPath"` // optional sentiment lexicon
	Enabled     map[string]bool `json:"enabled"`     // adapter name -> enabled, missing = enabled
	Default     string          `json:"default"`     // adapter selected at startup
}

// CoordinatorConfig tunes the execution coordinator.
type CoordinatorConfig struct {
	PollInterval time.Duration `json:"pollInterval"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool        `json:"showFooter"`
	Theme      ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name      string            `json:"name"`
	Overrides map[string]string `json:"overrides"` // palette key -> hex color
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath"`
	Limit   int    `json:"limit"` // rows shown by default
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `json:"addr"` // empty disables the listener
}

const (
	defaultPollInterval = 50 * time.Millisecond
	defaultHistoryLimit = 20
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Adapters: AdaptersConfig{
			ArtifactDir: "assets",
			Enabled:     make(map[string]bool),
		},
		Coordinator: CoordinatorConfig{
			PollInterval: defaultPollInterval,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter: true,
			Theme:      ThemeConfig{Name: "default", Overrides: make(map[string]string)},
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "~/" + configDir + "/history.db",
			Limit:   defaultHistoryLimit,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Coordinator.PollInterval <= 0 {
		c.Coordinator.PollInterval = defaultPollInterval
	}
	if c.History.Limit <= 0 {
		c.History.Limit = defaultHistoryLimit
	}
	if c.Adapters.ArtifactDir == "" {
		c.Adapters.ArtifactDir = "assets"
	}
	if c.UI.Theme.Name == "" {
		c.UI.Theme.Name = "default"
	}
	if c.UI.Theme.Overrides == nil {
		c.UI.Theme.Overrides = make(map[string]string)
	}
	if c.Keymap.Overrides == nil {
		c.Keymap.Overrides = make(map[string]string)
	}
	if c.Adapters.Enabled == nil {
		c.Adapters.Enabled = make(map[string]bool)
	}
	return nil
}
