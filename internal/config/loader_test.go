package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Coordinator.PollInterval != 50*time.Millisecond {
		t.Errorf("got poll interval %v, want 50ms", cfg.Coordinator.PollInterval)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if cfg.UI.Theme.Name != "default" {
		t.Errorf("got theme %q, want default", cfg.UI.Theme.Name)
	}
	if cfg.Adapters.ArtifactDir != "assets" {
		t.Errorf("got artifact dir %q, want assets", cfg.Adapters.ArtifactDir)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.json")
	if err != nil {
		t.Errorf("should not error on missing file: %v", err)
	}
	if cfg == nil {
		t.Fatal("should return default config")
	}
	if cfg.History.Limit != 20 {
		t.Errorf("got limit %d, want 20", cfg.History.Limit)
	}
}

func TestLoadFrom_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
				"adapters": {"default": "Text-to-Image", "enabled": {"Text-to-Video": false}},
				"coordinator": {"pollInterval": "20ms"},
				"ui": {"showFooter": false, "theme": {"name": "blue", "overrides": {"primary": "#112233"}}},
				"history": {"enabled": false, "limit": 5},
				"metrics": {"addr": ":9100"}
			}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `adapters:
  default: Text-to-Image
  enabled:
    Text-to-Video: false
coordinator:
  pollInterval: 20ms
ui:
  showFooter: false
  theme:
    name: blue
    overrides:
      primary: "#112233"
history:
  enabled: false
  limit: 5
metrics:
  addr: ":9100"
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `[adapters]
default = "Text-to-Image"

[adapters.enabled]
"Text-to-Video" = false

[coordinator]
pollInterval = "20ms"

[ui]
showFooter = false

[ui.theme]
name = "blue"

[ui.theme.overrides]
primary = "#112233"

[history]
enabled = false
limit = 5

[metrics]
addr = ":9100"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("LoadFrom failed: %v", err)
			}
			if cfg.Adapters.Default != "Text-to-Image" {
				t.Errorf("default = %q", cfg.Adapters.Default)
			}
			if on, ok := cfg.Adapters.Enabled["Text-to-Video"]; !ok || on {
				t.Errorf("enabled = %v", cfg.Adapters.Enabled)
			}
			if cfg.Coordinator.PollInterval != 20*time.Millisecond {
				t.Errorf("poll interval = %v", cfg.Coordinator.PollInterval)
			}
			if cfg.UI.ShowFooter {
				t.Error("footer should be hidden")
			}
			if cfg.UI.Theme.Name != "blue" {
				t.Errorf("theme = %q", cfg.UI.Theme.Name)
			}
			if got := cfg.UI.Theme.Overrides["primary"]; got != "#112233" {
				t.Errorf("theme override = %q", got)
			}
			if cfg.History.Enabled || cfg.History.Limit != 5 {
				t.Errorf("history = %+v", cfg.History)
			}
			if cfg.Metrics.Addr != ":9100" {
				t.Errorf("metrics addr = %q", cfg.Metrics.Addr)
			}
			// Unset keys keep their defaults.
			if cfg.Adapters.ArtifactDir != "assets" {
				t.Errorf("artifact dir = %q", cfg.Adapters.ArtifactDir)
			}
		})
	}
}

func TestLoadFrom_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"coordinator": {"pollInterval": "soon"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadFrom_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte("x=1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for .ini")
	}
}

func TestValidate_FixesZeroValues(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Coordinator.PollInterval != 50*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Coordinator.PollInterval)
	}
	if cfg.History.Limit != 20 || cfg.UI.Theme.Name != "default" || cfg.Adapters.ArtifactDir != "assets" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		in, want string
	}{
		{"~/x/y", filepath.Join(home, "x/y")},
		{"/abs", "/abs"},
		{"rel", "rel"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
