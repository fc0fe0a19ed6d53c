package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSave_PreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	initial := []byte(`{
  "presets": [{"name": "sunset", "prompt": "a red sky"}],
  "customKey": "should survive"
}`)
	if err := os.WriteFile(path, initial, 0644); err != nil {
		t.Fatal(err)
	}

	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	if err := Save(Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"presets", "customKey", "adapters", "ui"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("key %q missing after save", key)
		}
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	for _, file := range []string{"config.json", "config.yaml", "config.toml"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)
			cfg := Default()
			cfg.Coordinator.PollInterval = 75 * time.Millisecond
			cfg.UI.Theme.Name = "light"
			cfg.UI.ShowFooter = false
			cfg.Adapters.Enabled["Text-to-Video"] = false

			if err := SaveTo(path, cfg); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}
			got, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("LoadFrom: %v", err)
			}
			if got.Coordinator.PollInterval != 75*time.Millisecond {
				t.Errorf("poll interval = %v", got.Coordinator.PollInterval)
			}
			if got.UI.Theme.Name != "light" || got.UI.ShowFooter {
				t.Errorf("ui = %+v", got.UI)
			}
			if on, ok := got.Adapters.Enabled["Text-to-Video"]; !ok || on {
				t.Errorf("enabled = %v", got.Adapters.Enabled)
			}
		})
	}
}

func TestSaveTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	if err := SaveTheme("blue"); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme.Name != "blue" {
		t.Errorf("theme = %q, want blue", cfg.UI.Theme.Name)
	}
}
