package textimage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/imaging"
)

func TestRun_WritesPNG(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, nil)
	a.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	if err := a.Load(); err != nil {
		t.Fatal(err)
	}

	out, err := a.Run(adapter.TextPayload("a red fox in snow"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	path := out.Artifact()
	if filepath.Dir(path) != dir {
		t.Errorf("artifact %q not in %q", path, dir)
	}
	if !strings.HasPrefix(filepath.Base(path), "generated_a_red_fox_in_snow_20240102_030405_384x384_") {
		t.Errorf("artifact name = %q", filepath.Base(path))
	}
	if !strings.HasPrefix(out.Result(), "Image generated → ") {
		t.Errorf("result = %q", out.Result())
	}
	img, format, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != Size {
		t.Errorf("format=%s bounds=%v", format, img.Bounds())
	}
}

func TestRun_SamePromptSameSeed(t *testing.T) {
	a := New(t.TempDir(), nil)
	_ = a.Load()
	o1, _ := a.Run(adapter.TextPayload("lighthouse"))
	o2, _ := a.Run(adapter.TextPayload("Lighthouse "))
	if o1["seed"] != o2["seed"] {
		t.Errorf("seeds differ: %v vs %v", o1["seed"], o2["seed"])
	}
}

func TestRun_EmptyPrompt(t *testing.T) {
	a := New(t.TempDir(), nil)
	_ = a.Load()
	out, err := a.Run(adapter.TextPayload(""))
	if err != nil {
		t.Fatal(err)
	}
	if out.Result() != "Enter a text prompt." || out.Artifact() != "" {
		t.Errorf("out = %v", out)
	}
}

func TestRun_NotLoaded(t *testing.T) {
	a := New(t.TempDir(), nil)
	if _, err := a.Run(adapter.TextPayload("x")); err == nil {
		t.Error("expected error before load")
	}
}
