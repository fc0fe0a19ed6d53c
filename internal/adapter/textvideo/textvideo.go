// Package textvideo is the text-to-video adapter. It renders a still for the
// prompt and animates it with a slow zoom and pan into a looping GIF.
package textvideo

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/imaging"
)

const (
	Name  = "Text-to-Video"
	model = "seeded still + Ken Burns"
)

// Settings controls the generated clip.
type Settings struct {
	Size    int
	Seconds float64
	FPS     int
	ZoomEnd float64
	Pan     imaging.Pan
}

// DefaultSettings returns the clip settings used by the registered adapter.
func DefaultSettings() Settings {
	return Settings{Size: 256, Seconds: 3, FPS: 12, ZoomEnd: 1.18, Pan: imaging.Pan{X: 20, Y: -12}}
}

// Adapter implements adapter.Adapter.
type Adapter struct {
	artifactDir string
	settings    Settings
	log         *slog.Logger
	now         func() time.Time

	mu     sync.RWMutex
	loaded *Settings
}

// New creates an unloaded text-to-video adapter.
func New(artifactDir string, settings Settings, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	if artifactDir == "" {
		artifactDir = "assets"
	}
	return &Adapter{artifactDir: artifactDir, settings: settings, log: log, now: time.Now}
}

var _ adapter.Releaser = (*Adapter)(nil)

// Descriptor implements adapter.Adapter.
func (a *Adapter) Descriptor() adapter.Descriptor {
	return adapter.Descriptor{
		Name:        Name,
		Category:    "Text-to-Video",
		Description: "Renders a prompt still and animates it with a zoom and pan.",
	}
}

// Load validates the settings.
func (a *Adapter) Load() error {
	s := a.settings
	if s.Size < 16 || s.FPS < 1 || s.Seconds <= 0 || s.ZoomEnd < 1 {
		a.Release()
		return &adapter.LoadError{Name: Name, Cause: fmt.Errorf("invalid clip settings %+v", s)}
	}
	a.mu.Lock()
	a.loaded = &s
	a.mu.Unlock()
	return nil
}

// Run renders the still and the clip.
func (a *Adapter) Run(p adapter.Payload) (adapter.Output, error) {
	a.mu.RLock()
	s := a.loaded
	a.mu.RUnlock()
	if s == nil {
		return nil, &adapter.RunError{Name: Name, Cause: fmt.Errorf("video pipeline not loaded")}
	}

	prompt := strings.TrimSpace(p.Value())
	if prompt == "" {
		return adapter.Output{adapter.KeyResult: "Enter a text prompt."}, nil
	}

	ts := imaging.Timestamp(a.now())
	safe := imaging.Snippet(prompt, 12, 64, "video")

	still := imaging.Gradient(imaging.Seed(prompt), s.Size, s.Size)
	imaging.Label(still, prompt, color.White)
	stillPath, err := imaging.SavePNG(a.artifactDir, fmt.Sprintf("t2v_still_%s_%s.png", safe, ts), still)
	if err != nil {
		return nil, &adapter.RunError{Name: Name, Cause: err}
	}

	n := int(s.Seconds * float64(s.FPS))
	frames := imaging.KenBurns(still, n, s.ZoomEnd, s.Pan)
	videoPath, err := imaging.SaveGIF(a.artifactDir, fmt.Sprintf("t2v_%s_%s_kb.gif", safe, ts), frames, s.FPS)
	if err != nil {
		return nil, &adapter.RunError{Name: Name, Cause: err}
	}
	a.log.Debug("video generated", "path", videoPath, "frames", n)

	return adapter.Output{
		adapter.KeyResult:   fmt.Sprintf("Video generated → %s\nStill: %s", videoPath, stillPath),
		adapter.KeyArtifact: videoPath,
		"video_path":        videoPath,
		"still_path":        stillPath,
		"frames":            n,
	}, nil
}

// Describe implements adapter.Adapter.
func (a *Adapter) Describe() map[string]string {
	info := a.Descriptor().Describe(a.Loaded())
	info[adapter.InfoModel] = model
	s := a.settings
	info["Runtime"] = fmt.Sprintf("%dx%d, %.1fs at %d fps", s.Size, s.Size, s.Seconds, s.FPS)
	return info
}

// Loaded implements adapter.Adapter.
func (a *Adapter) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded != nil
}

// Release implements adapter.Releaser.
func (a *Adapter) Release() {
	a.mu.Lock()
	a.loaded = nil
	a.mu.Unlock()
}
