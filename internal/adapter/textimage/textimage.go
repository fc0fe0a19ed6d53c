// Package textimage is the text-to-image adapter. It renders a prompt into a
// PNG: a gradient seeded from the prompt hash with the prompt drawn on top.
package textimage

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
	Name  = "Text-to-Image"
	model = "seeded-gradient-renderer"

	// Size is the edge length of generated images.
	Size = 384
)

type renderer struct {
	dir  string
	size int
}

// Adapter implements adapter.Adapter.
type Adapter struct {
	artifactDir string
	log         *slog.Logger
	now         func() time.Time

	mu sync.RWMutex
	r  *renderer
}

// New creates an unloaded text-to-image adapter writing into artifactDir.
func New(artifactDir string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	if artifactDir == "" {
		artifactDir = "assets"
	}
	return &Adapter{artifactDir: artifactDir, log: log, now: time.Now}
}

var _ adapter.Releaser = (*Adapter)(nil)

// Descriptor implements adapter.Adapter.
func (a *Adapter) Descriptor() adapter.Descriptor {
	return adapter.Descriptor{
		Name:        Name,
		Category:    "Text-to-Image",
		Description: "Renders a prompt into a deterministic PNG artwork.",
	}
}

// Load implements adapter.Adapter.
func (a *Adapter) Load() error {
	a.mu.Lock()
	a.r = &renderer{dir: a.artifactDir, size: Size}
	a.mu.Unlock()
	return nil
}

// Run renders the prompt and writes the PNG artifact.
func (a *Adapter) Run(p adapter.Payload) (adapter.Output, error) {
	a.mu.RLock()
	r := a.r
	a.mu.RUnlock()
	if r == nil {
		return nil, &adapter.RunError{Name: Name, Cause: fmt.Errorf("renderer not loaded")}
	}

	prompt := strings.TrimSpace(p.Value())
	if prompt == "" {
		return adapter.Output{adapter.KeyResult: "Enter a text prompt."}, nil
	}

	seed := imaging.Seed(prompt)
	img := imaging.Gradient(seed, r.size, r.size)
	imaging.Label(img, prompt, color.White)

	name := fmt.Sprintf("generated_%s_%s_%dx%d_%04x.png",
		imaging.Snippet(prompt, 6, 48, "image"), imaging.Timestamp(a.now()), r.size, r.size, seed&0xffff)
	path, err := imaging.SavePNG(r.dir, name, img)
	if err != nil {
		return nil, &adapter.RunError{Name: Name, Cause: err}
	}
	a.log.Debug("image generated", "path", path, "seed", seed)
	return adapter.Output{
		adapter.KeyResult:   "Image generated → " + path,
		adapter.KeyArtifact: path,
		"image_path":        path,
		"seed":              fmt.Sprintf("%016x", seed),
	}, nil
}

// Describe implements adapter.Adapter.
func (a *Adapter) Describe() map[string]string {
	info := a.Descriptor().Describe(a.Loaded())
	info[adapter.InfoModel] = model
	info["Output"] = fmt.Sprintf("%dx%d PNG in %s", Size, Size, a.artifactDir)
	return info
}

// Loaded implements adapter.Adapter.
func (a *Adapter) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.r != nil
}

// Release implements adapter.Releaser.
func (a *Adapter) Release() {
	a.mu.Lock()
	a.r = nil
	a.mu.Unlock()
}
