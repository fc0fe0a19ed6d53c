// Package imageclass is the image classification adapter. It buckets an
// image's pixels by colour and maps the dominant bucket to a scene label.
package imageclass

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/imaging"
)

const (
	Name  = "Image Classification"
	model = "colour-histogram-classifier"
)

// defaultLabels maps a colour bucket to the scene label reported for it.
func defaultLabels() map[string]string {
	return map[string]string{
		"red":     "fire / sunset",
		"orange":  "autumn / warm light",
		"yellow":  "sand / daylight",
		"green":   "foliage / grass",
		"cyan":    "shallow water / ice",
		"blue":    "sky / sea",
		"purple":  "twilight",
		"magenta": "flowers",
		"black":   "night scene",
		"white":   "snow / overexposed",
		"gray":    "overcast / urban",
	}
}

// Adapter implements adapter.Adapter.
type Adapter struct {
	log *slog.Logger

	mu     sync.RWMutex
	labels map[string]string
}

// New creates an unloaded classifier.
func New(log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{log: log}
}

var _ adapter.Releaser = (*Adapter)(nil)

// Descriptor implements adapter.Adapter.
func (a *Adapter) Descriptor() adapter.Descriptor {
	return adapter.Descriptor{
		Name:        Name,
		Category:    "Image Classification",
		Description: "Classifies an image by its dominant colours.",
	}
}

// Load implements adapter.Adapter.
func (a *Adapter) Load() error {
	a.mu.Lock()
	a.labels = defaultLabels()
	a.mu.Unlock()
	return nil
}

// Run classifies the image at the payload path.
func (a *Adapter) Run(p adapter.Payload) (adapter.Output, error) {
	a.mu.RLock()
	labels := a.labels
	a.mu.RUnlock()
	if labels == nil {
		return nil, &adapter.RunError{Name: Name, Cause: fmt.Errorf("classifier not loaded")}
	}

	path := strings.TrimSpace(p.Value())
	if path == "" {
		return adapter.Output{adapter.KeyResult: "Choose an image file first."}, nil
	}
	img, format, err := imaging.Open(path)
	if err != nil {
		return nil, &adapter.RunError{Name: Name, Cause: err}
	}
	an := imaging.Analyze(img)
	ranked := an.Ranked()
	if len(ranked) == 0 {
		return nil, &adapter.RunError{Name: Name, Cause: fmt.Errorf("image %s has no pixels", path)}
	}

	top := ranked[0]
	label := labels[top]
	a.log.Debug("classified image", "path", path, "format", format, "bucket", top)

	var alts []string
	for _, name := range ranked[1:min(len(ranked), 3)] {
		alts = append(alts, fmt.Sprintf("%s (%.2f)", labels[name], an.Share[name]))
	}
	return adapter.Output{
		adapter.KeyResult: fmt.Sprintf("%s (%.2f)", label, an.Share[top]),
		"image_path":      path,
		"alternatives":    alts,
	}, nil
}

// Describe implements adapter.Adapter.
func (a *Adapter) Describe() map[string]string {
	loaded := a.Loaded()
	info := a.Descriptor().Describe(loaded)
	info[adapter.InfoModel] = model
	if loaded {
		info["Classes"] = fmt.Sprint(len(defaultLabels()))
	}
	return info
}

// Loaded implements adapter.Adapter.
func (a *Adapter) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.labels != nil
}

// Release implements adapter.Releaser.
func (a *Adapter) Release() {
	a.mu.Lock()
	a.labels = nil
	a.mu.Unlock()
}
