// Package caption is the image-to-text adapter. It describes an image in one
// sentence built from its colour analysis.
package caption

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/imaging"
)

const (
	Name  = "Image-to-Text"
	model = "colour-captioner"
)

// phrasebook holds the wording the captioner uses.
type phrasebook struct {
	tone   func(brightness float64) string
	vivid  func(saturation float64) string
	accent float64 // minimum share for a secondary colour to be mentioned
}

func newPhrasebook() *phrasebook {
	return &phrasebook{
		tone: func(b float64) string {
			switch {
			case b < 0.3:
				return "dark"
			case b > 0.7:
				return "bright"
			}
			return ""
		},
		vivid: func(s float64) string {
			switch {
			case s < 0.2:
				return "muted"
			case s > 0.6:
				return "vivid"
			}
			return ""
		},
		accent: 0.1,
	}
}

func (pb *phrasebook) caption(an imaging.Analysis) string {
	ranked := an.Ranked()
	if len(ranked) == 0 {
		return "an empty image"
	}
	var adj []string
	for _, w := range []string{pb.tone(an.Brightness), pb.vivid(an.Saturation)} {
		if w != "" {
			adj = append(adj, w)
		}
	}
	adj = append(adj, an.Orientation())

	var b strings.Builder
	b.WriteString(article(adj[0]))
	b.WriteString(" ")
	b.WriteString(strings.Join(adj, ", "))
	b.WriteString(" image dominated by ")
	b.WriteString(ranked[0])
	var accents []string
	for _, name := range ranked[1:] {
		if an.Share[name] < pb.accent || len(accents) == 2 {
			break
		}
		accents = append(accents, name)
	}
	if len(accents) > 0 {
		b.WriteString(" with touches of ")
		b.WriteString(strings.Join(accents, " and "))
	}
	return b.String()
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

// Adapter implements adapter.Adapter.
type Adapter struct {
	log *slog.Logger

	mu sync.RWMutex
	pb *phrasebook
}

// New creates an unloaded captioner.
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
		Category:    "Image-to-Text",
		Description: "Generates a descriptive caption for an image.",
	}
}

// Load implements adapter.Adapter.
func (a *Adapter) Load() error {
	a.mu.Lock()
	a.pb = newPhrasebook()
	a.mu.Unlock()
	return nil
}

// Run captions the image at the payload path.
func (a *Adapter) Run(p adapter.Payload) (adapter.Output, error) {
	a.mu.RLock()
	pb := a.pb
	a.mu.RUnlock()
	if pb == nil {
		return nil, &adapter.RunError{Name: Name, Cause: fmt.Errorf("captioner not loaded")}
	}

	path := strings.TrimSpace(p.Value())
	if path == "" {
		return adapter.Output{adapter.KeyResult: "Choose an image file first."}, nil
	}
	img, _, err := imaging.Open(path)
	if err != nil {
		return nil, &adapter.RunError{Name: Name, Cause: err}
	}
	text := pb.caption(imaging.Analyze(img))
	a.log.Debug("captioned image", "path", path)
	return adapter.Output{
		adapter.KeyResult: "Caption: " + text,
		"image_path":      path,
	}, nil
}

// Describe implements adapter.Adapter.
func (a *Adapter) Describe() map[string]string {
	info := a.Descriptor().Describe(a.Loaded())
	info[adapter.InfoModel] = model
	return info
}

// Loaded implements adapter.Adapter.
func (a *Adapter) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pb != nil
}

// Release implements adapter.Releaser.
func (a *Adapter) Release() {
	a.mu.Lock()
	a.pb = nil
	a.mu.Unlock()
}
