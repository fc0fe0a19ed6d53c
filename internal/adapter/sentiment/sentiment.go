// Package sentiment is the text classification adapter: it labels text
// POSITIVE or NEGATIVE with a confidence using a weighted word lexicon.
package sentiment

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/marcus/modeldeck/internal/adapter"
)

const (
	Name     = "Text Classification"
	Category = "Text Classification"
	model    = "lexicon-sentiment-en"
)

// Adapter implements adapter.Adapter.
type Adapter struct {
	lexiconPath string
	log         *slog.Logger

	mu  sync.RWMutex
	lex Lexicon
}

// New creates an unloaded sentiment adapter. An empty lexiconPath uses the
// built-in lexicon.
func New(lexiconPath string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{lexiconPath: lexiconPath, log: log}
}

var _ adapter.Releaser = (*Adapter)(nil)

// Descriptor implements adapter.Adapter.
func (a *Adapter) Descriptor() adapter.Descriptor {
	return adapter.Descriptor{
		Name:        Name,
		Category:    Category,
		Description: "Sentiment (positive/negative) using a weighted lexicon.",
	}
}

// Load reads the lexicon. A failed load leaves the adapter unloaded.
func (a *Adapter) Load() error {
	lex := DefaultLexicon()
	if a.lexiconPath != "" {
		custom, err := LoadLexicon(a.lexiconPath)
		if err != nil {
			a.Release()
			return &adapter.LoadError{Name: Name, Cause: err}
		}
		lex = custom
	}
	a.mu.Lock()
	a.lex = lex
	a.mu.Unlock()
	a.log.Debug("sentiment lexicon loaded", "words", len(lex), "path", a.lexiconPath)
	return nil
}

// Run classifies the payload text.
func (a *Adapter) Run(p adapter.Payload) (adapter.Output, error) {
	a.mu.RLock()
	lex := a.lex
	a.mu.RUnlock()
	if lex == nil {
		return nil, &adapter.RunError{Name: Name, Cause: fmt.Errorf("lexicon not loaded")}
	}

	text := strings.TrimSpace(p.Value())
	if text == "" {
		return adapter.Output{adapter.KeyResult: "Enter text in the box."}, nil
	}
	label, score := Classify(lex, text)
	return adapter.Output{
		adapter.KeyResult: fmt.Sprintf("%s (%.2f)", label, score),
		"label":           label,
		"score":           score,
	}, nil
}

// Classify labels text and returns a confidence in [0.5, 1).
func Classify(lex Lexicon, text string) (string, float64) {
	total, hits := lex.Score(text)
	label := "POSITIVE"
	if total < 0 {
		label = "NEGATIVE"
	}
	if hits == 0 {
		return label, 0.5
	}
	return label, 0.5 + 0.5*math.Tanh(math.Abs(total)/3)
}

// Describe implements adapter.Adapter.
func (a *Adapter) Describe() map[string]string {
	a.mu.RLock()
	n := len(a.lex)
	a.mu.RUnlock()
	info := a.Descriptor().Describe(n > 0)
	info[adapter.InfoModel] = model
	if n > 0 {
		info["Lexicon"] = strconv.Itoa(n) + " words"
	}
	return info
}

// Loaded implements adapter.Adapter.
func (a *Adapter) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lex != nil
}

// Release drops the lexicon.
func (a *Adapter) Release() {
	a.mu.Lock()
	a.lex = nil
	a.mu.Unlock()
}
