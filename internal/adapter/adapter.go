package adapter

import (
	"fmt"
	"sort"
	"strings"
)

// Adapter is a named, stateful unit of work that can be loaded once and run
// many times. Load and Run may block; they are always called off the
// interactive goroutine (Run) or under the busy gate (Load).
type Adapter interface {
	Descriptor() Descriptor
	Load() error
	Run(payload Payload) (Output, error)
	Describe() map[string]string
	Loaded() bool
}

// Releaser is an optional capability for adapters that can drop their loaded
// resources when the user switches to a different adapter.
type Releaser interface {
	Release()
}

// Descriptor identifies an adapter. It never changes after registration.
type Descriptor struct {
	Name        string
	Category    string
	Description string
}

// Info returns the placeholder metadata every adapter reports, loaded or not.
func (d Descriptor) Info() map[string]string {
	category := d.Category
	if category == "" {
		category = "Unknown"
	}
	return map[string]string{
		InfoModel:       d.Name,
		InfoCategory:    category,
		InfoDescription: d.Description,
	}
}

// Describe returns Info plus the loaded status.
func (d Descriptor) Describe(loaded bool) map[string]string {
	info := d.Info()
	info[InfoStatus] = StatusUnloaded
	if loaded {
		info[InfoStatus] = StatusLoaded
	}
	return info
}

// Info keys shared by Describe implementations.
const (
	InfoModel       = "Model"
	InfoCategory    = "Category"
	InfoDescription = "Description"
	InfoStatus      = "Status"
)

// Status values reported under InfoStatus.
const (
	StatusLoaded   = "loaded"
	StatusUnloaded = "not loaded"
)

// PayloadMode tags which input field a payload carries.
type PayloadMode string

const (
	ModeText PayloadMode = "text"
	ModeFile PayloadMode = "file"
)

// Payload is the input snapshot taken when a run is requested.
type Payload struct {
	Mode PayloadMode
	Text string
	Path string
}

// TextPayload builds a text-mode payload.
func TextPayload(text string) Payload {
	return Payload{Mode: ModeText, Text: text}
}

// FilePayload builds a file-mode payload.
func FilePayload(path string) Payload {
	return Payload{Mode: ModeFile, Path: path}
}

// Value normalizes the payload to the single string most adapters expect:
// the text for text mode, the path (falling back to text) for file mode.
func (p Payload) Value() string {
	switch p.Mode {
	case ModeFile:
		if p.Path != "" {
			return p.Path
		}
		return p.Text
	default:
		return p.Text
	}
}

// Summary returns a short single-line description of the payload for logs
// and history rows.
func (p Payload) Summary() string {
	v := strings.Join(strings.Fields(p.Value()), " ")
	if len(v) > 60 {
		v = v[:57] + "..."
	}
	mode := p.Mode
	if mode == "" {
		mode = ModeText
	}
	return fmt.Sprintf("%s:%s", mode, v)
}

// Output is the structured result of a run.
type Output map[string]any

// Output keys.
const (
	KeyResult   = "result"
	KeyArtifact = "artifact"
	KeyElapsed  = "elapsed_ms"
)

// Result returns the human-readable result text.
func (o Output) Result() string {
	if o == nil {
		return ""
	}
	switch v := o[KeyResult].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Artifact returns the path of a generated file, if any.
func (o Output) Artifact() string {
	if s, ok := o[KeyArtifact].(string); ok {
		return s
	}
	return ""
}

// ElapsedMS returns the elapsed-time field recorded by the executor.
func (o Output) ElapsedMS() (float64, bool) {
	v, ok := o[KeyElapsed].(float64)
	return v, ok
}

// Keys returns the output keys in sorted order.
func (o Output) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy so the executor can annotate an output without
// touching the map an adapter may still hold.
func (o Output) Clone() Output {
	out := make(Output, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}
