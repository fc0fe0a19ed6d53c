package adapter

import (
	"errors"
	"strings"
	"testing"
)

func TestPayloadValue(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"text mode", Payload{Mode: ModeText, Text: "hello", Path: "/tmp/x.png"}, "hello"},
		{"file mode prefers path", Payload{Mode: ModeFile, Text: "caption", Path: "/tmp/x.png"}, "/tmp/x.png"},
		{"file mode falls back to text", Payload{Mode: ModeFile, Text: "caption"}, "caption"},
		{"unknown mode uses text", Payload{Mode: "video", Text: "prompt"}, "prompt"},
		{"zero value", Payload{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payload.Value(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPayloadSummary(t *testing.T) {
	s := TextPayload(strings.Repeat("word ", 40)).Summary()
	if !strings.HasPrefix(s, "text:") {
		t.Errorf("Summary() = %q, want text: prefix", s)
	}
	if len(s) > len("text:")+60 {
		t.Errorf("Summary() too long: %d", len(s))
	}
	if got := FilePayload("/a/b.png").Summary(); got != "file:/a/b.png" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestOutputAccessors(t *testing.T) {
	out := Output{KeyResult: "ok", KeyArtifact: "/tmp/a.png", KeyElapsed: 12.5}
	if out.Result() != "ok" {
		t.Errorf("Result() = %q", out.Result())
	}
	if out.Artifact() != "/tmp/a.png" {
		t.Errorf("Artifact() = %q", out.Artifact())
	}
	if ms, ok := out.ElapsedMS(); !ok || ms != 12.5 {
		t.Errorf("ElapsedMS() = %v, %v", ms, ok)
	}
	if got := (Output{KeyResult: 42}).Result(); got != "42" {
		t.Errorf("non-string Result() = %q", got)
	}
	var nilOut Output
	if nilOut.Result() != "" || nilOut.Artifact() != "" {
		t.Error("nil output accessors should be empty")
	}
}

func TestOutputClone(t *testing.T) {
	orig := Output{KeyResult: "x"}
	c := orig.Clone()
	c[KeyElapsed] = 1.0
	if _, ok := orig[KeyElapsed]; ok {
		t.Error("Clone shares storage with original")
	}
}

func TestDescriptorInfoDefaults(t *testing.T) {
	info := Descriptor{Name: "Echo"}.Info()
	if info[InfoModel] != "Echo" {
		t.Errorf("Model = %q", info[InfoModel])
	}
	if info[InfoCategory] != "Unknown" {
		t.Errorf("Category = %q, want Unknown", info[InfoCategory])
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")
	if !errors.Is(&LoadError{Name: "A", Cause: cause}, cause) {
		t.Error("LoadError should unwrap to cause")
	}
	if !errors.Is(&RunError{Name: "A", Cause: cause}, cause) {
		t.Error("RunError should unwrap to cause")
	}
	if msg := (&RunError{Name: "A"}).Error(); msg != "run A failed" {
		t.Errorf("RunError without cause = %q", msg)
	}
}
