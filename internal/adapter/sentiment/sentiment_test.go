package sentiment

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcus/modeldeck/internal/adapter"
)

func TestClassify(t *testing.T) {
	lex := DefaultLexicon()
	tests := []struct {
		text      string
		wantLabel string
	}{
		{"I love this, it is great", "POSITIVE"},
		{"this is terrible and boring", "NEGATIVE"},
		{"not good", "NEGATIVE"},
		{"not bad at all", "POSITIVE"},
		{"the sky", "POSITIVE"},
	}
	for _, tt := range tests {
		label, score := Classify(lex, tt.text)
		if label != tt.wantLabel {
			t.Errorf("Classify(%q) label = %s, want %s", tt.text, label, tt.wantLabel)
		}
		if score < 0.5 || score >= 1 {
			t.Errorf("Classify(%q) score = %v out of range", tt.text, score)
		}
	}
}

func TestScore_Intensifier(t *testing.T) {
	lex := DefaultLexicon()
	plain, _ := lex.Score("good")
	strong, _ := lex.Score("very good")
	if strong <= plain {
		t.Errorf("very good (%v) should outscore good (%v)", strong, plain)
	}
}

func TestAdapter_Lifecycle(t *testing.T) {
	a := New("", nil)
	if a.Loaded() {
		t.Fatal("new adapter is loaded")
	}
	if _, err := a.Run(adapter.TextPayload("good")); err == nil {
		t.Error("run before load should fail")
	}
	if err := a.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := a.Run(adapter.TextPayload("what a wonderful day"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(out.Result(), "POSITIVE (") {
		t.Errorf("result = %q", out.Result())
	}
	if got := a.Describe()[adapter.InfoStatus]; got != adapter.StatusLoaded {
		t.Errorf("status = %q", got)
	}

	a.Release()
	if a.Loaded() {
		t.Error("still loaded after Release")
	}
}

func TestAdapter_EmptyText(t *testing.T) {
	a := New("", nil)
	if err := a.Load(); err != nil {
		t.Fatal(err)
	}
	out, err := a.Run(adapter.TextPayload("   "))
	if err != nil {
		t.Fatal(err)
	}
	if out.Result() != "Enter text in the box." {
		t.Errorf("result = %q", out.Result())
	}
}

func TestAdapter_CustomLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lex.txt")
	if err := os.WriteFile(path, []byte("# custom\nmeh -1\nyay 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New(path, nil)
	if err := a.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, _ := a.Run(adapter.TextPayload("meh"))
	if !strings.HasPrefix(out.Result(), "NEGATIVE") {
		t.Errorf("result = %q", out.Result())
	}
	if got := a.Describe()["Lexicon"]; got != "2 words" {
		t.Errorf("Lexicon = %q", got)
	}
}

func TestAdapter_BadLexiconStaysUnloaded(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "missing.txt"), nil)
	err := a.Load()
	var le *adapter.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want LoadError", err)
	}
	if a.Loaded() {
		t.Error("adapter loaded after failure")
	}
}

func TestReadLexicon_Errors(t *testing.T) {
	tests := []string{"", "word\n", "word notanumber\n"}
	for _, in := range tests {
		if _, err := ReadLexicon(strings.NewReader(in)); err == nil {
			t.Errorf("ReadLexicon(%q) succeeded", in)
		}
	}
}
