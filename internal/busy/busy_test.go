package busy

import (
	"errors"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	c := New()
	if c.Busy() {
		t.Fatal("new controller should be idle")
	}

	if !c.Acquire("Loading Echo …") {
		t.Fatal("Acquire on idle gate should succeed")
	}
	if !c.Busy() || c.State() != Busy {
		t.Error("gate should be busy after Acquire")
	}
	if c.Status() != "Loading Echo …" {
		t.Errorf("Status() = %q", c.Status())
	}

	if err := c.Release("Loaded Echo"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if c.Busy() {
		t.Error("gate should be idle after Release")
	}
	if c.Status() != "Loaded Echo" {
		t.Errorf("Status() = %q", c.Status())
	}
}

func TestAcquireWhileBusyIsRejected(t *testing.T) {
	c := New()
	c.Acquire("first")

	if c.Acquire("second") {
		t.Fatal("second Acquire should be rejected")
	}
	if c.Status() != "first" {
		t.Errorf("rejected Acquire mutated status: %q", c.Status())
	}
}

func TestReleaseWithoutAcquire(t *testing.T) {
	c := New()
	err := c.Release("")

	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("Release on idle gate = %v, want *InvariantError", err)
	}
	if inv.Op != "release" {
		t.Errorf("Op = %q", inv.Op)
	}
	if c.Busy() {
		t.Error("gate should stay idle")
	}
}

func TestDoubleRelease(t *testing.T) {
	c := New()
	c.Acquire("x")
	if err := c.Release(""); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := c.Release(""); err == nil {
		t.Fatal("double Release should be flagged")
	}
}

func TestCancel(t *testing.T) {
	c := New()
	if c.Cancel("") {
		t.Error("Cancel on idle gate should report false")
	}

	c.Acquire("Running Slow …")
	if !c.Cancel("") {
		t.Fatal("Cancel on busy gate should report true")
	}
	if c.Busy() {
		t.Error("gate should be idle after Cancel")
	}
	if !c.Cancelled() {
		t.Error("cancellation marker should be set")
	}
	if c.Status() != StatusCancelled {
		t.Errorf("Status() = %q, want %q", c.Status(), StatusCancelled)
	}

	// The next operation clears the stale marker.
	c.Acquire("again")
	if c.Cancelled() {
		t.Error("Acquire should clear the cancellation marker")
	}
	_ = c.Release("")
	if c.Cancelled() {
		t.Error("Release should clear the cancellation marker")
	}
}

func TestReleaseKeepsStatusWhenEmpty(t *testing.T) {
	c := New()
	c.Acquire("Running")
	_ = c.Release("")
	if c.Status() != "Running" {
		t.Errorf("empty status should not overwrite, got %q", c.Status())
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Busy.String() != "busy" {
		t.Error("unexpected State strings")
	}
}
