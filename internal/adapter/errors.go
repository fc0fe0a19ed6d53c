package adapter

import "fmt"

// NotFoundError is returned when an adapter name is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("adapter not found: %q", e.Name)
}

// LoadError wraps a failure while loading an adapter.
type LoadError struct {
	Name  string
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("load %s failed", e.Name)
	}
	return fmt.Sprintf("load %s: %v", e.Name, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// RunError wraps a failure while running an adapter.
type RunError struct {
	Name  string
	Cause error
}

func (e *RunError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("run %s failed", e.Name)
	}
	return fmt.Sprintf("run %s: %v", e.Name, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }
