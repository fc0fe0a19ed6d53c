package coordinator

import (
	"errors"
	"fmt"
)

// ErrBusy rejects a load or run requested while another operation holds the
// gate. There is no queueing.
var ErrBusy = errors.New("another operation is in progress")

// NotLoadedError is returned when a run targets an adapter that is not loaded.
type NotLoadedError struct {
	Name string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("please load %q first", e.Name)
}

// SwitchConfirmationError is returned by a load that would replace a different
// loaded adapter. The caller asks the user and retries with confirmation.
type SwitchConfirmationError struct {
	From string
	To   string
}

func (e *SwitchConfirmationError) Error() string {
	return fmt.Sprintf("%q is loaded; switching to %q needs confirmation", e.From, e.To)
}

// ErrorKind labels errors delivered to the sink.
type ErrorKind string

const (
	KindNotFound  ErrorKind = "not_found"
	KindNotLoaded ErrorKind = "not_loaded"
	KindLoad      ErrorKind = "load"
	KindRun       ErrorKind = "run"
	KindDelivery  ErrorKind = "delivery"
	KindInvariant ErrorKind = "invariant"
)

// Title returns the heading used for error notifications.
func (k ErrorKind) Title() string {
	switch k {
	case KindNotFound:
		return "Unknown model"
	case KindNotLoaded:
		return "Not loaded"
	case KindLoad:
		return "Load error"
	case KindRun:
		return "Run error"
	case KindDelivery:
		return "Display error"
	default:
		return "Internal error"
	}
}
