package keymap

// Contexts used by the interactive client.
const (
	ContextGlobal  = "global"
	ContextPicker  = "picker"
	ContextInput   = "input"
	ContextConfirm = "confirm"
	ContextHistory = "history"
	ContextHelp    = "help"
)

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+c", Command: "quit", Context: ContextGlobal},
		{Key: "ctrl+r", Command: "run", Context: ContextGlobal},
		{Key: "ctrl+l", Command: "load", Context: ContextGlobal},
		{Key: "esc", Command: "cancel", Context: ContextGlobal},
		{Key: "ctrl+t", Command: "cycle-theme", Context: ContextGlobal},
		{Key: "ctrl+h", Command: "toggle-footer", Context: ContextGlobal},
		{Key: "ctrl+y", Command: "copy", Context: ContextGlobal},
		{Key: "f1", Command: "toggle-help", Context: ContextGlobal},

		// Adapter picker (input not focused)
		{Key: "q", Command: "quit", Context: ContextPicker},
		{Key: "j", Command: "next-adapter", Context: ContextPicker},
		{Key: "down", Command: "next-adapter", Context: ContextPicker},
		{Key: "k", Command: "prev-adapter", Context: ContextPicker},
		{Key: "up", Command: "prev-adapter", Context: ContextPicker},
		{Key: "enter", Command: "load", Context: ContextPicker},
		{Key: "l", Command: "load", Context: ContextPicker},
		{Key: "r", Command: "run", Context: ContextPicker},
		{Key: "m", Command: "toggle-mode", Context: ContextPicker},
		{Key: "x", Command: "clear", Context: ContextPicker},
		{Key: "y", Command: "copy", Context: ContextPicker},
		{Key: "i", Command: "focus-input", Context: ContextPicker},
		{Key: "tab", Command: "focus-input", Context: ContextPicker},
		{Key: "h", Command: "history", Context: ContextPicker},
		{Key: "t", Command: "cycle-theme", Context: ContextPicker},
		{Key: "?", Command: "toggle-help", Context: ContextPicker},

		// Input box focused
		{Key: "enter", Command: "run", Context: ContextInput},
		{Key: "tab", Command: "blur-input", Context: ContextInput},
		{Key: "ctrl+o", Command: "toggle-mode", Context: ContextInput},
		{Key: "ctrl+x", Command: "clear", Context: ContextInput},

		// Switch / quit confirmation
		{Key: "y", Command: "confirm", Context: ContextConfirm},
		{Key: "enter", Command: "confirm", Context: ContextConfirm},
		{Key: "n", Command: "dismiss", Context: ContextConfirm},
		{Key: "esc", Command: "dismiss", Context: ContextConfirm},
		{Key: "tab", Command: "switch-button", Context: ContextConfirm},
		{Key: "left", Command: "switch-button", Context: ContextConfirm},
		{Key: "right", Command: "switch-button", Context: ContextConfirm},

		// History overlay
		{Key: "esc", Command: "dismiss", Context: ContextHistory},
		{Key: "q", Command: "dismiss", Context: ContextHistory},
		{Key: "h", Command: "dismiss", Context: ContextHistory},
		{Key: "j", Command: "scroll-down", Context: ContextHistory},
		{Key: "down", Command: "scroll-down", Context: ContextHistory},
		{Key: "k", Command: "scroll-up", Context: ContextHistory},
		{Key: "up", Command: "scroll-up", Context: ContextHistory},

		// Help overlay
		{Key: "esc", Command: "dismiss", Context: ContextHelp},
		{Key: "q", Command: "dismiss", Context: ContextHelp},
		{Key: "?", Command: "dismiss", Context: ContextHelp},
		{Key: "f1", Command: "dismiss", Context: ContextHelp},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}
