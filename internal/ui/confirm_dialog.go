package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/modeldeck/internal/styles"
)

// DialogAction is the outcome of a key routed to a ConfirmDialog.
type DialogAction int

const (
	DialogNone DialogAction = iota
	DialogConfirm
	DialogCancel
)

// ConfirmDialog is a reusable confirmation modal with two buttons.
type ConfirmDialog struct {
	Title        string
	Message      string
	ConfirmLabel string         // e.g., " Confirm ", " Switch ", " Quit "
	CancelLabel  string         // e.g., " Cancel ", " No "
	BorderColor  lipgloss.Color // Modal border color
	Width        int            // Modal width (default ModalWidthMedium)

	focus int // 0=confirm, 1=cancel
}

// NewConfirmDialog creates a dialog with sensible defaults.
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:        title,
		Message:      message,
		ConfirmLabel: " Confirm ",
		CancelLabel:  " Cancel ",
		BorderColor:  styles.Primary,
		Width:        ModalWidthMedium,
	}
}

// Focused reports which button has focus: 0 confirm, 1 cancel.
func (d *ConfirmDialog) Focused() int { return d.focus }

// Handle applies a keymap command ("confirm", "dismiss", "switch-button").
// "confirm" activates the focused button.
func (d *ConfirmDialog) Handle(command string) DialogAction {
	switch command {
	case "switch-button":
		d.focus = 1 - d.focus
	case "confirm":
		if d.focus == 1 {
			return DialogCancel
		}
		return DialogConfirm
	case "dismiss":
		return DialogCancel
	}
	return DialogNone
}

// Render draws the dialog box.
func (d *ConfirmDialog) Render() string {
	width := d.Width
	if width <= 0 {
		width = ModalWidthMedium
	}
	inner := width - 6

	confirm, cancel := styles.Button, styles.Button
	if d.focus == 0 {
		confirm = styles.ButtonFocused
	} else {
		cancel = styles.ButtonFocused
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(inner).Render(d.Message))
	b.WriteString("\n\n")
	b.WriteString(confirm.Render(d.ConfirmLabel))
	b.WriteString("  ")
	b.WriteString(cancel.Render(d.CancelLabel))

	return styles.ModalBox.
		BorderForeground(d.BorderColor).
		Width(width - 2).
		Render(b.String())
}
