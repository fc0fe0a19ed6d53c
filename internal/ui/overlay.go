// Package ui provides shared UI components and helpers for the TUI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Modal widths used by the app's overlays.
const (
	ModalWidthSmall  = 40
	ModalWidthMedium = 56
	ModalWidthLarge  = 76
)

// DimStyle applies a dim gray color to background content behind modals.
// Existing ANSI codes are stripped because SGR 2 (faint) doesn't combine
// reliably with colors in most terminals.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, ansi.StringWidth(line))
	}
	return maxWidth
}

// dimLine strips ANSI codes and applies dim gray styling.
func dimLine(s string) string {
	return DimStyle.Render(ansi.Strip(s))
}

// compositeRow overlays modalLine onto bgLine at column startX.
// Returns: dimmed-left-segment + modalLine + dimmed-right-segment
func compositeRow(bgLine, modalLine string, startX, modalWidth, totalWidth int) string {
	var b strings.Builder

	plain := ansi.Strip(bgLine)
	bgWidth := ansi.StringWidth(plain)

	if startX > 0 {
		left := ansi.Truncate(plain, startX, "")
		b.WriteString(DimStyle.Render(left))
		if w := ansi.StringWidth(left); w < startX {
			b.WriteString(strings.Repeat(" ", startX-w))
		}
	}

	b.WriteString(modalLine)

	rightX := startX + modalWidth
	if rightX < totalWidth && bgWidth > rightX {
		b.WriteString(DimStyle.Render(ansi.Cut(plain, rightX, bgWidth)))
	}
	return b.String()
}

// OverlayModal composites a modal on top of a dimmed background.
// The modal is centered, with dimmed background visible on all sides.
func OverlayModal(background, modal string, width, height int) string {
	bgLines := strings.Split(background, "\n")
	modalLines := strings.Split(modal, "\n")

	modalWidth := maxLineWidth(modalLines)
	modalHeight := len(modalLines)
	startX := max((width-modalWidth)/2, 0)
	startY := max((height-modalHeight)/2, 0)

	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	out := make([]string, 0, height)
	for y := 0; y < height; y++ {
		row := y - startY
		if row >= 0 && row < modalHeight {
			out = append(out, compositeRow(bgLines[y], modalLines[row], startX, modalWidth, width))
		} else {
			out = append(out, dimLine(bgLines[y]))
		}
	}
	return strings.Join(out, "\n")
}

// Fit truncates s to width display cells, appending an ellipsis when cut.
// Wide runes (CJK, emoji) count as two cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// FirstLine returns the first line of s, fitted to width.
func FirstLine(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return Fit(s, width)
}
