package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/keymap"
	"github.com/marcus/modeldeck/internal/styles"
	"github.com/marcus/modeldeck/internal/ui"
)

const (
	headerHeight = 2 // header line plus spacing
	footerHeight = 1
	inputHeight  = 4 // border, title, input line
	sidebarWidth = 34
	minWidth     = 60
	minHeight    = 16
	historyRows  = 12
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.StatusError.Render(msg))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	bg := b.String()
	switch m.activeModal() {
	case ModalConfirm:
		return ui.OverlayModal(bg, m.confirm.Render(), m.width, m.height)
	case ModalHelp:
		return ui.OverlayModal(bg, styles.ModalBox.Render(m.buildHelpContent()), m.width, m.height)
	case ModalHistory:
		return ui.OverlayModal(bg, styles.ModalBox.Render(m.buildHistoryContent()), m.width, m.height)
	}
	return bg
}

// contentHeight is the height left for the panels.
func (m *Model) contentHeight() int {
	h := m.height - headerHeight
	if m.showFooter {
		h -= footerHeight
	}
	return max(h, 0)
}

func (m *Model) mainWidth() int {
	return max(m.width-sidebarWidth, 0)
}

func (m *Model) infoWidth() int {
	return sidebarWidth - 4
}

// layout sizes the widgets to the terminal.
func (m *Model) layout() {
	mainW := m.mainWidth()
	outputH := m.contentHeight() - inputHeight
	m.output.Width = max(mainW-4, 0)
	m.output.Height = max(outputH-3, 0)
	m.textInput.Width = max(mainW-8, 0)
	m.pathInput.Width = max(mainW-8, 0)
}

func (m Model) renderHeader() string {
	title := styles.Logo.Render(" modeldeck")

	var status string
	switch {
	case m.busy():
		status = m.spinner.View() + " " + styles.StatusBusy.Render(m.panes.status)
	case strings.Contains(m.panes.status, "error") || m.panes.status == "Error":
		status = styles.StatusError.Render(m.panes.status)
	default:
		status = styles.StatusIdle.Render(m.panes.status)
	}
	status += " "

	spacing := max(m.width-lipgloss.Width(title)-lipgloss.Width(status), 0)
	return styles.Header.Width(m.width).Render(title + strings.Repeat(" ", spacing) + status)
}

func (m Model) renderContent() string {
	height := m.contentHeight()
	names := m.registry.Descriptors()

	pickerH := min(len(names)+3, height)
	infoH := max(height-pickerH, 0)
	sidebar := lipgloss.JoinVertical(lipgloss.Left,
		panel(m.renderPicker(names), sidebarWidth, pickerH, !m.inputFocused),
		panel(m.infoView, sidebarWidth, infoH, false),
	)

	mainW := m.mainWidth()
	main := lipgloss.JoinVertical(lipgloss.Left,
		panel(m.renderInput(), mainW, inputHeight, m.inputFocused),
		panel(styles.PanelHeader.Render("Output")+"\n"+m.output.View(), mainW, max(height-inputHeight, 0), false),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

// panel draws content in a bordered box of exactly width x height cells.
func panel(content string, width, height int, active bool) string {
	style := styles.PanelInactive
	if active {
		style = styles.PanelActive
	}
	if width < 2 || height < 2 {
		return ""
	}
	return style.
		Width(width - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(content)
}

func (m Model) renderPicker(descs []adapter.Descriptor) string {
	var b strings.Builder
	b.WriteString(styles.PanelHeader.Render("Models"))
	inner := sidebarWidth - 4
	for i, d := range descs {
		b.WriteString("\n")
		cursor := "  "
		if i == m.cursor {
			cursor = styles.ListCursor.Render("› ")
		}
		marker := "  "
		if d.Name == m.coord.Loaded() {
			marker = styles.StatusIdle.Render(" ●")
		}
		name := ui.Fit(d.Name, inner-4)
		line := styles.ListItemNormal.Render(name)
		if i == m.cursor {
			line = styles.ListItemSelected.Render(name)
		}
		b.WriteString(cursor + line + marker)
	}
	return b.String()
}

func (m Model) renderInput() string {
	textChip, fileChip := styles.BarChip, styles.BarChip
	if m.mode == adapter.ModeFile {
		fileChip = styles.BarChipActive
	} else {
		textChip = styles.BarChipActive
	}
	header := styles.PanelHeader.Render("Input ") + textChip.Render("Text") + " " + fileChip.Render("File")
	return header + "\n" + m.activeInputView()
}

func (m Model) activeInputView() string {
	if m.mode == adapter.ModeFile {
		return m.pathInput.View()
	}
	return m.textInput.View()
}

func (m Model) renderFooter() string {
	var status string
	if m.statusMsg != "" {
		toastStyle := styles.ToastSuccess
		if m.statusIsError {
			toastStyle = styles.ToastError
		}
		status = toastStyle.Render(ui.Fit(m.statusMsg, m.width/2))
	}

	statusWidth := lipgloss.Width(status)
	hints := renderHintLineTruncated(m.footerHints(), m.width-statusWidth-2)
	spacing := max(m.width-lipgloss.Width(hints)-statusWidth, 0)

	footer := hints + strings.Repeat(" ", spacing) + status
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(footer)
}

type footerHint struct {
	keys  string
	label string
}

// footerHints returns the hints for the current focus, most important first.
func (m Model) footerHints() []footerHint {
	ctx := m.activeContext()
	var specs []struct{ id, label string }
	switch ctx {
	case keymap.ContextInput:
		specs = []struct{ id, label string }{
			{"run", "run"},
			{"blur-input", "models"},
			{"toggle-mode", "mode"},
			{"clear", "clear"},
			{"cancel", "cancel"},
		}
	default:
		specs = []struct{ id, label string }{
			{"load", "load"},
			{"run", "run"},
			{"focus-input", "input"},
			{"toggle-mode", "mode"},
			{"cancel", "cancel"},
			{"history", "history"},
			{"cycle-theme", "theme"},
			{"toggle-help", "help"},
			{"quit", "quit"},
		}
	}

	var hints []footerHint
	for _, spec := range specs {
		keys := m.keymap.KeysFor(spec.id, ctx)
		if len(keys) == 0 {
			continue
		}
		hints = append(hints, footerHint{keys: keys[0], label: spec.label})
	}
	return hints
}

// renderHintLineTruncated renders hints but stops adding when maxWidth is exceeded.
func renderHintLineTruncated(hints []footerHint, maxWidth int) string {
	if len(hints) == 0 || maxWidth <= 0 {
		return ""
	}
	var result string
	for _, hint := range hints {
		part := fmt.Sprintf("%s %s", styles.KeyHint.Render(hint.keys), hint.label)
		candidate := part
		if result != "" {
			candidate = result + "  " + part
		}
		if lipgloss.Width(candidate) > maxWidth {
			break
		}
		result = candidate
	}
	return result
}

// buildHelpContent creates the help modal content: bindings on the left,
// input bindings and the model list on the right.
func (m Model) buildHelpContent() string {
	var left, right strings.Builder

	for _, section := range []struct{ title, context string }{
		{"Global", keymap.ContextGlobal},
		{"Models", keymap.ContextPicker},
	} {
		left.WriteString(styles.Title.Render(section.title))
		left.WriteString("\n")
		m.renderBindingSection(&left, section.context)
		left.WriteString("\n")
	}

	right.WriteString(styles.Title.Render("Input"))
	right.WriteString("\n")
	m.renderBindingSection(&right, keymap.ContextInput)
	right.WriteString("\n")
	right.WriteString(styles.Title.Render("Available"))
	right.WriteString("\n")
	for _, d := range m.registry.Descriptors() {
		fmt.Fprintf(&right, "  %s\n  %s\n", d.Name, styles.Muted.Render(d.Category))
	}
	right.WriteString("\n")
	if m.version != "" {
		right.WriteString(styles.Subtle.Render("modeldeck " + m.version))
		right.WriteString("\n")
	}
	right.WriteString(styles.Subtle.Render("Press ? or esc to close"))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(4).Render(left.String()),
		right.String(),
	)
	return styles.ModalTitle.Render("Keyboard Shortcuts") + "\n" + body
}

// renderBindingSection renders bindings for a context, one line per command.
func (m Model) renderBindingSection(b *strings.Builder, context string) {
	seen := make(map[string]bool)
	for _, binding := range m.keymap.BindingsForContext(context) {
		if seen[binding.Command] {
			continue
		}
		seen[binding.Command] = true

		keyStr := formatBindingKeys(m.keymap.KeysFor(binding.Command, context))
		padded := fmt.Sprintf("%-11s", keyStr)
		fmt.Fprintf(b, "  %s %s\n", styles.Muted.Render(padded), formatCommandName(binding.Command))
	}
}

// formatBindingKeys formats multiple keys into a display string.
func formatBindingKeys(keys []string) string {
	if len(keys) > 2 {
		keys = keys[:2]
	}
	return strings.Join(keys, ", ")
}

// formatCommandName converts a command ID to a display name.
func formatCommandName(cmd string) string {
	return strings.ReplaceAll(cmd, "-", " ")
}

// buildHistoryContent creates the history modal content.
func (m Model) buildHistoryContent() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Recent runs"))
	b.WriteString("\n")

	width := ui.ModalWidthLarge
	switch {
	case m.historyErr != nil:
		b.WriteString(styles.StatusError.Render(m.historyErr.Error()))
	case m.historyEntries == nil:
		b.WriteString(styles.Muted.Render("Loading..."))
	case len(m.historyEntries) == 0:
		b.WriteString(styles.Muted.Render("No runs recorded yet."))
	default:
		end := min(m.historyScroll+historyRows, len(m.historyEntries))
		for _, e := range m.historyEntries[m.historyScroll:end] {
			head := fmt.Sprintf("%s  %-20s %8.1f ms  ",
				e.CreatedAt.Local().Format("01-02 15:04:05"), ui.Fit(e.Adapter, 20), e.ElapsedMS)
			rest := width - lipgloss.Width(head)
			if e.OK() {
				b.WriteString(styles.Muted.Render(head) + ui.FirstLine(e.Result, rest))
			} else {
				b.WriteString(styles.Muted.Render(head) + styles.StatusError.Render(ui.FirstLine(e.Error, rest)))
			}
			b.WriteString("\n")
		}
		b.WriteString(styles.Subtle.Render(fmt.Sprintf("%d-%d of %d", m.historyScroll+1, end, len(m.historyEntries))))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.Subtle.Render("j/k to scroll • esc to close"))
	return b.String()
}
