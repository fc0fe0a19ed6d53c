package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/styles"
)

// infoOrder lists the Describe keys shown first, in this order.
var infoOrder = []string{adapter.InfoModel, adapter.InfoCategory, adapter.InfoDescription, adapter.InfoStatus}

// infoMarkdown formats Describe output as a markdown document.
func infoMarkdown(info map[string]string) string {
	if len(info) == 0 {
		return ""
	}
	var b strings.Builder
	if name := info[adapter.InfoModel]; name != "" {
		fmt.Fprintf(&b, "## %s\n\n", name)
	}
	if desc := info[adapter.InfoDescription]; desc != "" {
		fmt.Fprintf(&b, "%s\n\n", desc)
	}
	for _, key := range []string{adapter.InfoCategory, adapter.InfoStatus} {
		if v := info[key]; v != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", key, v)
		}
	}

	var extra []string
	for key := range info {
		if !isInfoKey(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "- **%s:** %s\n", key, info[key])
	}
	return b.String()
}

func isInfoKey(key string) bool {
	for _, k := range infoOrder {
		if k == key {
			return true
		}
	}
	return false
}

// renderInfo renders the info pane with glamour, falling back to the raw
// markdown when rendering fails.
func renderInfo(info map[string]string, width int) string {
	md := infoMarkdown(info)
	if md == "" {
		return styles.Muted.Render("No model selected")
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GetMarkdownTheme()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// renderOutput renders the output pane: the error, or the last result with
// its artifact and structured output.
func renderOutput(p *panes, width int) string {
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	if p.shown != nil {
		return styles.StatusError.Render(p.shown.kind.Title()) + "\n" + wrap.Render(p.shown.err.Error())
	}
	if p.result == nil || !p.result.OK() {
		return styles.Muted.Render("No output yet. Load a model, enter input and run.")
	}

	res := p.result
	var b strings.Builder
	b.WriteString(styles.Title.Render("Result"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(res.Output.Result()))
	b.WriteString("\n\n")
	if artifact := res.Output.Artifact(); artifact != "" {
		b.WriteString(styles.Muted.Render("Artifact "))
		b.WriteString(styles.Code.Render(artifact))
		b.WriteString("\n")
	}
	b.WriteString(styles.Muted.Render(fmt.Sprintf("%s in %.1f ms", res.Request.Adapter, res.Elapsed)))
	b.WriteString("\n\n")
	b.WriteString(styles.Title.Render("Output"))
	b.WriteString("\n")
	b.WriteString(highlightJSON(res.Output))
	return b.String()
}

// highlightJSON pretty prints v and colors it with the current syntax theme.
func highlightJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(data), "json", "terminal256", styles.GetSyntaxTheme()); err != nil {
		return string(data)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// copyText returns what the copy command puts on the clipboard.
func copyText(p *panes) string {
	if p.result == nil || !p.result.OK() {
		return ""
	}
	return p.result.Output.Result()
}
