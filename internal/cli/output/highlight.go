package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/leapjpql/pkg/semantic"
)

// Highlight styles src by its classified tokens. Text between tokens,
// including comments and whitespace, is copied unchanged.
func (r *Renderer) Highlight(src string, tokens []semantic.Token) string {
	var b strings.Builder
	at := 0
	for _, t := range tokens {
		start, end := t.Span.Start.Offset, t.Span.End.Offset
		if start < at || end > len(src) {
			continue
		}
		b.WriteString(src[at:start])
		renderLines(&b, r.styles.Kind(t.Kind), src[start:end])
		at = end
	}
	b.WriteString(src[at:])
	return b.String()
}

// renderLines styles each line of s separately so lipgloss does not pad
// multi-line text into a block.
func renderLines(b *strings.Builder, style lipgloss.Style, s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(style.Render(line))
		}
	}
}
