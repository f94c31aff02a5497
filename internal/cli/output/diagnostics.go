package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
)

// DiagnosticView is the structured form of one parse diagnostic.
type DiagnosticView struct {
	File      string   `json:"file,omitempty" yaml:"file,omitempty"`
	Kind      string   `json:"kind" yaml:"kind"`
	Line      int      `json:"line" yaml:"line"`
	Column    int      `json:"column" yaml:"column"`
	Offset    int      `json:"offset" yaml:"offset"`
	EndLine   int      `json:"end_line" yaml:"end_line"`
	EndColumn int      `json:"end_column" yaml:"end_column"`
	Message   string   `json:"message" yaml:"message"`
	Expected  []string `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// FileResult is the outcome of checking one input.
type FileResult struct {
	File        string           `json:"file" yaml:"file"`
	Valid       bool             `json:"valid" yaml:"valid"`
	Diagnostics []DiagnosticView `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// CheckSummary totals a check run.
type CheckSummary struct {
	Files       int `json:"files" yaml:"files"`
	Invalid     int `json:"invalid" yaml:"invalid"`
	Diagnostics int `json:"diagnostics" yaml:"diagnostics"`
}

// CheckOutput is the structured result of `jpql check`.
type CheckOutput struct {
	Results []FileResult `json:"results" yaml:"results"`
	Summary CheckSummary `json:"summary" yaml:"summary"`
}

// NewDiagnosticViews converts parser diagnostics for file.
func NewDiagnosticViews(file string, ds parser.Diagnostics) []DiagnosticView {
	views := make([]DiagnosticView, len(ds))
	for i, d := range ds {
		v := DiagnosticView{
			File:      file,
			Kind:      d.Kind.String(),
			Line:      d.Pos.Line,
			Column:    d.Pos.Column,
			Offset:    d.Offset,
			EndLine:   d.End.Line,
			EndColumn: d.End.Column,
			Message:   d.Message,
		}
		for _, t := range d.Expected.Types() {
			v.Expected = append(v.Expected, t.String())
		}
		views[i] = v
	}
	return views
}

// Diagnostics writes ds to stderr as compiler-style messages, each followed
// by the offending source line and a caret under the error.
func (r *Renderer) Diagnostics(file, src string, ds parser.Diagnostics) {
	lines := strings.Split(src, "\n")
	for _, d := range ds {
		loc := fmt.Sprintf("%s:%d:%d:", file, d.Pos.Line, d.Pos.Column)
		_, _ = fmt.Fprintf(r.errOut, "%s %s %s\n",
			r.styles.Bold.Render(loc),
			r.styles.Error.Render(d.Kind.String()+" error:"),
			d.Message)

		if d.Pos.Line < 1 || d.Pos.Line > len(lines) {
			continue
		}
		line := strings.TrimRight(lines[d.Pos.Line-1], "\r")
		_, _ = fmt.Fprintf(r.errOut, "  %s\n", r.styles.Muted.Render(line))
		_, _ = fmt.Fprintf(r.errOut, "  %s\n", r.styles.Caret.Render(caret(line, d)))
	}
}

// caret returns the marker line for d under line. Tabs before the column
// are kept so the marker lines up.
func caret(line string, d parser.Diagnostic) string {
	col := min(max(d.Pos.Column-1, 0), len(line))
	var b strings.Builder
	for i := 0; i < col; i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	width := 1
	if d.End.Line == d.Pos.Line && d.End.Column > d.Pos.Column {
		width = min(d.End.Column-d.Pos.Column, max(len(line)-col, 1))
	}
	b.WriteString("^")
	b.WriteString(strings.Repeat("~", width-1))
	return b.String()
}

// DiagnosticsTable renders views as a table.
func (r *Renderer) DiagnosticsTable(views []DiagnosticView) {
	rows := make([]table.Row, len(views))
	for i, v := range views {
		rows[i] = table.Row{v.File, v.Line, v.Column, v.Kind, v.Message}
	}
	r.Table(table.Row{"File", "Line", "Col", "Kind", "Message"}, rows)
}
