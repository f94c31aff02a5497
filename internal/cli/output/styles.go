package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/leapjpql/pkg/semantic"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Header  lipgloss.Style
	Caret   lipgloss.Style

	kinds map[semantic.Kind]lipgloss.Style
}

// ANSI 256 palette
const (
	colorRed     = lipgloss.Color("9")
	colorYellow  = lipgloss.Color("11")
	colorGreen   = lipgloss.Color("10")
	colorGray    = lipgloss.Color("245")
	colorBlue    = lipgloss.Color("12")
	colorMagenta = lipgloss.Color("13")
	colorCyan    = lipgloss.Color("14")
	colorOrange  = lipgloss.Color("208")
	colorTeal    = lipgloss.Color("37")
)

// NewStyles creates styles that render for w with the given profile.
func NewStyles(w io.Writer, profile termenv.Profile) *Styles {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(profile)
	base := lr.NewStyle().TabWidth(lipgloss.NoTabConversion)
	fg := func(c lipgloss.Color) lipgloss.Style { return base.Foreground(c) }

	return &Styles{
		Error:   fg(colorRed).Bold(true),
		Warning: fg(colorYellow).Bold(true),
		Success: fg(colorGreen),
		Muted:   fg(colorGray),
		Bold:    base.Bold(true),
		Header:  fg(colorBlue).Bold(true),
		Caret:   fg(colorRed).Bold(true),
		kinds: map[semantic.Kind]lipgloss.Style{
			semantic.Keyword:   fg(colorBlue).Bold(true),
			semantic.Type:      fg(colorTeal),
			semantic.Class:     fg(colorCyan),
			semantic.String:    fg(colorGreen),
			semantic.Number:    fg(colorOrange),
			semantic.Operator:  base,
			semantic.Variable:  base,
			semantic.Method:    fg(colorMagenta),
			semantic.Parameter: fg(colorYellow),
		},
	}
}

// Kind returns the highlighting style for a token kind.
func (s *Styles) Kind(k semantic.Kind) lipgloss.Style {
	return s.kinds[k]
}
