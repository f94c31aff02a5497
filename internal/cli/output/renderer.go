// Package output renders CLI results as styled text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeAuto Mode = "auto" // text; styled only on a terminal
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// ColorMode selects when text output is coloured.
type ColorMode string

// Colour modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    Mode
	isTTY   bool
	profile termenv.Profile
	styles  *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal and
// which colours it supports.
func NewRenderer(out, errOut io.Writer, mode Mode, color ColorMode) *Renderer {
	isTTY := isTerminal(out)
	return newRenderer(out, errOut, mode, isTTY, detectProfile(out, isTTY, color))
}

// NewRendererWithTTY creates a renderer with a fixed TTY state. A TTY gets
// 256 colours and anything else none. Used for testing.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	profile := termenv.Ascii
	if isTTY {
		profile = termenv.ANSI256
	}
	return newRenderer(out, errOut, mode, isTTY, profile)
}

func newRenderer(out, errOut io.Writer, mode Mode, isTTY bool, profile termenv.Profile) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:     out,
		errOut:  errOut,
		mode:    mode,
		isTTY:   isTTY,
		profile: profile,
		styles:  NewStyles(out, profile),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

func detectProfile(w io.Writer, isTTY bool, color ColorMode) termenv.Profile {
	switch color {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		if p := termenv.NewOutput(w).EnvColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	}
	if !isTTY {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// EffectiveMode resolves ModeAuto to ModeText.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto {
		return ModeText
	}
	return r.mode
}

// Structured reports whether output is JSON or YAML.
func (r *Renderer) Structured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}

// IsTTY reports whether stdout is a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Colored reports whether styles emit escape sequences.
func (r *Renderer) Colored() bool { return r.profile != termenv.Ascii }

// Styles returns the styles bound to this renderer's colour profile.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the stdout writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the stderr writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes to stdout.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes to stdout.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Warning writes a styled warning to stderr.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning:"), msg)
}

// Success writes a styled success line to stdout.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render(msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Data writes v in the structured mode. It is an error in text mode.
func (r *Renderer) Data(v any) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(v)
	case ModeYAML:
		return r.YAML(v)
	}
	return fmt.Errorf("output mode %s is not structured", r.mode)
}

// Table renders rows under header.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}
