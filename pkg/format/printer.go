// Package format prints JPQL syntax trees back to query text.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/token"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const indentSize = 2

// Printer writes a tree as JPQL text.
type Printer struct {
	cfg         config
	caser       cases.Caser
	output      *bytes.Buffer
	depth       int
	nested      int // subquery depth; clauses inside subqueries stay on one line
	atLineStart bool
}

func newPrinter(cfg config) *Printer {
	caser := cases.Upper(language.Und)
	if cfg.keywordCase == Lower {
		caser = cases.Lower(language.Und)
	}
	return &Printer{
		cfg:         cfg,
		caser:       caser,
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), " \n")
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) keyword(s string) {
	p.write(p.caser.String(s))
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords by token type, separated by spaces.
func (p *Printer) kw(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.space()
		}
		p.keyword(t.String())
	}
}

// clause starts a new top-level clause: on its own line in multiline
// mode, otherwise after a single space.
func (p *Printer) clause() {
	if p.cfg.multiline && p.nested == 0 {
		p.writeln()
		return
	}
	p.space()
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}
