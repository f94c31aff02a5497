package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
)

// Case selects how keywords are spelled.
type Case int

// Keyword cases.
const (
	Upper Case = iota
	Lower
)

func (c Case) String() string {
	if c == Lower {
		return "lower"
	}
	return "upper"
}

// ParseCase parses "upper" or "lower".
func ParseCase(s string) (Case, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "upper":
		return Upper, nil
	case "lower":
		return Lower, nil
	}
	return Upper, fmt.Errorf("unknown keyword case %q (want upper or lower)", s)
}

type config struct {
	keywordCase Case
	multiline   bool
}

// Option configures the printer.
type Option func(*config)

// WithKeywordCase sets the keyword spelling. Names and literals are
// printed as written.
func WithKeywordCase(c Case) Option {
	return func(cfg *config) {
		cfg.keywordCase = c
	}
}

// WithMultiline puts each top-level clause and join on its own line.
func WithMultiline(on bool) Option {
	return func(cfg *config) {
		cfg.multiline = on
	}
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Format prints a statement. Parsing the output yields an equivalent tree.
func Format(stmt ast.Statement, opts ...Option) string {
	p := newPrinter(newConfig(opts))
	p.formatStatement(stmt)
	return p.String()
}

// FormatExpr prints a single expression.
func FormatExpr(e ast.Expr, opts ...Option) string {
	p := newPrinter(newConfig(opts))
	p.formatExpr(e)
	return p.String()
}

// Query parses and formats query in one call. The error is the parse's
// diagnostics.
func Query(query string, opts ...Option) (string, error) {
	stmt, err := parser.ParseStatement(query)
	if err != nil {
		return "", err
	}
	return Format(stmt, opts...), nil
}
