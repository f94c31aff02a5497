// Package parser turns JPQL query text into a syntax tree.
//
// # Usage
//
//	stmt, diags := parser.Parse("SELECT e FROM Employee e WHERE e.salary > :min")
//	for _, d := range diags {
//	    // report d
//	}
//
// Parse is total: it never panics, and a nil statement always comes with
// at least one diagnostic. Parsing is a pure function of its input, so
// concurrent calls need no synchronization.
//
// # Grammar Overview
//
//	ql_statement     → select_statement | update_statement | delete_statement
//	select_statement → select_clause from_clause [where_clause] [groupby_clause]
//	                   [having_clause] [orderby_clause]
//	update_statement → update_clause [where_clause]
//	delete_statement → delete_clause [where_clause]
//
// See each file for detailed grammar rules for that section.
//
// # Errors
//
// Lexing runs as a separate pass first; a lexical error stops the parse.
// Syntax errors unwind to the nearest clause (or list item) boundary, are
// recorded, and parsing resumes at the next token in that boundary's follow
// set, so one call reports every independent mistake.
package parser

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// DefaultMaxSpeculation bounds how many tokens the predictor may look
// ahead when trying an alternative.
const DefaultMaxSpeculation = 64

type options struct {
	maxErrors      int
	maxSpeculation int
	logger         *slog.Logger
}

// Option configures a parse.
type Option func(*options)

// WithMaxErrors stops parsing after n diagnostics. Zero means no limit.
func WithMaxErrors(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxErrors = n
		}
	}
}

// WithMaxSpeculation sets the speculative lookahead bound in tokens.
func WithMaxSpeculation(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSpeculation = n
		}
	}
}

// WithLogger receives debug events about recovery and prediction.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Result is everything one parse produces.
type Result struct {
	Statement   ast.Statement
	Diagnostics Diagnostics
	Tokens      []token.Token
	Comments    []*token.Comment
	Scope       *Scope // variables declared by the top-level query
}

// Parse parses a single JPQL statement. The returned tree may be partial
// when diagnostics are present, and is nil when nothing could be built.
func Parse(query string, opts ...Option) (ast.Statement, Diagnostics) {
	r := ParseDocument(query, opts...)
	return r.Statement, r.Diagnostics
}

// ParseStatement parses a statement and returns its diagnostics as an
// error. The error, when non-nil, is a Diagnostics value.
func ParseStatement(query string, opts ...Option) (ast.Statement, error) {
	stmt, diags := Parse(query, opts...)
	return stmt, diags.Err()
}

// ParseDocument parses query and also returns its tokens, comments and
// top-level variable scope.
func ParseDocument(query string, opts ...Option) *Result {
	o := options{maxSpeculation: DefaultMaxSpeculation, logger: discardLogger}
	for _, opt := range opts {
		opt(&o)
	}

	lexer := NewLexer(query)
	tokens, err := tokenize(lexer)
	result := &Result{Tokens: tokens, Comments: lexer.Comments}
	if err != nil {
		result.Diagnostics = Diagnostics{diagnosticFromLex(err)}
		return result
	}

	p := newParser(tokens, o)
	result.Statement = p.parse()
	result.Diagnostics = p.diags
	result.Scope = p.scope
	return result
}

func tokenize(l *Lexer) ([]token.Token, *LexError) {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if l.err != nil {
			return tokens, l.err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// Parser parses a token stream into a syntax tree.
type Parser struct {
	tokens []token.Token // always ends with EOF
	pos    int
	diags  Diagnostics
	opts   options
	log    *slog.Logger
	scope  *Scope

	speculating int // nesting depth of speculative parses
	specLimit   int // token index speculation may not pass
	subqueries  int // nesting depth of subqueries
}

func newParser(tokens []token.Token, o options) *Parser {
	return &Parser{
		tokens: tokens,
		opts:   o,
		log:    o.logger,
		scope:  newScope(nil),
	}
}

// tooManyErrors aborts the parse once the error limit is reached.
type tooManyErrors struct{}

func (p *Parser) parse() (stmt ast.Statement) {
	defer func() {
		r := recover()
		switch r := r.(type) {
		case nil, tooManyErrors:
		case *ParseError:
			stmt = nil
			p.record(r)
		default:
			stmt = nil
			p.log.Error("parser panic", "panic", r, "offset", p.cur().Pos.Offset)
			p.diags = append(p.diags, Diagnostic{
				Kind:    Syntax,
				Message: fmt.Sprintf("internal parser error: %v", r),
				Offset:  p.cur().Pos.Offset,
				Pos:     p.cur().Pos,
				End:     p.cur().End,
			})
		}
	}()

	stmt = p.parseQLStatement()
	if stmt != nil && !p.check(token.EOF) {
		tok := p.cur()
		if len(p.diags) == 0 || p.diags[len(p.diags)-1].Offset != tok.Pos.Offset {
			p.report(p.errorAt(tok, token.NewSet(token.EOF), fmt.Sprintf(ErrTrailingInput, describe(tok))))
		}
	}
	return stmt
}

// ---------- Token Helpers ----------

// cur returns the current token.
func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

// peekAt returns the token n positions after the current one, or EOF.
func (p *Parser) peekAt(n int) token.Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.cur().Type == t
}

// checkPeek returns true if the next token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peekAt(1).Type == t
}

// checkPeek2 returns true if the token after next is of the given type.
func (p *Parser) checkPeek2(t token.TokenType) bool {
	return p.peekAt(2).Type == t
}

// checkSet returns true if the current token is in s.
func (p *Parser) checkSet(s token.Set) bool {
	return s.Has(p.cur().Type)
}

// advance consumes and returns the current token. EOF is never consumed.
func (p *Parser) advance() token.Token {
	tok := p.cur()
	if p.speculating > 0 && p.pos >= p.specLimit {
		panic(speculationLimit{})
	}
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of type t or fails.
func (p *Parser) expect(t token.TokenType) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(token.NewSet(t))
	return token.Token{}
}

// expectSet consumes a token from s or fails.
func (p *Parser) expectSet(s token.Set) token.Token {
	if p.checkSet(s) {
		return p.advance()
	}
	p.fail(s)
	return token.Token{}
}

// startPos returns the position of the current token.
func (p *Parser) startPos() token.Position {
	return p.cur().Pos
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	end := start
	if p.pos > 0 {
		end = p.tokens[p.pos-1].End
	}
	if end.Offset < start.Offset {
		end = start
	}
	return token.Span{Start: start, End: end}
}

// ---------- Errors ----------

func (p *Parser) errorAt(tok token.Token, expected token.Set, msg string) *ParseError {
	return &ParseError{
		Pos:      tok.Pos,
		End:      tok.End,
		Found:    tok,
		Expected: expected,
		Message:  msg,
	}
}

// fail aborts the current rule with an "unexpected token" error.
func (p *Parser) fail(expected token.Set) {
	tok := p.cur()
	panic(p.errorAt(tok, expected, fmt.Sprintf(ErrUnexpectedToken, describe(tok), describeExpected(expected))))
}

// failAt aborts the current rule with a custom message anchored at tok.
func (p *Parser) failAt(tok token.Token, msg string) {
	panic(p.errorAt(tok, token.Set{}, msg))
}

// report records a diagnostic. Several errors at one offset are collapsed
// into the first.
func (p *Parser) report(err *ParseError) {
	if p.record(err) && p.opts.maxErrors > 0 && len(p.diags) >= p.opts.maxErrors {
		panic(tooManyErrors{})
	}
}

func (p *Parser) record(err *ParseError) bool {
	if n := len(p.diags); n > 0 && p.diags[n-1].Offset == err.Pos.Offset {
		return false
	}
	p.diags = append(p.diags, diagnosticFromParse(err))
	return true
}

// recoverAt runs a rule as a recovery point. A syntax error inside fn is
// recorded and the cursor skips to the next token in follow. It returns
// false when fn failed. While speculating, errors propagate unchanged.
func (p *Parser) recoverAt(rule string, follow token.Set, fn func()) (ok bool) {
	if p.speculating > 0 {
		fn()
		return true
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr, isParse := r.(*ParseError)
		if !isParse {
			panic(r)
		}
		p.report(perr)
		skipped := p.synchronize(follow)
		p.log.Debug("recovered", "rule", rule, "offset", perr.Pos.Offset, "skipped", skipped)
		ok = false
	}()
	fn()
	return true
}

// synchronize discards tokens until one in follow is reached outside any
// parentheses opened during the skip. It returns the number skipped.
func (p *Parser) synchronize(follow token.Set) int {
	if p.subqueries == 0 {
		// a ')' can only close a subquery
		follow = follow.Without(token.RPAREN)
	}
	skipped, depth := 0, 0
	for !p.check(token.EOF) {
		t := p.cur().Type
		if depth == 0 && follow.Has(t) {
			break
		}
		switch t {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth > 0 {
				depth--
			}
		}
		p.pos++
		skipped++
	}
	return skipped
}
