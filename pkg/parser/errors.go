package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// ParseError represents a syntax error with position information.
type ParseError struct {
	Pos      token.Position
	End      token.Position
	Found    token.Token
	Expected token.Set
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error. Lexical errors are fatal:
// no grammar parsing happens after one.
type LexError struct {
	Pos     token.Position
	Char    rune
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected %s, expected %s"
	ErrUnexpectedChar      = "unexpected character %q"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrUnterminatedExpr    = "unterminated parameter expression"
	ErrInvalidNumber       = "invalid number literal %q"
	ErrMissingParamName    = "missing parameter name after ':'"
	ErrWildcardNotParam    = "'%' wildcard is only allowed around a parameter"
	ErrTooFewArguments     = "%s expects at least %d argument(s), got %d"
	ErrTooManyArguments    = "%s expects at most %d argument(s), got %d"
	ErrTrailingInput       = "unexpected %s after end of statement"
)

// DiagnosticKind separates lexical from syntax problems.
type DiagnosticKind int

// Diagnostic kinds.
const (
	Lexical DiagnosticKind = iota
	Syntax
)

func (k DiagnosticKind) String() string {
	if k == Lexical {
		return "lexical"
	}
	return "syntax"
}

// Diagnostic is a problem found while parsing, anchored to a source range.
type Diagnostic struct {
	Kind     DiagnosticKind
	Message  string
	Offset   int
	Pos      token.Position
	End      token.Position
	Expected token.Set
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s", d.Kind, d.Pos.Line, d.Pos.Column, d.Message)
}

// Diagnostics is the list of problems from one parse. It implements error.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns ds as an error, or nil when it is empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// HasLexical reports whether parsing stopped on a lexical error.
func (ds Diagnostics) HasLexical() bool {
	for _, d := range ds {
		if d.Kind == Lexical {
			return true
		}
	}
	return false
}

func diagnosticFromLex(e *LexError) Diagnostic {
	end := e.Pos
	end.Offset++
	end.Column++
	return Diagnostic{
		Kind:    Lexical,
		Message: e.Message,
		Offset:  e.Pos.Offset,
		Pos:     e.Pos,
		End:     end,
	}
}

func diagnosticFromParse(e *ParseError) Diagnostic {
	return Diagnostic{
		Kind:     Syntax,
		Message:  e.Message,
		Offset:   e.Pos.Offset,
		Pos:      e.Pos,
		End:      e.End,
		Expected: e.Expected,
	}
}

// describe renders a token for messages: keywords and punctuation by name,
// everything else by kind and text.
func describe(t token.Token) string {
	switch {
	case t.Type == token.EOF:
		return "end of input"
	case token.IsKeyword(t.Type), token.IsOperator(t.Type), t.Type >= token.DOT && t.Type <= token.COLON:
		return fmt.Sprintf("'%s'", t.Literal)
	default:
		return fmt.Sprintf("%s '%s'", t.Type, t.Literal)
	}
}
