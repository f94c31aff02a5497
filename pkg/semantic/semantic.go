// Package semantic classifies the tokens of a JPQL query for syntax
// highlighting. Token kinds come from the lexer and are refined by each
// name's role in the syntax tree, so a keyword used as a variable is
// reported as a variable and a field name as a method.
package semantic

import (
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Kind is a highlighting class. The names match LSP semantic token types.
type Kind int

// Highlighting classes, in legend order.
const (
	Keyword Kind = iota
	Type
	Class
	String
	Number
	Operator
	Variable
	Method
	Parameter
)

var kindNames = [...]string{"keyword", "type", "class", "string", "number", "operator", "variable", "method", "parameter"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Legend lists every kind name, indexed by Kind.
func Legend() []string {
	return append([]string(nil), kindNames[:]...)
}

// Token is one classified range of the query.
type Token struct {
	Span token.Span
	Kind Kind
}

// Text returns the token's source text.
func (t Token) Text(src string) string {
	return t.Span.Text(src)
}

// Classify lexes and parses query and classifies its tokens. Invalid
// input is classified as far as it could be lexed.
func Classify(query string, opts ...parser.Option) []Token {
	return FromResult(parser.ParseDocument(query, opts...))
}

// FromResult classifies the tokens of an existing parse. The statement may
// be partial or nil.
func FromResult(r *parser.Result) []Token {
	roles := map[int]Kind{}
	if r.Statement != nil {
		collectRoles(r.Statement, r.Tokens, roles)
	}

	out := make([]Token, 0, len(r.Tokens))
	for _, tok := range r.Tokens {
		switch tok.Type {
		case token.EOF, token.ILLEGAL:
			continue
		case token.NAMED_PARAM, token.POSITIONAL_PARAM:
			out = append(out,
				piece(tok.Pos, 0, 1, Operator),
				piece(tok.Pos, 1, tok.Span().Len(), Parameter))
			continue
		case token.EXPR_PARAM:
			// :#{body} is the prefix, the #{ and } delimiters, and the body
			n := tok.Span().Len()
			out = append(out,
				piece(tok.Pos, 0, 1, Operator),
				piece(tok.Pos, 1, 3, Operator),
				piece(tok.Pos, 3, n-1, String),
				piece(tok.Pos, n-1, n, Operator))
			continue
		}
		kind, ok := roles[tok.Pos.Offset]
		if !ok {
			kind = lexicalKind(tok.Type)
		}
		out = append(out, Token{Span: tok.Span(), Kind: kind})
	}
	return out
}

// piece returns the part [from, to) of a single-line token starting at pos.
func piece(pos token.Position, from, to int, kind Kind) Token {
	at := func(n int) token.Position {
		return token.Position{Line: pos.Line, Column: pos.Column + n, Offset: pos.Offset + n}
	}
	return Token{Span: token.Span{Start: at(from), End: at(to)}, Kind: kind}
}

func lexicalKind(t token.TokenType) Kind {
	switch {
	case t == token.STRING:
		return String
	case t == token.JAVA_STRING:
		return Class
	case t == token.INT || t == token.LONG || t == token.FLOAT:
		return Number
	case t == token.IDENT:
		return Variable
	case token.IsKeyword(t):
		return Keyword
	}
	return Operator
}

// collectRoles records, by token offset, the kinds the tree assigns.
func collectRoles(stmt ast.Statement, tokens []token.Token, roles map[int]Kind) {
	mark := func(n ast.Node, kind Kind) {
		if n != nil {
			roles[n.GetSpan().Start.Offset] = kind
		}
	}
	markNames := func(e *ast.EntityName, kind Kind) {
		if e == nil {
			return
		}
		for _, tok := range tokens {
			if e.Span.Contains(tok.Pos.Offset) && tok.Type != token.DOT {
				roles[tok.Pos.Offset] = kind
			}
		}
	}
	// entity type literals are bare names compared against TYPE(...)
	markTypeLiteral := func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Identifier:
			mark(v, Type)
		case *ast.PathExpression:
			if len(v.Fields) == 0 {
				mark(v.Root, Type)
			}
		}
	}

	ast.Inspect(stmt, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.Identifier:
			if _, taken := roles[n.Span.Start.Offset]; !taken {
				mark(n, Variable)
			}
		case *ast.PathExpression:
			for _, f := range n.Fields {
				mark(f, Method)
			}
		case *ast.EntityName:
			if _, taken := roles[n.Span.Start.Offset]; !taken {
				markNames(n, Class)
			}
		case *ast.TreatExpression:
			markNames(n.Subtype, Type)
		case *ast.ComparisonExpression:
			if isTypeDiscriminator(n.Left) {
				markTypeLiteral(n.Right)
			} else if isTypeDiscriminator(n.Right) {
				markTypeLiteral(n.Left)
			}
		case *ast.InExpression:
			if isTypeDiscriminator(n.Expr) {
				for _, item := range n.Items {
					markTypeLiteral(item)
				}
			}
		case *ast.CaseExpression:
			if isTypeDiscriminator(n.Operand) {
				for _, w := range n.Whens {
					markTypeLiteral(w.Condition)
				}
			}
		}
	})
}

func isTypeDiscriminator(e ast.Expr) bool {
	_, ok := e.(*ast.TypeDiscriminator)
	return ok
}
