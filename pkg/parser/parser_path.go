package parser

import (
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Names and paths:
//
//	identification_variable → IDENT | contextual keyword
//	result_variable         → IDENT | contextual keyword
//	entity_name             → identification_variable {. field}*
//	path                    → path_root {. field}*
//	path_root               → identification_variable
//	                          | (KEY | VALUE | ENTRY) ( identification_variable )
//	                          | TREAT ( path AS entity_name )
//
// Which keywords count as names depends on the position: see the
// contextual sets in package token.

func (p *Parser) parseIdentifier(set token.Set) *ast.Identifier {
	tok := p.expectSet(set)
	return &ast.Identifier{
		NodeInfo: ast.NodeInfo{Span: tok.Span()},
		Name:     tok.Literal,
		Keyword:  tok.Type,
	}
}

func (p *Parser) parseIdentificationVariable() *ast.Identifier {
	return p.parseIdentifier(token.IdentVariable)
}

func (p *Parser) parseResultVariable() *ast.Identifier {
	return p.parseIdentifier(token.ResultVariable)
}

func (p *Parser) parseFieldName() *ast.Identifier {
	return p.parseIdentifier(token.FieldName)
}

// parseEntityName parses a simple or dot-qualified entity or class name.
func (p *Parser) parseEntityName() *ast.EntityName {
	start := p.startPos()
	var sb strings.Builder
	sb.WriteString(p.expectSet(token.IdentVariable).Literal)
	for p.check(token.DOT) {
		p.advance()
		sb.WriteByte('.')
		sb.WriteString(p.expectSet(token.FieldName).Literal)
	}
	return &ast.EntityName{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: sb.String()}
}

// parsePath parses a path expression. A root without fields is returned
// as is: *ast.Identifier, *ast.QualifiedIdentifier or *ast.TreatExpression.
func (p *Parser) parsePath() ast.Expr {
	start := p.startPos()

	var root ast.Expr
	switch {
	case p.check(token.TREAT):
		root = p.parseTreatExpression()
	case p.checkSet(mapQualifiers) && p.isFunctionCall():
		root = p.parseQualifiedIdentifier()
	default:
		if !p.checkSet(token.IdentVariable) {
			p.fail(pathStart)
		}
		root = p.parseIdentificationVariable()
	}

	if !p.check(token.DOT) {
		return root
	}
	path := &ast.PathExpression{Root: root}
	for p.match(token.DOT) {
		path.Fields = append(path.Fields, p.parseFieldName())
	}
	path.Span = p.spanFrom(start)
	return path
}

// parseQualifiedIdentifier parses KEY(v), VALUE(v) or ENTRY(v).
func (p *Parser) parseQualifiedIdentifier() *ast.QualifiedIdentifier {
	start := p.startPos()
	q := p.expectSet(mapQualifiers)
	p.expect(token.LPAREN)
	v := p.parseIdentificationVariable()
	p.expect(token.RPAREN)
	return &ast.QualifiedIdentifier{
		NodeInfo:  ast.NodeInfo{Span: p.spanFrom(start)},
		Qualifier: q.Type,
		Variable:  v,
	}
}

// parseTreatExpression parses TREAT ( path AS entity_name ).
func (p *Parser) parseTreatExpression() *ast.TreatExpression {
	start := p.startPos()
	p.expect(token.TREAT)
	p.expect(token.LPAREN)
	path := p.parsePath()
	p.expect(token.AS)
	subtype := p.parseEntityName()
	p.expect(token.RPAREN)
	return &ast.TreatExpression{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Path:     path,
		Subtype:  subtype,
	}
}

// rootName returns the identification variable a path starts from, or "".
func rootName(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.PathExpression:
		return rootName(e.Root)
	case *ast.QualifiedIdentifier:
		return e.Variable.Name
	case *ast.TreatExpression:
		return rootName(e.Path)
	}
	return ""
}

// pathText renders a path for scope bookkeeping.
func pathText(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.PathExpression:
		var sb strings.Builder
		sb.WriteString(pathText(e.Root))
		for _, f := range e.Fields {
			sb.WriteByte('.')
			sb.WriteString(f.Name)
		}
		return sb.String()
	case *ast.QualifiedIdentifier:
		return e.Qualifier.String() + "(" + e.Variable.Name + ")"
	case *ast.TreatExpression:
		return "TREAT(" + pathText(e.Path) + " AS " + e.Subtype.Name + ")"
	}
	return ""
}
