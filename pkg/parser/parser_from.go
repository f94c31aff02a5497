package parser

import (
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// FROM clause grammar:
//
//	from_clause                        → FROM from_item {, from_item}*
//	from_item                          → identification_variable_declaration
//	                                     | collection_member_declaration
//	identification_variable_declaration → range_variable_declaration {join | fetch_join}*
//	range_variable_declaration         → entity_name [AS] identification_variable
//	join                               → join_spec path [AS] identification_variable [ON conditional_expression]
//	fetch_join                         → join_spec FETCH path [[AS] identification_variable] [ON conditional_expression]
//	join_spec                          → [LEFT [OUTER] | INNER] JOIN
//	collection_member_declaration      → IN ( path ) [AS] identification_variable
//
// Subquery FROM clauses additionally accept declarations over a variable
// of an enclosing query:
//
//	derived_path_declaration              → path [AS] identification_variable {join}*
//	derived_collection_member_declaration → IN path

var (
	fromItemFollow = fromFollow.With(token.COMMA)
	joinFollow     = fromItemFollow.Union(joinStart)
)

// parseFromClause parses a FROM clause. In a subquery, derived
// declarations are recognized as well.
func (p *Parser) parseFromClause(subquery bool) *ast.FromClause {
	start := p.startPos()
	p.expect(token.FROM)

	clause := &ast.FromClause{}
	for {
		p.recoverAt("from_item", fromItemFollow, func() {
			clause.Items = append(clause.Items, p.parseFromItem(subquery))
		})
		if !p.match(token.COMMA) {
			break
		}
	}

	clause.Span = p.spanFrom(start)
	return clause
}

func (p *Parser) parseFromItem(subquery bool) ast.FromItem {
	switch {
	case p.check(token.IN) && p.isFunctionCall():
		return p.parseCollectionMemberDeclaration()
	case p.check(token.IN) && subquery:
		return p.parseDerivedCollectionMemberDeclaration()
	case subquery && p.isDerivedPathStart():
		return p.parseDerivedPathDeclaration()
	}
	return p.parseIdentificationVariableDeclaration()
}

// isDerivedPathStart reports whether a subquery FROM item starts with a
// path over a variable of an enclosing query rather than an entity name.
// Both are dotted name sequences, so the enclosing scope decides.
func (p *Parser) isDerivedPathStart() bool {
	switch {
	case p.check(token.TREAT):
		return true
	case p.checkSet(mapQualifiers) && p.isFunctionCall():
		return true
	case p.checkSet(token.IdentVariable) && p.checkPeek(token.DOT):
		_, ok := p.scope.LookupEnclosing(p.cur().Literal)
		return ok
	}
	return false
}

func (p *Parser) parseIdentificationVariableDeclaration() *ast.IdentificationVariableDeclaration {
	start := p.startPos()
	decl := &ast.IdentificationVariableDeclaration{Range: p.parseRangeVariableDeclaration()}
	decl.Joins = p.parseJoins()
	decl.Span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseRangeVariableDeclaration() *ast.RangeVariableDeclaration {
	start := p.startPos()
	decl := &ast.RangeVariableDeclaration{Entity: p.parseEntityName()}
	decl.As = p.match(token.AS)
	decl.Variable = p.parseIdentificationVariable()
	p.scope.declare(decl.Variable, VarRange, decl.Entity.Name)
	decl.Span = p.spanFrom(start)
	return decl
}

// parseJoins parses joins until the next token cannot start one. Each join
// is its own recovery point.
func (p *Parser) parseJoins() []*ast.Join {
	var joins []*ast.Join
	for p.checkSet(joinStart) {
		p.recoverAt("join", joinFollow, func() {
			joins = append(joins, p.parseJoin())
		})
	}
	return joins
}

func (p *Parser) parseJoin() *ast.Join {
	start := p.startPos()
	join := &ast.Join{Kind: ast.JoinInner}

	switch {
	case p.match(token.LEFT):
		join.Kind = ast.JoinLeft
		join.Explicit = true
		join.Outer = p.match(token.OUTER)
	case p.match(token.INNER):
		join.Explicit = true
	}
	p.expect(token.JOIN)
	join.Fetch = p.match(token.FETCH)

	join.Path = p.parsePath()
	if _, ok := join.Path.(*ast.Identifier); ok {
		// a join needs an association path, not a bare variable
		p.fail(token.NewSet(token.DOT))
	}

	if p.match(token.AS) {
		join.As = true
		join.Variable = p.parseIdentificationVariable()
	} else if !join.Fetch || p.isAliasStart(token.IdentVariable) {
		join.Variable = p.parseIdentificationVariable()
	}
	if join.Variable != nil {
		p.scope.declare(join.Variable, VarJoin, pathText(join.Path))
	}

	if p.match(token.ON) {
		join.Condition = p.parseConditionalExpression()
	}

	join.Span = p.spanFrom(start)
	return join
}

func (p *Parser) parseCollectionMemberDeclaration() *ast.CollectionMemberDeclaration {
	start := p.startPos()
	p.expect(token.IN)
	p.expect(token.LPAREN)
	decl := &ast.CollectionMemberDeclaration{Path: p.parsePath()}
	p.expect(token.RPAREN)
	decl.As = p.match(token.AS)
	decl.Variable = p.parseIdentificationVariable()
	p.scope.declare(decl.Variable, VarCollectionMember, pathText(decl.Path))
	decl.Span = p.spanFrom(start)
	return decl
}

// parseDerivedCollectionMemberDeclaration parses IN superquery_variable.path.
func (p *Parser) parseDerivedCollectionMemberDeclaration() *ast.DerivedCollectionMemberDeclaration {
	start := p.startPos()
	p.expect(token.IN)
	root := p.parseIdentificationVariable()
	path := &ast.PathExpression{Root: root}
	for {
		p.expect(token.DOT)
		path.Fields = append(path.Fields, p.parseFieldName())
		if !p.check(token.DOT) {
			break
		}
	}
	path.Span = p.spanFrom(root.Span.Start)
	return &ast.DerivedCollectionMemberDeclaration{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Path: path}
}

func (p *Parser) parseDerivedPathDeclaration() *ast.DerivedPathDeclaration {
	start := p.startPos()
	decl := &ast.DerivedPathDeclaration{Path: p.parsePath()}
	decl.As = p.match(token.AS)
	decl.Variable = p.parseIdentificationVariable()
	p.scope.declare(decl.Variable, VarDerived, pathText(decl.Path))
	decl.Joins = p.parseJoins()
	decl.Span = p.spanFrom(start)
	return decl
}
