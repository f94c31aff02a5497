package parser

import (
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Conditional expressions:
//
//	conditional_expression → conditional_term {OR conditional_term}*
//	conditional_term       → conditional_factor {AND conditional_factor}*
//	conditional_factor     → [NOT] conditional_primary
//	conditional_primary    → simple_cond_expression | ( conditional_expression )
//	simple_cond_expression → comparison | between | in | like | null_comparison
//	                         | empty_collection_comparison | collection_member
//	                         | exists
//
// A '(' at the start of a conditional primary may open either a nested
// condition or a parenthesized operand, as in (a + b) > c. The choice is
// made by speculating on simple_cond_expression first.

var notPredicates = token.NewSet(token.BETWEEN, token.IN, token.LIKE, token.MEMBER)

func buildLogical(op token.TokenType, left, right ast.Expr, span token.Span) ast.Expr {
	return &ast.LogicalExpression{NodeInfo: ast.NodeInfo{Span: span}, Op: op, Left: left, Right: right}
}

func (p *Parser) parseConditionalExpression() ast.Expr {
	return p.climb(conditionalLevels, 0, p.parseConditionalFactor, buildLogical)
}

func (p *Parser) parseConditionalFactor() ast.Expr {
	if p.check(token.NOT) && !p.checkPeek(token.EXISTS) {
		start := p.startPos()
		p.advance()
		inner := p.parseConditionalPrimary()
		return &ast.NotExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Expr: inner}
	}
	return p.parseConditionalPrimary()
}

func (p *Parser) parseConditionalPrimary() ast.Expr {
	if p.check(token.LPAREN) && !p.checkPeek(token.SELECT) {
		if p.speculate("simple_cond_expression", func() { p.parseSimpleCondExpression() }) {
			return p.parseSimpleCondExpression()
		}
		start := p.startPos()
		p.advance()
		inner := p.parseConditionalExpression()
		p.expect(token.RPAREN)
		return &ast.ParenExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Expr: inner}
	}
	if !p.checkSet(conditionStart) {
		p.fail(conditionStart)
	}
	return p.parseSimpleCondExpression()
}

func (p *Parser) parseSimpleCondExpression() ast.Expr {
	if p.check(token.EXISTS) || (p.check(token.NOT) && p.checkPeek(token.EXISTS)) {
		return p.parseExistsExpression()
	}
	start := p.startPos()
	left := p.parseScalarExpression()
	return p.parsePredicate(start, left)
}

// parsePredicate parses what follows the left operand of a simple condition.
func (p *Parser) parsePredicate(start token.Position, left ast.Expr) ast.Expr {
	not := false
	if p.check(token.NOT) {
		if !notPredicates.Has(p.peekAt(1).Type) {
			p.advance()
			p.fail(notPredicates)
		}
		p.advance()
		not = true
	}

	switch t := p.cur().Type; {
	case comparisonOps.Has(t) && !not:
		return p.parseComparison(start, left)
	case t == token.IS && !not:
		return p.parseIsExpression(start, left)
	case t == token.BETWEEN:
		p.advance()
		low := p.parseScalarExpression()
		p.expect(token.AND)
		high := p.parseScalarExpression()
		return &ast.BetweenExpression{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Expr:     left, Not: not, Low: low, High: high,
		}
	case t == token.IN:
		return p.parseInExpression(start, left, not)
	case t == token.LIKE:
		return p.parseLikeExpression(start, left, not)
	case t == token.MEMBER:
		p.advance()
		of := p.match(token.OF)
		coll := p.parsePath()
		return &ast.CollectionMemberExpression{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Entity:   left, Not: not, Of: of, Collection: coll,
		}
	}
	if not {
		p.fail(notPredicates)
	}
	p.fail(predicateStart)
	return nil
}

// parseComparison parses op (scalar_expression | (ALL | ANY | SOME) ( subquery )).
func (p *Parser) parseComparison(start token.Position, left ast.Expr) ast.Expr {
	op := p.expectSet(comparisonOps)
	var right ast.Expr
	if p.checkSet(quantifiers) && p.isFunctionCall() {
		qStart := p.startPos()
		q := p.advance()
		sub := p.parseParenSubquery()
		right = &ast.AllOrAnyExpression{
			NodeInfo:   ast.NodeInfo{Span: p.spanFrom(qStart)},
			Quantifier: q.Type,
			Subquery:   sub,
		}
	} else {
		right = p.parseScalarExpression()
	}
	return &ast.ComparisonExpression{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Left:     left, Op: op.Type, Right: right,
	}
}

// parseIsExpression parses IS [NOT] (NULL | EMPTY).
func (p *Parser) parseIsExpression(start token.Position, left ast.Expr) ast.Expr {
	p.expect(token.IS)
	not := p.match(token.NOT)
	switch {
	case p.match(token.NULL):
		return &ast.NullComparisonExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Expr: left, Not: not}
	case p.match(token.EMPTY):
		return &ast.EmptyCollectionComparisonExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Path: left, Not: not}
	}
	p.fail(token.NewSet(token.NULL, token.EMPTY))
	return nil
}

// parseInExpression parses IN (subquery | in_item {, in_item}*) or
// IN collection_valued_input_parameter.
func (p *Parser) parseInExpression(start token.Position, left ast.Expr, not bool) ast.Expr {
	p.expect(token.IN)
	in := &ast.InExpression{Expr: left, Not: not}
	switch {
	case p.checkSet(paramStart):
		in.Parameter = p.parseInputParameter()
	case p.check(token.LPAREN) && p.checkPeek(token.SELECT):
		in.Subquery = p.parseParenSubquery()
	default:
		p.expect(token.LPAREN)
		in.Items = p.parseScalarList()
		p.expect(token.RPAREN)
	}
	in.Span = p.spanFrom(start)
	return in
}

// parseLikeExpression parses LIKE pattern [ESCAPE escape_character]. A '%'
// may be written directly around a parameter pattern: LIKE %:name%.
func (p *Parser) parseLikeExpression(start token.Position, left ast.Expr, not bool) ast.Expr {
	p.expect(token.LIKE)
	like := &ast.LikeExpression{Expr: left, Not: not}

	like.LeadingPercent = p.match(token.PERCENT)
	patternTok := p.cur()
	like.Pattern = p.parseScalarExpression()
	like.TrailingPercent = p.match(token.PERCENT)
	if like.LeadingPercent || like.TrailingPercent {
		if _, ok := like.Pattern.(*ast.InputParameter); !ok {
			p.failAt(patternTok, ErrWildcardNotParam)
		}
	}

	if p.match(token.ESCAPE) {
		if p.checkSet(paramStart) {
			like.Escape = p.parseInputParameter()
		} else {
			like.Escape = p.parseLiteral()
		}
	}

	like.Span = p.spanFrom(start)
	return like
}

// parseExistsExpression parses [NOT] EXISTS ( subquery ).
func (p *Parser) parseExistsExpression() ast.Expr {
	start := p.startPos()
	not := p.match(token.NOT)
	p.expect(token.EXISTS)
	sub := p.parseParenSubquery()
	return &ast.ExistsExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Not: not, Subquery: sub}
}
