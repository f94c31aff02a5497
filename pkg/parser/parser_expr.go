package parser

import (
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Scalar expressions:
//
//	scalar_expression     → arithmetic_term {(+ | -) arithmetic_term}*
//	arithmetic_term       → arithmetic_factor {(* | /) arithmetic_factor}*
//	arithmetic_factor     → [+ | -] arithmetic_primary
//	arithmetic_primary    → path | literal | input_parameter | ( scalar_expression )
//	                        | ( subquery ) | function | aggregate_expression
//	                        | case_expression | datetime
//	constructor_expression → NEW entity_name ( scalar_expression {, scalar_expression}* )
//
// String, datetime, boolean, enum and entity operands share the arithmetic
// rules; their types are not checked here.

// Operator levels for precedence climbing, loosest first. Every operator
// is left associative.
type levels []token.Set

var (
	conditionalLevels = levels{
		token.NewSet(token.OR),
		token.NewSet(token.AND),
	}
	arithmeticLevels = levels{
		token.NewSet(token.PLUS, token.MINUS),
		token.NewSet(token.STAR, token.SLASH),
	}
)

// binaryBuilder makes the node for left op right.
type binaryBuilder func(op token.TokenType, left, right ast.Expr, span token.Span) ast.Expr

// climb parses operands joined by the operators of lv[level:]. Recursion
// only happens between levels; a run of operators on one level is folded
// to the left in a loop.
func (p *Parser) climb(lv levels, level int, operand func() ast.Expr, build binaryBuilder) ast.Expr {
	if level == len(lv) {
		return operand()
	}
	left := p.climb(lv, level+1, operand, build)
	for p.checkSet(lv[level]) {
		op := p.advance()
		right := p.climb(lv, level+1, operand, build)
		span := token.Span{Start: left.GetSpan().Start, End: right.GetSpan().End}
		left = build(op.Type, left, right, span)
	}
	return left
}

func buildArithmetic(op token.TokenType, left, right ast.Expr, span token.Span) ast.Expr {
	return &ast.ArithmeticExpression{NodeInfo: ast.NodeInfo{Span: span}, Op: op, Left: left, Right: right}
}

func (p *Parser) parseScalarExpression() ast.Expr {
	return p.climb(arithmeticLevels, 0, p.parseArithmeticFactor, buildArithmetic)
}

// parseScalarOrNull also accepts NULL, where the grammar allows it as a value.
func (p *Parser) parseScalarOrNull() ast.Expr {
	if p.check(token.NULL) {
		tok := p.advance()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Span: tok.Span()}, Kind: ast.LiteralNull, Value: tok.Literal}
	}
	return p.parseScalarExpression()
}

func (p *Parser) parseArithmeticFactor() ast.Expr {
	if p.check(token.PLUS) || p.check(token.MINUS) {
		start := p.startPos()
		op := p.advance()
		operand := p.parseArithmeticPrimary()
		return &ast.UnaryExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Op: op.Type, Expr: operand}
	}
	return p.parseArithmeticPrimary()
}

func (p *Parser) parseArithmeticPrimary() ast.Expr {
	tok := p.cur()
	switch t := tok.Type; {
	case t == token.LPAREN:
		if p.checkPeek(token.SELECT) {
			return p.parseParenSubquery()
		}
		start := p.startPos()
		p.advance()
		inner := p.parseScalarExpression()
		p.expect(token.RPAREN)
		return &ast.ParenExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Expr: inner}
	case literalStart.Has(t):
		return p.parseLiteral()
	case paramStart.Has(t):
		return p.parseInputParameter()
	case t == token.CASE:
		return p.parseCaseExpression()
	case t == token.COALESCE:
		return p.parseCoalesceExpression()
	case t == token.NULLIF:
		return p.parseNullIfExpression()
	case t == token.TRIM:
		return p.parseTrimExpression()
	case t == token.EXTRACT:
		return p.parseExtractExpression()
	case t == token.FUNCTION:
		return p.parseFunctionInvocation()
	case datetimeStart.Has(t):
		return p.parseCurrentDatetime()
	case aggregateFuncs.Has(t) && p.isFunctionCall():
		return p.parseAggregateExpression()
	case t == token.TYPE && p.isFunctionCall():
		return p.parseTypeDiscriminator()
	case functionKeywordSet.Has(t) && p.isFunctionCall():
		return p.parseFunctionCall()
	case pathStart.Has(t):
		return p.parsePath()
	}
	p.fail(arithmeticPrimaryStart)
	return nil
}

var functionKeywordSet = functionKeywords()

func (p *Parser) parseLiteral() *ast.Literal {
	tok := p.expectSet(literalStart)
	lit := &ast.Literal{NodeInfo: ast.NodeInfo{Span: tok.Span()}, Value: tok.Literal}
	switch tok.Type {
	case token.STRING:
		lit.Kind = ast.LiteralString
	case token.JAVA_STRING:
		lit.Kind = ast.LiteralJavaString
	case token.INT:
		lit.Kind = ast.LiteralInt
	case token.LONG:
		lit.Kind = ast.LiteralLong
	case token.FLOAT:
		lit.Kind = ast.LiteralFloat
	case token.TRUE, token.FALSE:
		lit.Kind = ast.LiteralBoolean
	}
	return lit
}

// parseInputParameter parses :name, ?1, or a :#{...} / ?#{...} expression.
func (p *Parser) parseInputParameter() *ast.InputParameter {
	tok := p.expectSet(paramStart)
	param := &ast.InputParameter{NodeInfo: ast.NodeInfo{Span: tok.Span()}}
	switch tok.Type {
	case token.NAMED_PARAM:
		param.Kind = ast.ParamNamed
		param.Name = tok.Literal[1:]
	case token.POSITIONAL_PARAM:
		param.Kind = ast.ParamPositional
		param.Name = tok.Literal[1:]
	case token.EXPR_PARAM:
		param.Kind = ast.ParamExpression
		// strip the :#{ or ?#{ prefix and closing brace
		param.Name = tok.Literal[3 : len(tok.Literal)-1]
	}
	return param
}

// parseConstructorExpression parses NEW class ( item {, item}* ).
func (p *Parser) parseConstructorExpression() *ast.ConstructorExpression {
	start := p.startPos()
	p.expect(token.NEW)
	class := p.parseEntityName()
	p.expect(token.LPAREN)
	args := p.parseScalarList()
	p.expect(token.RPAREN)
	return &ast.ConstructorExpression{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Class:    class,
		Args:     args,
	}
}

// parseObjectExpression parses OBJECT ( identification_variable ).
func (p *Parser) parseObjectExpression() *ast.ObjectExpression {
	start := p.startPos()
	p.expect(token.OBJECT)
	p.expect(token.LPAREN)
	v := p.parseIdentificationVariable()
	p.expect(token.RPAREN)
	return &ast.ObjectExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Variable: v}
}
