package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Functions:
//
//	functions_returning_* → name ( scalar_expression {, scalar_expression}* )
//	aggregate_expression  → (AVG | MAX | MIN | SUM | COUNT) ( [DISTINCT] scalar_expression )
//	trim                  → TRIM ( [[LEADING | TRAILING | BOTH] [trim_character] FROM] scalar_expression )
//	extract               → EXTRACT ( field FROM scalar_expression )
//	function_invocation   → FUNCTION ( string {, scalar_expression}* )
//	case_expression       → CASE [operand] when_clause {when_clause}* ELSE scalar_expression END
//	coalesce_expression   → COALESCE ( scalar_expression {, scalar_expression}+ )
//	nullif_expression     → NULLIF ( scalar_expression , scalar_expression )
//	type_discriminator    → TYPE ( identification_variable | path | input_parameter )
//	datetime              → CURRENT_DATE | CURRENT_TIME | CURRENT_TIMESTAMP
//	                        | LOCAL (DATE | TIME | DATETIME)

type arity struct {
	min, max int // max < 0 means unbounded
}

// functionArity lists the built-in functions called with a plain argument list.
var functionArity = map[token.TokenType]arity{
	token.ABS:       {1, 1},
	token.CEILING:   {1, 1},
	token.EXP:       {1, 1},
	token.FLOOR:     {1, 1},
	token.LN:        {1, 1},
	token.SIGN:      {1, 1},
	token.SQRT:      {1, 1},
	token.LENGTH:    {1, 1},
	token.LOWER:     {1, 1},
	token.UPPER:     {1, 1},
	token.SIZE:      {1, 1},
	token.INDEX:     {1, 1},
	token.MOD:       {2, 2},
	token.POWER:     {2, 2},
	token.ROUND:     {2, 2},
	token.LOCATE:    {2, 3},
	token.SUBSTRING: {2, 3},
	token.CONCAT:    {2, -1},
}

func functionKeywords() token.Set {
	var s token.Set
	for t := range functionArity {
		s = s.With(t)
	}
	return s
}

var (
	trimSpecs     = token.NewSet(token.LEADING, token.TRAILING, token.BOTH)
	trimCharStart = paramStart.With(token.STRING, token.JAVA_STRING)
	localDatetime = token.NewSet(token.DATE, token.TIME, token.DATETIME)
)

// parseFunctionCall parses a built-in function with a plain argument list
// and checks its argument count.
func (p *Parser) parseFunctionCall() *ast.FunctionCall {
	start := p.startPos()
	name := p.advance()
	p.expect(token.LPAREN)
	args := p.parseScalarList()
	p.expect(token.RPAREN)

	if a, ok := functionArity[name.Type]; ok {
		switch {
		case len(args) < a.min:
			p.failAt(name, fmt.Sprintf(ErrTooFewArguments, name.Type, a.min, len(args)))
		case a.max >= 0 && len(args) > a.max:
			p.failAt(name, fmt.Sprintf(ErrTooManyArguments, name.Type, a.max, len(args)))
		}
	}

	return &ast.FunctionCall{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Func:     name.Type,
		Args:     args,
	}
}

// parseScalarList parses scalar_expression {, scalar_expression}*.
func (p *Parser) parseScalarList() []ast.Expr {
	args := []ast.Expr{p.parseScalarExpression()}
	for p.match(token.COMMA) {
		args = append(args, p.parseScalarExpression())
	}
	return args
}

func (p *Parser) parseAggregateExpression() *ast.AggregateExpression {
	start := p.startPos()
	fn := p.expectSet(aggregateFuncs)
	p.expect(token.LPAREN)
	agg := &ast.AggregateExpression{Func: fn.Type, Distinct: p.match(token.DISTINCT)}
	agg.Arg = p.parseScalarExpression()
	p.expect(token.RPAREN)
	agg.Span = p.spanFrom(start)
	return agg
}

func (p *Parser) parseTrimExpression() *ast.TrimExpression {
	start := p.startPos()
	p.expect(token.TRIM)
	p.expect(token.LPAREN)

	trim := &ast.TrimExpression{Spec: token.ILLEGAL}
	if p.checkSet(trimSpecs) {
		trim.Spec = p.advance().Type
	}
	if p.checkSet(trimCharStart) && p.checkPeek(token.FROM) {
		trim.Char = p.parseArithmeticPrimary()
	}
	if trim.Spec != token.ILLEGAL || trim.Char != nil {
		p.expect(token.FROM)
	} else {
		p.match(token.FROM)
	}
	trim.Source = p.parseScalarExpression()
	p.expect(token.RPAREN)

	trim.Span = p.spanFrom(start)
	return trim
}

func (p *Parser) parseExtractExpression() *ast.ExtractExpression {
	start := p.startPos()
	p.expect(token.EXTRACT)
	p.expect(token.LPAREN)
	field := p.parseFieldName()
	p.expect(token.FROM)
	source := p.parseScalarExpression()
	p.expect(token.RPAREN)
	return &ast.ExtractExpression{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Field:    field,
		Source:   source,
	}
}

func (p *Parser) parseFunctionInvocation() *ast.FunctionInvocation {
	start := p.startPos()
	p.expect(token.FUNCTION)
	p.expect(token.LPAREN)
	name := p.expectSet(token.NewSet(token.STRING, token.JAVA_STRING))
	fn := &ast.FunctionInvocation{Name: name.Literal}
	for p.match(token.COMMA) {
		fn.Args = append(fn.Args, p.parseScalarExpression())
	}
	p.expect(token.RPAREN)
	fn.Span = p.spanFrom(start)
	return fn
}

// parseCaseExpression parses a general CASE (conditions after WHEN) or a
// simple CASE (an operand, then values after WHEN).
func (p *Parser) parseCaseExpression() *ast.CaseExpression {
	start := p.startPos()
	p.expect(token.CASE)

	expr := &ast.CaseExpression{}
	if !p.check(token.WHEN) {
		if p.check(token.TYPE) && p.isFunctionCall() {
			expr.Operand = p.parseTypeDiscriminator()
		} else {
			expr.Operand = p.parsePath()
		}
	}

	for {
		whenStart := p.startPos()
		p.expect(token.WHEN)
		when := &ast.WhenClause{}
		if expr.Operand == nil {
			when.Condition = p.parseConditionalExpression()
		} else {
			when.Condition = p.parseScalarExpression()
		}
		p.expect(token.THEN)
		when.Result = p.parseScalarOrNull()
		when.Span = p.spanFrom(whenStart)
		expr.Whens = append(expr.Whens, when)
		if !p.check(token.WHEN) {
			break
		}
	}

	p.expect(token.ELSE)
	expr.Else = p.parseScalarOrNull()
	p.expect(token.END)

	expr.Span = p.spanFrom(start)
	return expr
}

func (p *Parser) parseCoalesceExpression() *ast.CoalesceExpression {
	start := p.startPos()
	p.expect(token.COALESCE)
	p.expect(token.LPAREN)
	args := []ast.Expr{p.parseScalarOrNull()}
	p.expect(token.COMMA)
	args = append(args, p.parseScalarOrNull())
	for p.match(token.COMMA) {
		args = append(args, p.parseScalarOrNull())
	}
	p.expect(token.RPAREN)
	return &ast.CoalesceExpression{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Args: args}
}

func (p *Parser) parseNullIfExpression() *ast.NullIfExpression {
	start := p.startPos()
	p.expect(token.NULLIF)
	p.expect(token.LPAREN)
	left := p.parseScalarExpression()
	p.expect(token.COMMA)
	right := p.parseScalarExpression()
	p.expect(token.RPAREN)
	return &ast.NullIfExpression{
		NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
		Left:     left,
		Right:    right,
	}
}

func (p *Parser) parseTypeDiscriminator() *ast.TypeDiscriminator {
	start := p.startPos()
	p.expect(token.TYPE)
	p.expect(token.LPAREN)
	var arg ast.Expr
	if p.checkSet(paramStart) {
		arg = p.parseInputParameter()
	} else {
		arg = p.parsePath()
	}
	p.expect(token.RPAREN)
	return &ast.TypeDiscriminator{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Expr: arg}
}

func (p *Parser) parseCurrentDatetime() *ast.CurrentDatetime {
	start := p.startPos()
	dt := &ast.CurrentDatetime{}
	if p.match(token.LOCAL) {
		dt.Local = true
		dt.Func = p.expectSet(localDatetime).Type
	} else {
		dt.Func = p.expectSet(datetimeStart.Without(token.LOCAL)).Type
	}
	dt.Span = p.spanFrom(start)
	return dt
}
