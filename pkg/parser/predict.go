package parser

import "github.com/leapstack-labs/leapjpql/pkg/token"

// Alternative prediction.
//
// Most branch points are decided by the current token alone, using the
// start sets below. A few need a second or third token (checkPeek), and the
// rest are decided by speculate, which runs a candidate rule on a snapshot
// of the cursor and reports whether it would succeed. Speculation never
// reports diagnostics and its nodes are discarded; only the committed
// alternative builds the tree.

// speculationLimit aborts a speculative parse that ran past its lookahead
// bound. The alternative is then treated as viable.
type speculationLimit struct{}

// predict returns the index of the first set containing the current token,
// or -1.
func (p *Parser) predict(alts []token.Set) int {
	t := p.cur().Type
	for i, s := range alts {
		if s.Has(t) {
			return i
		}
	}
	return -1
}

// speculate runs fn without committing to it and reports whether fn parsed
// without error. The cursor is always restored. Reaching the lookahead
// bound counts as success, so the outcome depends only on the tokens.
func (p *Parser) speculate(rule string, fn func()) (viable bool) {
	start := p.pos
	savedDiags := len(p.diags)
	savedLimit := p.specLimit
	savedScope := p.scope
	if p.speculating == 0 {
		p.specLimit = start + p.opts.maxSpeculation
	}
	p.speculating++

	defer func() {
		r := recover()
		p.speculating--
		p.specLimit = savedLimit
		p.scope = savedScope
		consumed := p.pos - start
		p.pos = start
		p.diags = p.diags[:savedDiags]

		switch r.(type) {
		case nil:
			viable = true
		case *ParseError:
			viable = false
		case speculationLimit:
			if p.speculating > 0 {
				// an outer speculation owns the bound
				panic(r)
			}
			viable = true
		default:
			panic(r)
		}
		p.log.Debug("speculated", "rule", rule, "offset", p.tokens[start].Pos.Offset,
			"consumed", consumed, "viable", viable)
	}()

	fn()
	return true
}

// Start sets. Each is the set of tokens that can begin the named rule.
var (
	// literalStart begins a literal.
	literalStart = token.NewSet(
		token.STRING, token.JAVA_STRING, token.INT, token.LONG, token.FLOAT,
		token.TRUE, token.FALSE,
	)

	// paramStart begins an input parameter.
	paramStart = token.NewSet(token.NAMED_PARAM, token.POSITIONAL_PARAM, token.EXPR_PARAM)

	// aggregateFuncs are the aggregate function keywords.
	aggregateFuncs = token.NewSet(token.AVG, token.MAX, token.MIN, token.SUM, token.COUNT)

	// datetimeStart begins a current date/time function.
	datetimeStart = token.NewSet(token.CURRENT_DATE, token.CURRENT_TIME, token.CURRENT_TIMESTAMP, token.LOCAL)

	// mapQualifiers wrap a map-valued variable.
	mapQualifiers = token.NewSet(token.KEY, token.VALUE, token.ENTRY)

	// pathStart begins a path expression or identification variable.
	pathStart = token.IdentVariable.With(token.TREAT)

	// arithmeticPrimaryStart begins an arithmetic primary, which also
	// covers string, datetime, boolean, enum and entity operands.
	arithmeticPrimaryStart = pathStart.Union(literalStart).Union(paramStart).
		Union(aggregateFuncs).Union(datetimeStart).Union(functionKeywords()).
		With(token.LPAREN, token.CASE, token.COALESCE, token.NULLIF, token.TRIM,
			token.EXTRACT, token.FUNCTION, token.TYPE)

	// scalarStart begins a scalar expression.
	scalarStart = arithmeticPrimaryStart.With(token.PLUS, token.MINUS)

	// conditionStart begins a conditional expression.
	conditionStart = scalarStart.With(token.NOT, token.EXISTS)

	// selectExpressionStart begins a select expression.
	selectExpressionStart = scalarStart.With(token.NEW, token.OBJECT)

	// comparisonOps are the comparison operators.
	comparisonOps = token.NewSet(token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE)

	// predicateStart follows the left operand of a simple condition.
	predicateStart = comparisonOps.With(token.IS, token.NOT, token.BETWEEN, token.IN, token.LIKE, token.MEMBER)

	// quantifiers begin an ALL/ANY/SOME subquery.
	quantifiers = token.NewSet(token.ALL, token.ANY, token.SOME)
)

// statementAlts decides ql_statement on the leading keyword.
var statementAlts = []token.Set{
	token.NewSet(token.SELECT),
	token.NewSet(token.UPDATE),
	token.NewSet(token.DELETE),
}

// statementStart is the union of statementAlts, for diagnostics.
var statementStart = token.NewSet(token.SELECT, token.UPDATE, token.DELETE)

// joinStart begins a join in a FROM clause.
var joinStart = token.NewSet(token.JOIN, token.LEFT, token.INNER)

// expectedNames gives readable names to the large start sets.
var expectedNames = map[token.Set]string{
	token.IdentVariable:    "an identifier",
	token.ResultVariable:   "an identifier",
	token.FieldName:        "a field name",
	pathStart:              "a path expression",
	arithmeticPrimaryStart: "an expression",
	scalarStart:            "an expression",
	conditionStart:         "a condition",
	selectExpressionStart:  "a select expression",
}

// describeExpected renders an expected set for messages.
func describeExpected(s token.Set) string {
	if name, ok := expectedNames[s]; ok {
		return name
	}
	return s.String()
}

// isFunctionCall reports whether the current keyword is used as a function:
// contextual keywords are names unless a '(' follows.
func (p *Parser) isFunctionCall() bool {
	return p.checkPeek(token.LPAREN)
}

// isAliasStart reports whether the current token can begin an optional
// alias from set. Contextual keywords that start the next construct are not
// aliases: LEFT JOIN, LEFT OUTER, INNER JOIN and ORDER BY.
func (p *Parser) isAliasStart(set token.Set) bool {
	if !p.checkSet(set) {
		return false
	}
	switch p.cur().Type {
	case token.LEFT:
		return !p.checkPeek(token.JOIN) && !p.checkPeek(token.OUTER)
	case token.INNER:
		return !p.checkPeek(token.JOIN)
	case token.ORDER:
		return !p.checkPeek(token.BY)
	}
	return true
}
