package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Statement and clause grammar:
//
//	select_statement → select_clause from_clause [where_clause] [groupby_clause]
//	                   [having_clause] [orderby_clause]
//	update_statement → update_clause [where_clause]
//	delete_statement → delete_clause [where_clause]
//	select_clause    → SELECT [DISTINCT] select_item {, select_item}*
//	select_item      → select_expression [[AS] result_variable]
//	where_clause     → WHERE conditional_expression
//	groupby_clause   → GROUP BY groupby_item {, groupby_item}*
//	having_clause    → HAVING conditional_expression
//	orderby_clause   → ORDER BY orderby_item {, orderby_item}*
//	orderby_item     → scalar_expression [ASC | DESC]
//	update_clause    → UPDATE entity_name [[AS] identification_variable]
//	                   SET update_item {, update_item}*
//	update_item      → path = new_value
//	delete_clause    → DELETE FROM entity_name [[AS] identification_variable]
//	subquery         → simple_select_clause subquery_from_clause [where_clause]
//	                   [groupby_clause] [having_clause]

// Follow sets used to resynchronize after an error in a clause.
var (
	queryEnd      = token.NewSet(token.RPAREN, token.EOF)
	orderByFollow = queryEnd
	havingFollow  = orderByFollow.With(token.ORDER)
	groupByFollow = havingFollow.With(token.HAVING)
	whereFollow   = groupByFollow.With(token.GROUP)
	fromFollow    = whereFollow.With(token.WHERE)
	selectFollow  = fromFollow.With(token.FROM)

	selectItemFollow  = selectFollow.With(token.COMMA)
	orderByItemFollow = orderByFollow.With(token.COMMA)
	groupByItemFollow = groupByFollow.With(token.COMMA)

	updateFollow     = token.NewSet(token.WHERE, token.EOF)
	updateItemFollow = updateFollow.With(token.COMMA)
)

// parseQLStatement dispatches on the leading keyword.
func (p *Parser) parseQLStatement() ast.Statement {
	switch p.predict(statementAlts) {
	case 0:
		return p.parseSelectStatement()
	case 1:
		return p.parseUpdateStatement()
	case 2:
		return p.parseDeleteStatement()
	}
	tok := p.cur()
	p.report(p.errorAt(tok, statementStart, fmt.Sprintf(ErrUnexpectedToken, describe(tok), describeExpected(statementStart))))
	return nil
}

func (p *Parser) parseSelectStatement() *ast.SelectStatement {
	start := p.startPos()
	stmt := &ast.SelectStatement{}

	p.recoverAt("select_clause", selectFollow, func() {
		stmt.Select = p.parseSelectClause()
	})
	p.recoverAt("from_clause", fromFollow, func() {
		stmt.From = p.parseFromClause(false)
	})
	stmt.Where, stmt.GroupBy, stmt.Having = p.parseFilterClauses()
	if p.check(token.ORDER) {
		p.recoverAt("orderby_clause", orderByFollow, func() {
			stmt.OrderBy = p.parseOrderByClause()
		})
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseFilterClauses parses the optional WHERE, GROUP BY and HAVING clauses
// shared by queries and subqueries.
func (p *Parser) parseFilterClauses() (where *ast.WhereClause, groupBy *ast.GroupByClause, having *ast.HavingClause) {
	if p.check(token.WHERE) {
		p.recoverAt("where_clause", whereFollow, func() {
			where = p.parseWhereClause()
		})
	}
	if p.check(token.GROUP) {
		p.recoverAt("groupby_clause", groupByFollow, func() {
			groupBy = p.parseGroupByClause()
		})
	}
	if p.check(token.HAVING) {
		p.recoverAt("having_clause", havingFollow, func() {
			having = p.parseHavingClause()
		})
	}
	return where, groupBy, having
}

func (p *Parser) parseUpdateStatement() *ast.UpdateStatement {
	start := p.startPos()
	stmt := &ast.UpdateStatement{}

	p.recoverAt("update_clause", updateFollow, func() {
		stmt.Update = p.parseUpdateClause()
	})
	if p.check(token.WHERE) {
		p.recoverAt("where_clause", queryEnd, func() {
			stmt.Where = p.parseWhereClause()
		})
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseDeleteStatement() *ast.DeleteStatement {
	start := p.startPos()
	stmt := &ast.DeleteStatement{}

	p.recoverAt("delete_clause", updateFollow, func() {
		stmt.Delete = p.parseDeleteClause()
	})
	if p.check(token.WHERE) {
		p.recoverAt("where_clause", queryEnd, func() {
			stmt.Where = p.parseWhereClause()
		})
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// ---------- SELECT ----------

func (p *Parser) parseSelectClause() *ast.SelectClause {
	start := p.startPos()
	p.expect(token.SELECT)

	clause := &ast.SelectClause{Distinct: p.match(token.DISTINCT)}
	for {
		p.recoverAt("select_item", selectItemFollow, func() {
			clause.Items = append(clause.Items, p.parseSelectItem())
		})
		if !p.match(token.COMMA) {
			break
		}
	}

	clause.Span = p.spanFrom(start)
	return clause
}

func (p *Parser) parseSelectItem() *ast.SelectItem {
	start := p.startPos()
	item := &ast.SelectItem{Expr: p.parseSelectExpression()}

	if p.match(token.AS) {
		item.As = true
		item.Alias = p.parseResultVariable()
	} else if p.isAliasStart(token.ResultVariable) {
		item.Alias = p.parseResultVariable()
	}

	item.Span = p.spanFrom(start)
	return item
}

// parseSelectExpression parses
//
//	select_expression → constructor_expression | OBJECT(identification_variable)
//	                    | scalar_expression
//
// Scalar expressions cover paths, aggregates and map qualifiers.
func (p *Parser) parseSelectExpression() ast.Expr {
	switch {
	case p.check(token.NEW) && token.IdentVariable.Has(p.peekAt(1).Type):
		return p.parseConstructorExpression()
	case p.check(token.OBJECT) && p.isFunctionCall():
		return p.parseObjectExpression()
	case p.checkSet(scalarStart):
		return p.parseScalarExpression()
	}
	p.fail(selectExpressionStart)
	return nil
}

// ---------- WHERE / GROUP BY / HAVING / ORDER BY ----------

func (p *Parser) parseWhereClause() *ast.WhereClause {
	start := p.startPos()
	p.expect(token.WHERE)
	cond := p.parseConditionalExpression()
	return &ast.WhereClause{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Condition: cond}
}

func (p *Parser) parseHavingClause() *ast.HavingClause {
	start := p.startPos()
	p.expect(token.HAVING)
	cond := p.parseConditionalExpression()
	return &ast.HavingClause{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Condition: cond}
}

// parseGroupByClause parses groupby_item → single_valued_path_expression | identification_variable.
func (p *Parser) parseGroupByClause() *ast.GroupByClause {
	start := p.startPos()
	p.expect(token.GROUP)
	p.expect(token.BY)

	clause := &ast.GroupByClause{}
	for {
		p.recoverAt("groupby_item", groupByItemFollow, func() {
			clause.Items = append(clause.Items, p.parsePath())
		})
		if !p.match(token.COMMA) {
			break
		}
	}

	clause.Span = p.spanFrom(start)
	return clause
}

func (p *Parser) parseOrderByClause() *ast.OrderByClause {
	start := p.startPos()
	p.expect(token.ORDER)
	p.expect(token.BY)

	clause := &ast.OrderByClause{}
	for {
		p.recoverAt("orderby_item", orderByItemFollow, func() {
			clause.Items = append(clause.Items, p.parseOrderByItem())
		})
		if !p.match(token.COMMA) {
			break
		}
	}

	clause.Span = p.spanFrom(start)
	return clause
}

func (p *Parser) parseOrderByItem() *ast.OrderByItem {
	start := p.startPos()
	item := &ast.OrderByItem{Expr: p.parseScalarExpression()}
	switch {
	case p.match(token.ASC):
		item.Direction = ast.DirectionAsc
	case p.match(token.DESC):
		item.Direction = ast.DirectionDesc
	}
	item.Span = p.spanFrom(start)
	return item
}

// ---------- UPDATE / DELETE ----------

func (p *Parser) parseUpdateClause() *ast.UpdateClause {
	start := p.startPos()
	p.expect(token.UPDATE)

	clause := &ast.UpdateClause{Entity: p.parseEntityName()}
	clause.As, clause.Variable = p.parseOptionalVariable(token.SET)
	if clause.Variable != nil {
		p.scope.declare(clause.Variable, VarRange, clause.Entity.Name)
	}

	p.expect(token.SET)
	for {
		p.recoverAt("update_item", updateItemFollow, func() {
			clause.Items = append(clause.Items, p.parseUpdateItem())
		})
		if !p.match(token.COMMA) {
			break
		}
	}

	clause.Span = p.spanFrom(start)
	return clause
}

// parseUpdateItem parses
//
//	update_item → [identification_variable.]{single_valued_embeddable_object_field.}*
//	              {state_field | single_valued_object_field} = new_value
//	new_value   → scalar_expression | simple_entity_expression | NULL
func (p *Parser) parseUpdateItem() *ast.UpdateItem {
	start := p.startPos()
	target := p.parsePath()
	path, ok := target.(*ast.PathExpression)
	if !ok {
		path = &ast.PathExpression{NodeInfo: ast.NodeInfo{Span: target.GetSpan()}, Root: target}
	}
	p.expect(token.EQ)
	value := p.parseScalarOrNull()
	return &ast.UpdateItem{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Target: path, Value: value}
}

func (p *Parser) parseDeleteClause() *ast.DeleteClause {
	start := p.startPos()
	p.expect(token.DELETE)
	p.expect(token.FROM)

	clause := &ast.DeleteClause{Entity: p.parseEntityName()}
	clause.As, clause.Variable = p.parseOptionalVariable(token.WHERE)
	if clause.Variable != nil {
		p.scope.declare(clause.Variable, VarRange, clause.Entity.Name)
	}

	clause.Span = p.spanFrom(start)
	return clause
}

// parseOptionalVariable parses [[AS] identification_variable] where the
// variable may be omitted when the next token is terminator.
func (p *Parser) parseOptionalVariable(terminator token.TokenType) (bool, *ast.Identifier) {
	if p.match(token.AS) {
		return true, p.parseIdentificationVariable()
	}
	if p.check(terminator) || !p.checkSet(token.IdentVariable) {
		return false, nil
	}
	return false, p.parseIdentificationVariable()
}

// ---------- Subqueries ----------

// parseSubquery parses a subquery without its surrounding parentheses.
// Variables it declares live in a child scope.
func (p *Parser) parseSubquery() *ast.Subquery {
	start := p.startPos()
	outer := p.scope
	p.scope = newScope(outer)
	p.subqueries++
	defer func() {
		p.scope = outer
		p.subqueries--
	}()

	sub := &ast.Subquery{}
	p.recoverAt("simple_select_clause", selectFollow, func() {
		sub.Select = p.parseSimpleSelectClause()
	})
	p.recoverAt("subquery_from_clause", fromFollow, func() {
		sub.From = p.parseFromClause(true)
	})
	sub.Where, sub.GroupBy, sub.Having = p.parseFilterClauses()

	sub.Span = p.spanFrom(start)
	return sub
}

// parseParenSubquery parses ( subquery ).
func (p *Parser) parseParenSubquery() *ast.Subquery {
	p.expect(token.LPAREN)
	sub := p.parseSubquery()
	p.expect(token.RPAREN)
	return sub
}

// parseSimpleSelectClause parses SELECT [DISTINCT] simple_select_expression.
func (p *Parser) parseSimpleSelectClause() *ast.SelectClause {
	start := p.startPos()
	p.expect(token.SELECT)
	clause := &ast.SelectClause{Distinct: p.match(token.DISTINCT)}

	itemStart := p.startPos()
	expr := p.parseScalarExpression()
	clause.Items = []*ast.SelectItem{{NodeInfo: ast.NodeInfo{Span: p.spanFrom(itemStart)}, Expr: expr}}

	clause.Span = p.spanFrom(start)
	return clause
}
