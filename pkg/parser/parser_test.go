package parser_test

import (
	"testing"

	"github.com/leapstack-labs/leapjpql/internal/testutil"
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, query string) ast.Statement {
	t.Helper()
	stmt, diags := parser.Parse(query, parser.WithLogger(testutil.NewTestLogger(t)))
	require.Empty(t, diags, "query: %s", query)
	require.NotNil(t, stmt)
	return stmt
}

func parseSelect(t *testing.T, query string) *ast.SelectStatement {
	t.Helper()
	stmt, ok := parseOK(t, query).(*ast.SelectStatement)
	require.True(t, ok, "expected *ast.SelectStatement")
	return stmt
}

// whereOf returns the WHERE condition of a select statement.
func whereOf(t *testing.T, query string) ast.Expr {
	t.Helper()
	stmt := parseSelect(t, query)
	require.NotNil(t, stmt.Where)
	return stmt.Where.Condition
}

func pathString(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.PathExpression:
		s := pathString(e.Root)
		for _, f := range e.Fields {
			s += "." + f.Name
		}
		return s
	}
	return ""
}

// ---------- Statements ----------

func TestParse_ValidQueries(t *testing.T) {
	queries := []string{
		"SELECT e FROM Employee e",
		"SELECT DISTINCT e.name FROM Employee AS e",
		"SELECT e.name, e.salary AS pay FROM Employee e ORDER BY pay DESC, e.name",
		"SELECT e FROM Employee e WHERE e.salary BETWEEN 1000 AND 2000",
		"SELECT e FROM Employee e WHERE e.salary NOT BETWEEN :low AND :high",
		"SELECT e FROM Employee e WHERE e.name LIKE '100!%' ESCAPE '!'",
		"SELECT e FROM Employee e WHERE e.name LIKE %:name%",
		"SELECT e FROM Employee e WHERE e.name NOT LIKE :pattern ESCAPE :esc",
		"SELECT e FROM Employee e WHERE e.status IN ('A', 'B', ?1)",
		"SELECT e FROM Employee e WHERE e.status IN :statuses",
		"SELECT e FROM Employee e WHERE e.id NOT IN (SELECT m.id FROM Manager m)",
		"SELECT e FROM Employee e WHERE e.manager IS NULL",
		"SELECT e FROM Employee e WHERE e.projects IS NOT EMPTY",
		"SELECT e FROM Employee e, Project p WHERE e MEMBER OF p.members",
		"SELECT e FROM Employee e, Project p WHERE e NOT MEMBER p.members",
		"SELECT e FROM Employee e WHERE e.salary > ALL (SELECT m.salary FROM Manager m)",
		"SELECT e FROM Employee e WHERE e.salary < SOME (SELECT m.salary FROM Manager m)",
		"SELECT e FROM Employee e WHERE NOT EXISTS (SELECT p FROM e.projects p)",
		"SELECT e FROM Employee e WHERE NOT (e.a = 1 OR e.b = 2)",
		"SELECT e FROM Employee e WHERE (e.a + e.b) * 2 > e.c",
		"SELECT e FROM Employee e WHERE ((e.a = 1))",
		"SELECT e FROM Employee e WHERE e.active = TRUE AND e.hired < CURRENT_DATE",
		"SELECT e FROM Employee e WHERE e.hired < LOCAL DATETIME",
		"SELECT COUNT(e), AVG(e.salary), MAX(DISTINCT e.age) FROM Employee e",
		"SELECT d.name, COUNT(e) FROM Employee e JOIN e.department d GROUP BY d.name HAVING COUNT(e) > 5",
		"SELECT e FROM Employee e LEFT OUTER JOIN e.projects p ON p.active = TRUE",
		"SELECT e FROM Employee e LEFT JOIN FETCH e.address INNER JOIN e.department d",
		"SELECT e FROM Employee e JOIN FETCH e.projects p",
		"SELECT e FROM Employee e, IN (e.projects) p WHERE p.budget > 10",
		"SELECT e FROM Employee e JOIN TREAT(e.projects AS LargeProject) lp WHERE lp.budget > 1",
		"SELECT KEY(m), VALUE(m), ENTRY(m) FROM Employee e JOIN e.phones m",
		"SELECT NEW com.acme.EmployeeDto(e.name, e.salary) FROM Employee e",
		"SELECT OBJECT(e) FROM Employee e",
		"SELECT e FROM Employee e WHERE TYPE(e) IN (Manager, Contractor)",
		"SELECT e FROM Employee e WHERE TYPE(e) <> :type",
		"SELECT CASE WHEN e.salary > 10 THEN 'high' ELSE 'low' END FROM Employee e",
		"SELECT CASE e.status WHEN 1 THEN 'on' WHEN 2 THEN 'off' ELSE NULL END FROM Employee e",
		"SELECT COALESCE(e.nick, e.name, 'none'), NULLIF(e.a, 0) FROM Employee e",
		"SELECT TRIM(e.name), TRIM(LEADING 'x' FROM e.name), TRIM(BOTH FROM e.name), TRIM(' ' FROM e.name) FROM Employee e",
		"SELECT CONCAT(e.first, ' ', e.last), SUBSTRING(e.name, 1, 3), LOCATE('a', e.name) FROM Employee e",
		"SELECT ABS(e.a), SQRT(e.b), MOD(e.c, 2), SIZE(e.projects), LENGTH(e.name), UPPER(e.name) FROM Employee e",
		"SELECT EXTRACT(YEAR FROM e.hired) FROM Employee e",
		"SELECT FUNCTION('soundex', e.name) FROM Employee e",
		"SELECT e FROM Employee e WHERE e.id = :#{#entity.id}",
		"SELECT e FROM Employee e WHERE e.name = \"java\"",
		"SELECT e FROM Employee e WHERE -e.balance > +5 - 3L",
		"SELECT e FROM Employee e WHERE e.id = (SELECT MAX(x.id) FROM Employee x)",
		"SELECT e FROM Employee e WHERE EXISTS (SELECT p FROM Project p, IN e.projects WHERE p.lead = e)",
		"DELETE FROM Employee e WHERE e.retired = TRUE",
		"DELETE FROM Employee",
		"UPDATE Employee SET salary = NULL",
		"UPDATE Employee AS e SET e.salary = 1, e.status = 'x' WHERE e.id = ?1",
		"select e from Employee e where e.name = 'x' order by e.name asc",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			parseOK(t, q)
		})
	}
}

func TestParse_StatementKinds(t *testing.T) {
	assert.IsType(t, &ast.SelectStatement{}, parseOK(t, "SELECT e FROM Employee e"))
	assert.IsType(t, &ast.UpdateStatement{}, parseOK(t, "UPDATE Employee e SET e.a = 1"))
	assert.IsType(t, &ast.DeleteStatement{}, parseOK(t, "DELETE FROM Employee e"))
}

func TestParse_UnknownStatement(t *testing.T) {
	stmt, diags := parser.Parse("INSERT INTO Employee VALUES (1)")
	assert.Nil(t, stmt)
	require.Len(t, diags, 1)
	assert.Equal(t, 0, diags[0].Offset)
	assert.Equal(t, token.NewSet(token.SELECT, token.UPDATE, token.DELETE), diags[0].Expected)
	assert.Contains(t, diags[0].Message, "DELETE, SELECT or UPDATE")
}

func TestParse_EmptyInput(t *testing.T) {
	stmt, diags := parser.Parse("   ")
	assert.Nil(t, stmt)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "end of input")
}

// ---------- Precedence ----------

func TestParse_ArithmeticPrecedence(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE e.a = 1 + 2 * 3")
	cmp, ok := cond.(*ast.ComparisonExpression)
	require.True(t, ok)

	sum, ok := cmp.Right.(*ast.ArithmeticExpression)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, sum.Op)
	assert.Equal(t, "1", sum.Left.(*ast.Literal).Value)

	product, ok := sum.Right.(*ast.ArithmeticExpression)
	require.True(t, ok)
	assert.Equal(t, token.STAR, product.Op)
	assert.Equal(t, "2", product.Left.(*ast.Literal).Value)
	assert.Equal(t, "3", product.Right.(*ast.Literal).Value)
}

func TestParse_LeftAssociativity(t *testing.T) {
	tests := []struct {
		name string
		expr string
		op   token.TokenType
	}{
		{"subtraction", "e.a - e.b - e.c", token.MINUS},
		{"division", "e.a / e.b / e.c", token.SLASH},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := whereOf(t, "SELECT e FROM Employee e WHERE "+tt.expr+" > 0")
			cmp := cond.(*ast.ComparisonExpression)

			outer, ok := cmp.Left.(*ast.ArithmeticExpression)
			require.True(t, ok)
			assert.Equal(t, tt.op, outer.Op)
			assert.Equal(t, "e.c", pathString(outer.Right))

			inner, ok := outer.Left.(*ast.ArithmeticExpression)
			require.True(t, ok, "(a op b) op c")
			assert.Equal(t, "e.a", pathString(inner.Left))
			assert.Equal(t, "e.b", pathString(inner.Right))
		})
	}
}

func TestParse_LogicalPrecedence(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE e.a = 1 OR e.b = 2 AND e.c = 3")
	or, ok := cond.(*ast.LogicalExpression)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)
	assert.IsType(t, &ast.ComparisonExpression{}, or.Left)

	and, ok := or.Right.(*ast.LogicalExpression)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op)
}

func TestParse_LogicalLeftAssociativity(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE e.a = 1 AND e.b = 2 AND e.c = 3")
	outer := cond.(*ast.LogicalExpression)
	inner, ok := outer.Left.(*ast.LogicalExpression)
	require.True(t, ok)
	assert.Equal(t, token.AND, inner.Op)
	assert.IsType(t, &ast.ComparisonExpression{}, outer.Right)
}

func TestParse_NotBindsTighterThanAnd(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE NOT e.a = 1 AND e.b = 2")
	and := cond.(*ast.LogicalExpression)
	assert.Equal(t, token.AND, and.Op)
	assert.IsType(t, &ast.NotExpression{}, and.Left)
}

func TestParse_ParenthesizedOperandVsCondition(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE (e.a + e.b) > e.c")
	cmp, ok := cond.(*ast.ComparisonExpression)
	require.True(t, ok, "parenthesized operand starts a comparison")
	assert.IsType(t, &ast.ParenExpression{}, cmp.Left)

	cond = whereOf(t, "SELECT e FROM Employee e WHERE (e.a = 1 OR e.b = 2) AND e.c = 3")
	and := cond.(*ast.LogicalExpression)
	paren, ok := and.Left.(*ast.ParenExpression)
	require.True(t, ok, "parenthesized condition")
	assert.IsType(t, &ast.LogicalExpression{}, paren.Expr)
}

// ---------- Contextual keywords ----------

func TestParse_ContextualKeywords(t *testing.T) {
	stmt := parseSelect(t, "SELECT type FROM Employee type")

	require.Len(t, stmt.Select.Items, 1)
	item, ok := stmt.Select.Items[0].Expr.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "type", item.Name)
	assert.Equal(t, token.TYPE, item.Keyword)

	require.Len(t, stmt.From.Items, 1)
	decl := stmt.From.Items[0].(*ast.IdentificationVariableDeclaration)
	assert.Equal(t, "Employee", decl.Range.Entity.Name)
	assert.Equal(t, "type", decl.Range.Variable.Name)
}

func TestParse_KeywordsAsNames(t *testing.T) {
	tests := []string{
		"SELECT count FROM Employee count",
		"SELECT o.order FROM Order o",
		"SELECT e.select, e.from FROM Employee e",
		"SELECT e FROM Employee e WHERE e.size = size",
		"SELECT key FROM Map key",
		"SELECT e.value AS value FROM Employee e",
		"SELECT e FROM Employee e LEFT JOIN e.left left",
	}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			parseOK(t, q)
		})
	}
}

func TestParse_ResultVariableExcludesNumericFunctions(t *testing.T) {
	_, diags := parser.Parse("SELECT e.a AS floor FROM Employee e")
	require.NotEmpty(t, diags)
	assert.Equal(t, len("SELECT e.a AS "), diags[0].Offset)
}

func TestParse_AliasDoesNotSwallowJoin(t *testing.T) {
	stmt := parseSelect(t, "SELECT e FROM Employee e LEFT JOIN e.dept d ORDER BY d.name")
	decl := stmt.From.Items[0].(*ast.IdentificationVariableDeclaration)
	require.Len(t, decl.Joins, 1)
	assert.Equal(t, ast.JoinLeft, decl.Joins[0].Kind)
	assert.True(t, decl.Joins[0].Explicit)
	require.NotNil(t, stmt.OrderBy)
}

// ---------- Statement structure ----------

func TestParse_UpdateStatement(t *testing.T) {
	stmt := parseOK(t, "UPDATE Employee e SET e.salary = e.salary * 1.1 WHERE e.department = :dept")
	upd, ok := stmt.(*ast.UpdateStatement)
	require.True(t, ok)

	require.NotNil(t, upd.Update)
	assert.Equal(t, "Employee", upd.Update.Entity.Name)
	assert.Equal(t, "e", upd.Update.Variable.Name)
	require.Len(t, upd.Update.Items, 1)

	item := upd.Update.Items[0]
	assert.Equal(t, "e.salary", pathString(item.Target))
	value, ok := item.Value.(*ast.ArithmeticExpression)
	require.True(t, ok)
	assert.Equal(t, token.STAR, value.Op)
	assert.Equal(t, "e.salary", pathString(value.Left))
	assert.Equal(t, &ast.Literal{
		NodeInfo: ast.NodeInfo{Span: value.Right.GetSpan()},
		Kind:     ast.LiteralFloat,
		Value:    "1.1",
	}, value.Right)

	require.NotNil(t, upd.Where)
	cmp, ok := upd.Where.Condition.(*ast.ComparisonExpression)
	require.True(t, ok)
	assert.Equal(t, token.EQ, cmp.Op)
	assert.Equal(t, "e.department", pathString(cmp.Left))
	param, ok := cmp.Right.(*ast.InputParameter)
	require.True(t, ok)
	assert.Equal(t, ast.ParamNamed, param.Kind)
	assert.Equal(t, "dept", param.Name)
}

func TestParse_UpdateUnqualifiedTarget(t *testing.T) {
	upd := parseOK(t, "UPDATE Employee SET salary = NULL").(*ast.UpdateStatement)
	require.Len(t, upd.Update.Items, 1)
	item := upd.Update.Items[0]
	assert.Equal(t, "salary", pathString(item.Target.Root))
	assert.Empty(t, item.Target.Fields)
	assert.Equal(t, ast.LiteralNull, item.Value.(*ast.Literal).Kind)
}

func TestParse_DeleteStatement(t *testing.T) {
	del := parseOK(t, "DELETE FROM Employee e WHERE e.retired = TRUE").(*ast.DeleteStatement)
	assert.Equal(t, "Employee", del.Delete.Entity.Name)
	assert.Equal(t, "e", del.Delete.Variable.Name)
	require.NotNil(t, del.Where)
}

func TestParse_ExistsSubquery(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE EXISTS (SELECT 1 FROM Employee m WHERE m.manager = e)")
	exists, ok := cond.(*ast.ExistsExpression)
	require.True(t, ok)
	assert.False(t, exists.Not)

	sub := exists.Subquery
	require.NotNil(t, sub)
	require.NotNil(t, sub.Select)
	require.Len(t, sub.Select.Items, 1)
	assert.Equal(t, ast.LiteralInt, sub.Select.Items[0].Expr.(*ast.Literal).Kind)

	require.NotNil(t, sub.From)
	decl := sub.From.Items[0].(*ast.IdentificationVariableDeclaration)
	assert.Equal(t, "m", decl.Range.Variable.Name)

	require.NotNil(t, sub.Where)
	cmp := sub.Where.Condition.(*ast.ComparisonExpression)
	assert.Equal(t, "m.manager", pathString(cmp.Left))
	assert.Equal(t, "e", pathString(cmp.Right))
}

func TestParse_DerivedDeclarations(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE EXISTS (SELECT p FROM e.projects p, IN e.tasks)")
	sub := cond.(*ast.ExistsExpression).Subquery
	require.Len(t, sub.From.Items, 2)

	derived, ok := sub.From.Items[0].(*ast.DerivedPathDeclaration)
	require.True(t, ok)
	assert.Equal(t, "e.projects", pathString(derived.Path))
	assert.Equal(t, "p", derived.Variable.Name)

	member, ok := sub.From.Items[1].(*ast.DerivedCollectionMemberDeclaration)
	require.True(t, ok)
	assert.Equal(t, "e.tasks", pathString(member.Path))
}

func TestParse_EntityNameInSubqueryIsNotDerived(t *testing.T) {
	cond := whereOf(t, "SELECT e FROM Employee e WHERE EXISTS (SELECT x FROM com.acme.Project x)")
	sub := cond.(*ast.ExistsExpression).Subquery
	decl, ok := sub.From.Items[0].(*ast.IdentificationVariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "com.acme.Project", decl.Range.Entity.Name)
}

func TestParse_Joins(t *testing.T) {
	stmt := parseSelect(t, "SELECT e FROM Employee e LEFT OUTER JOIN FETCH e.address INNER JOIN e.projects AS p ON p.active = TRUE JOIN e.dept d")
	decl := stmt.From.Items[0].(*ast.IdentificationVariableDeclaration)
	require.Len(t, decl.Joins, 3)

	fetch := decl.Joins[0]
	assert.Equal(t, ast.JoinLeft, fetch.Kind)
	assert.True(t, fetch.Outer)
	assert.True(t, fetch.Fetch)
	assert.Nil(t, fetch.Variable)

	inner := decl.Joins[1]
	assert.Equal(t, ast.JoinInner, inner.Kind)
	assert.True(t, inner.Explicit)
	assert.True(t, inner.As)
	assert.Equal(t, "p", inner.Variable.Name)
	assert.NotNil(t, inner.Condition)

	plain := decl.Joins[2]
	assert.False(t, plain.Explicit)
	assert.Equal(t, "d", plain.Variable.Name)
}

func TestParse_LikeWildcards(t *testing.T) {
	like := whereOf(t, "SELECT e FROM Employee e WHERE e.name LIKE %:name%").(*ast.LikeExpression)
	assert.True(t, like.LeadingPercent)
	assert.True(t, like.TrailingPercent)
	assert.Equal(t, "name", like.Pattern.(*ast.InputParameter).Name)

	like = whereOf(t, "SELECT e FROM Employee e WHERE e.name LIKE :name%").(*ast.LikeExpression)
	assert.False(t, like.LeadingPercent)
	assert.True(t, like.TrailingPercent)

	_, diags := parser.Parse("SELECT e FROM Employee e WHERE e.name LIKE %e.other")
	require.Len(t, diags, 1)
	assert.Equal(t, parser.ErrWildcardNotParam, diags[0].Message)
}

func TestParse_InputParameters(t *testing.T) {
	tests := []struct {
		query string
		kind  ast.ParamKind
		name  string
	}{
		{"SELECT e FROM Employee e WHERE e.id = :id", ast.ParamNamed, "id"},
		{"SELECT e FROM Employee e WHERE e.id = ?3", ast.ParamPositional, "3"},
		{"SELECT e FROM Employee e WHERE e.id = ?", ast.ParamPositional, ""},
		{"SELECT e FROM Employee e WHERE e.id = :#{#user.id}", ast.ParamExpression, "#user.id"},
		{"SELECT e FROM Employee e WHERE e.id = ?#{[0]}", ast.ParamExpression, "[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			cmp := whereOf(t, tt.query).(*ast.ComparisonExpression)
			param, ok := cmp.Right.(*ast.InputParameter)
			require.True(t, ok)
			assert.Equal(t, tt.kind, param.Kind)
			assert.Equal(t, tt.name, param.Name)
		})
	}
}

func TestParse_FunctionArity(t *testing.T) {
	tests := []struct {
		query string
		msg   string
	}{
		{"SELECT MOD(e.a) FROM Employee e", "MOD expects at least 2 argument(s), got 1"},
		{"SELECT ABS(e.a, e.b) FROM Employee e", "ABS expects at most 1 argument(s), got 2"},
		{"SELECT SUBSTRING(e.a, 1, 2, 3) FROM Employee e", "SUBSTRING expects at most 3 argument(s), got 4"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, diags := parser.Parse(tt.query)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.msg, diags[0].Message)
			assert.Equal(t, len("SELECT "), diags[0].Offset)
		})
	}

	parseOK(t, "SELECT CONCAT(e.a, e.b, e.c, e.d) FROM Employee e")
}

func TestParse_Scope(t *testing.T) {
	r := parser.ParseDocument("SELECT e FROM Employee e JOIN e.projects p, IN (e.tasks) t")
	require.Empty(t, r.Diagnostics)
	require.NotNil(t, r.Scope)

	vars := r.Scope.Variables()
	require.Len(t, vars, 3)
	assert.Equal(t, parser.VarRange, vars[0].Kind)
	assert.Equal(t, "Employee", vars[0].Source)
	assert.Equal(t, parser.VarJoin, vars[1].Kind)
	assert.Equal(t, "e.projects", vars[1].Source)
	assert.Equal(t, parser.VarCollectionMember, vars[2].Kind)

	v, ok := r.Scope.Lookup("P")
	require.True(t, ok)
	assert.Equal(t, "p", v.Name)
	assert.Equal(t, []string{"e", "p", "t"}, r.Scope.Names())
}

// ---------- Spans ----------

func TestParse_SpansNest(t *testing.T) {
	queries := []string{
		"SELECT e.name, COUNT(p) FROM Employee e LEFT JOIN e.projects p WHERE e.salary * 2 > :min AND p.name LIKE 'x%' GROUP BY e.name HAVING COUNT(p) > 1 ORDER BY e.name",
		"UPDATE Employee e SET e.salary = e.salary * 1.1 WHERE e.department = :dept",
		"SELECT e FROM Employee e WHERE EXISTS (SELECT 1 FROM Employee m WHERE m.manager = e)",
		"SELECT CASE WHEN (e.a + 1) > 2 THEN TRIM(LEADING ' ' FROM e.b) ELSE 'z' END FROM Employee e",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			stmt := parseOK(t, q)
			assert.Equal(t, 0, stmt.GetSpan().Start.Offset)
			assert.Equal(t, len(q), stmt.GetSpan().End.Offset)

			ast.Walk(stmt, func(n ast.Node) bool {
				span := n.GetSpan()
				assert.True(t, span.IsValid(), "%T has invalid span", n)
				for _, child := range ast.Children(n) {
					assert.True(t, span.Covers(child.GetSpan()),
						"%T %v does not cover %T %v", n, span, child, child.GetSpan())
				}
				return true
			})
		})
	}
}

func TestParse_ConcurrentCalls(t *testing.T) {
	const q = "SELECT e FROM Employee e WHERE e.a = 1 AND (e.b + 2) * 3 > 4"
	want := parseOK(t, q)

	done := make(chan ast.Statement, 8)
	for range 8 {
		go func() {
			stmt, _ := parser.Parse(q)
			done <- stmt
		}()
	}
	for range 8 {
		assert.Equal(t, want, <-done)
	}
}
