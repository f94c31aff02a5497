package format

import (
	"strings"

	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// formatExpr prints an expression. Grouping comes from ParenExpression
// nodes, so no parentheses are added.
func (p *Printer) formatExpr(e ast.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *ast.Identifier:
		p.write(expr.Name)
	case *ast.PathExpression:
		p.formatPath(expr)
	case *ast.QualifiedIdentifier:
		p.kw(expr.Qualifier)
		p.write("(")
		p.formatExpr(expr.Variable)
		p.write(")")
	case *ast.TreatExpression:
		p.kw(token.TREAT)
		p.write("(")
		p.formatExpr(expr.Path)
		p.space()
		p.kw(token.AS)
		p.space()
		p.formatEntityName(expr.Subtype)
		p.write(")")
	case *ast.Literal:
		p.formatLiteral(expr)
	case *ast.InputParameter:
		p.formatParameter(expr)
	case *ast.LogicalExpression:
		p.formatExpr(expr.Left)
		p.space()
		p.kw(expr.Op)
		p.space()
		p.formatExpr(expr.Right)
	case *ast.NotExpression:
		p.kw(token.NOT)
		p.space()
		p.formatExpr(expr.Expr)
	case *ast.ArithmeticExpression:
		p.formatExpr(expr.Left)
		p.write(" " + expr.Op.String() + " ")
		p.formatExpr(expr.Right)
	case *ast.UnaryExpression:
		p.write(expr.Op.String())
		p.formatExpr(expr.Expr)
	case *ast.ParenExpression:
		p.write("(")
		p.formatExpr(expr.Expr)
		p.write(")")
	case *ast.Subquery:
		p.formatSubquery(expr)
	case *ast.ComparisonExpression:
		p.formatExpr(expr.Left)
		p.write(" " + expr.Op.String() + " ")
		p.formatExpr(expr.Right)
	case *ast.BetweenExpression:
		p.formatExpr(expr.Expr)
		p.space()
		p.not(expr.Not)
		p.kw(token.BETWEEN)
		p.space()
		p.formatExpr(expr.Low)
		p.space()
		p.kw(token.AND)
		p.space()
		p.formatExpr(expr.High)
	case *ast.InExpression:
		p.formatInExpr(expr)
	case *ast.LikeExpression:
		p.formatLikeExpr(expr)
	case *ast.NullComparisonExpression:
		p.formatExpr(expr.Expr)
		p.space()
		p.kw(token.IS)
		p.space()
		p.not(expr.Not)
		p.kw(token.NULL)
	case *ast.EmptyCollectionComparisonExpression:
		p.formatExpr(expr.Path)
		p.space()
		p.kw(token.IS)
		p.space()
		p.not(expr.Not)
		p.kw(token.EMPTY)
	case *ast.CollectionMemberExpression:
		p.formatExpr(expr.Entity)
		p.space()
		p.not(expr.Not)
		p.kw(token.MEMBER)
		if expr.Of {
			p.space()
			p.kw(token.OF)
		}
		p.space()
		p.formatExpr(expr.Collection)
	case *ast.ExistsExpression:
		p.not(expr.Not)
		p.kw(token.EXISTS)
		p.space()
		p.formatSubquery(expr.Subquery)
	case *ast.AllOrAnyExpression:
		p.kw(expr.Quantifier)
		p.space()
		p.formatSubquery(expr.Subquery)
	case *ast.AggregateExpression:
		p.kw(expr.Func)
		p.write("(")
		if expr.Distinct {
			p.kw(token.DISTINCT)
			p.space()
		}
		p.formatExpr(expr.Arg)
		p.write(")")
	case *ast.FunctionCall:
		p.kw(expr.Func)
		p.formatArgs(expr.Args)
	case *ast.TrimExpression:
		p.formatTrimExpr(expr)
	case *ast.CurrentDatetime:
		if expr.Local {
			p.kw(token.LOCAL)
			p.space()
		}
		p.kw(expr.Func)
	case *ast.ExtractExpression:
		p.kw(token.EXTRACT)
		p.write("(")
		p.formatExpr(expr.Field)
		p.space()
		p.kw(token.FROM)
		p.space()
		p.formatExpr(expr.Source)
		p.write(")")
	case *ast.FunctionInvocation:
		p.kw(token.FUNCTION)
		p.write("(")
		p.write(quote(expr.Name))
		for _, arg := range expr.Args {
			p.write(", ")
			p.formatExpr(arg)
		}
		p.write(")")
	case *ast.CaseExpression:
		p.formatCaseExpr(expr)
	case *ast.CoalesceExpression:
		p.kw(token.COALESCE)
		p.formatArgs(expr.Args)
	case *ast.NullIfExpression:
		p.kw(token.NULLIF)
		p.formatArgs([]ast.Expr{expr.Left, expr.Right})
	case *ast.TypeDiscriminator:
		p.kw(token.TYPE)
		p.write("(")
		p.formatExpr(expr.Expr)
		p.write(")")
	case *ast.ConstructorExpression:
		p.kw(token.NEW)
		p.space()
		p.formatEntityName(expr.Class)
		p.formatArgs(expr.Args)
	case *ast.ObjectExpression:
		p.kw(token.OBJECT)
		p.write("(")
		p.formatExpr(expr.Variable)
		p.write(")")
	}
}

// not prints "NOT " when set.
func (p *Printer) not(set bool) {
	if set {
		p.kw(token.NOT)
		p.space()
	}
}

func (p *Printer) formatArgs(args []ast.Expr) {
	p.write("(")
	p.formatList(len(args), func(i int) { p.formatExpr(args[i]) }, ", ")
	p.write(")")
}

func (p *Printer) formatPath(path *ast.PathExpression) {
	p.formatExpr(path.Root)
	for _, f := range path.Fields {
		p.write(".")
		p.write(f.Name)
	}
}

func (p *Printer) formatLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case ast.LiteralString:
		p.write(quote(lit.Value))
	case ast.LiteralJavaString:
		p.write(`"` + escape(lit.Value, '"') + `"`)
	case ast.LiteralBoolean, ast.LiteralNull:
		p.keyword(lit.Value)
	default:
		p.write(lit.Value)
	}
}

func (p *Printer) formatParameter(param *ast.InputParameter) {
	switch param.Kind {
	case ast.ParamPositional:
		p.write("?" + param.Name)
	case ast.ParamExpression:
		p.write(":#{" + param.Name + "}")
	default:
		p.write(":" + param.Name)
	}
}

func (p *Printer) formatInExpr(in *ast.InExpression) {
	p.formatExpr(in.Expr)
	p.space()
	p.not(in.Not)
	p.kw(token.IN)
	p.space()
	switch {
	case in.Parameter != nil:
		p.formatParameter(in.Parameter)
	case in.Subquery != nil:
		p.formatSubquery(in.Subquery)
	default:
		p.formatArgs(in.Items)
	}
}

func (p *Printer) formatLikeExpr(like *ast.LikeExpression) {
	p.formatExpr(like.Expr)
	p.space()
	p.not(like.Not)
	p.kw(token.LIKE)
	p.space()
	if like.LeadingPercent {
		p.write("%")
	}
	p.formatExpr(like.Pattern)
	if like.TrailingPercent {
		p.write("%")
	}
	if like.Escape != nil {
		p.space()
		p.kw(token.ESCAPE)
		p.space()
		p.formatExpr(like.Escape)
	}
}

func (p *Printer) formatTrimExpr(trim *ast.TrimExpression) {
	p.kw(token.TRIM)
	p.write("(")
	if trim.Spec != token.ILLEGAL {
		p.kw(trim.Spec)
		p.space()
	}
	if trim.Char != nil {
		p.formatExpr(trim.Char)
		p.space()
	}
	if trim.Spec != token.ILLEGAL || trim.Char != nil {
		p.kw(token.FROM)
		p.space()
	}
	p.formatExpr(trim.Source)
	p.write(")")
}

func (p *Printer) formatCaseExpr(c *ast.CaseExpression) {
	p.kw(token.CASE)
	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}
	for _, w := range c.Whens {
		p.space()
		p.kw(token.WHEN)
		p.space()
		p.formatExpr(w.Condition)
		p.space()
		p.kw(token.THEN)
		p.space()
		p.formatExpr(w.Result)
	}
	p.space()
	p.kw(token.ELSE)
	p.space()
	p.formatExpr(c.Else)
	p.space()
	p.kw(token.END)
}

// quote renders s as a single-quoted JPQL string literal.
func quote(s string) string {
	return "'" + escape(s, '\'') + "'"
}

// escape doubles the quote character and backslashes, which the lexer
// would otherwise read as escapes.
func escape(s string, q byte) string {
	if strings.IndexByte(s, q) < 0 && strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case q:
			b.WriteByte(q)
		case '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
