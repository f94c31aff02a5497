package format

import (
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/token"
)

func (p *Printer) formatStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		p.formatSelectStatement(s)
	case *ast.UpdateStatement:
		p.formatUpdateStatement(s)
	case *ast.DeleteStatement:
		p.formatDeleteStatement(s)
	}
}

func (p *Printer) formatSelectStatement(stmt *ast.SelectStatement) {
	if stmt == nil {
		return
	}
	p.formatSelectClause(stmt.Select)
	p.formatFromClause(stmt.From)
	p.formatWhereClause(stmt.Where)
	p.formatGroupByClause(stmt.GroupBy)
	p.formatHavingClause(stmt.Having)

	if stmt.OrderBy != nil {
		p.clause()
		p.kw(token.ORDER, token.BY)
		p.space()
		p.formatList(len(stmt.OrderBy.Items), func(i int) {
			item := stmt.OrderBy.Items[i]
			p.formatExpr(item.Expr)
			switch item.Direction {
			case ast.DirectionAsc:
				p.space()
				p.kw(token.ASC)
			case ast.DirectionDesc:
				p.space()
				p.kw(token.DESC)
			}
		}, ", ")
	}
}

func (p *Printer) formatSubquery(sq *ast.Subquery) {
	if sq == nil {
		return
	}
	p.nested++
	p.write("(")
	p.formatSelectClause(sq.Select)
	p.formatFromClause(sq.From)
	p.formatWhereClause(sq.Where)
	p.formatGroupByClause(sq.GroupBy)
	p.formatHavingClause(sq.Having)
	p.write(")")
	p.nested--
}

func (p *Printer) formatSelectClause(sc *ast.SelectClause) {
	if sc == nil {
		return
	}
	p.kw(token.SELECT)
	if sc.Distinct {
		p.space()
		p.kw(token.DISTINCT)
	}
	p.space()
	p.formatList(len(sc.Items), func(i int) {
		item := sc.Items[i]
		p.formatExpr(item.Expr)
		p.formatAlias(item.As, item.Alias)
	}, ", ")
}

// formatAlias prints [AS] alias when an alias was given.
func (p *Printer) formatAlias(as bool, alias *ast.Identifier) {
	if alias == nil {
		return
	}
	p.space()
	if as {
		p.kw(token.AS)
		p.space()
	}
	p.write(alias.Name)
}

func (p *Printer) formatFromClause(from *ast.FromClause) {
	if from == nil {
		return
	}
	p.clause()
	p.kw(token.FROM)
	p.space()
	p.formatList(len(from.Items), func(i int) { p.formatFromItem(from.Items[i]) }, ", ")
}

func (p *Printer) formatFromItem(item ast.FromItem) {
	switch it := item.(type) {
	case *ast.IdentificationVariableDeclaration:
		if it.Range != nil {
			p.formatEntityName(it.Range.Entity)
			p.formatAlias(it.Range.As, it.Range.Variable)
		}
		p.formatJoins(it.Joins)
	case *ast.CollectionMemberDeclaration:
		p.kw(token.IN)
		p.write("(")
		p.formatExpr(it.Path)
		p.write(")")
		p.formatAlias(it.As, it.Variable)
	case *ast.DerivedPathDeclaration:
		p.formatExpr(it.Path)
		p.formatAlias(it.As, it.Variable)
		p.formatJoins(it.Joins)
	case *ast.DerivedCollectionMemberDeclaration:
		p.kw(token.IN)
		p.space()
		p.formatExpr(it.Path)
	}
}

func (p *Printer) formatJoins(joins []*ast.Join) {
	if len(joins) == 0 {
		return
	}
	p.indent()
	for _, j := range joins {
		p.clause()
		p.formatJoin(j)
	}
	p.dedent()
}

func (p *Printer) formatJoin(j *ast.Join) {
	if j.Explicit {
		if j.Kind == ast.JoinLeft {
			p.kw(token.LEFT)
			if j.Outer {
				p.space()
				p.kw(token.OUTER)
			}
		} else {
			p.kw(token.INNER)
		}
		p.space()
	}
	p.kw(token.JOIN)
	if j.Fetch {
		p.space()
		p.kw(token.FETCH)
	}
	p.space()
	p.formatExpr(j.Path)
	p.formatAlias(j.As, j.Variable)
	if j.Condition != nil {
		p.space()
		p.kw(token.ON)
		p.space()
		p.formatExpr(j.Condition)
	}
}

func (p *Printer) formatWhereClause(where *ast.WhereClause) {
	if where == nil {
		return
	}
	p.clause()
	p.kw(token.WHERE)
	p.space()
	p.formatExpr(where.Condition)
}

func (p *Printer) formatGroupByClause(gb *ast.GroupByClause) {
	if gb == nil {
		return
	}
	p.clause()
	p.kw(token.GROUP, token.BY)
	p.space()
	p.formatList(len(gb.Items), func(i int) { p.formatExpr(gb.Items[i]) }, ", ")
}

func (p *Printer) formatHavingClause(h *ast.HavingClause) {
	if h == nil {
		return
	}
	p.clause()
	p.kw(token.HAVING)
	p.space()
	p.formatExpr(h.Condition)
}

func (p *Printer) formatUpdateStatement(stmt *ast.UpdateStatement) {
	if stmt == nil || stmt.Update == nil {
		return
	}
	u := stmt.Update
	p.kw(token.UPDATE)
	p.space()
	p.formatEntityName(u.Entity)
	p.formatAlias(u.As, u.Variable)
	p.clause()
	p.kw(token.SET)
	p.space()
	p.formatList(len(u.Items), func(i int) {
		item := u.Items[i]
		p.formatExpr(item.Target)
		p.write(" = ")
		p.formatExpr(item.Value)
	}, ", ")
	p.formatWhereClause(stmt.Where)
}

func (p *Printer) formatDeleteStatement(stmt *ast.DeleteStatement) {
	if stmt == nil || stmt.Delete == nil {
		return
	}
	d := stmt.Delete
	p.kw(token.DELETE, token.FROM)
	p.space()
	p.formatEntityName(d.Entity)
	p.formatAlias(d.As, d.Variable)
	p.formatWhereClause(stmt.Where)
}

func (p *Printer) formatEntityName(e *ast.EntityName) {
	if e != nil {
		p.write(e.Name)
	}
}
