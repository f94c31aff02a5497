package ast

import "reflect"

// Walk traverses the tree depth-first and calls fn for each node.
// If fn returns false, the node's children are skipped.
func Walk(node Node, fn func(node Node) bool) {
	if isNil(node) {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}

// Inspect calls fn for every node in the tree, in source order.
func Inspect(node Node, fn func(node Node)) {
	Walk(node, func(n Node) bool {
		fn(n)
		return true
	})
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var c children
	switch n := node.(type) {
	case *SelectStatement:
		c.add(n.Select, n.From, n.Where, n.GroupBy, n.Having, n.OrderBy)
	case *UpdateStatement:
		c.add(n.Update, n.Where)
	case *DeleteStatement:
		c.add(n.Delete, n.Where)
	case *Subquery:
		c.add(n.Select, n.From, n.Where, n.GroupBy, n.Having)

	case *SelectClause:
		for _, item := range n.Items {
			c.add(item)
		}
	case *SelectItem:
		c.add(n.Expr, n.Alias)
	case *FromClause:
		for _, item := range n.Items {
			c.add(item)
		}
	case *IdentificationVariableDeclaration:
		c.add(n.Range)
		for _, j := range n.Joins {
			c.add(j)
		}
	case *RangeVariableDeclaration:
		c.add(n.Entity, n.Variable)
	case *Join:
		c.add(n.Path, n.Variable, n.Condition)
	case *CollectionMemberDeclaration:
		c.add(n.Path, n.Variable)
	case *DerivedPathDeclaration:
		c.add(n.Path, n.Variable)
		for _, j := range n.Joins {
			c.add(j)
		}
	case *DerivedCollectionMemberDeclaration:
		c.add(n.Path)
	case *WhereClause:
		c.add(n.Condition)
	case *HavingClause:
		c.add(n.Condition)
	case *GroupByClause:
		c.addExprs(n.Items)
	case *OrderByClause:
		for _, item := range n.Items {
			c.add(item)
		}
	case *OrderByItem:
		c.add(n.Expr)
	case *UpdateClause:
		c.add(n.Entity, n.Variable)
		for _, item := range n.Items {
			c.add(item)
		}
	case *UpdateItem:
		c.add(n.Target, n.Value)
	case *DeleteClause:
		c.add(n.Entity, n.Variable)

	case *PathExpression:
		c.add(n.Root)
		for _, f := range n.Fields {
			c.add(f)
		}
	case *QualifiedIdentifier:
		c.add(n.Variable)
	case *TreatExpression:
		c.add(n.Path, n.Subtype)

	case *LogicalExpression:
		c.add(n.Left, n.Right)
	case *NotExpression:
		c.add(n.Expr)
	case *ArithmeticExpression:
		c.add(n.Left, n.Right)
	case *UnaryExpression:
		c.add(n.Expr)
	case *ParenExpression:
		c.add(n.Expr)

	case *ComparisonExpression:
		c.add(n.Left, n.Right)
	case *BetweenExpression:
		c.add(n.Expr, n.Low, n.High)
	case *InExpression:
		c.add(n.Expr)
		c.addExprs(n.Items)
		c.add(n.Subquery, n.Parameter)
	case *LikeExpression:
		c.add(n.Expr, n.Pattern, n.Escape)
	case *NullComparisonExpression:
		c.add(n.Expr)
	case *EmptyCollectionComparisonExpression:
		c.add(n.Path)
	case *CollectionMemberExpression:
		c.add(n.Entity, n.Collection)
	case *ExistsExpression:
		c.add(n.Subquery)
	case *AllOrAnyExpression:
		c.add(n.Subquery)

	case *AggregateExpression:
		c.add(n.Arg)
	case *FunctionCall:
		c.addExprs(n.Args)
	case *TrimExpression:
		c.add(n.Char, n.Source)
	case *ExtractExpression:
		c.add(n.Field, n.Source)
	case *FunctionInvocation:
		c.addExprs(n.Args)
	case *CaseExpression:
		c.add(n.Operand)
		for _, w := range n.Whens {
			c.add(w)
		}
		c.add(n.Else)
	case *WhenClause:
		c.add(n.Condition, n.Result)
	case *CoalesceExpression:
		c.addExprs(n.Args)
	case *NullIfExpression:
		c.add(n.Left, n.Right)
	case *TypeDiscriminator:
		c.add(n.Expr)
	case *ConstructorExpression:
		c.add(n.Class)
		c.addExprs(n.Args)
	case *ObjectExpression:
		c.add(n.Variable)

	case *Identifier, *EntityName, *Literal, *InputParameter, *CurrentDatetime:
		// leaves
	}
	return c
}

type children []Node

func (c *children) add(nodes ...Node) {
	for _, n := range nodes {
		if !isNil(n) {
			*c = append(*c, n)
		}
	}
}

func (c *children) addExprs(exprs []Expr) {
	for _, e := range exprs {
		c.add(e)
	}
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Parents maps each node of a tree to its parent. The root maps to nil.
// It is computed from the root on demand and holds no ownership.
type Parents map[Node]Node

// ParentsOf builds the parent relation for the tree under root.
func ParentsOf(root Node) Parents {
	parents := Parents{}
	if isNil(root) {
		return parents
	}
	parents[root] = nil
	var visit func(n Node)
	visit = func(n Node) {
		for _, child := range Children(n) {
			parents[child] = n
			visit(child)
		}
	}
	visit(root)
	return parents
}

// Parent returns the parent of n, or nil for the root and unknown nodes.
func (p Parents) Parent(n Node) Node {
	return p[n]
}

// Ancestors returns the chain from n's parent up to the root.
func (p Parents) Ancestors(n Node) []Node {
	var out []Node
	for cur := p[n]; cur != nil; cur = p[cur] {
		out = append(out, cur)
	}
	return out
}

// NodeAt returns the innermost node whose span contains offset.
func NodeAt(root Node, offset int) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if !n.GetSpan().Contains(offset) {
			return false
		}
		found = n
		return true
	})
	return found
}
