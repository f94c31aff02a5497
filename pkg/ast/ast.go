// Package ast defines the JPQL syntax tree.
//
// Every grammar construct has its own node type. Nodes own their children
// exclusively; there are no parent pointers. Use Parents to navigate upward
// from a node, resolved against the tree's root.
package ast

import "github.com/leapstack-labs/leapjpql/pkg/token"

// Node is implemented by every syntax tree node.
type Node interface {
	GetSpan() token.Span
}

// Statement is the root of a parsed query.
type Statement interface {
	Node
	stmtNode()
}

// Expr is any scalar or conditional expression, including subqueries.
type Expr interface {
	Node
	exprNode()
}

// FromItem is a declaration in a FROM clause.
type FromItem interface {
	Node
	fromItemNode()
}

// NodeInfo provides the source span shared by all nodes.
type NodeInfo struct {
	Span token.Span
}

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span {
	return n.Span
}

// ---------- Statement Types ----------

// SelectStatement is select_clause from_clause [where] [groupby] [having] [orderby].
type SelectStatement struct {
	NodeInfo
	Select  *SelectClause
	From    *FromClause
	Where   *WhereClause
	GroupBy *GroupByClause
	Having  *HavingClause
	OrderBy *OrderByClause
}

func (*SelectStatement) stmtNode() {}

// UpdateStatement is update_clause [where].
type UpdateStatement struct {
	NodeInfo
	Update *UpdateClause
	Where  *WhereClause
}

func (*UpdateStatement) stmtNode() {}

// DeleteStatement is delete_clause [where].
type DeleteStatement struct {
	NodeInfo
	Delete *DeleteClause
	Where  *WhereClause
}

func (*DeleteStatement) stmtNode() {}

// Subquery is a nested SELECT used as an expression.
type Subquery struct {
	NodeInfo
	Select  *SelectClause // exactly one item
	From    *FromClause
	Where   *WhereClause
	GroupBy *GroupByClause
	Having  *HavingClause
}

func (*Subquery) exprNode() {}

// ---------- Clause Types ----------

// SelectClause lists the query results.
type SelectClause struct {
	NodeInfo
	Distinct bool
	Items    []*SelectItem
}

// SelectItem is select_expression [[AS] result_variable].
type SelectItem struct {
	NodeInfo
	Expr  Expr
	As    bool
	Alias *Identifier
}

// FromClause holds the declarations of a FROM clause.
type FromClause struct {
	NodeInfo
	Items []FromItem
}

// IdentificationVariableDeclaration is a range variable plus its joins.
type IdentificationVariableDeclaration struct {
	NodeInfo
	Range *RangeVariableDeclaration
	Joins []*Join
}

func (*IdentificationVariableDeclaration) fromItemNode() {}

// RangeVariableDeclaration is entity_name [AS] identification_variable.
type RangeVariableDeclaration struct {
	NodeInfo
	Entity   *EntityName
	As       bool
	Variable *Identifier
}

// JoinKind distinguishes inner and left outer joins.
type JoinKind int

// Join kinds.
const (
	JoinInner JoinKind = iota
	JoinLeft
)

func (k JoinKind) String() string {
	if k == JoinLeft {
		return "LEFT"
	}
	return "INNER"
}

// Join is a (fetch) join over an association path.
type Join struct {
	NodeInfo
	Kind      JoinKind
	Explicit  bool // INNER or LEFT keyword was written
	Outer     bool
	Fetch     bool
	Path      Expr // *PathExpression or *TreatExpression
	As        bool
	Variable  *Identifier // optional for fetch joins
	Condition Expr        // ON condition, may be nil
}

// CollectionMemberDeclaration is IN (collection_path) [AS] identification_variable.
type CollectionMemberDeclaration struct {
	NodeInfo
	Path     Expr
	As       bool
	Variable *Identifier
}

func (*CollectionMemberDeclaration) fromItemNode() {}

// DerivedPathDeclaration declares a variable over a path rooted at a
// variable of an enclosing query. It only appears in subqueries.
type DerivedPathDeclaration struct {
	NodeInfo
	Path     Expr
	As       bool
	Variable *Identifier
	Joins    []*Join
}

func (*DerivedPathDeclaration) fromItemNode() {}

// DerivedCollectionMemberDeclaration is IN superquery_variable.path in a
// subquery FROM clause.
type DerivedCollectionMemberDeclaration struct {
	NodeInfo
	Path *PathExpression
}

func (*DerivedCollectionMemberDeclaration) fromItemNode() {}

// WhereClause holds the filter condition.
type WhereClause struct {
	NodeInfo
	Condition Expr
}

// HavingClause holds the group filter condition.
type HavingClause struct {
	NodeInfo
	Condition Expr
}

// GroupByClause lists the grouping items.
type GroupByClause struct {
	NodeInfo
	Items []Expr
}

// OrderByClause lists the ordering items.
type OrderByClause struct {
	NodeInfo
	Items []*OrderByItem
}

// Direction is an ORDER BY sort direction.
type Direction int

// Sort directions. DirectionNone means no keyword was written.
const (
	DirectionNone Direction = iota
	DirectionAsc
	DirectionDesc
)

func (d Direction) String() string {
	switch d {
	case DirectionAsc:
		return "ASC"
	case DirectionDesc:
		return "DESC"
	}
	return ""
}

// OrderByItem is an ordering expression with an optional direction.
type OrderByItem struct {
	NodeInfo
	Expr      Expr
	Direction Direction
}

// UpdateClause is UPDATE entity_name [[AS] var] SET update_item {, update_item}*.
type UpdateClause struct {
	NodeInfo
	Entity   *EntityName
	As       bool
	Variable *Identifier
	Items    []*UpdateItem
}

// UpdateItem is path = new_value.
type UpdateItem struct {
	NodeInfo
	Target *PathExpression
	Value  Expr
}

// DeleteClause is DELETE FROM entity_name [[AS] var].
type DeleteClause struct {
	NodeInfo
	Entity   *EntityName
	As       bool
	Variable *Identifier
}
