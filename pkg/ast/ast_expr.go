package ast

import "github.com/leapstack-labs/leapjpql/pkg/token"

// ---------- Names and Paths ----------

// Identifier is a plain name. Keyword records the contextual keyword the
// name was spelled with, or token.IDENT.
type Identifier struct {
	NodeInfo
	Name    string
	Keyword token.TokenType
}

func (*Identifier) exprNode() {}

// EntityName is a possibly dot-qualified entity or class name.
type EntityName struct {
	NodeInfo
	Name string
}

// PathExpression is root.field{.field}*. A bare variable has no fields.
type PathExpression struct {
	NodeInfo
	Root   Expr // *Identifier, *QualifiedIdentifier or *TreatExpression
	Fields []*Identifier
}

func (*PathExpression) exprNode() {}

// QualifiedIdentifier is KEY(v), VALUE(v) or ENTRY(v).
type QualifiedIdentifier struct {
	NodeInfo
	Qualifier token.TokenType
	Variable  *Identifier
}

func (*QualifiedIdentifier) exprNode() {}

// TreatExpression is TREAT(path AS subtype).
type TreatExpression struct {
	NodeInfo
	Path    Expr
	Subtype *EntityName
}

func (*TreatExpression) exprNode() {}

// ---------- Operands ----------

// LiteralKind classifies a literal.
type LiteralKind int

// Literal kinds.
const (
	LiteralString LiteralKind = iota
	LiteralJavaString
	LiteralInt
	LiteralLong
	LiteralFloat
	LiteralBoolean
	LiteralNull
)

var literalKindNames = [...]string{"string", "java_string", "int", "long", "float", "boolean", "null"}

func (k LiteralKind) String() string {
	if int(k) < len(literalKindNames) {
		return literalKindNames[k]
	}
	return "unknown"
}

// Literal is a constant. Value holds the unescaped string contents or the
// source text of other literals.
type Literal struct {
	NodeInfo
	Kind  LiteralKind
	Value string
}

func (*Literal) exprNode() {}

// ParamKind classifies an input parameter.
type ParamKind int

// Parameter kinds.
const (
	ParamNamed      ParamKind = iota // :name
	ParamPositional                  // ?1
	ParamExpression                  // :#{expr}
)

func (k ParamKind) String() string {
	switch k {
	case ParamPositional:
		return "positional"
	case ParamExpression:
		return "expression"
	}
	return "named"
}

// InputParameter is a parameter marker. Name is the name, the position
// digits, or the embedded expression body.
type InputParameter struct {
	NodeInfo
	Kind ParamKind
	Name string
}

func (*InputParameter) exprNode() {}

// ---------- Operators ----------

// LogicalExpression is left AND right or left OR right.
type LogicalExpression struct {
	NodeInfo
	Op    token.TokenType
	Left  Expr
	Right Expr
}

func (*LogicalExpression) exprNode() {}

// NotExpression negates a conditional primary.
type NotExpression struct {
	NodeInfo
	Expr Expr
}

func (*NotExpression) exprNode() {}

// ArithmeticExpression is a binary +, -, * or /.
type ArithmeticExpression struct {
	NodeInfo
	Op    token.TokenType
	Left  Expr
	Right Expr
}

func (*ArithmeticExpression) exprNode() {}

// UnaryExpression is a signed arithmetic primary.
type UnaryExpression struct {
	NodeInfo
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpression) exprNode() {}

// ParenExpression is a parenthesized expression.
type ParenExpression struct {
	NodeInfo
	Expr Expr
}

func (*ParenExpression) exprNode() {}

// ---------- Predicates ----------

// ComparisonExpression is left op right.
type ComparisonExpression struct {
	NodeInfo
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*ComparisonExpression) exprNode() {}

// BetweenExpression is expr [NOT] BETWEEN low AND high.
type BetweenExpression struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpression) exprNode() {}

// InExpression is expr [NOT] IN (...). Exactly one of Items, Subquery or
// Parameter is set.
type InExpression struct {
	NodeInfo
	Expr      Expr
	Not       bool
	Items     []Expr
	Subquery  *Subquery
	Parameter *InputParameter
}

func (*InExpression) exprNode() {}

// LikeExpression is expr [NOT] LIKE pattern [ESCAPE char]. The wildcard
// flags record a % written directly before or after a parameter pattern.
type LikeExpression struct {
	NodeInfo
	Expr            Expr
	Not             bool
	Pattern         Expr
	Escape          Expr
	LeadingPercent  bool
	TrailingPercent bool
}

func (*LikeExpression) exprNode() {}

// NullComparisonExpression is expr IS [NOT] NULL.
type NullComparisonExpression struct {
	NodeInfo
	Expr Expr
	Not  bool
}

func (*NullComparisonExpression) exprNode() {}

// EmptyCollectionComparisonExpression is path IS [NOT] EMPTY.
type EmptyCollectionComparisonExpression struct {
	NodeInfo
	Path Expr
	Not  bool
}

func (*EmptyCollectionComparisonExpression) exprNode() {}

// CollectionMemberExpression is expr [NOT] MEMBER [OF] path.
type CollectionMemberExpression struct {
	NodeInfo
	Entity     Expr
	Not        bool
	Of         bool
	Collection Expr
}

func (*CollectionMemberExpression) exprNode() {}

// ExistsExpression is [NOT] EXISTS (subquery).
type ExistsExpression struct {
	NodeInfo
	Not      bool
	Subquery *Subquery
}

func (*ExistsExpression) exprNode() {}

// AllOrAnyExpression is ALL, ANY or SOME (subquery).
type AllOrAnyExpression struct {
	NodeInfo
	Quantifier token.TokenType
	Subquery   *Subquery
}

func (*AllOrAnyExpression) exprNode() {}

// ---------- Functions ----------

// AggregateExpression is AVG, MAX, MIN, SUM or COUNT.
type AggregateExpression struct {
	NodeInfo
	Func     token.TokenType
	Distinct bool
	Arg      Expr
}

func (*AggregateExpression) exprNode() {}

// FunctionCall is a built-in function such as ABS, CONCAT or SIZE.
type FunctionCall struct {
	NodeInfo
	Func token.TokenType
	Args []Expr
}

func (*FunctionCall) exprNode() {}

// TrimExpression is TRIM([[spec] [char] FROM] source). Spec is
// token.ILLEGAL when not written.
type TrimExpression struct {
	NodeInfo
	Spec   token.TokenType
	Char   Expr
	Source Expr
}

func (*TrimExpression) exprNode() {}

// CurrentDatetime is CURRENT_DATE, CURRENT_TIME, CURRENT_TIMESTAMP or
// LOCAL DATE, LOCAL TIME, LOCAL DATETIME.
type CurrentDatetime struct {
	NodeInfo
	Func  token.TokenType
	Local bool
}

func (*CurrentDatetime) exprNode() {}

// ExtractExpression is EXTRACT(field FROM source).
type ExtractExpression struct {
	NodeInfo
	Field  *Identifier
	Source Expr
}

func (*ExtractExpression) exprNode() {}

// FunctionInvocation is FUNCTION('name', args...).
type FunctionInvocation struct {
	NodeInfo
	Name string
	Args []Expr
}

func (*FunctionInvocation) exprNode() {}

// CaseExpression is a general (Operand nil) or simple CASE.
type CaseExpression struct {
	NodeInfo
	Operand Expr
	Whens   []*WhenClause
	Else    Expr
}

func (*CaseExpression) exprNode() {}

// WhenClause is WHEN condition THEN result.
type WhenClause struct {
	NodeInfo
	Condition Expr
	Result    Expr
}

// CoalesceExpression is COALESCE(a, b, ...).
type CoalesceExpression struct {
	NodeInfo
	Args []Expr
}

func (*CoalesceExpression) exprNode() {}

// NullIfExpression is NULLIF(a, b).
type NullIfExpression struct {
	NodeInfo
	Left  Expr
	Right Expr
}

func (*NullIfExpression) exprNode() {}

// TypeDiscriminator is TYPE(variable, path or parameter).
type TypeDiscriminator struct {
	NodeInfo
	Expr Expr
}

func (*TypeDiscriminator) exprNode() {}

// ConstructorExpression is NEW class(args...).
type ConstructorExpression struct {
	NodeInfo
	Class *EntityName
	Args  []Expr
}

func (*ConstructorExpression) exprNode() {}

// ObjectExpression is OBJECT(variable).
type ObjectExpression struct {
	NodeInfo
	Variable *Identifier
}

func (*ObjectExpression) exprNode() {}
