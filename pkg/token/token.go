// Package token defines the lexical tokens of JPQL.
//
// Keywords are matched case-insensitively. Several of them are contextual:
// they are reserved in some grammar positions and ordinary identifiers in
// others (see sets.go).
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // keyword names are intentionally ALL_CAPS for JPQL token conventions
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT       // identifier
	STRING      // 'hello'
	JAVA_STRING // "hello"
	INT         // 123
	LONG        // 123L
	FLOAT       // 1.5, 1e10, 2.5F, 3D

	// Parameters
	NAMED_PARAM      // :name
	POSITIONAL_PARAM // ?1
	EXPR_PARAM       // :#{...}, ?#{...}

	// Operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /
	EQ    // =
	NE    // <> or !=
	LT    // <
	GT    // >
	LE    // <=
	GE    // >=

	// Punctuation
	DOT     // .
	COMMA   // ,
	LPAREN  // (
	RPAREN  // )
	PERCENT // %
	COLON   // :

	// Keywords (alphabetical)
	ABS
	ALL
	AND
	ANY
	AS
	ASC
	AVG
	BETWEEN
	BOTH
	BY
	CASE
	CEILING
	COALESCE
	CONCAT
	COUNT
	CURRENT_DATE
	CURRENT_TIME
	CURRENT_TIMESTAMP
	DATE
	DATETIME
	DELETE
	DESC
	DISTINCT
	ELSE
	EMPTY
	END
	ENTRY
	ESCAPE
	EXISTS
	EXP
	EXTRACT
	FALSE
	FETCH
	FLOOR
	FROM
	FUNCTION
	GROUP
	HAVING
	IN
	INDEX
	INNER
	IS
	JOIN
	KEY
	LEADING
	LEFT
	LENGTH
	LIKE
	LN
	LOCAL
	LOCATE
	LOWER
	MAX
	MEMBER
	MIN
	MOD
	NEW
	NOT
	NULL
	NULLIF
	OBJECT
	OF
	ON
	OR
	ORDER
	OUTER
	POWER
	ROUND
	SELECT
	SET
	SIGN
	SIZE
	SOME
	SQRT
	SUBSTRING
	SUM
	THEN
	TIME
	TRAILING
	TREAT
	TRIM
	TRUE
	TYPE
	UPDATE
	UPPER
	VALUE
	WHEN
	WHERE

	maxToken
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their display names.
// Keyword names are filled in from the keywords table in init.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:       "IDENT",
	STRING:      "STRING",
	JAVA_STRING: "JAVA_STRING",
	INT:         "INT",
	LONG:        "LONG",
	FLOAT:       "FLOAT",

	NAMED_PARAM:      "NAMED_PARAM",
	POSITIONAL_PARAM: "POSITIONAL_PARAM",
	EXPR_PARAM:       "EXPR_PARAM",

	PLUS:  "+",
	MINUS: "-",
	STAR:  "*",
	SLASH: "/",
	EQ:    "=",
	NE:    "<>",
	LT:    "<",
	GT:    ">",
	LE:    "<=",
	GE:    ">=",

	DOT:     ".",
	COMMA:   ",",
	LPAREN:  "(",
	RPAREN:  ")",
	PERCENT: "%",
	COLON:   ":",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"abs":               ABS,
	"all":               ALL,
	"and":               AND,
	"any":               ANY,
	"as":                AS,
	"asc":               ASC,
	"avg":               AVG,
	"between":           BETWEEN,
	"both":              BOTH,
	"by":                BY,
	"case":              CASE,
	"ceiling":           CEILING,
	"coalesce":          COALESCE,
	"concat":            CONCAT,
	"count":             COUNT,
	"current_date":      CURRENT_DATE,
	"current_time":      CURRENT_TIME,
	"current_timestamp": CURRENT_TIMESTAMP,
	"date":              DATE,
	"datetime":          DATETIME,
	"delete":            DELETE,
	"desc":              DESC,
	"distinct":          DISTINCT,
	"else":              ELSE,
	"empty":             EMPTY,
	"end":               END,
	"entry":             ENTRY,
	"escape":            ESCAPE,
	"exists":            EXISTS,
	"exp":               EXP,
	"extract":           EXTRACT,
	"false":             FALSE,
	"fetch":             FETCH,
	"floor":             FLOOR,
	"from":              FROM,
	"function":          FUNCTION,
	"group":             GROUP,
	"having":            HAVING,
	"in":                IN,
	"index":             INDEX,
	"inner":             INNER,
	"is":                IS,
	"join":              JOIN,
	"key":               KEY,
	"leading":           LEADING,
	"left":              LEFT,
	"length":            LENGTH,
	"like":              LIKE,
	"ln":                LN,
	"local":             LOCAL,
	"locate":            LOCATE,
	"lower":             LOWER,
	"max":               MAX,
	"member":            MEMBER,
	"min":               MIN,
	"mod":               MOD,
	"new":               NEW,
	"not":               NOT,
	"null":              NULL,
	"nullif":            NULLIF,
	"object":            OBJECT,
	"of":                OF,
	"on":                ON,
	"or":                OR,
	"order":             ORDER,
	"outer":             OUTER,
	"power":             POWER,
	"round":             ROUND,
	"select":            SELECT,
	"set":               SET,
	"sign":              SIGN,
	"size":              SIZE,
	"some":              SOME,
	"sqrt":              SQRT,
	"substring":         SUBSTRING,
	"sum":               SUM,
	"then":              THEN,
	"time":              TIME,
	"trailing":          TRAILING,
	"treat":             TREAT,
	"trim":              TRIM,
	"true":              TRUE,
	"type":              TYPE,
	"update":            UPDATE,
	"upper":             UPPER,
	"value":             VALUE,
	"when":              WHEN,
	"where":             WHERE,
}

func init() {
	for word, t := range keywords {
		tokenNames[t] = strings.ToUpper(word)
	}
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns every keyword token type, in declaration order.
func Keywords() []TokenType {
	out := make([]TokenType, 0, maxToken-ABS)
	for t := ABS; t < maxToken; t++ {
		out = append(out, t)
	}
	return out
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ABS && t < maxToken
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= GE
}

// IsLiteral returns true if the token type is a string or numeric literal.
func IsLiteral(t TokenType) bool {
	return t >= STRING && t <= FLOAT
}

// IsParameter returns true if the token type is a parameter marker.
func IsParameter(t TokenType) bool {
	return t >= NAMED_PARAM && t <= EXPR_PARAM
}

// Token represents a lexical token with position information.
// For string literals Literal holds the unescaped value; for everything
// else it is the source text.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position // first byte
	End     Position // one past the last byte
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{Start: t.Pos, End: t.End}
}

func (t Token) String() string {
	if t.Literal == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
