package parser_test

import (
	"testing"

	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(t *testing.T, input string) []token.TokenType {
	t.Helper()
	tokens, err := parser.Tokenize(input)
	require.NoError(t, err)
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.TokenType
	}{
		{
			name:  "simple select",
			input: "SELECT e FROM Employee e",
			want:  []token.TokenType{token.SELECT, token.IDENT, token.FROM, token.IDENT, token.IDENT, token.EOF},
		},
		{
			name:  "keywords are case insensitive",
			input: "select Distinct e from Employee e where e.name is not null",
			want: []token.TokenType{
				token.SELECT, token.DISTINCT, token.IDENT, token.FROM, token.IDENT, token.IDENT,
				token.WHERE, token.IDENT, token.DOT, token.IDENT, token.IS, token.NOT, token.NULL, token.EOF,
			},
		},
		{
			name:  "comparison operators",
			input: "= <> != < > <= >=",
			want: []token.TokenType{
				token.EQ, token.NE, token.NE, token.LT, token.GT, token.LE, token.GE, token.EOF,
			},
		},
		{
			name:  "arithmetic and punctuation",
			input: "(a + b) * c / d - e, %",
			want: []token.TokenType{
				token.LPAREN, token.IDENT, token.PLUS, token.IDENT, token.RPAREN, token.STAR,
				token.IDENT, token.SLASH, token.IDENT, token.MINUS, token.IDENT, token.COMMA,
				token.PERCENT, token.EOF,
			},
		},
		{
			name:  "parameters",
			input: ":name ?1 ? :#{#id} ?#{[0]}",
			want: []token.TokenType{
				token.NAMED_PARAM, token.POSITIONAL_PARAM, token.POSITIONAL_PARAM,
				token.EXPR_PARAM, token.EXPR_PARAM, token.EOF,
			},
		},
		{
			name:  "numbers",
			input: "1 10L 1.5 .5 2e10 3.0f 4d",
			want: []token.TokenType{
				token.INT, token.LONG, token.FLOAT, token.FLOAT, token.FLOAT, token.FLOAT, token.FLOAT, token.EOF,
			},
		},
		{
			name:  "strings",
			input: `'abc' "java"`,
			want:  []token.TokenType{token.STRING, token.JAVA_STRING, token.EOF},
		},
		{
			name:  "comments are skipped",
			input: "SELECT -- trailing\n e /* block */ FROM",
			want:  []token.TokenType{token.SELECT, token.IDENT, token.FROM, token.EOF},
		},
		{
			name:  "bare colon",
			input: "a : b",
			want:  []token.TokenType{token.IDENT, token.COLON, token.IDENT, token.EOF},
		},
		{
			name:  "unicode identifier",
			input: "SELECT straße FROM Größe straße",
			want:  []token.TokenType{token.SELECT, token.IDENT, token.FROM, token.IDENT, token.IDENT, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenTypes(t, tt.input))
		})
	}
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'it''s'`, "it's"},
		{`'it\'s'`, "it's"},
		{`'a\nb'`, `a\nb`},
		{`"say ""hi"""`, `say "hi"`},
		{`:name`, ":name"},
		{`:#{#entity.id}`, ":#{#entity.id}"},
		{`?#{escape(#name)}`, "?#{escape(#name)}"},
		{`:#{'}'}`, ":#{'}'}"},
		{`:#{{a}}`, ":#{{a}}"},
		{`1.5e-3`, "1.5e-3"},
		{`Employee`, "Employee"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := parser.Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.want, tokens[0].Literal)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := parser.Tokenize("SELECT e\n  FROM Employee e")
	require.NoError(t, err)
	require.Len(t, tokens, 6)

	from := tokens[2]
	assert.Equal(t, token.FROM, from.Type)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 11}, from.Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 7, Offset: 15}, from.End)

	eof := tokens[5]
	assert.Equal(t, token.EOF, eof.Type)
	assert.Equal(t, 26, eof.Pos.Offset)
}

func TestLexer_Comments(t *testing.T) {
	l := parser.NewLexer("SELECT /* one */ e -- two\nFROM E e")
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
	}
	require.Nil(t, l.Err())
	require.Len(t, l.Comments, 2)
	assert.Equal(t, token.BlockComment, l.Comments[0].Kind)
	assert.Equal(t, "/* one */", l.Comments[0].Text)
	assert.Equal(t, token.LineComment, l.Comments[1].Kind)
	assert.Equal(t, "-- two", l.Comments[1].Text)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		msg    string
		offset int
	}{
		{"unterminated string", "SELECT 'abc", parser.ErrUnterminatedString, 7},
		{"unterminated java string", `SELECT "abc`, parser.ErrUnterminatedString, 7},
		{"unterminated comment", "SELECT /* abc", parser.ErrUnterminatedComment, 7},
		{"unterminated expression", "WHERE :#{abc", parser.ErrUnterminatedExpr, 6},
		{"unexpected character", "SELECT e;", `unexpected character ';'`, 8},
		{"invalid number", "SELECT 12abc", `invalid number literal "12abc"`, 7},
		{"long with fraction", "SELECT 1.5L", `invalid number literal "1.5L"`, 7},
		{"bare bang", "a ! b", `unexpected character '!'`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Tokenize(tt.input)
			require.Error(t, err)
			var lexErr *parser.LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.msg, lexErr.Message)
			assert.Equal(t, tt.offset, lexErr.Pos.Offset)
		})
	}
}

func TestLexer_ErrorStopsParse(t *testing.T) {
	stmt, diags := parser.Parse("SELECT e FROM Employee e WHERE e.name = 'open")
	assert.Nil(t, stmt)
	require.Len(t, diags, 1)
	assert.Equal(t, parser.Lexical, diags[0].Kind)
	assert.True(t, diags.HasLexical())
}
