package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Lexer tokenizes JPQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	err *LexError // first lexical error, if any

	// Comments collected during lexing
	Comments []*token.Comment
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Err returns the first lexical error encountered, or nil.
func (l *Lexer) Err() *LexError {
	return l.err
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos > len(l.input) {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	return l.peekCharAt(0)
}

// peekCharAt returns the character n positions after the next one.
func (l *Lexer) peekCharAt(n int) byte {
	if l.readPos+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n]
}

// atEOF distinguishes end of input from a NUL byte in the input.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. After a lexical error it returns
// ILLEGAL and Err reports the cause.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	if l.err != nil {
		return l.illegal(l.currentPos())
	}

	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos, End: pos}
	}

	switch l.ch {
	case '+':
		return l.single(token.PLUS, pos)
	case '-':
		return l.single(token.MINUS, pos)
	case '*':
		return l.single(token.STAR, pos)
	case '/':
		return l.single(token.SLASH, pos)
	case '%':
		return l.single(token.PERCENT, pos)
	case '=':
		return l.single(token.EQ, pos)
	case '<':
		switch l.peekChar() {
		case '=':
			return l.double(token.LE, pos)
		case '>':
			return l.double(token.NE, pos)
		}
		return l.single(token.LT, pos)
	case '>':
		if l.peekChar() == '=' {
			return l.double(token.GE, pos)
		}
		return l.single(token.GT, pos)
	case '!':
		if l.peekChar() == '=' {
			return l.double(token.NE, pos)
		}
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(pos)
		}
		return l.single(token.DOT, pos)
	case ',':
		return l.single(token.COMMA, pos)
	case '(':
		return l.single(token.LPAREN, pos)
	case ')':
		return l.single(token.RPAREN, pos)
	case ':':
		switch {
		case l.peekChar() == '#' && l.peekCharAt(1) == '{':
			return l.readExpressionParam(pos)
		case l.identStartAt(l.readPos):
			l.readChar() // skip ':'
			l.readIdentifier()
			return l.finish(token.NAMED_PARAM, pos)
		}
		return l.single(token.COLON, pos)
	case '?':
		if l.peekChar() == '#' && l.peekCharAt(1) == '{' {
			return l.readExpressionParam(pos)
		}
		l.readChar() // skip '?'
		for isDigit(l.ch) {
			l.readChar()
		}
		return l.finish(token.POSITIONAL_PARAM, pos)
	case '\'':
		return l.readString(pos, '\'', token.STRING)
	case '"':
		return l.readString(pos, '"', token.JAVA_STRING)
	default:
		switch {
		case l.identStartAt(l.pos):
			l.readIdentifier()
			tok := l.finish(token.IDENT, pos)
			tok.Type = token.LookupIdent(strings.ToLower(tok.Literal))
			return tok
		case isDigit(l.ch):
			return l.readNumber(pos)
		}
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	l.fail(pos, r, fmt.Sprintf(ErrUnexpectedChar, r))
	return l.illegal(pos)
}

// single consumes one character as a token.
func (l *Lexer) single(t token.TokenType, pos token.Position) token.Token {
	l.readChar()
	return l.finish(t, pos)
}

// double consumes two characters as a token.
func (l *Lexer) double(t token.TokenType, pos token.Position) token.Token {
	l.readChar()
	l.readChar()
	return l.finish(t, pos)
}

// finish builds a token whose literal is the source text from pos to here.
func (l *Lexer) finish(t token.TokenType, pos token.Position) token.Token {
	return token.Token{
		Type:    t,
		Literal: l.input[pos.Offset:l.pos],
		Pos:     pos,
		End:     l.currentPos(),
	}
}

func (l *Lexer) illegal(pos token.Position) token.Token {
	return token.Token{Type: token.ILLEGAL, Pos: pos, End: pos}
}

func (l *Lexer) fail(pos token.Position, r rune, msg string) {
	if l.err == nil {
		l.err = &LexError{Pos: pos, Char: r, Message: msg}
	}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()

	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startPos.Offset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a block comment.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for {
		if l.atEOF() {
			l.fail(startPos, '/', ErrUnterminatedComment)
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			break
		}
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startPos.Offset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a quoted literal. A doubled quote or a backslash
// escapes the next character: 'it''s' and 'it\'s' both yield it's.
func (l *Lexer) readString(pos token.Position, quote byte, t token.TokenType) token.Token {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		switch {
		case l.atEOF():
			l.fail(pos, rune(quote), ErrUnterminatedString)
			return l.illegal(pos)
		case l.ch == quote && l.peekChar() == quote:
			result.WriteByte(quote)
			l.readChar()
			l.readChar()
		case l.ch == quote:
			l.readChar() // skip closing quote
			tok := l.finish(t, pos)
			tok.Literal = result.String()
			return tok
		case l.ch == '\\' && l.readPos < len(l.input):
			l.readChar()
			if l.ch != quote && l.ch != '\\' {
				result.WriteByte('\\')
			}
			result.WriteByte(l.ch)
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readIdentifier reads an unquoted identifier. Non-ASCII letters are
// accepted.
func (l *Lexer) readIdentifier() {
	for !l.atEOF() {
		if l.ch < utf8.RuneSelf {
			if !isIdentStart(l.ch) && !isDigit(l.ch) {
				return
			}
			l.readChar()
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		for range size {
			l.readChar()
		}
	}
}

// readNumber reads an integer, long or floating point literal.
func (l *Lexer) readNumber(pos token.Position) token.Token {
	t := token.INT

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && (isDigit(l.peekChar()) || pos.Offset < l.pos) {
		t = token.FLOAT
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		t = token.FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.badNumber(pos)
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	switch l.ch {
	case 'l', 'L':
		if t != token.INT {
			return l.badNumber(pos)
		}
		t = token.LONG
		l.readChar()
	case 'f', 'F', 'd', 'D':
		t = token.FLOAT
		l.readChar()
	}

	if l.identStartAt(l.pos) || isDigit(l.ch) {
		return l.badNumber(pos)
	}
	return l.finish(t, pos)
}

func (l *Lexer) badNumber(pos token.Position) token.Token {
	for isIdentStart(l.ch) || isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	l.fail(pos, rune(l.input[pos.Offset]), fmt.Sprintf(ErrInvalidNumber, l.input[pos.Offset:l.pos]))
	return l.illegal(pos)
}

// readExpressionParam scans a :#{...} or ?#{...} parameter. Nested braces
// are balanced and quoted strings inside the expression are skipped.
func (l *Lexer) readExpressionParam(pos token.Position) token.Token {
	l.readChar() // skip ':' or '?'
	l.readChar() // skip '#'
	l.readChar() // skip '{'

	depth := 1
	for depth > 0 {
		if l.atEOF() {
			l.fail(pos, rune(l.input[pos.Offset]), ErrUnterminatedExpr)
			return l.illegal(pos)
		}
		switch l.ch {
		case '\'', '"':
			l.skipQuotedInExpr(l.ch)
		case '{':
			depth++
			l.readChar()
		case '}':
			depth--
			l.readChar()
		default:
			l.readChar()
		}
	}
	return l.finish(token.EXPR_PARAM, pos)
}

// skipQuotedInExpr skips over a quoted string inside a parameter expression.
func (l *Lexer) skipQuotedInExpr(quote byte) {
	l.readChar() // skip opening quote
	for !l.atEOF() {
		if l.ch == quote {
			l.readChar() // skip closing quote
			return
		}
		if l.ch == '\\' && l.readPos < len(l.input) {
			l.readChar() // skip escape
		}
		l.readChar()
	}
}

// identStartAt reports whether an identifier can start at offset.
func (l *Lexer) identStartAt(offset int) bool {
	if offset >= len(l.input) {
		return false
	}
	if ch := l.input[offset]; ch < utf8.RuneSelf {
		return isIdentStart(ch)
	}
	r, _ := utf8.DecodeRuneInString(l.input[offset:])
	return unicode.IsLetter(r)
}

// isIdentStart returns true if the ASCII character ch can start an identifier.
func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize lexes the whole input in a separate pass. The returned slice
// always ends with EOF. A lexical error stops tokenization.
func Tokenize(input string) ([]token.Token, error) {
	tokens, err := tokenize(NewLexer(input))
	if err != nil {
		return tokens, err
	}
	return tokens, nil
}
