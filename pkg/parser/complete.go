package parser

import (
	"strings"
	"unicode"

	"github.com/leapstack-labs/leapjpql/pkg/token"
)

// Completion describes what may be typed at a cursor position.
type Completion struct {
	// Expected holds the tokens the grammar accepts at the cursor.
	Expected token.Set
	// Prefix is the partial word before the cursor, if any.
	Prefix string
	// Variables are the identification variables declared by the query.
	Variables []string
}

// ExpectedAt returns the tokens the grammar accepts at offset, judged from
// the text before it. A partially typed word at the cursor is ignored. The
// set is empty when the text before offset is already a complete statement.
func ExpectedAt(query string, offset int, opts ...Option) token.Set {
	return CompleteAt(query, offset, opts...).Expected
}

// CompleteAt is ExpectedAt plus the context an editor needs to filter and
// extend the candidates.
func CompleteAt(query string, offset int, opts ...Option) Completion {
	if offset < 0 {
		offset = 0
	}
	if offset > len(query) {
		offset = len(query)
	}
	before := query[:offset]
	head := strings.TrimRightFunc(before, isWordRune)
	c := Completion{Prefix: before[len(head):]}

	// variables come from the whole query, which may declare them later
	if full := ParseDocument(query, opts...); full.Scope != nil {
		c.Variables = full.Scope.Names()
	}

	r := ParseDocument(head, opts...)
	for _, d := range r.Diagnostics {
		if d.Kind == Syntax && d.Offset >= len(head) {
			c.Expected = d.Expected
			break
		}
	}
	return c
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Words lists the words that may replace the partial word at the cursor:
// the variables, where a name is accepted, then the keywords. Matching
// ignores case and keywords are spelled in lower case when the prefix is.
// Nothing is offered after a '.', where only field names fit.
func (c Completion) Words() []string {
	if c.Expected == token.FieldName {
		return nil
	}
	var out []string
	if c.Expected.Has(token.IDENT) {
		for _, v := range c.Variables {
			if hasPrefixFold(v, c.Prefix) {
				out = append(out, v)
			}
		}
	}
	lower := c.Prefix != "" && c.Prefix == strings.ToLower(c.Prefix)
	for _, t := range c.Expected.Types() {
		if !token.IsKeyword(t) {
			continue
		}
		word := t.String()
		if lower {
			word = strings.ToLower(word)
		}
		if hasPrefixFold(word, c.Prefix) {
			out = append(out, word)
		}
	}
	return out
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
