package token

import (
	"math/bits"
	"strings"
)

const setWords = 2

// Set fails to compile if the token space outgrows it.
const _ = uint(setWords*64 - int(maxToken))

// Set is an immutable-by-convention bitset of token types. It is a value
// type, so package-level sets can be shared between goroutines freely.
type Set [setWords]uint64

// NewSet returns a set holding the given token types.
func NewSet(types ...TokenType) Set {
	var s Set
	for _, t := range types {
		s[t>>6] |= 1 << (uint(t) & 63)
	}
	return s
}

// Has reports whether t is a member of the set.
func (s Set) Has(t TokenType) bool {
	if t < 0 || t >= maxToken {
		return false
	}
	return s[t>>6]&(1<<(uint(t)&63)) != 0
}

// Union returns the members of s and o.
func (s Set) Union(o Set) Set {
	for i := range s {
		s[i] |= o[i]
	}
	return s
}

// With returns s plus the given token types.
func (s Set) With(types ...TokenType) Set {
	return s.Union(NewSet(types...))
}

// Without returns s minus the given token types.
func (s Set) Without(types ...TokenType) Set {
	o := NewSet(types...)
	for i := range s {
		s[i] &^= o[i]
	}
	return s
}

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool {
	return s == Set{}
}

// Types returns the members in ascending order.
func (s Set) Types() []TokenType {
	out := make([]TokenType, 0, s.Len())
	for t := TokenType(0); t < maxToken; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// String renders the set as "A, B or C", the form used in diagnostics.
func (s Set) String() string {
	types := s.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// Contextual keyword sets. Each grammar position that accepts an identifier
// uses one of these; the differences between them are deliberate.
var (
	// IdentVariable is accepted where an identification variable or entity
	// name is expected.
	IdentVariable = NewSet(
		IDENT, TYPE, KEY, VALUE, ENTRY, ORDER, DATE, TIME, DATETIME,
		LEFT, INNER, OUTER, NEW, OBJECT, COUNT, AVG, MAX, MIN, SUM,
		INDEX, SIZE, POWER, SIGN, FLOOR,
	)

	// ResultVariable is accepted as a select item alias. It omits the
	// numeric function names SIGN, FLOOR and POWER.
	ResultVariable = IdentVariable.Without(POWER, SIGN, FLOOR)

	// FieldName is accepted after a '.' in a path, where no keyword is
	// ambiguous.
	FieldName = allKeywords().With(IDENT)
)

func allKeywords() Set {
	var s Set
	for t := ABS; t < maxToken; t++ {
		s = s.With(t)
	}
	return s
}
