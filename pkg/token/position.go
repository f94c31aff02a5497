package token

import "fmt"

// Position represents a location in the query text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number, counted in bytes
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a half-open range [Start, End) of the query text.
type Span struct {
	Start Position
	End   Position
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// Covers reports whether o lies entirely within s.
func (s Span) Covers(o Span) bool {
	return o.Start.Offset >= s.Start.Offset && o.End.Offset <= s.End.Offset
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// Text returns the slice of src the span covers.
func (s Span) Text(src string) string {
	if s.Start.Offset < 0 || s.End.Offset > len(src) || s.Start.Offset > s.End.Offset {
		return ""
	}
	return src[s.Start.Offset:s.End.Offset]
}
