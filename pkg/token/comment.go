package token

import "strings"

// CommentKind tells a "--" comment from a "/* */" one.
type CommentKind int

// Comment kinds.
const (
	LineComment CommentKind = iota
	BlockComment
)

func (k CommentKind) String() string {
	if k == BlockComment {
		return "block"
	}
	return "line"
}

// Comment is a comment the lexer skipped. Text keeps the delimiters.
type Comment struct {
	Kind CommentKind
	Text string
	Span Span
}

// Body returns the comment text without delimiters or surrounding space.
func (c *Comment) Body() string {
	s := c.Text
	if c.Kind == BlockComment {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "/*"), "*/")
	} else {
		s = strings.TrimPrefix(s, "--")
	}
	return strings.TrimSpace(s)
}
