package lex

import "github.com/dekarrin/solfront/internal/source"

// CommentKind distinguishes the four comment shapes the lexer recognizes.
// Doc comments are not discarded: they are carried on the side channel so a
// later pass can attach them to the following top-level declaration.
type CommentKind int

const (
	CommentLine CommentKind = iota
	CommentBlock
	CommentDocLine
	CommentDocBlock
)

func (k CommentKind) String() string {
	switch k {
	case CommentLine:
		return "line"
	case CommentBlock:
		return "block"
	case CommentDocLine:
		return "doc-line"
	case CommentDocBlock:
		return "doc-block"
	default:
		return "unknown"
	}
}

// IsDoc reports whether the comment participates in doc-comment attachment.
func (k CommentKind) IsDoc() bool {
	return k == CommentDocLine || k == CommentDocBlock
}

// Comment is one entry on the lexer's comment side channel.
type Comment struct {
	Kind CommentKind
	Span source.Span
	// Text is the comment body with the leading marker (//, ///, /*, /**)
	// and, for block comments, the trailing */ stripped.
	Text string
}
