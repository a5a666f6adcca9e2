package lex

import "github.com/dekarrin/solfront/internal/source"

// Token is a lexeme read from text combined with the token class it is as
// well as its source span, for use in diagnostics and by the parser when
// building spans for parse-tree nodes.
type Token interface {
	Class() TokenClass
	Lexeme() string
	Span() source.Span

	// LinePos/Line/FullLine give 1-indexed human-facing position
	// information derived from Span, for diagnostics that want a
	// line/column rather than a byte offset.
	LinePos() int
	Line() int
	FullLine() string

	String() string
}

type token struct {
	class   TokenClass
	lexed   string
	span    source.Span
	linePos int
	lineNum int
	line    string
}

func (t token) Class() TokenClass        { return t.class }
func (t token) Lexeme() string           { return t.lexed }
func (t token) Span() source.Span        { return t.span }
func (t token) LinePos() int             { return t.linePos }
func (t token) Line() int                { return t.lineNum }
func (t token) FullLine() string         { return t.line }
func (t token) String() string {
	return t.class.Human() + " " + quoteLexeme(t.lexed)
}

func quoteLexeme(s string) string {
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return "`" + s + "`"
}
