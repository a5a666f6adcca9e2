// Package parse implements the concrete-syntax parse tree and the
// recursive-descent parser that builds it (spec.md §4.2). The parse tree is
// a pure data structure: no name resolution, no type checking happens here.
// Every node carries its span.
package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/source"
)

const (
	treeLevelEmpty             = "        "
	treeLevelOngoing           = "  |     "
	treeLevelPrefix            = "  |%s: "
	treeLevelPrefixLast        = `  \%s: `
	treeLevelPrefixNamePad     = '-'
	treeLevelPrefixNamePadSize = 3
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadSize {
		msg = string(treeLevelPrefixNamePad) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadSize {
		msg = string(treeLevelPrefixNamePad) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

// Tree is a node of the concrete parse tree. A non-terminal node's Value is
// the grammar symbol it was reduced from (e.g. "function-definition"); a
// terminal node's Value is its token class ID and Source holds the actual
// lexed token.
type Tree struct {
	Terminal bool
	Value    string
	Source   lex.Token
	Children []*Tree

	// span is cached on construction from Source (terminal) or the join of
	// every child's span (non-terminal); see Span().
	span source.Span
}

// NewTerminal builds a leaf node from a lexed token.
func NewTerminal(tok lex.Token) *Tree {
	return &Tree{Terminal: true, Value: tok.Class().ID(), Source: tok, span: tok.Span()}
}

// NewNonTerminal builds an interior node, computing its span as the join of
// every child's span. A production with zero children (an epsilon
// derivation) gets an implicit span anchored at `at`.
func NewNonTerminal(symbol string, at source.Span, children ...*Tree) *Tree {
	t := &Tree{Value: symbol, Children: children}
	if len(children) == 0 {
		t.span = source.Span{File: at.File, Start: at.Start, End: at.Start, Implicit: true}
		return t
	}
	sp := children[0].Span()
	for _, c := range children[1:] {
		sp = sp.Join(c.Span())
	}
	t.span = sp
	return t
}

// Span returns the node's source span.
func (t *Tree) Span() source.Span { return t.span }

// String returns a prettified representation of the entire parse tree
// suitable for line-by-line comparison. Two parse trees are semantically
// identical if they produce identical String() output.
func (t *Tree) String() string {
	return t.leveledStr("", "")
}

// Copy returns a duplicate, deeply-copied parse tree.
func (t *Tree) Copy() *Tree {
	cp := &Tree{Terminal: t.Terminal, Value: t.Value, Source: t.Source, span: t.span}
	cp.Children = make([]*Tree, len(t.Children))
	for i, c := range t.Children {
		if c != nil {
			cp.Children[i] = c.Copy()
		}
	}
	return cp
}

func (t *Tree) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder
	sb.WriteString(firstPrefix)
	if t.Terminal {
		sb.WriteString(fmt.Sprintf("(TERM %q)", t.Source.Lexeme()))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", t.Value))
	}

	for i, c := range t.Children {
		sb.WriteRune('\n')
		var leveledFirst, leveledCont string
		if i+1 < len(t.Children) {
			leveledFirst = contPrefix + makeTreeLevelPrefix("")
			leveledCont = contPrefix + treeLevelOngoing
		} else {
			leveledFirst = contPrefix + makeTreeLevelPrefixLast("")
			leveledCont = contPrefix + treeLevelEmpty
		}
		sb.WriteString(c.leveledStr(leveledFirst, leveledCont))
	}
	return sb.String()
}

// Equal returns whether two parse trees have the exact same structure
// (ignoring cached span).
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Terminal != o.Terminal || t.Value != o.Value {
		return false
	}
	if len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
