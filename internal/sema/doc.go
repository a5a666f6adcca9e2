package sema

import (
	"strings"

	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/source"
)

// docCursor walks a file's comment side-channel once, in span order,
// attaching each contiguous run of doc comments to the next declaration
// whose span begins after the run (spec.md §4.1's "the resolver attaches
// them to the following top-level declaration", exercised by scenario S2).
// A non-doc comment breaks a run: only the doc comments immediately
// preceding a declaration (with nothing but whitespace/other doc comments
// between) are attached.
type docCursor struct {
	comments []lex.Comment
	idx      int
}

func newDocCursor(comments []lex.Comment) *docCursor {
	return &docCursor{comments: comments}
}

// Attach consumes every comment up to declSpan.Start and returns the doc
// text accumulated from the contiguous doc-comment run immediately before
// it (resetting on any intervening plain comment).
func (c *docCursor) Attach(declSpan source.Span) ast.Doc {
	var lines []string
	var block string

	for c.idx < len(c.comments) {
		cm := c.comments[c.idx]
		if cm.Span.Start >= declSpan.Start {
			break
		}
		if !cm.Kind.IsDoc() {
			lines = nil
			block = ""
			c.idx++
			continue
		}
		switch cm.Kind {
		case lex.CommentDocLine:
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(cm.Text, "///")))
		case lex.CommentDocBlock:
			body := strings.TrimPrefix(cm.Text, "/**")
			block = strings.TrimSpace(stripLeadingStars(body))
		}
		c.idx++
	}

	return ast.Doc{Lines: lines, Block: block}
}

// stripLeadingStars removes a leading "*" from each line of a doc block's
// body, the conventional `/** ... */` continuation-line marker.
func stripLeadingStars(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if strings.HasPrefix(trimmed, "*") {
			lines[i] = strings.TrimPrefix(trimmed, "*")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
