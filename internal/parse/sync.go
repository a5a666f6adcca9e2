package parse

import "github.com/dekarrin/solfront/internal/grammar"

// recoveryGrammar is a deliberately coarse description of this language's
// declaration and statement nesting, used only to compute FOLLOW-based
// synchronization sets for panic-mode error recovery (spec.md §4.2). It is
// not the grammar the parser itself follows token-by-token -- the parser
// is hand-written recursive descent -- but it gives the two recovery
// points ("bad top-level declaration", "bad statement") a documented,
// FIRST/FOLLOW-derived sync set instead of a hand-picked one.
var recoveryGrammar = grammar.New("source-unit",
	[]grammar.Rule{
		{"source-unit", []string{"declaration", "source-unit"}},
		{"source-unit", grammar.Epsilon},

		{"declaration", []string{"pragma"}},
		{"declaration", []string{"import"}},
		{"declaration", []string{"contract-like"}},
		{"declaration", []string{"function-definition"}},
		{"declaration", []string{"struct-definition"}},
		{"declaration", []string{"enum-definition"}},
		{"declaration", []string{"error-definition"}},
		{"declaration", []string{"using-directive"}},

		{"contract-like", []string{"{", "member-list", "}"}},
		{"member-list", []string{"member", "member-list"}},
		{"member-list", grammar.Epsilon},
		{"member", []string{"declaration"}},
		{"member", []string{"state-variable"}},

		{"statement-list", []string{"statement", "statement-list"}},
		{"statement-list", grammar.Epsilon},
		{"statement", []string{"block"}},
		{"statement", []string{";"}},
		{"block", []string{"{", "statement-list", "}"}},
	},
	[]string{"pragma", "import", "{", "}", ";"},
)

// declarationSyncSet is the set of tokens a parser recovering from a
// malformed top-level (or contract-body) declaration should skip forward
// to: FOLLOW(declaration) plus the always-safe anchors ";" and "}" (the
// end of whatever enclosing brace list it's inside) and "$" is implicit
// via FOLLOW already including it at the true top level.
func declarationSyncSet() map[string]bool {
	set := recoveryGrammar.SyncSet("declaration", ";", "}")
	return toMap(set.Elements())
}

// statementSyncSet is the corresponding sync set for a malformed
// statement inside a block.
func statementSyncSet() map[string]bool {
	set := recoveryGrammar.SyncSet("statement", ";", "}")
	return toMap(set.Elements())
}

func toMap(els []string) map[string]bool {
	m := make(map[string]bool, len(els))
	for _, e := range els {
		m[e] = true
	}
	return m
}
