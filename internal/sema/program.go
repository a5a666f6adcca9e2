package sema

import (
	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/source"
)

// Unit is one source file's parse tree plus the comments its lexer side
// channel captured, the input ResolveProgram needs per file.
type Unit struct {
	File     source.FileID
	Tree     *parse.Tree
	Comments []lex.Comment
}

// ResolveProgram runs every sema pass across a whole program in the order
// spec.md §4.4/§5 requires: Pass A (type-name shells) over every file before
// Pass B (field/signature filling) over any of them, so mutually-recursive
// cross-file type references resolve regardless of which file declares
// first. Selector computation and linearization both need every contract's
// signature fully resolved, so they run after every file's Pass B; function
// bodies resolve last since they are the only pass that needs overload sets
// and inherited members to already be in place.
func ResolveProgram(ns *namespace.Namespace, units []Unit) {
	resolvers := make([]*Resolver, len(units))
	for i, u := range units {
		r := NewResolver(ns, u.File, u.Comments)
		r.ResolveFile(u.Tree)
		resolvers[i] = r
	}

	pendingByResolver := make([][]pendingFunction, len(resolvers))
	for i, r := range resolvers {
		pendingByResolver[i] = r.ResolveSignatures()
	}

	ComputeSelectors(ns)
	Linearize(ns)

	for i, r := range resolvers {
		r.ResolveAllBodies(pendingByResolver[i])
	}
}
