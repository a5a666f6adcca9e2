package sema

import (
	"github.com/dekarrin/solfront/internal/source"
	"github.com/dekarrin/solfront/internal/types"
)

// localVar is one entry of the body-resolver's lexical scope stack: a
// parameter or a `Type name = ...;` declaration inside the current
// function, modifier, or Yul block.
type localVar struct {
	ID   int
	Name string
	Type types.Type
	Span source.Span
}

// scope is one stack frame of local-variable bindings. The Resolver keeps
// a linked list of these, pushed on block/loop/try entry and popped on
// exit, per spec.md §3's "symbol tables for function bodies are scoped
// stacks created on entry ... and torn down on exit, with guaranteed
// release on every exit path including error recovery" -- guaranteed here
// by always popping in a defer at every PushScope call site.
type scope struct {
	vars   map[string]localVar
	parent *scope
}

// PushScope opens a new lexical scope nested under the Resolver's current
// one.
func (r *Resolver) PushScope() {
	r.scopeTop = &scope{vars: make(map[string]localVar), parent: r.scopeTop}
}

// PopScope closes the innermost scope. Callers must pair every PushScope
// with exactly one PopScope, typically via `defer r.PopScope()`.
func (r *Resolver) PopScope() {
	if r.scopeTop != nil {
		r.scopeTop = r.scopeTop.parent
	}
}

// Declare adds a new local variable to the innermost scope. It reports a
// diagnostic carrying the previous declaration's span if name is already
// bound in the SAME scope (shadowing an outer scope is allowed; shadowing
// within one scope is not, per spec.md §4.7's Vartable.add contract).
func (r *Resolver) Declare(name string, t types.Type, sp source.Span) int {
	id := r.NS.NextVarID()
	if r.scopeTop == nil {
		r.PushScope()
	}
	if prev, ok := r.scopeTop.vars[name]; ok {
		r.errorf(sp, "redeclaration of %q in the same scope", name)
		r.warnf(prev.Span, "previous declaration of %q is here", name)
	}
	r.scopeTop.vars[name] = localVar{ID: id, Name: name, Type: t, Span: sp}
	return id
}

// LookupLocal walks the scope stack outward looking for name.
func (r *Resolver) LookupLocal(name string) (localVar, bool) {
	for s := r.scopeTop; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}
