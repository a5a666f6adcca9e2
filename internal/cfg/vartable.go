package cfg

import "github.com/dekarrin/solfront/internal/types"

// Var is one SSA-numbered slot: every assignment to a source-level variable
// gets a fresh Var rather than mutating one in place, per spec.md §4.7.
type Var struct {
	ID   int
	Name string // "" for a temp()
	Type types.Type
}

type varScope struct {
	parent *varScope
	names  map[string]int
	limit  int // Vartable length when this scope was pushed, for dirty-tracking
}

// Vartable is a flat vector of SSA variables plus a linked-list stack of
// lexical scopes mapping source names to variable IDs (spec.md §4.7).
type Vartable struct {
	vars []Var
	top  *varScope
}

// NewVartable creates an empty table with one root scope.
func NewVartable() *Vartable {
	vt := &Vartable{}
	vt.NewScope()
	return vt
}

// NewScope pushes a fresh lexical scope.
func (vt *Vartable) NewScope() {
	vt.top = &varScope{parent: vt.top, names: map[string]int{}, limit: len(vt.vars)}
}

// LeaveScope pops the current lexical scope.
func (vt *Vartable) LeaveScope() {
	vt.top = vt.top.parent
}

// Add declares name in the current scope, returning its fresh Var ID. It
// fails (ok=false) if name already exists in the current scope -- shadowing
// within the same scope is a resolver-level error already caught earlier, so
// callers here only need the previous declaration's Var back for the
// diagnostic.
func (vt *Vartable) Add(name string, t types.Type) (id int, prev int, ok bool) {
	if existing, exists := vt.top.names[name]; exists {
		return 0, existing, false
	}
	id = len(vt.vars)
	vt.vars = append(vt.vars, Var{ID: id, Name: name, Type: t})
	vt.top.names[name] = id
	return id, 0, true
}

// Find walks the scope stack outward looking for name.
func (vt *Vartable) Find(name string) (int, bool) {
	for s := vt.top; s != nil; s = s.parent {
		if id, ok := s.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// Temp allocates a fresh anonymous variable, used for sub-expression results
// and codegen-only intermediates that have no source name.
func (vt *Vartable) Temp(t types.Type) int {
	id := len(vt.vars)
	vt.vars = append(vt.vars, Var{ID: id, Type: t})
	return id
}

// Rebind records a new SSA Var for an existing source name (an assignment),
// returning the fresh ID -- the name now resolves to it for anything lexed
// afterward in the same or a nested scope, while the old Var's ID is left
// untouched wherever it was already captured (e.g. a phi list).
func (vt *Vartable) Rebind(name string, t types.Type) int {
	id := len(vt.vars)
	vt.vars = append(vt.vars, Var{ID: id, Name: name, Type: t})
	for s := vt.top; s != nil; s = s.parent {
		if _, ok := s.names[name]; ok {
			s.names[name] = id
			return id
		}
	}
	vt.top.names[name] = id
	return id
}

// Len reports the current variable count, the "limit" a dirty-tracker
// records when a conditional region is entered.
func (vt *Vartable) Len() int {
	return len(vt.vars)
}

// Finalize returns the fully-numbered variable vector, ready to be written
// back into the ControlFlowGraph.
func (vt *Vartable) Finalize() []Var {
	return vt.vars
}
