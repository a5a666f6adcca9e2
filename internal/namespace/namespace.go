// Package namespace implements the Namespace described in spec.md §3 and
// §4.3: the single mutable context threaded through every later pass. It
// owns the ordered source file list, the dense per-kind entity vectors
// (addressed by small integer IDs, never aliasing, never reused — I1), the
// two symbol tables, the diagnostic sink, and the target descriptor.
//
// Entity payloads are stored as interface{} and owned by internal/ast,
// which is the only package that knows the concrete struct shapes; this
// keeps namespace from importing ast (which itself needs namespace.ID
// values and the diagnostic sink), matching spec.md §9's "AST nodes hold
// IDs, never owning references" design note.
package namespace

import (
	"fmt"

	"github.com/dekarrin/solfront/internal/source"
	"github.com/dekarrin/solfront/internal/types"
)

// EntityKind discriminates which dense vector an ID indexes into.
type EntityKind int

const (
	KindContract EntityKind = iota
	KindFunction
	KindStruct
	KindEnum
	KindEvent
	KindError
	KindUserType
	KindConstant
	KindVariable // contract state variables and top-level constants
	KindImport
)

func (k EntityKind) String() string {
	names := [...]string{"contract", "function", "struct", "enum", "event", "error", "user-type", "constant", "variable", "import"}
	if int(k) < len(names) {
		return names[k]
	}
	return "entity?"
}

// ID is a small integer unique within its EntityKind; IDs are never reused
// (I1) and never compared across kinds.
type ID int

// InvalidID marks "no entity", used e.g. for a symbol lookup miss.
const InvalidID ID = -1

// Severity is the diagnostic severity taxonomy from spec.md §3/§7.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "severity?"
	}
}

// Diagnostic is one entry in the append-only diagnostic sink. Diagnostics
// are never thrown (spec.md §2); every fallible pass pushes here and
// returns a best-effort sentinel result instead of propagating an error.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     source.Span
	Notes    []string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Span)
	for _, n := range d.Notes {
		s += "\n  note: " + n
	}
	return s
}

// Entity wraps a stored payload with the EntityKind-local ID it was
// assigned, so that the Add* methods can hand the ID straight back.
type entity struct {
	id      ID
	payload interface{}
}

// symbolTableKind distinguishes the two symbol tables spec.md §3 requires:
// one for variables/types/imports, one for (possibly overloaded) functions.
// A name may appear in both simultaneously.
type symbolTableKind int

const (
	tableVars symbolTableKind = iota
	tableFuncs
)

// symbolKey is (file, optional contract, name) per spec.md §4.3.
type symbolKey struct {
	file     source.FileID
	contract ID // InvalidID when the symbol is file-top-level, not contract-scoped
	name     string
}

// Symbol is a named reference to an entity of a given kind, stored in one
// of the two symbol tables.
type Symbol struct {
	Kind EntityKind
	ID   ID
	Name string
}

// Equal reports whether two symbols denote the same entity, used by
// AddSymbol's idempotent-reinsertion check (I4).
func (s Symbol) Equal(o Symbol) bool {
	return s.Kind == o.Kind && s.ID == o.ID && s.Name == o.Name
}

// DuplicateSymbol is returned by AddSymbol when the slot is already
// occupied by a non-equal definition (spec.md §4.3).
type DuplicateSymbol struct {
	Name     string
	Existing Symbol
	New      Symbol
}

func (e *DuplicateSymbol) Error() string {
	return fmt.Sprintf("duplicate symbol %q: existing %s#%d, new %s#%d", e.Name, e.Existing.Kind, e.Existing.ID, e.New.Kind, e.New.ID)
}

// Namespace is the single mutable compilation context (spec.md §3).
type Namespace struct {
	Files  []*source.File
	Target types.Target

	Diagnostics []Diagnostic

	contracts []entity
	functions []entity
	structs   []entity
	enums     []entity
	events    []entity
	errs      []entity
	userTypes []entity
	constants []entity
	variables []entity

	varTable  map[symbolKey]Symbol
	funcTable map[symbolKey][]Symbol // overloaded: multiple Symbols per key

	nextVarID int // I3/§6: monotonic SSA variable numbering across the whole compilation
}

// New creates an empty Namespace for the given target descriptor.
func New(target types.Target) *Namespace {
	return &Namespace{
		Target:    target,
		varTable:  make(map[symbolKey]Symbol),
		funcTable: make(map[symbolKey][]Symbol),
	}
}

// AddFile registers a source file and returns its assigned FileID.
func (ns *Namespace) AddFile(path string, contents []byte) *source.File {
	f := source.NewFile(source.FileID(len(ns.Files)), path, contents)
	ns.Files = append(ns.Files, f)
	return f
}

// Diagnose appends a diagnostic to the sink. This is the only way any pass
// reports a problem; nothing in this module ever returns a Go error for a
// source-level problem (spec.md §7).
func (ns *Namespace) Diagnose(sev Severity, sp source.Span, msg string, notes ...string) Diagnostic {
	d := Diagnostic{Severity: sev, Message: msg, Span: sp, Notes: notes}
	ns.Diagnostics = append(ns.Diagnostics, d)
	return d
}

// HasErrors reports whether any diagnostic of SeverityError has been
// recorded; per spec.md §7 a compilation succeeded iff this is false at the
// end of semantic analysis, and per I3 the IR builder must not run on
// functions with errors.
func (ns *Namespace) HasErrors() bool {
	for _, d := range ns.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// NextVarID returns the next globally unique SSA variable ID, per spec.md
// §3's "monotonically increasing next_id used to number SSA variables
// across the whole compilation".
func (ns *Namespace) NextVarID() int {
	id := ns.nextVarID
	ns.nextVarID++
	return id
}

func vecFor(ns *Namespace, k EntityKind) *[]entity {
	switch k {
	case KindContract:
		return &ns.contracts
	case KindFunction:
		return &ns.functions
	case KindStruct:
		return &ns.structs
	case KindEnum:
		return &ns.enums
	case KindEvent:
		return &ns.events
	case KindError:
		return &ns.errs
	case KindUserType:
		return &ns.userTypes
	case KindConstant:
		return &ns.constants
	case KindVariable:
		return &ns.variables
	default:
		panic(fmt.Sprintf("namespace: no entity vector for kind %v", k))
	}
}

// Add inserts a new entity payload into the dense vector for kind k and
// returns its freshly assigned, never-reused ID (I1).
func (ns *Namespace) Add(k EntityKind, payload interface{}) ID {
	vec := vecFor(ns, k)
	id := ID(len(*vec))
	*vec = append(*vec, entity{id: id, payload: payload})
	return id
}

// Get retrieves the payload previously stored by Add, or nil if id is out
// of range.
func (ns *Namespace) Get(k EntityKind, id ID) interface{} {
	vec := vecFor(ns, k)
	if id < 0 || int(id) >= len(*vec) {
		return nil
	}
	return (*vec)[id].payload
}

// Set overwrites the payload for an already-allocated ID (used by
// multi-pass resolvers, e.g. pass B filling in a struct created empty by
// pass A).
func (ns *Namespace) Set(k EntityKind, id ID, payload interface{}) {
	vec := vecFor(ns, k)
	if id < 0 || int(id) >= len(*vec) {
		panic(fmt.Sprintf("namespace: Set on out-of-range %v id %d", k, id))
	}
	(*vec)[id].payload = payload
}

// Len reports how many entities of kind k have been allocated.
func (ns *Namespace) Len(k EntityKind) int {
	return len(*vecFor(ns, k))
}

// AddSymbol installs name -> sym in the table appropriate to sym.Kind,
// scoped to (file, contract). Function symbols are overload sets: repeated
// insertion always appends (overload resolution happens later, in sema).
// Variable/type/import symbols are unique per slot: a second insertion
// succeeds silently only if it is bitwise-equal to the existing definition
// (I4), and fails with *DuplicateSymbol otherwise.
func (ns *Namespace) AddSymbol(file source.FileID, contract ID, name string, sym Symbol) error {
	key := symbolKey{file: file, contract: contract, name: name}

	if sym.Kind == KindFunction {
		existing := ns.funcTable[key]
		for _, e := range existing {
			if e.Equal(sym) {
				return nil
			}
		}
		ns.funcTable[key] = append(existing, sym)
		return nil
	}

	if existing, ok := ns.varTable[key]; ok {
		if existing.Equal(sym) {
			return nil
		}
		return &DuplicateSymbol{Name: name, Existing: existing, New: sym}
	}
	ns.varTable[key] = sym
	return nil
}

// resolveChain walks (file, contract) -> (file, top-level) -> builtins, in
// that order, per spec.md §4.3.
func (ns *Namespace) resolveChain(file source.FileID, contract ID, name string, table map[symbolKey]Symbol) (Symbol, bool) {
	if contract != InvalidID {
		if s, ok := table[symbolKey{file: file, contract: contract, name: name}]; ok {
			return s, true
		}
	}
	if s, ok := table[symbolKey{file: file, contract: InvalidID, name: name}]; ok {
		return s, true
	}
	if s, ok := table[symbolKey{file: source.NoFile, contract: InvalidID, name: name}]; ok {
		return s, true
	}
	return Symbol{}, false
}

// ResolveVar resolves a variable/type/import/constant/enum/struct-style
// name in the var table, walking (file,contract) -> (file,None) ->
// builtin.
func (ns *Namespace) ResolveVar(file source.FileID, contract ID, name string) (Symbol, bool) {
	return ns.resolveChain(file, contract, name, ns.varTable)
}

// ResolveContract resolves name to a contract symbol specifically.
func (ns *Namespace) ResolveContract(file source.FileID, name string) (Symbol, bool) {
	sym, ok := ns.resolveChain(file, InvalidID, name, ns.varTable)
	if !ok || sym.Kind != KindContract {
		return Symbol{}, false
	}
	return sym, true
}

// ResolveType resolves name to any type-introducing symbol kind (struct,
// enum, user-type, contract).
func (ns *Namespace) ResolveType(file source.FileID, contract ID, name string) (Symbol, bool) {
	sym, ok := ns.resolveChain(file, contract, name, ns.varTable)
	if !ok {
		return Symbol{}, false
	}
	switch sym.Kind {
	case KindStruct, KindEnum, KindUserType, KindContract:
		return sym, true
	default:
		return Symbol{}, false
	}
}

// ResolveEnum resolves name to an enum symbol specifically.
func (ns *Namespace) ResolveEnum(file source.FileID, contract ID, name string) (Symbol, bool) {
	sym, ok := ns.resolveChain(file, contract, name, ns.varTable)
	if !ok || sym.Kind != KindEnum {
		return Symbol{}, false
	}
	return sym, true
}

// ResolveFunctions returns every overload candidate visible for name at
// (file, contract), walking the same chain but gathering every hit instead
// of stopping at the first, since functions may be overloaded at more than
// one scope level (a local declaration does not hide a base's overloads
// the way a variable would).
func (ns *Namespace) ResolveFunctions(file source.FileID, contract ID, name string) []Symbol {
	var out []Symbol
	if contract != InvalidID {
		out = append(out, ns.funcTable[symbolKey{file: file, contract: contract, name: name}]...)
	}
	out = append(out, ns.funcTable[symbolKey{file: file, contract: InvalidID, name: name}]...)
	out = append(out, ns.funcTable[symbolKey{file: source.NoFile, contract: InvalidID, name: name}]...)
	return out
}

// WrongSymbol produces the canonical "not the kind of symbol I wanted"
// diagnostic (spec.md §4.3).
func (ns *Namespace) WrongSymbol(sp source.Span, sym Symbol, want EntityKind) Diagnostic {
	return ns.Diagnose(SeverityError, sp, fmt.Sprintf("%q is a %s, not a %s", sym.Name, sym.Kind, want))
}

// ResolvePath resolves a dotted `A.B.f`-shaped path, per spec.md §4.3's
// free-function path resolver: try import aliases, then contract
// namespaces, then free functions, consuming one segment per attempt.
// Returns the final symbol and whether every segment resolved.
func (ns *Namespace) ResolvePath(file source.FileID, contract ID, segments []string) (Symbol, bool) {
	if len(segments) == 0 {
		return Symbol{}, false
	}
	head, ok := ns.ResolveVar(file, contract, segments[0])
	if !ok {
		return Symbol{}, false
	}
	cur := head
	curFile := file
	curContract := InvalidID
	if cur.Kind == KindContract {
		curContract = cur.ID
	}
	for _, seg := range segments[1:] {
		switch cur.Kind {
		case KindImport:
			// an Import symbol's ID is the imported file's FileID (see
			// sema's import resolution, which installs it this way).
			curFile = source.FileID(cur.ID)
			curContract = InvalidID
			next, ok := ns.ResolveVar(curFile, InvalidID, seg)
			if !ok {
				return Symbol{}, false
			}
			cur = next
		case KindContract:
			next, ok := ns.ResolveVar(curFile, cur.ID, seg)
			if !ok {
				return Symbol{}, false
			}
			cur = next
		default:
			return Symbol{}, false
		}
		if cur.Kind == KindContract {
			curContract = cur.ID
		}
	}
	_ = curContract
	return cur, true
}
