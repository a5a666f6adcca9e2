// Package ast holds the resolved AST node types spec.md §3 calls for:
// "resolved AST nodes exist for the lifetime of the Namespace." Entities
// are referenced by namespace.ID, never owned by value, so the AST has no
// ownership cycles even though contracts/structs/functions may refer to
// each other mutually (spec.md §9's "cyclic references" design note).
//
// Expressions and statements are closed tagged variants (flat structs with
// a Kind discriminant), matching internal/types.Type's style rather than
// an interface-per-node-type hierarchy, per spec.md §9's "tagged variants
// over inheritance" note: pattern matching on Kind is exhaustive and there
// is no virtual dispatch to get wrong.
package ast

import (
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/source"
	"github.com/dekarrin/solfront/internal/types"
)

// Doc holds the doc-comments a resolver attached to a declaration, per
// spec.md §4.1's "doc-comments ... emitted to the comment channel ... the
// resolver attaches them to the following top-level declaration."
type Doc struct {
	Lines []string // consecutive /// lines, in source order
	Block string    // a /** ... */ block; empty if none was attached
}

func (d Doc) Empty() bool { return len(d.Lines) == 0 && d.Block == "" }

// Visibility is a function/state-variable's declared visibility.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityExternal
	VisibilityInternal
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityExternal:
		return "external"
	case VisibilityInternal:
		return "internal"
	case VisibilityPrivate:
		return "private"
	default:
		return "visibility?"
	}
}

// Parameter is a function parameter, return slot, or struct/event field.
type Parameter struct {
	Name string
	Type types.Type
	Span source.Span
	// Indexed marks an event field declared `indexed`; meaningless outside
	// Event.Fields.
	Indexed bool
}

// Contract is a resolved contract/interface/library declaration.
type Contract struct {
	Name string
	Span source.Span
	Doc  Doc

	IsAbstract  bool
	IsInterface bool
	IsLibrary   bool

	// Bases are resolved in declaration order (spec.md §4.4's
	// linearization rule); Linearized is the C3-like merge result used to
	// build AllFunctions.
	Bases      []namespace.ID
	Linearized []namespace.ID

	// AllFunctions is the "all functions" map from spec.md §4.4: keyed by
	// canonical signature, later (more-derived) overrides replace earlier
	// entries. Virtual dispatch is recorded as the signature string so the
	// IR builder can redirect calls through it.
	AllFunctions map[string]namespace.ID

	Functions []namespace.ID
	Structs   []namespace.ID
	Enums     []namespace.ID
	Events    []namespace.ID
	Errors    []namespace.ID
	Variables []namespace.ID
	Constants []namespace.ID
}

// ModifierInvocation is one `modifierName(args)` attached to a function.
type ModifierInvocation struct {
	Name string
	Args []Expr
	Span source.Span
}

// Function is a resolved function, modifier, constructor, fallback, or
// receive declaration (all share this shape; Name is empty for
// fallback/receive).
type Function struct {
	Name     string
	Span     source.Span
	Doc      Doc
	Contract namespace.ID // namespace.InvalidID for a free function

	Params  []Parameter
	Returns []Parameter

	Mutability types.Mutability
	Visibility Visibility
	Virtual    bool
	Override   bool
	IsModifier bool

	ModifierInvocations []ModifierInvocation

	// Selector/MangledName are filled in by internal/sema/selector.go
	// (spec.md §4.4's selector computation); Selector is nil until then.
	Selector    []byte
	MangledName string

	// Body is nil for interface/abstract declarations with no
	// implementation.
	Body *Stmt

	// IR holds the *cfg.ControlFlowGraph built for this function by
	// internal/cfg, once body resolution has no errors (I3). It is
	// opaque here so that internal/ast does not need to import
	// internal/cfg (which itself imports ast to walk resolved bodies).
	IR interface{}
}

// Struct is a resolved struct declaration.
type Struct struct {
	Name      string
	Span      source.Span
	Doc       Doc
	Contract  namespace.ID // namespace.InvalidID if file-scoped
	Fields    []Parameter
	Recursive bool // flagged per spec.md §4.4's recursion check
}

// Enum is a resolved enum declaration.
type Enum struct {
	Name     string
	Span     source.Span
	Doc      Doc
	Contract namespace.ID
	Values   []string
}

// Event is a resolved event declaration.
type Event struct {
	Name      string
	Span      source.Span
	Doc       Doc
	Contract  namespace.ID
	Fields    []Parameter
	Anonymous bool
}

// ErrorDecl is a resolved custom error declaration (`error Foo(uint x);`).
type ErrorDecl struct {
	Name     string
	Span     source.Span
	Doc      Doc
	Contract namespace.ID
	Fields   []Parameter
}

// UserType is a resolved user-defined value type (`type Foo is uint256;`).
type UserType struct {
	Name     string
	Span     source.Span
	Contract namespace.ID
	Underlying types.Type
}

// Variable is a resolved top-level constant or contract state variable.
type Variable struct {
	Name       string
	Span       source.Span
	Doc        Doc
	Contract   namespace.ID
	Type       types.Type
	Constant   bool
	Immutable  bool
	Init       *Expr
	// StorageSlot/StorageOffset are filled in by sema's storage-layout
	// pass (spec.md §4.4) for non-constant, non-immutable state variables.
	StorageSlot   int
	StorageOffset int
}

// ExprKind discriminates the resolved-expression tagged variant.
type ExprKind int

const (
	ExprInvalid ExprKind = iota
	ExprLiteral
	ExprIdent    // VarID references a local/state variable or constant entity
	ExprMember   // Left.Name
	ExprIndex    // Left[Right]
	ExprCall     // Callee(Args...)
	ExprUnary    // Operator Right
	ExprBinary   // Left Operator Right
	ExprTernary  // Cond ? Left : Right
	ExprAssign   // Left Operator= Right
	ExprTuple    // (Args...)
	ExprNew      // new T(Args...)
	ExprCast     // explicit T(Right)
)

// Literal carries a constant-folded value; exactly one field is meaningful,
// selected by the enclosing Expr.Type.Kind.
type Literal struct {
	Bool   bool
	Int    string // decimal, arbitrary precision; sign included
	Str    string
	Bytes  []byte
}

// Expr is the resolved-expression tagged variant (spec.md §4.5). Const
// marks an expression that constant-folding proved foldable; ConstVal then
// holds the folded literal representation regardless of ExprKind.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type types.Type

	Literal Literal

	Name  string
	VarID int // local Vartable slot (cfg) or namespace.ID for globals, per Type.Kind

	Operator string
	Left     *Expr
	Right    *Expr
	Cond     *Expr
	Callee   *Expr
	Args     []Expr

	Const    bool
	ConstVal Literal

	// LValue reports whether this expression may appear on a destructure
	// or assignment's left-hand side (spec.md §4.5's ExprContext.lvalue).
	LValue bool
}

// StmtKind discriminates the resolved-statement tagged variant.
type StmtKind int

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtExpr
	StmtVarDecl
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtReturn
	StmtBreak
	StmtContinue
	StmtRevert
	StmtEmit
	StmtTry
	StmtAssembly
	StmtDestructure
)

// CatchClause is one `catch Error(string memory s) { ... }` /
// `catch { ... }` arm of a try statement.
type CatchClause struct {
	// Selector is "" for the bare default-catch arm, "Error" for the
	// decoded-reason arm (spec.md §4.7's fixed 0x08c379a0 selector), or a
	// custom error name for a `catch CustomError(...)` arm.
	Selector string
	Params   []Parameter
	Body     *Stmt
}

// DestructureTarget is one left-hand slot of a destructuring assignment;
// Discard is true for `_`, NewDecl for a freshly declared variable.
type DestructureTarget struct {
	Discard bool
	NewDecl bool
	Name    string
	Type    types.Type
	Target  *Expr // existing l-value, set only when !Discard && !NewDecl
	Span    source.Span
}

// Stmt is the resolved-statement tagged variant (spec.md §4.6). Reachable
// records whether control can reach this statement at all; it is computed
// by the statement resolver and consumed (never recomputed) by the CFG
// builder per spec.md §4.6/§4.7/P9.
type Stmt struct {
	Kind      StmtKind
	Span      source.Span
	Reachable bool

	Stmts []Stmt // StmtBlock

	Expr *Expr // StmtExpr, StmtReturn (nil = bare return), StmtRevert, StmtEmit value

	Decl Parameter // StmtVarDecl
	Init *Expr     // StmtVarDecl initializer, StmtFor init-expr (when not a decl)
	InitDecl *Stmt // StmtFor's init clause when it is itself a declaration

	Cond *Expr // StmtIf/While/DoWhile/For
	Then *Stmt // StmtIf
	Else *Stmt // StmtIf
	Body *Stmt // While/DoWhile/For
	Post *Expr // StmtFor increment

	TryExpr      *Expr
	TryReturns   []Parameter
	TryBody      *Stmt
	CatchClauses []CatchClause

	Targets []DestructureTarget // StmtDestructure
	Source  *Expr               // StmtDestructure right-hand side

	// Yul holds the *yul.Block resolved by internal/yul for a StmtAssembly
	// node; opaque here for the same reason Function.IR is opaque.
	Yul interface{}
}
