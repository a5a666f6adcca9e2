// Package yul resolves the Yul (inline-assembly) sublanguage embedded in
// assembly blocks: its own scope stack, builtin-shadowing checks, literal
// type-suffix validation, and unreachable-code marking after a
// leave/break/continue (spec.md §4.8). It consumes the syntax-only parse
// tree internal/parse/yul.go produces; internal/sema calls into it once per
// assembly statement rather than resolving Yul inline, since Yul identifiers
// never interact with the surrounding language's symbol table.
package yul

import "github.com/dekarrin/solfront/internal/source"

// StmtKind tags Stmt's active variant, the same closed-sum-type shape
// internal/ast uses for the surrounding language's statements.
type StmtKind int

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtVarDecl
	StmtAssign
	StmtIf
	StmtSwitch
	StmtFor
	StmtFuncDef
	StmtBreak
	StmtContinue
	StmtLeave
	StmtExpr
)

// Case is one switch arm; Default is true for the fallback arm, in which
// case Value is nil.
type Case struct {
	Span    source.Span
	Default bool
	Value   *Expr
	Body    *Stmt
}

// Stmt is a resolved Yul statement. Only the fields relevant to Kind are
// populated.
type Stmt struct {
	Kind       StmtKind
	Span       source.Span
	Reachable  bool
	Stmts      []Stmt   // StmtBlock
	Names      []string // StmtVarDecl, StmtAssign (targets), StmtFuncDef (params)
	VarIDs     []int    // StmtVarDecl, StmtAssign: resolved local slots
	Returns    []string // StmtFuncDef
	Init       *Expr    // StmtVarDecl, StmtAssign
	Cond       *Expr    // StmtIf, StmtSwitch
	Then       *Stmt    // StmtIf
	Cases      []Case   // StmtSwitch
	ForInit    *Stmt    // StmtFor
	ForPost    *Stmt    // StmtFor
	Body       *Stmt    // StmtFor, StmtFuncDef
	Expr       *Expr    // StmtExpr
	FuncName   string   // StmtFuncDef
	FuncID     int      // StmtFuncDef: index into Resolver's function table
}

// ExprKind tags Expr's active variant.
type ExprKind int

const (
	ExprInvalid ExprKind = iota
	ExprLiteral
	ExprIdentifier
	ExprCall
)

// LiteralKind distinguishes a Yul literal's surface form, since each form
// has its own suffix/type rules.
type LiteralKind int

const (
	LitInvalid LiteralKind = iota
	LitNumber
	LitString
	LitHexString
	LitBool
)

// Expr is a resolved Yul expression.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Lit     LiteralKind // ExprLiteral
	Text    string      // ExprLiteral: raw digits/bytes; ExprIdentifier/ExprCall: name
	Suffix  string      // ExprLiteral: numeric type suffix, "" if absent
	VarID   int         // ExprIdentifier: resolved local slot, -1 if unresolved
	Builtin bool         // ExprCall: callee is a builtin, not a user function
	FuncID  int          // ExprCall: resolved user function index, -1 if builtin/unresolved
	Args    []Expr       // ExprCall
}

// Block is a resolved sequence of statements sharing one lexical scope.
type Block struct {
	Span  source.Span
	Stmts []Stmt
}
