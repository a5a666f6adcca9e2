package cfg

import (
	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/types"
)

// Builder lowers one function/modifier body at a time, keeping the "current
// block" cursor plus the LoopScopes and dirty-tracker stacks spec.md §4.7
// describes.
type Builder struct {
	NS  *namespace.Namespace
	cfg *ControlFlowGraph
	vars *Vartable
	cur  *BasicBlock

	loops []loopScope
	dirty []dirtyTracker

	fn *ast.Function
}

// BuildFunction lowers fn's resolved Body into a ControlFlowGraph and
// returns it; the caller is responsible for storing it into fn.IR (kept
// separate so a driver can choose to skip functions with no body, or ones
// sema already flagged an error on, per I3 -- "no IR is built for a function
// whose body resolution produced an error").
func BuildFunction(ns *namespace.Namespace, fn *ast.Function) *ControlFlowGraph {
	if fn.Body == nil {
		return nil
	}
	vars := NewVartable()
	entry := &BasicBlock{ID: 0}
	g := &ControlFlowGraph{Blocks: []*BasicBlock{entry}, Entry: 0, Vars: vars}
	b := &Builder{NS: ns, cfg: g, vars: vars, cur: entry, fn: fn}

	for _, p := range fn.Params {
		if p.Name != "" {
			vars.Add(p.Name, p.Type)
		}
	}
	for _, ret := range fn.Returns {
		if ret.Name != "" {
			vars.Add(ret.Name, ret.Type)
		}
	}

	b.lowerStmt(*fn.Body)
	if b.cur.Term.Kind == TermInvalid {
		b.cur.Term = Terminator{Kind: TermReturn, Values: b.returnVars()}
	}
	g.Vars = vars
	return g
}

// returnVars resolves the function's named return slots to their current
// Vartable IDs for an implicit fall-off-the-end return.
func (b *Builder) returnVars() []int {
	var ids []int
	for _, ret := range b.fn.Returns {
		if ret.Name == "" {
			continue
		}
		if id, ok := b.vars.Find(ret.Name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *Builder) newBlock() *BasicBlock {
	bb := &BasicBlock{ID: len(b.cfg.Blocks)}
	b.cfg.Blocks = append(b.cfg.Blocks, bb)
	return bb
}

func (b *Builder) emit(instr Instruction) {
	if b.cur.Term.Kind != TermInvalid {
		return // current block already terminated; dead code, drop silently
	}
	b.cur.Instrs = append(b.cur.Instrs, instr)
}

func (b *Builder) setTerm(term Terminator) {
	if b.cur.Term.Kind == TermInvalid {
		b.cur.Term = term
	}
}

func (b *Builder) jumpTo(bb *BasicBlock) {
	b.setTerm(Terminator{Kind: TermJump, Then: bb.ID})
}

// lowerStmt lowers one resolved statement into the current block(s),
// advancing b.cur as it goes. Statements the statement resolver already
// marked unreachable are skipped entirely -- spec.md §4.6/§4.7/P9 treat
// Reachable as computed once and never recomputed here.
func (b *Builder) lowerStmt(s ast.Stmt) {
	if !s.Reachable {
		return
	}
	switch s.Kind {
	case ast.StmtBlock:
		b.vars.NewScope()
		for _, c := range s.Stmts {
			b.lowerStmt(c)
		}
		b.vars.LeaveScope()

	case ast.StmtExpr:
		if isPlaceholder(s.Expr) {
			b.emitModifierNext()
			return
		}
		b.lowerExprDiscard(s.Expr)

	case ast.StmtVarDecl:
		var val *ast.Expr
		if s.Init != nil {
			v := b.lowerExprValue(*s.Init)
			val = &v
		}
		id, _, _ := b.vars.Add(s.Decl.Name, s.Decl.Type)
		b.emit(Instruction{Kind: InstrSet, Res: []int{id}, Value: val})

	case ast.StmtReturn:
		var ids []int
		if s.Expr != nil {
			ids = b.lowerMultiValue(*s.Expr)
		} else {
			ids = b.returnVars()
		}
		b.setTerm(Terminator{Kind: TermReturn, Values: ids})

	case ast.StmtBreak:
		if ls, ok := b.currentLoop(); ok {
			ls.breakCount++
			b.setTerm(Terminator{Kind: TermJump, Then: ls.breakTarget})
		}

	case ast.StmtContinue:
		if ls, ok := b.currentLoop(); ok {
			ls.continueCount++
			b.setTerm(Terminator{Kind: TermJump, Then: ls.continueTarget})
		}

	case ast.StmtRevert:
		b.emit(Instruction{Kind: InstrRevert, Value: s.Expr})
		b.setTerm(Terminator{Kind: TermUnreachable})

	case ast.StmtEmit:
		b.emit(Instruction{Kind: InstrEmit, Value: s.Expr})

	case ast.StmtIf:
		b.lowerIf(s)

	case ast.StmtWhile:
		b.lowerWhile(s)

	case ast.StmtDoWhile:
		b.lowerDoWhile(s)

	case ast.StmtFor:
		b.lowerFor(s)

	case ast.StmtTry:
		b.lowerTry(s)

	case ast.StmtDestructure:
		b.lowerDestructure(s)

	case ast.StmtAssembly:
		// internal/yul already resolved the block's own scope/semantics;
		// lowering Yul opcodes into this IR is future work for the codegen
		// stage, which reaches the *yul.Block directly via s.Yul rather
		// than through this CFG.

	default:
	}
}

func isPlaceholder(e *ast.Expr) bool {
	return e != nil && e.Kind == ast.ExprIdent && e.Name == "_"
}

// emitModifierNext records the splice point a modifier's `_;` marks, per
// spec.md §4.7: "the `_` placeholder is replaced by a Call instruction to
// the next wrapper, carrying the original function's argument and
// return-value SSA IDs." Wiring which CFG is actually "next" in the chain
// is the compiled-unit linker's job (it alone knows the full modifier
// chain for a given call site), so this instruction carries only the
// current function's argument/return Vartable IDs and leaves the callee
// unresolved for that later pass to fill in.
func (b *Builder) emitModifierNext() {
	var args []int
	for _, p := range b.fn.Params {
		if p.Name == "" {
			continue
		}
		if id, ok := b.vars.Find(p.Name); ok {
			args = append(args, id)
		}
	}
	b.emit(Instruction{Kind: InstrCall, Res: b.returnVars(), Value: &ast.Expr{
		Kind: ast.ExprCall,
		Name: "_",
		Args: argExprs(args),
	}})
}

func argExprs(ids []int) []ast.Expr {
	var out []ast.Expr
	for _, id := range ids {
		out = append(out, ast.Expr{Kind: ast.ExprIdent, VarID: id})
	}
	return out
}

// lowerExprValue lowers an expression for its value, returning the
// resolved expression unchanged for the common non-branching case (spec.md
// §4.7: "expressions are translated structurally"); &&, ||, and ?: are the
// only ones that introduce extra blocks, handled by lowerShortCircuit /
// lowerTernaryValue below.
func (b *Builder) lowerExprValue(e ast.Expr) ast.Expr {
	switch {
	case e.Kind == ast.ExprBinary && (e.Operator == "&&" || e.Operator == "||"):
		return b.lowerShortCircuit(e)
	case e.Kind == ast.ExprTernary:
		return b.lowerTernaryValue(e)
	case e.Kind == ast.ExprAssign:
		return b.lowerAssign(e)
	default:
		return e
	}
}

func (b *Builder) lowerExprDiscard(e *ast.Expr) {
	if e == nil {
		return
	}
	v := b.lowerExprValue(*e)
	b.emit(Instruction{Kind: InstrSet, Value: &v})
}

// lowerMultiValue flattens a possibly-tuple return/call expression into its
// component Vartable IDs.
func (b *Builder) lowerMultiValue(e ast.Expr) []int {
	if e.Kind == ast.ExprTuple {
		var ids []int
		for _, el := range e.Args {
			v := b.lowerExprValue(el)
			ids = append(ids, b.materialize(v))
		}
		return ids
	}
	v := b.lowerExprValue(e)
	return []int{b.materialize(v)}
}

// materialize ensures e's value lives in a named Vartable slot, allocating a
// temp if it is not already a bare identifier reference.
func (b *Builder) materialize(e ast.Expr) int {
	if e.Kind == ast.ExprIdent && e.VarID >= 0 {
		return e.VarID
	}
	id := b.vars.Temp(e.Type)
	b.emit(Instruction{Kind: InstrSet, Res: []int{id}, Value: &e})
	return id
}

// lowerAssign lowers `lhs = rhs` (or a compound `+=` etc.), rebinding the
// target's Vartable slot to a fresh SSA id and recording the reassignment in
// every open dirty-tracker so enclosing conditional regions know to phi it.
func (b *Builder) lowerAssign(e ast.Expr) ast.Expr {
	rhs := *e.Right
	if e.Operator != "=" {
		rhs = ast.Expr{Kind: ast.ExprBinary, Type: e.Type, Operator: compoundOp(e.Operator), Left: e.Left, Right: e.Right}
	}
	val := b.lowerExprValue(rhs)

	if e.Left.Kind == ast.ExprIdent {
		priorID, _ := b.vars.Find(e.Left.Name)
		id := b.vars.Rebind(e.Left.Name, e.Type)
		b.emit(Instruction{Kind: InstrSet, Res: []int{id}, Value: &val})
		b.recordAssign(e.Left.Name, priorID)
		return ast.Expr{Kind: ast.ExprIdent, Type: e.Type, Name: e.Left.Name, VarID: id}
	}

	// storage/memory l-value: StoreMemory / SetStorage / SetStorageBytes
	// per spec.md §4.7; which one applies depends on the l-value's
	// resolved kind, a distinction the expression resolver's Type.Kind
	// already carries (types.Ref/StorageRef).
	kind := InstrStoreMemory
	if e.Left.Type.Kind == types.StorageRef {
		kind = InstrSetStorage
	}
	b.emit(Instruction{Kind: kind, Value: &val})
	return val
}

func compoundOp(op string) string {
	if len(op) > 1 && op[len(op)-1] == '=' {
		return op[:len(op)-1]
	}
	return op
}
