// Package cfg lowers a resolved function body (internal/ast.Stmt/Expr) into
// the control-flow graph spec.md §4.7 describes: a list of BasicBlocks, each
// a straight-line Instruction sequence ending in one Terminator, with phi
// sets recording which SSA variables need merging at a join block. It is the
// one pass downstream of internal/sema that internal/ast deliberately cannot
// import (Function.IR stays an opaque interface{} to avoid the cycle).
package cfg

import "github.com/dekarrin/solfront/internal/ast"

// InstrKind discriminates Instruction's tagged variant.
type InstrKind int

const (
	InstrInvalid InstrKind = iota
	InstrSet            // Res := Value, the ordinary non-branching case
	InstrCall           // Res... := Callee(Args...), may trap (external call)
	InstrStoreMemory    // *Addr := Value
	InstrSetStorage     // storage[Slot] := Value
	InstrSetStorageBytes // storage bytes region update
	InstrAbiDecode      // Res... := abi.decode(Value, Types)
	InstrEmit           // emit Value (an ExprCall to the event)
	InstrRevert         // revert Value (nil = bare revert)
)

// Instruction is one straight-line operation inside a BasicBlock.
type Instruction struct {
	Kind  InstrKind
	Res   []int // destination Vartable slots, nil if the instruction has no result
	Value *ast.Expr
	Slot  int // InstrSetStorage/InstrSetStorageBytes: the resolved storage slot
}

// TermKind discriminates Terminator's tagged variant.
type TermKind int

const (
	TermInvalid TermKind = iota
	TermJump
	TermBranch
	TermReturn
	TermUnreachable
)

// Terminator is the single control-transfer operation that ends a
// BasicBlock; every reachable block has exactly one.
type Terminator struct {
	Kind  TermKind
	Cond  *ast.Expr // TermBranch
	Then  int       // TermJump target, or TermBranch's true target
	Else  int       // TermBranch's false target
	Values []int    // TermReturn: Vartable slots being returned
}

// BasicBlock is a straight-line instruction sequence plus the SSA variable
// indices (Phis) that must be merged at its top, per spec.md §4.7's
// dirty-tracker design.
type BasicBlock struct {
	ID     int
	Instrs []Instruction
	Phis   []int
	Term   Terminator
}

// ControlFlowGraph is one function/modifier body's lowered form.
type ControlFlowGraph struct {
	Blocks []*BasicBlock
	Entry  int
	Vars   *Vartable
}

func (g *ControlFlowGraph) block(id int) *BasicBlock {
	return g.Blocks[id]
}
