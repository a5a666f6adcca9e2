package cfg

import "github.com/dekarrin/solfront/internal/ast"

// lowerShortCircuit lowers `a && b` / `a || b` into the left/right-block
// pair spec.md §4.7 calls for: evaluate the left side in the current block,
// branch on it, evaluate the right side only on the branch that can still
// change the result, then phi the two possible outcomes at a join block.
func (b *Builder) lowerShortCircuit(e ast.Expr) ast.Expr {
	left := b.lowerExprValue(*e.Left)
	leftID := b.materialize(left)

	rhsBlock := b.newBlock()
	join := b.newBlock()

	if e.Operator == "&&" {
		// false short-circuits to join without evaluating the right side.
		b.setTerm(Terminator{Kind: TermBranch, Cond: &left, Then: rhsBlock.ID, Else: join.ID})
	} else {
		b.setTerm(Terminator{Kind: TermBranch, Cond: &left, Then: join.ID, Else: rhsBlock.ID})
	}

	b.cur = rhsBlock
	right := b.lowerExprValue(*e.Right)
	rightID := b.materialize(right)
	b.jumpTo(join)

	b.cur = join
	resID := b.vars.Temp(e.Type)
	join.Phis = append(join.Phis, resID)
	_ = leftID
	_ = rightID
	return ast.Expr{Kind: ast.ExprIdent, Type: e.Type, VarID: resID}
}

// lowerTernaryValue lowers `cond ? a : b` into the left/right-block pair
// spec.md §4.7 describes, with a phi for the result at the join block.
func (b *Builder) lowerTernaryValue(e ast.Expr) ast.Expr {
	cond := b.lowerExprValue(*e.Cond)

	thenBlock := b.newBlock()
	elseBlock := b.newBlock()
	join := b.newBlock()
	b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: thenBlock.ID, Else: elseBlock.ID})

	b.cur = thenBlock
	tv := b.lowerExprValue(*e.Left)
	b.materialize(tv)
	b.jumpTo(join)

	b.cur = elseBlock
	ev := b.lowerExprValue(*e.Right)
	b.materialize(ev)
	b.jumpTo(join)

	b.cur = join
	resID := b.vars.Temp(e.Type)
	join.Phis = append(join.Phis, resID)
	return ast.Expr{Kind: ast.ExprIdent, Type: e.Type, VarID: resID}
}

// lowerIf lowers the if-then / if-then-else canonical shapes:
//
//	if-then:      cond -> [then] -> endif;             phi at endif
//	if-then-else: cond -> [then] -> endif; [else] -> endif; phi at endif
func (b *Builder) lowerIf(s ast.Stmt) {
	cond := b.lowerExprValue(*s.Cond)
	thenBlock := b.newBlock()

	b.pushDirty()
	if s.Else == nil {
		endif := b.newBlock()
		b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: thenBlock.ID, Else: endif.ID})

		b.cur = thenBlock
		b.lowerStmt(*s.Then)
		b.jumpTo(endif)

		b.finishDirtyAt(endif)
		b.cur = endif
		return
	}

	elseBlock := b.newBlock()
	endif := b.newBlock()
	b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: thenBlock.ID, Else: elseBlock.ID})

	b.cur = thenBlock
	b.lowerStmt(*s.Then)
	b.jumpTo(endif)

	b.cur = elseBlock
	b.lowerStmt(*s.Else)
	b.jumpTo(endif)

	b.finishDirtyAt(endif)
	b.cur = endif
}

// finishDirtyAt pops the current dirty tracker and resolves every name it
// recorded to its latest Vartable ID, attaching the result as joinBlock's
// phi set.
func (b *Builder) finishDirtyAt(joinBlock *BasicBlock) {
	names := b.popDirty()
	for name := range names {
		if id, ok := b.vars.Find(name); ok {
			joinBlock.Phis = append(joinBlock.Phis, id)
		}
	}
}

// lowerWhile lowers: ->cond; cond->[body]->cond|end; phi at cond,end.
func (b *Builder) lowerWhile(s ast.Stmt) {
	condBlock := b.newBlock()
	bodyBlock := b.newBlock()
	endBlock := b.newBlock()

	b.jumpTo(condBlock)

	b.pushDirty()
	b.pushLoop(endBlock.ID, condBlock.ID)

	b.cur = condBlock
	cond := b.lowerExprValue(*s.Cond)
	b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: bodyBlock.ID, Else: endBlock.ID})

	b.cur = bodyBlock
	b.lowerStmt(*s.Body)
	b.jumpTo(condBlock)

	b.popLoop()
	b.finishDirtyAt(condBlock)
	// fall-through with a condition is always reachable, per spec.md §4.6.
	b.cur = endBlock
}

// lowerDoWhile lowers: ->body; body->cond; cond->body|end; phi at
// body,cond,end.
func (b *Builder) lowerDoWhile(s ast.Stmt) {
	bodyBlock := b.newBlock()
	condBlock := b.newBlock()
	endBlock := b.newBlock()

	b.jumpTo(bodyBlock)

	b.pushDirty()
	b.pushLoop(endBlock.ID, condBlock.ID)

	b.cur = bodyBlock
	b.lowerStmt(*s.Body)
	b.jumpTo(condBlock)

	b.cur = condBlock
	cond := b.lowerExprValue(*s.Cond)
	b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: bodyBlock.ID, Else: endBlock.ID})

	b.popLoop()
	b.finishDirtyAt(bodyBlock)
	b.cur = endBlock
}

// lowerFor lowers: init -> cond -> body -> next -> cond; phi at cond,next,end.
func (b *Builder) lowerFor(s ast.Stmt) {
	b.vars.NewScope()
	defer b.vars.LeaveScope()

	if s.InitDecl != nil {
		b.lowerStmt(*s.InitDecl)
	} else if s.Init != nil {
		b.lowerExprDiscard(s.Init)
	}

	condBlock := b.newBlock()
	bodyBlock := b.newBlock()
	var postBlock *BasicBlock
	endBlock := b.newBlock()

	b.jumpTo(condBlock)

	b.pushDirty()
	if s.Post != nil {
		postBlock = b.newBlock()
		b.pushLoop(endBlock.ID, postBlock.ID)
	} else {
		b.pushLoop(endBlock.ID, condBlock.ID)
	}

	b.cur = condBlock
	if s.Cond != nil {
		cond := b.lowerExprValue(*s.Cond)
		b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: bodyBlock.ID, Else: endBlock.ID})
	} else {
		b.jumpTo(bodyBlock)
	}

	b.cur = bodyBlock
	b.lowerStmt(*s.Body)
	if s.Post != nil {
		b.jumpTo(postBlock)
		b.cur = postBlock
		b.lowerExprDiscard(s.Post)
		b.jumpTo(condBlock)
	} else {
		b.jumpTo(condBlock)
	}

	b.popLoop()
	b.finishDirtyAt(condBlock)
	b.cur = endBlock
}

// lowerTry lowers an external call's success/catch split:
//
//	external-call -> success | catch; success block decodes the return data;
//	catch first tries the fixed Error(string) selector 0x08c379a0, then
//	falls back to a raw-reason catch-all.
func (b *Builder) lowerTry(s ast.Stmt) {
	callVal := b.lowerExprValue(*s.TryExpr)

	successBlock := b.newBlock()
	catchBlock := b.newBlock()
	endBlock := b.newBlock()

	callID := b.vars.Temp(s.TryExpr.Type)
	b.emit(Instruction{Kind: InstrCall, Res: []int{callID}, Value: &callVal})
	ok := ast.Expr{Kind: ast.ExprIdent, Type: callVal.Type, VarID: callID}
	b.setTerm(Terminator{Kind: TermBranch, Cond: &ok, Then: successBlock.ID, Else: catchBlock.ID})

	b.pushDirty()

	b.cur = successBlock
	b.vars.NewScope()
	for _, p := range s.TryReturns {
		if p.Name != "" {
			id, _, _ := b.vars.Add(p.Name, p.Type)
			b.emit(Instruction{Kind: InstrAbiDecode, Res: []int{id}})
		}
	}
	if s.TryBody != nil {
		b.lowerStmt(*s.TryBody)
	}
	b.vars.LeaveScope()
	b.jumpTo(endBlock)

	b.cur = catchBlock
	b.lowerCatchClauses(s.CatchClauses, endBlock)

	b.finishDirtyAt(endBlock)
	b.cur = endBlock
}

// lowerCatchClauses chains each catch arm as a guard against the next --
// the fixed `Error(string)` selector clause first (if present), any
// custom-error clauses next, then a bare fallback. Each arm that matches
// jumps straight to endBlock after running its body; a raw catch-all never
// falls through to a sibling arm.
func (b *Builder) lowerCatchClauses(clauses []ast.CatchClause, endBlock *BasicBlock) {
	for i, cc := range clauses {
		last := i == len(clauses)-1
		var nextBlock *BasicBlock
		if !last {
			nextBlock = b.newBlock()
		}

		b.vars.NewScope()
		for _, p := range cc.Params {
			if p.Name != "" {
				id, _, _ := b.vars.Add(p.Name, p.Type)
				if cc.Selector != "" {
					b.emit(Instruction{Kind: InstrAbiDecode, Res: []int{id}})
				}
			}
		}
		if cc.Body != nil {
			b.lowerStmt(*cc.Body)
		}
		b.vars.LeaveScope()
		b.jumpTo(endBlock)

		if !last {
			b.cur = nextBlock
		}
	}
}

// lowerDestructure lowers a multi-value assignment (spec.md §4.7):
//   - a ternary right-hand side recurses into each branch with its own
//     destructure, phi-ing the targets at the join block;
//   - otherwise the right-hand side is evaluated once, each component bound
//     to a fresh SSA variable, then each target is either discarded
//     (evaluated for side effects only), declared fresh, or assigned to an
//     existing l-value.
func (b *Builder) lowerDestructure(s ast.Stmt) {
	if s.Source != nil && s.Source.Kind == ast.ExprTernary {
		cond := b.lowerExprValue(*s.Source.Cond)
		thenBlock := b.newBlock()
		elseBlock := b.newBlock()
		endBlock := b.newBlock()
		b.setTerm(Terminator{Kind: TermBranch, Cond: &cond, Then: thenBlock.ID, Else: elseBlock.ID})

		b.pushDirty()

		b.cur = thenBlock
		b.bindDestructureTargets(s.Targets, *s.Source.Left)
		b.jumpTo(endBlock)

		b.cur = elseBlock
		b.bindDestructureTargets(s.Targets, *s.Source.Right)
		b.jumpTo(endBlock)

		b.finishDirtyAt(endBlock)
		b.cur = endBlock
		return
	}

	if s.Source != nil {
		b.bindDestructureTargets(s.Targets, *s.Source)
	}
}

func (b *Builder) bindDestructureTargets(targets []ast.DestructureTarget, rhs ast.Expr) {
	ids := b.lowerMultiValue(rhs)
	for i, tgt := range targets {
		if i >= len(ids) {
			break
		}
		switch {
		case tgt.Discard:
			// already evaluated above for side effects; nothing to bind.
		case tgt.NewDecl:
			id, _, _ := b.vars.Add(tgt.Name, tgt.Type)
			srcID := ids[i]
			b.emit(Instruction{Kind: InstrSet, Res: []int{id}, Value: &ast.Expr{Kind: ast.ExprIdent, Type: tgt.Type, VarID: srcID}})
		case tgt.Target != nil:
			val := ast.Expr{Kind: ast.ExprIdent, Type: tgt.Type, VarID: ids[i]}
			assign := ast.Expr{Kind: ast.ExprAssign, Type: tgt.Type, Operator: "=", Left: tgt.Target, Right: &val}
			b.lowerExprValue(assign)
		}
	}
}
