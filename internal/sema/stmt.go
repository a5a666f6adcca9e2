package sema

import (
	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/types"
	"github.com/dekarrin/solfront/internal/yul"
)

// nonTerminalChildren returns t's non-terminal children in order, skipping
// keyword/punctuation tokens -- useful for statement shapes whose terminals
// carry no information beyond syntax (if/while/for's keywords and parens).
func nonTerminalChildren(t *parse.Tree) []*parse.Tree {
	var out []*parse.Tree
	for _, c := range t.Children {
		if !c.Terminal {
			out = append(out, c)
		}
	}
	return out
}

// terminates reports whether control can never fall through past s, used to
// mark subsequent sibling statements unreachable (spec.md §4.6).
func terminates(s ast.Stmt) bool {
	switch s.Kind {
	case ast.StmtReturn, ast.StmtBreak, ast.StmtContinue, ast.StmtRevert:
		return true
	case ast.StmtBlock:
		if len(s.Stmts) == 0 {
			return false
		}
		return terminates(s.Stmts[len(s.Stmts)-1])
	case ast.StmtIf:
		if s.Then == nil || s.Else == nil {
			return false
		}
		return terminates(*s.Then) && terminates(*s.Else)
	default:
		return false
	}
}

// ResolveStmt resolves one statement parse-tree node into a resolved
// ast.Stmt, setting Reachable from the caller-tracked flow state. It never
// stops resolving on an unreachable statement (every declaration still gets
// symbol-table entries so later references resolve), it only downgrades the
// Reachable flag and emits a warning once per dead region.
func (r *Resolver) ResolveStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	switch t.Value {
	case "block":
		return r.resolveBlockStmt(t, ctx)
	case "if-statement":
		return r.resolveIfStmt(t, ctx)
	case "while-statement":
		return r.resolveWhileStmt(t, ctx)
	case "do-while-statement":
		return r.resolveDoWhileStmt(t, ctx)
	case "for-statement":
		return r.resolveForStmt(t, ctx)
	case "return-statement":
		return r.resolveReturnStmt(t, ctx)
	case "break-statement":
		return ast.Stmt{Kind: ast.StmtBreak, Span: t.Span(), Reachable: true}
	case "continue-statement":
		return ast.Stmt{Kind: ast.StmtContinue, Span: t.Span(), Reachable: true}
	case "throw-statement":
		return ast.Stmt{Kind: ast.StmtRevert, Span: t.Span(), Reachable: true}
	case "revert-statement":
		return r.resolveRevertStmt(t, ctx)
	case "emit-statement":
		return r.resolveEmitStmt(t, ctx)
	case "delete-statement":
		e := r.ResolveExpr(nonTerminalChildren(t)[0], ctx, ResolveTo{Kind: ResolveUnknown})
		if !e.LValue {
			r.errorf(e.Span, "delete requires an assignable expression")
		}
		return ast.Stmt{Kind: ast.StmtExpr, Span: t.Span(), Reachable: true, Expr: &ast.Expr{Kind: ast.ExprUnary, Span: t.Span(), Type: types.NewVoid(), Operator: "delete", Right: &e}}
	case "unchecked-block":
		uctx := ctx
		uctx.Unchecked = true
		body := nonTerminalChildren(t)[0]
		inner := r.ResolveStmt(body, uctx)
		return inner
	case "assembly-statement":
		return r.resolveAssemblyStmt(t, ctx)
	case "empty-statement":
		return ast.Stmt{Kind: ast.StmtBlock, Span: t.Span(), Reachable: true}
	case "expression-statement":
		e := r.ResolveExpr(nonTerminalChildren(t)[0], ctx, ResolveTo{Kind: ResolveUnknown})
		return ast.Stmt{Kind: ast.StmtExpr, Span: t.Span(), Reachable: true, Expr: &e}
	case "variable-declaration-statement":
		return r.resolveVarDeclStmt(t, ctx)
	case "tuple-declaration-statement":
		return r.resolveTupleDeclStmt(t, ctx)
	case "try-statement":
		return r.resolveTryStmt(t, ctx)
	default:
		r.errorf(t.Span(), "internal: not a statement node: %s", t.Value)
		return ast.Stmt{Kind: ast.StmtInvalid, Span: t.Span()}
	}
}

func (r *Resolver) resolveBlockStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	r.PushScope()
	defer r.PopScope()

	reachable := true
	warnedDead := false
	var stmts []ast.Stmt
	for _, c := range nonTerminalChildren(t) {
		s := r.ResolveStmt(c, ctx)
		s.Reachable = s.Reachable && reachable
		if !s.Reachable && !warnedDead {
			r.warnf(s.Span, "unreachable code")
			warnedDead = true
		}
		stmts = append(stmts, s)
		if terminates(s) {
			reachable = false
		}
	}
	return ast.Stmt{Kind: ast.StmtBlock, Span: t.Span(), Reachable: true, Stmts: stmts}
}

func (r *Resolver) resolveIfStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	kids := nonTerminalChildren(t)
	cond := r.ResolveExpr(kids[0], ctx, ResolveTo{Kind: ResolveUnknown})
	if !cond.Type.Equal(types.NewBool()) && cond.Type.Kind != types.Unresolved {
		r.errorf(cond.Span, "if condition must be bool, got %s", cond.Type)
	}
	then := r.ResolveStmt(kids[1], ctx)
	s := ast.Stmt{Kind: ast.StmtIf, Span: t.Span(), Reachable: true, Cond: &cond, Then: &then}
	if len(kids) > 2 {
		els := r.ResolveStmt(kids[2], ctx)
		s.Else = &els
	}
	return s
}

func (r *Resolver) resolveWhileStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	kids := nonTerminalChildren(t)
	cond := r.ResolveExpr(kids[0], ctx, ResolveTo{Kind: ResolveUnknown})
	body := r.ResolveStmt(kids[1], ctx)
	return ast.Stmt{Kind: ast.StmtWhile, Span: t.Span(), Reachable: true, Cond: &cond, Body: &body}
}

func (r *Resolver) resolveDoWhileStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	kids := nonTerminalChildren(t)
	body := r.ResolveStmt(kids[0], ctx)
	cond := r.ResolveExpr(kids[1], ctx, ResolveTo{Kind: ResolveUnknown})
	return ast.Stmt{Kind: ast.StmtDoWhile, Span: t.Span(), Reachable: true, Cond: &cond, Body: &body}
}

// resolveForStmt walks the parser's exact child sequence (spec.md §4.2's
// for-statement grammar): kw, lparen, INIT, [condExpr], semi, [postExpr],
// rparen, body -- where INIT is either a bare semi (no init) or a whole
// simple-statement subtree (which already carries its own trailing semi).
func (r *Resolver) resolveForStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	r.PushScope()
	defer r.PopScope()

	idx := 2 // skip kw-for, lparen
	var initStmt *ast.Stmt
	initNode := t.Children[idx]
	idx++
	if !(initNode.Terminal && initNode.Value == "semi") {
		s := r.ResolveStmt(initNode, ctx)
		initStmt = &s
	}

	var cond *ast.Expr
	if t.Children[idx].Terminal && t.Children[idx].Value == "semi" {
		idx++
	} else {
		e := r.ResolveExpr(t.Children[idx], ctx, ResolveTo{Kind: ResolveUnknown})
		cond = &e
		idx++
		idx++ // the cond-terminating semi
	}

	var post *ast.Expr
	if t.Children[idx].Value == "rparen" {
		idx++
	} else {
		e := r.ResolveExpr(t.Children[idx], ctx, ResolveTo{Kind: ResolveUnknown})
		post = &e
		idx++
		idx++ // rparen
	}

	body := r.ResolveStmt(t.Children[idx], ctx)
	return ast.Stmt{Kind: ast.StmtFor, Span: t.Span(), Reachable: true, InitDecl: initStmt, Cond: cond, Post: post, Body: &body}
}

func (r *Resolver) resolveReturnStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	kids := nonTerminalChildren(t)
	s := ast.Stmt{Kind: ast.StmtReturn, Span: t.Span(), Reachable: true}
	if len(kids) > 0 {
		e := r.ResolveExpr(kids[0], ctx, ResolveTo{Kind: ResolveUnknown})
		s.Expr = &e
	}
	return s
}

func (r *Resolver) resolveRevertStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	kids := nonTerminalChildren(t)
	s := ast.Stmt{Kind: ast.StmtRevert, Span: t.Span(), Reachable: true}
	if len(kids) > 0 {
		e := r.ResolveExpr(kids[0], ctx, ResolveTo{Kind: ResolveUnknown})
		s.Expr = &e
	}
	return s
}

func (r *Resolver) resolveEmitStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	kids := nonTerminalChildren(t)
	e := r.ResolveExpr(kids[0], ctx, ResolveTo{Kind: ResolveUnknown})
	if e.Kind != ast.ExprCall {
		r.errorf(e.Span, "emit requires an event call")
	}
	return ast.Stmt{Kind: ast.StmtEmit, Span: t.Span(), Reachable: true, Expr: &e}
}

func (r *Resolver) resolveAssemblyStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	var yulBlock *parse.Tree
	for _, c := range t.Children {
		if c.Value == "yul-block" {
			yulBlock = c
		}
	}
	var resolved *yul.Block
	if yulBlock != nil {
		resolved = yul.Resolve(r.NS, yulBlock)
	}
	return ast.Stmt{Kind: ast.StmtAssembly, Span: t.Span(), Reachable: true, Yul: resolved}
}

func (r *Resolver) resolveVarDeclStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	typeNode := t.Children[0]
	nameNode := t.Children[1]
	typ := r.ResolveTypeName(typeNode, ctx.Contract)
	name := nameNode.Source.Lexeme()

	var init *ast.Expr
	if len(t.Children) > 3 && t.Children[2].Value == "assign" {
		e := r.ResolveExpr(t.Children[3], ctx, ResolveTo{Kind: ResolveTypeHint, Type: typ})
		if typ.Kind == types.Unresolved {
			typ = e.Type
		} else if !typ.Equal(e.Type) && e.Type.Kind != types.Unresolved {
			if Convert(e.Type, typ, true, r.NS.Target.AddressWidth).Kind == ConvInvalid {
				r.errorf(e.Span, "cannot implicitly convert %s to %s", e.Type, typ)
			}
		}
		init = &e
	}

	id := r.Declare(name, typ, nameNode.Span())
	if r.declaredVars != nil {
		r.declaredVars[id] = localVar{ID: id, Name: name, Type: typ, Span: nameNode.Span()}
	}
	return ast.Stmt{
		Kind: ast.StmtVarDecl, Span: t.Span(), Reachable: true,
		Decl: ast.Parameter{Name: name, Type: typ, Span: nameNode.Span()},
		Init: init,
		Expr: &ast.Expr{Kind: ast.ExprIdent, Span: nameNode.Span(), Type: typ, Name: name, VarID: id, LValue: true},
	}
}

func (r *Resolver) resolveTupleDeclStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	var targets []ast.DestructureTarget
	for _, c := range t.Children {
		if c.Value != "destructure-slot" {
			continue
		}
		if len(c.Children) == 0 {
			targets = append(targets, ast.DestructureTarget{Discard: true, Span: c.Span()})
			continue
		}
		typ := r.ResolveTypeName(c.Children[0], ctx.Contract)
		name := c.Children[1].Source.Lexeme()
		id := r.Declare(name, typ, c.Children[1].Span())
		if r.declaredVars != nil {
			r.declaredVars[id] = localVar{ID: id, Name: name, Type: typ, Span: c.Children[1].Span()}
		}
		targets = append(targets, ast.DestructureTarget{NewDecl: true, Name: name, Type: typ, Span: c.Span()})
	}

	var rhs *parse.Tree
	for i := len(t.Children) - 1; i >= 0; i-- {
		if t.Children[i].Value == "assign" && i+1 < len(t.Children) {
			rhs = t.Children[i+1]
			break
		}
	}
	var source ast.Expr
	if rhs != nil {
		source = r.ResolveExpr(rhs, ctx, ResolveTo{Kind: ResolveUnknown})
	}
	return ast.Stmt{Kind: ast.StmtDestructure, Span: t.Span(), Reachable: true, Targets: targets, Source: &source}
}

func (r *Resolver) resolveTryStmt(t *parse.Tree, ctx ExprContext) ast.Stmt {
	children := t.Children
	idx := 1 // skip kw-try
	tryExpr := r.ResolveExpr(children[idx], ctx, ResolveTo{Kind: ResolveUnknown})
	idx++

	var returns []ast.Parameter
	if idx < len(children) && children[idx].Terminal && children[idx].Value == "kw-returns" {
		idx++                 // kw-returns
		idx++                 // lparen
		if idx < len(children) && children[idx].Value == "parameter-list" {
			params, names := r.resolveParamList(children[idx], ctx.Contract)
			for i, p := range params {
				returns = append(returns, ast.Parameter{Name: names[i], Type: p.Type})
			}
			idx++
		}
		idx++ // rparen
	}

	r.PushScope()
	for _, ret := range returns {
		if ret.Name != "" {
			r.Declare(ret.Name, ret.Type, t.Span())
		}
	}
	var tryBody ast.Stmt
	if idx < len(children) && children[idx].Value == "block" {
		tryBody = r.resolveBlockStmt(children[idx], ctx)
		idx++
	}
	r.PopScope()

	var catches []ast.CatchClause
	for ; idx < len(children); idx++ {
		if children[idx].Value != "catch-clause" {
			continue
		}
		catches = append(catches, r.resolveCatchClause(children[idx], ctx))
	}

	return ast.Stmt{
		Kind: ast.StmtTry, Span: t.Span(), Reachable: true,
		TryExpr: &tryExpr, TryReturns: returns, TryBody: &tryBody, CatchClauses: catches,
	}
}

func (r *Resolver) resolveCatchClause(t *parse.Tree, ctx ExprContext) ast.CatchClause {
	cc := ast.CatchClause{}
	var body *parse.Tree
	for _, c := range t.Children {
		switch {
		case c.Terminal && c.Value == "identifier":
			cc.Selector = c.Source.Lexeme()
		case c.Value == "parameter-list":
			params, names := r.resolveParamList(c, ctx.Contract)
			for i, p := range params {
				cc.Params = append(cc.Params, ast.Parameter{Name: names[i], Type: p.Type})
			}
		case c.Value == "block":
			body = c
		}
	}
	r.PushScope()
	for _, p := range cc.Params {
		if p.Name != "" {
			r.Declare(p.Name, p.Type, t.Span())
		}
	}
	if body != nil {
		b := r.resolveBlockStmt(body, ctx)
		cc.Body = &b
	}
	r.PopScope()
	return cc
}
