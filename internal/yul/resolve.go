package yul

import (
	"fmt"

	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
)

// scope is a Yul lexical scope, mirroring internal/sema's own linked-list
// scope chain (spec.md draws no distinction between the two languages'
// scoping mechanics, only their namespaces).
type scope struct {
	parent *scope
	vars   map[string]int
	funcs  map[string]int
}

// funcInfo is a Yul function header, registered before any body resolves so
// mutually-recursive Yul functions can call each other regardless of
// declaration order (spec.md §4.8).
type funcInfo struct {
	name    string
	params  []string
	returns []string
	def     *parse.Tree
}

// Resolver resolves one assembly block's worth of Yul. A fresh Resolver is
// used per assembly statement; Yul scope never survives past the enclosing
// block, unlike the surrounding language's contract-wide symbol tables.
type Resolver struct {
	NS *namespace.Namespace

	top       *scope
	nextVar   int
	funcs     []funcInfo
	inForInit int // >0 while resolving a for-statement's init block
}

// NewResolver creates a Resolver for one assembly block.
func NewResolver(ns *namespace.Namespace) *Resolver {
	return &Resolver{NS: ns}
}

func (r *Resolver) push() {
	r.top = &scope{parent: r.top, vars: map[string]int{}, funcs: map[string]int{}}
}

func (r *Resolver) pop() {
	r.top = r.top.parent
}

func (r *Resolver) declareVar(name string) int {
	id := r.nextVar
	r.nextVar++
	r.top.vars[name] = id
	return id
}

func (r *Resolver) lookupVar(name string) (int, bool) {
	for s := r.top; s != nil; s = s.parent {
		if id, ok := s.vars[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (r *Resolver) declareFunc(name string, params, returns []string, def *parse.Tree) int {
	id := len(r.funcs)
	r.funcs = append(r.funcs, funcInfo{name: name, params: params, returns: returns, def: def})
	r.top.funcs[name] = id
	return id
}

func (r *Resolver) lookupFunc(name string) (int, bool) {
	for s := r.top; s != nil; s = s.parent {
		if id, ok := s.funcs[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (r *Resolver) warnf(t *parse.Tree, format string, args ...interface{}) {
	r.NS.Diagnose(namespace.SeverityWarning, t.Span(), fmt.Sprintf(format, args...))
}

func (r *Resolver) errf(t *parse.Tree, format string, args ...interface{}) {
	r.NS.Diagnose(namespace.SeverityError, t.Span(), fmt.Sprintf(format, args...))
}

// Resolve walks a yul-block tree (as internal/parse/yul.go produces it) and
// returns its resolved form. It runs the header-then-body two-pass spec.md
// §4.8 requires at the top level and at every nested block, so a function
// declared later in the same block is callable from one declared earlier.
func Resolve(ns *namespace.Namespace, tree *parse.Tree) *Block {
	r := NewResolver(ns)
	r.push()
	b := r.resolveBlock(tree)
	r.pop()
	return b
}

func yulChildren(t *parse.Tree) []*parse.Tree {
	var out []*parse.Tree
	for _, c := range t.Children {
		if c.Value == "lbrace" || c.Value == "rbrace" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Resolver) resolveBlock(t *parse.Tree) *Block {
	stmts := yulChildren(t)

	// header pass: register every function definition's name/params/returns
	// before resolving any statement's body, including this block's own
	// siblings, so forward + mutual recursion both resolve.
	for _, s := range stmts {
		if s.Value == "yul-function-definition" {
			r.registerFunctionHeader(s)
		}
	}

	reachable := true
	warnedDead := false
	var out []Stmt
	for _, s := range stmts {
		rs := r.resolveStmt(s)
		if !reachable && !warnedDead {
			r.warnf(s, "unreachable Yul statement")
			warnedDead = true
		}
		rs.Reachable = reachable
		out = append(out, rs)
		if rs.Kind == StmtLeave || rs.Kind == StmtBreak || rs.Kind == StmtContinue {
			reachable = false
		}
		if rs.Kind == StmtSwitch && allCasesTerminate(rs) {
			reachable = false
		}
	}
	return &Block{Span: t.Span(), Stmts: out}
}

func allCasesTerminate(s Stmt) bool {
	if len(s.Cases) == 0 {
		return false
	}
	hasDefault := false
	for _, c := range s.Cases {
		if c.Default {
			hasDefault = true
		}
		if c.Body == nil || len(c.Body.Stmts) == 0 {
			return false
		}
		last := c.Body.Stmts[len(c.Body.Stmts)-1]
		if last.Kind != StmtLeave && last.Kind != StmtBreak && last.Kind != StmtContinue {
			return false
		}
	}
	return hasDefault
}

func (r *Resolver) registerFunctionHeader(def *parse.Tree) {
	name := def.Children[1].Source.Lexeme()
	if _, isBuiltin := lookupBuiltin(name); isBuiltin || isVerbatim(name) {
		r.errf(def, "cannot redefine builtin Yul identifier %q", name)
		return
	}
	if r.inForInit > 0 {
		r.errf(def, "function %q cannot be defined inside a for-loop init block", name)
	}

	var params, returns []string
	idx := 2 // past kw-function, identifier
	if idx < len(def.Children) && def.Children[idx].Value == "lparen" {
		idx++
	}
	for idx < len(def.Children) && def.Children[idx].Terminal && def.Children[idx].Value == "identifier" {
		params = append(params, def.Children[idx].Source.Lexeme())
		idx++
	}
	if idx < len(def.Children) && def.Children[idx].Value == "rparen" {
		idx++
	}
	if idx < len(def.Children) && def.Children[idx].Value == "produces" {
		idx++
		for idx < len(def.Children) && def.Children[idx].Terminal && def.Children[idx].Value == "identifier" {
			returns = append(returns, def.Children[idx].Source.Lexeme())
			idx++
		}
	}
	r.declareFunc(name, params, returns, def)
}

func (r *Resolver) resolveStmt(t *parse.Tree) Stmt {
	switch t.Value {
	case "yul-block":
		r.push()
		defer r.pop()
		b := r.resolveBlock(t)
		return Stmt{Kind: StmtBlock, Span: t.Span(), Stmts: b.Stmts}
	case "yul-variable-declaration":
		return r.resolveVarDecl(t)
	case "yul-assignment":
		return r.resolveAssignment(t)
	case "yul-if":
		return r.resolveIf(t)
	case "yul-switch":
		return r.resolveSwitch(t)
	case "yul-for":
		return r.resolveFor(t)
	case "yul-function-definition":
		return r.resolveFunctionBody(t)
	case "yul-break":
		return Stmt{Kind: StmtBreak, Span: t.Span()}
	case "yul-continue":
		return Stmt{Kind: StmtContinue, Span: t.Span()}
	case "yul-leave":
		return Stmt{Kind: StmtLeave, Span: t.Span()}
	case "yul-expression-statement":
		e := r.resolveExpr(t.Children[0])
		return Stmt{Kind: StmtExpr, Span: t.Span(), Expr: &e}
	default:
		r.errf(t, "internal: not a Yul statement node: %s", t.Value)
		return Stmt{Kind: StmtInvalid, Span: t.Span()}
	}
}

// resolveVarDecl walks a yul-variable-declaration node: kw-let, identifier,
// (comma identifier)*, then an optional (colon assign expr) initializer --
// the exact child sequence parseYulVariableDeclaration emits.
func (r *Resolver) resolveVarDecl(t *parse.Tree) Stmt {
	st := Stmt{Kind: StmtVarDecl, Span: t.Span()}

	idx := 1 // past kw-let
	for idx < len(t.Children) && t.Children[idx].Terminal && t.Children[idx].Value == "identifier" {
		st.Names = append(st.Names, t.Children[idx].Source.Lexeme())
		idx++
		if idx < len(t.Children) && t.Children[idx].Value == "comma" {
			idx++
		}
	}

	var initExpr *parse.Tree
	if idx < len(t.Children) && t.Children[idx].Value == "colon" {
		idx++ // colon
		if idx < len(t.Children) && t.Children[idx].Value == "assign" {
			idx++ // assign
		}
		if idx < len(t.Children) {
			initExpr = t.Children[idx]
		}
	}

	for _, name := range st.Names {
		if _, shadow := lookupBuiltin(name); shadow {
			r.errf(t, "cannot redefine builtin Yul identifier %q", name)
			continue
		}
		st.VarIDs = append(st.VarIDs, r.declareVar(name))
	}
	if initExpr != nil {
		e := r.resolveExpr(initExpr)
		st.Init = &e
	}
	return st
}

func (r *Resolver) resolveAssignment(t *parse.Tree) Stmt {
	st := Stmt{Kind: StmtAssign, Span: t.Span()}
	var targets []*parse.Tree
	var initNode *parse.Tree
	sawAssign := false
	for _, c := range t.Children {
		if c.Value == "assign" {
			sawAssign = true
			continue
		}
		if c.Value == "colon" {
			continue
		}
		if !sawAssign {
			targets = append(targets, c)
		} else {
			initNode = c
		}
	}
	for _, tg := range targets {
		name := pathName(tg)
		st.Names = append(st.Names, name)
		if id, ok := r.lookupVar(name); ok {
			st.VarIDs = append(st.VarIDs, id)
		} else {
			r.errf(tg, "undeclared Yul variable %q", name)
			st.VarIDs = append(st.VarIDs, -1)
		}
	}
	if initNode != nil {
		e := r.resolveExpr(initNode)
		st.Init = &e
	}
	return st
}

func pathName(t *parse.Tree) string {
	if t.Terminal {
		return t.Source.Lexeme()
	}
	if t.Value == "yul-path" && len(t.Children) > 0 {
		return t.Children[0].Source.Lexeme()
	}
	return ""
}

func (r *Resolver) resolveIf(t *parse.Tree) Stmt {
	cond := r.resolveExpr(t.Children[1])
	r.push()
	body := r.resolveBlock(t.Children[2])
	r.pop()
	return Stmt{Kind: StmtIf, Span: t.Span(), Cond: &cond, Then: &Stmt{Kind: StmtBlock, Span: t.Children[2].Span(), Stmts: body.Stmts}}
}

func (r *Resolver) resolveSwitch(t *parse.Tree) Stmt {
	cond := r.resolveExpr(t.Children[1])
	st := Stmt{Kind: StmtSwitch, Span: t.Span(), Cond: &cond}
	for _, c := range t.Children[2:] {
		switch c.Value {
		case "yul-case":
			val := r.resolveExpr(c.Children[1])
			r.push()
			body := r.resolveBlock(c.Children[2])
			r.pop()
			st.Cases = append(st.Cases, Case{Span: c.Span(), Value: &val, Body: &Stmt{Kind: StmtBlock, Span: c.Children[2].Span(), Stmts: body.Stmts}})
		case "yul-default":
			r.push()
			body := r.resolveBlock(c.Children[1])
			r.pop()
			st.Cases = append(st.Cases, Case{Span: c.Span(), Default: true, Body: &Stmt{Kind: StmtBlock, Span: c.Children[1].Span(), Stmts: body.Stmts}})
		}
	}
	return st
}

func (r *Resolver) resolveFor(t *parse.Tree) Stmt {
	// children: kw-for, init-block, cond-expr, post-block, body-block
	r.push()
	r.inForInit++
	initBlock := r.resolveBlock(t.Children[1])
	r.inForInit--
	cond := r.resolveExpr(t.Children[2])
	postBlock := r.resolveBlock(t.Children[3])
	bodyBlock := r.resolveBlock(t.Children[4])
	r.pop()
	return Stmt{
		Kind:    StmtFor,
		Span:    t.Span(),
		ForInit: &Stmt{Kind: StmtBlock, Span: t.Children[1].Span(), Stmts: initBlock.Stmts},
		Cond:    &cond,
		ForPost: &Stmt{Kind: StmtBlock, Span: t.Children[3].Span(), Stmts: postBlock.Stmts},
		Body:    &Stmt{Kind: StmtBlock, Span: t.Children[4].Span(), Stmts: bodyBlock.Stmts},
	}
}

func (r *Resolver) resolveFunctionBody(t *parse.Tree) Stmt {
	name := t.Children[1].Source.Lexeme()
	id, _ := r.lookupFunc(name)
	fi := r.funcs[id]

	r.push()
	for _, p := range fi.params {
		r.declareVar(p)
	}
	for _, ret := range fi.returns {
		r.declareVar(ret)
	}
	var bodyTree *parse.Tree
	for _, c := range t.Children {
		if c.Value == "yul-block" {
			bodyTree = c
		}
	}
	body := r.resolveBlock(bodyTree)
	r.pop()

	return Stmt{
		Kind:     StmtFuncDef,
		Span:     t.Span(),
		FuncName: name,
		FuncID:   id,
		Names:    fi.params,
		Returns:  fi.returns,
		Body:     &Stmt{Kind: StmtBlock, Span: bodyTree.Span(), Stmts: body.Stmts},
	}
}

func (r *Resolver) resolveExpr(t *parse.Tree) Expr {
	switch t.Value {
	case "yul-literal":
		return r.resolveLiteral(t)
	case "yul-path":
		name := pathName(t)
		e := Expr{Kind: ExprIdentifier, Span: t.Span(), Text: name, VarID: -1}
		if id, ok := r.lookupVar(name); ok {
			e.VarID = id
		} else {
			r.errf(t, "undeclared Yul identifier %q", name)
		}
		return e
	case "yul-call":
		return r.resolveCall(t)
	default:
		if t.Terminal && t.Value == "identifier" {
			name := t.Source.Lexeme()
			e := Expr{Kind: ExprIdentifier, Span: t.Span(), Text: name, VarID: -1}
			if id, ok := r.lookupVar(name); ok {
				e.VarID = id
			} else {
				r.errf(t, "undeclared Yul identifier %q", name)
			}
			return e
		}
		r.errf(t, "internal: not a Yul expression node: %s", t.Value)
		return Expr{Kind: ExprInvalid, Span: t.Span()}
	}
}

func (r *Resolver) resolveLiteral(t *parse.Tree) Expr {
	tok := t.Children[0].Source
	e := Expr{Kind: ExprLiteral, Span: t.Span(), Text: tok.Lexeme()}
	switch tok.Class().ID() {
	case "number-literal", "hex-number-literal":
		nl := lex.ParseNumberLiteral(tok.Lexeme())
		e.Lit = LitNumber
		e.Suffix = nl.Suffix
		if nl.Suffix != "" {
			if !lex.ValidYulSuffix(nl.Suffix) {
				r.errf(t, "invalid Yul numeric type suffix %q", nl.Suffix)
			} else if !nl.FitsSuffixWidth() {
				r.warnf(t, "literal %s does not fit its declared width %s", nl.Digits, nl.Suffix)
			}
		}
	case "string-literal":
		e.Lit = LitString
	case "hex-string-literal":
		e.Lit = LitHexString
	default:
		e.Lit = LitBool
	}
	return e
}

func (r *Resolver) resolveCall(t *parse.Tree) Expr {
	callee := pathName(t.Children[0])
	e := Expr{Kind: ExprCall, Span: t.Span(), Text: callee, FuncID: -1}

	for _, c := range t.Children[2 : len(t.Children)-1] {
		if c.Value == "comma" {
			continue
		}
		e.Args = append(e.Args, r.resolveExpr(c))
	}
	argCount := len(e.Args)

	if b, ok := lookupBuiltin(callee); ok {
		e.Builtin = true
		if argCount != b.ins {
			r.errf(t, "builtin %q takes %d argument(s), got %d", callee, b.ins, argCount)
		}
	} else if isVerbatim(callee) {
		e.Builtin = true
	} else if id, ok := r.lookupFunc(callee); ok {
		e.FuncID = id
		fi := r.funcs[id]
		if argCount != len(fi.params) {
			r.errf(t, "function %q takes %d argument(s), got %d", callee, len(fi.params), argCount)
		}
	} else {
		r.errf(t, "undeclared Yul function %q", callee)
	}

	return e
}
