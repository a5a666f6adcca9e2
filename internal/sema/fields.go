package sema

import (
	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/types"
)

// pendingFunction is gathered while registering a contract's members in
// ResolveSignatures, so ResolveAllBodies can resolve each function's body
// once every contract in the Namespace has a complete signature set (spec.md
// §4.4 Pass B must finish everywhere before any body -- a function may call
// a sibling contract's function declared later in the file).
type pendingFunction struct {
	id       namespace.ID
	tree     *parse.Tree
	contract namespace.ID
}

// ResolveSignatures is spec.md §4.4 Pass B: fill in struct/error/event
// fields, contract base lists, and every function/state-variable signature,
// now that Pass A has given every type name (including forward and
// mutually-recursive ones) a namespace.ID. Call this once per Namespace
// after every file's ResolveFile has run.
func (r *Resolver) ResolveSignatures() []pendingFunction {
	for _, p := range r.pendingStructs {
		r.resolveStructFields(p)
	}
	for _, p := range r.pendingErrors {
		r.resolveErrorFields(p)
	}
	for _, p := range r.pendingEvents {
		r.resolveEventFields(p)
	}

	var pendingFns []pendingFunction
	for _, p := range r.pendingContracts {
		pendingFns = append(pendingFns, r.resolveContractMembers(p)...)
	}

	r.detectRecursiveStructs()
	return pendingFns
}

func (r *Resolver) resolveStructFields(p pendingStruct) {
	s := r.NS.Get(namespace.KindStruct, p.id).(*ast.Struct)
	for _, m := range p.tree.Children {
		if m.Value != "struct-member" {
			continue
		}
		typ := r.ResolveTypeName(m.Children[0], p.contract)
		name := m.Children[1].Source.Lexeme()
		s.Fields = append(s.Fields, ast.Parameter{Name: name, Type: typ, Span: m.Span()})
	}
}

func (r *Resolver) resolveErrorFields(p pendingError) {
	e := r.NS.Get(namespace.KindError, p.id).(*ast.ErrorDecl)
	if pl := childByValue(p.tree, "parameter-list"); pl != nil {
		params, names := r.resolveParamList(pl, p.contract)
		for i, prm := range params {
			e.Fields = append(e.Fields, ast.Parameter{Name: names[i], Type: prm.Type})
		}
	}
}

func (r *Resolver) resolveEventFields(p pendingEvent) {
	ev := r.NS.Get(namespace.KindEvent, p.id).(*ast.Event)
	pl := childByValue(p.tree, "event-parameter-list")
	if pl == nil {
		return
	}
	for _, epn := range pl.Children {
		if epn.Value != "event-parameter" {
			continue
		}
		typ := r.ResolveTypeName(epn.Children[0], p.contract)
		indexed := false
		name := ""
		for _, c := range epn.Children[1:] {
			if c.Terminal && c.Value == "kw-indexed" {
				indexed = true
			} else if c.Terminal && c.Value == "identifier" {
				name = c.Source.Lexeme()
			}
		}
		ev.Fields = append(ev.Fields, ast.Parameter{Name: name, Type: typ, Span: epn.Span(), Indexed: indexed})
	}
}

// resolveContractMembers resolves a contract's base list and registers every
// function/modifier/state-variable declared in its body, returning the
// functions whose bodies still need resolving.
func (r *Resolver) resolveContractMembers(p pendingContract) []pendingFunction {
	c := r.NS.Get(namespace.KindContract, p.id).(*ast.Contract)

	if inh := childByValue(p.tree, "inheritance-list"); inh != nil {
		for _, spec := range inh.Children {
			if spec.Value != "inheritance-specifier" {
				continue
			}
			name := spec.Children[0].Source.Lexeme()
			if sym, ok := r.NS.ResolveContract(r.File, name); ok {
				c.Bases = append(c.Bases, sym.ID)
			} else {
				r.errorf(spec.Span(), "undeclared base contract %q", name)
			}
		}
	}

	body := childByValue(p.tree, "contract-body")
	if body == nil {
		return nil
	}

	var pendingFns []pendingFunction
	for _, m := range body.Children {
		switch m.Value {
		case "state-variable-declaration":
			r.registerStateVariable(m, p.id, c)
		case "function-definition":
			id := r.registerFunction(m, p.id, c, false)
			if id != namespace.InvalidID {
				pendingFns = append(pendingFns, pendingFunction{id: id, tree: m, contract: p.id})
			}
		case "modifier-definition":
			id := r.registerFunction(m, p.id, c, true)
			if id != namespace.InvalidID {
				pendingFns = append(pendingFns, pendingFunction{id: id, tree: m, contract: p.id})
			}
		}
	}
	return pendingFns
}

func (r *Resolver) registerStateVariable(decl *parse.Tree, contract namespace.ID, c *ast.Contract) {
	typeNode := decl.Children[0]
	typ := r.ResolveTypeName(typeNode, contract)
	doc := r.doc.Attach(decl.Span())

	v := &ast.Variable{Span: decl.Span(), Doc: doc, Contract: contract, Type: typ}

	idx := 1
	for idx < len(decl.Children) && decl.Children[idx].Terminal && decl.Children[idx].Value != "identifier" {
		switch decl.Children[idx].Value {
		case "kw-constant":
			v.Constant = true
		case "kw-immutable":
			v.Immutable = true
		}
		idx++
	}
	if idx >= len(decl.Children) {
		return
	}
	nameNode := decl.Children[idx]
	idx++
	v.Name = nameNode.Source.Lexeme()

	var initNode *parse.Tree
	if idx < len(decl.Children) && decl.Children[idx].Value == "assign" {
		idx++
		if idx < len(decl.Children) {
			initNode = decl.Children[idx]
		}
	}

	if initNode != nil {
		ctx := ExprContext{File: r.File, Contract: contract, Constant: v.Constant || v.Immutable}
		e := r.ResolveExpr(initNode, ctx, ResolveTo{Kind: ResolveTypeHint, Type: typ})
		v.Init = &e
	}

	id := r.NS.Add(namespace.KindVariable, v)
	if err := r.NS.AddSymbol(r.File, contract, v.Name, namespace.Symbol{Kind: namespace.KindVariable, ID: id, Name: v.Name}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}
	if v.Constant {
		c.Constants = append(c.Constants, id)
	} else {
		c.Variables = append(c.Variables, id)
		// storage-slot assignment: a simple bump-allocator over 32-byte
		// slots, matching spec.md §4.4's "each non-constant, non-immutable
		// state variable is laid out in declaration order"; packing
		// multiple small variables into one slot is left to a later pass.
		v.StorageSlot = len(c.Variables) - 1
	}
}

func (r *Resolver) registerFunction(decl *parse.Tree, contract namespace.ID, c *ast.Contract, isModifier bool) namespace.ID {
	doc := r.doc.Attach(decl.Span())
	fn := &ast.Function{Span: decl.Span(), Doc: doc, Contract: contract, IsModifier: isModifier, Mutability: types.Nonpayable, Visibility: ast.VisibilityPublic}

	name := ""
	if isModifier {
		nameTok := firstIdentifier(decl)
		if nameTok != nil {
			name = nameTok.Source.Lexeme()
		}
	} else {
		switch {
		case decl.Children[0].Terminal && decl.Children[0].Value == "kw-function":
			name = decl.Children[1].Source.Lexeme()
		case decl.Children[0].Terminal && decl.Children[0].Value == "kw-constructor":
			name = ""
			fn.Visibility = ast.VisibilityPublic
		case decl.Children[0].Terminal:
			name = "" // receive/fallback
		}
	}
	fn.Name = name

	if pl := childByValue(decl, "parameter-list"); pl != nil {
		params, names := r.resolveParamList(pl, contract)
		for i, prm := range params {
			fn.Params = append(fn.Params, ast.Parameter{Name: names[i], Type: prm.Type})
		}
	}

	for _, attr := range decl.Children {
		switch attr.Value {
		case "function-attribute":
			switch attr.Children[0].Value {
			case "kw-public":
				fn.Visibility = ast.VisibilityPublic
			case "kw-private":
				fn.Visibility = ast.VisibilityPrivate
			case "kw-internal":
				fn.Visibility = ast.VisibilityInternal
			case "kw-external":
				fn.Visibility = ast.VisibilityExternal
			case "kw-pure":
				fn.Mutability = types.Pure
			case "kw-view":
				fn.Mutability = types.View
			case "kw-payable":
				fn.Mutability = types.Payable
			case "kw-virtual":
				fn.Virtual = true
			case "kw-override":
				fn.Override = true
			}
		case "modifier-invocation":
			fn.ModifierInvocations = append(fn.ModifierInvocations, ast.ModifierInvocation{Name: attr.Children[0].Source.Lexeme(), Span: attr.Span()})
		}
	}

	// the returns-clause is the second "parameter-list" child, if any.
	seenFirst := false
	for _, c := range decl.Children {
		if c.Value == "parameter-list" {
			if !seenFirst {
				seenFirst = true
				continue
			}
			params, names := r.resolveParamList(c, contract)
			for i, prm := range params {
				fn.Returns = append(fn.Returns, ast.Parameter{Name: names[i], Type: prm.Type})
			}
		}
	}

	id := r.NS.Add(namespace.KindFunction, fn)
	symName := name
	if symName == "" {
		symName = "<fallback>"
	}
	if err := r.NS.AddSymbol(r.File, contract, symName, namespace.Symbol{Kind: namespace.KindFunction, ID: id, Name: symName}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}
	c.Functions = append(c.Functions, id)
	if !isModifier {
		c.AllFunctions[CanonicalSignature(fn)] = id
	}
	return id
}

// detectRecursiveStructs flags a struct Recursive when one of its fields is,
// directly or through another struct's direct (non-array, non-mapping)
// field, itself -- the shape Solidity rejects because it has no finite
// storage layout.
func (r *Resolver) detectRecursiveStructs() {
	visiting := map[int]bool{}
	var visit func(id namespace.ID) bool
	visit = func(id namespace.ID) bool {
		s, ok := r.NS.Get(namespace.KindStruct, id).(*ast.Struct)
		if !ok || s == nil {
			return false
		}
		if visiting[int(id)] {
			return true
		}
		visiting[int(id)] = true
		defer delete(visiting, int(id))
		for _, f := range s.Fields {
			if f.Type.Kind == types.Struct {
				if visit(namespace.ID(f.Type.ID)) {
					s.Recursive = true
				}
			}
		}
		return s.Recursive
	}
	for i := 0; i < r.NS.Len(namespace.KindStruct); i++ {
		if visit(namespace.ID(i)) {
			if s, ok := r.NS.Get(namespace.KindStruct, namespace.ID(i)).(*ast.Struct); ok {
				r.errorf(s.Span, "struct %q contains itself without an intervening array or mapping", s.Name)
			}
		}
	}
}

// ResolveAllBodies resolves every pending function's body, in whatever
// order the caller collected them (ResolveSignatures across every Resolver
// sharing the Namespace must have run first).
func (r *Resolver) ResolveAllBodies(pending []pendingFunction) {
	for _, p := range pending {
		r.resolveFunctionBody(p)
	}
}

func (r *Resolver) resolveFunctionBody(p pendingFunction) {
	fn := r.NS.Get(namespace.KindFunction, p.id).(*ast.Function)
	block := childByValue(p.tree, "block")
	if block == nil {
		return // interface/abstract declaration, no body
	}

	r.usedVars = map[int]bool{}
	r.declaredVars = map[int]localVar{}
	r.PushScope()
	ctx := ExprContext{File: r.File, Contract: p.contract, Function: p.id}
	for i, prm := range fn.Params {
		if prm.Name == "" {
			continue
		}
		id := r.Declare(prm.Name, prm.Type, block.Span())
		fn.Params[i].Name = prm.Name
		_ = id
	}
	for _, ret := range fn.Returns {
		if ret.Name != "" {
			r.Declare(ret.Name, ret.Type, block.Span())
		}
	}

	body := r.resolveBlockStmt(block, ctx)
	fn.Body = &body
	r.reportUnusedLocals()
	r.PopScope()
	r.usedVars = nil
	r.declaredVars = nil
}
