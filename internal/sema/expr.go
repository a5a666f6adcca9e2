package sema

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/source"
	"github.com/dekarrin/solfront/internal/types"
)

// ExprContext carries the ambient resolution state spec.md §4.5 requires:
// which file/contract/function the expression appears in, whether it must
// be a compile-time constant, whether it is being resolved as an l-value,
// and whether arithmetic should skip overflow-check insertion later.
type ExprContext struct {
	File       source.FileID
	Contract   namespace.ID
	Function   namespace.ID
	Constant   bool
	LValue     bool
	Unchecked  bool
	YulFunction bool
}

// ResolveToKind discriminates the ResolveTo hint.
type ResolveToKind int

const (
	ResolveUnknown ResolveToKind = iota
	ResolveInteger
	ResolveDiscard
	ResolveTypeHint
)

// ResolveTo is the hint passed down expression resolution so literals and
// overload sites can pick a target type (spec.md §4.5, GLOSSARY).
type ResolveTo struct {
	Kind ResolveToKind
	Type types.Type
}

// ResolveExpr resolves a parse-tree expression node into a typed
// internal/ast.Expr, pushing at least one diagnostic on failure (the
// returned Expr's Type is then types.Unresolved; callers never receive a
// Go error, per spec.md §7).
func (r *Resolver) ResolveExpr(t *parse.Tree, ctx ExprContext, to ResolveTo) ast.Expr {
	switch t.Value {
	case "number-literal-expression":
		return r.resolveNumberLiteral(t, ctx, to)
	case "string-literal-expression":
		return r.resolveStringLiteral(t)
	case "bool-literal-expression":
		lex := t.Children[0].Source.Lexeme()
		return ast.Expr{Kind: ast.ExprLiteral, Span: t.Span(), Type: types.NewBool(), Const: true, Literal: ast.Literal{Bool: lex == "true"}, ConstVal: ast.Literal{Bool: lex == "true"}}

	case "identifier-expression":
		return r.resolveIdentifier(t, ctx)

	case "paren-expression":
		return r.ResolveExpr(t.Children[1], ctx, to)

	case "tuple-expression":
		var elems []ast.Expr
		for _, c := range t.Children {
			if c.Terminal {
				continue
			}
			if c.Value == "tuple-slot" {
				elems = append(elems, ast.Expr{Kind: ast.ExprInvalid, Span: c.Span(), Type: types.NewVoid()})
				continue
			}
			elems = append(elems, r.ResolveExpr(c, ctx, ResolveTo{Kind: ResolveUnknown}))
		}
		return ast.Expr{Kind: ast.ExprTuple, Span: t.Span(), Type: types.NewVoid(), Args: elems}

	case "unary-expression":
		return r.resolveUnary(t, ctx)

	case "postfix-expression":
		operand := r.ResolveExpr(t.Children[0], ctx, ResolveTo{Kind: ResolveUnknown})
		op := t.Children[1].Source.Lexeme()
		return ast.Expr{Kind: ast.ExprUnary, Span: t.Span(), Type: operand.Type, Operator: "post" + op, Right: &operand}

	case "binary-expression":
		return r.resolveBinary(t, ctx)

	case "conditional-expression":
		return r.resolveTernary(t, ctx, to)

	case "assignment-expression":
		return r.resolveAssignment(t, ctx)

	case "member-access":
		return r.resolveMemberAccess(t, ctx)

	case "index-access":
		return r.resolveIndexAccess(t, ctx)

	case "call-expression":
		return r.resolveCall(t, ctx, to)

	case "new-expression":
		return r.resolveNew(t, ctx)

	case "delete-expression":
		operand := r.ResolveExpr(t.Children[1], ctx, ResolveTo{Kind: ResolveUnknown})
		return ast.Expr{Kind: ast.ExprUnary, Span: t.Span(), Type: types.NewVoid(), Operator: "delete", Right: &operand}

	case "elementary-type", "user-defined-type", "array-type", "mapping-type", "function-type", "located-type":
		// a type used directly as an expression (e.g. `uint256(x)` before
		// the call postfix is applied, or `type(Foo)`); resolveCall
		// recognizes a Callee of this shape and treats the call as a cast.
		typ := r.ResolveTypeName(t, ctx.Contract)
		return ast.Expr{Kind: ast.ExprCast, Span: t.Span(), Type: typ, Name: typeExprName(t)}

	case "error-expression":
		return ast.Expr{Kind: ast.ExprInvalid, Span: t.Span(), Type: types.NewUnresolved()}

	default:
		r.errorf(t.Span(), "internal: not an expression node: %s", t.Value)
		return ast.Expr{Kind: ast.ExprInvalid, Span: t.Span(), Type: types.NewUnresolved()}
	}
}

func typeExprName(t *parse.Tree) string {
	if t.Value == "user-defined-type" {
		return t.Children[0].Source.Lexeme()
	}
	return t.Value
}

func (r *Resolver) resolveNumberLiteral(t *parse.Tree, ctx ExprContext, to ResolveTo) ast.Expr {
	lexeme := t.Children[0].Source.Lexeme()
	digits := lexeme
	if i := strings.IndexByte(lexeme, ':'); i >= 0 {
		digits = lexeme[:i] // Yul `3:u256` suffix; the type suffix itself is internal/yul's concern
	}

	val := new(big.Int)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		val.SetString(digits[2:], 16)
	} else {
		val.SetString(digits, 10)
	}

	bitlen := val.BitLen()
	target := types.NewUint(smallestUintWidth(bitlen))
	if to.Kind == ResolveTypeHint && to.Type.IsNumeric() {
		target = to.Type
	}

	return ast.Expr{
		Kind: ast.ExprLiteral, Span: t.Span(), Type: target,
		Const: true,
		Literal: ast.Literal{Int: val.String()}, ConstVal: ast.Literal{Int: val.String()},
	}
}

// smallestUintWidth returns the smallest standard width (multiple of 8, up
// to 256) that fits a non-negative value with the given bit length, per
// spec.md §4.5's "a literal's required bit-width is the smaller of signed
// vs unsigned encoding" (here the unsigned side).
func smallestUintWidth(bitlen int) int {
	if bitlen == 0 {
		bitlen = 1
	}
	w := 8
	for w < bitlen && w < 256 {
		w += 8
	}
	return w
}

func (r *Resolver) resolveStringLiteral(t *parse.Tree) ast.Expr {
	tok := t.Children[0]
	switch tok.Value {
	case "hex-string-literal":
		return ast.Expr{Kind: ast.ExprLiteral, Span: t.Span(), Type: types.NewDynamicBytes(), Const: true, Literal: ast.Literal{Str: tok.Source.Lexeme()}}
	default:
		raw := tok.Source.Lexeme()
		body := raw
		if len(raw) >= 2 {
			body = raw[1 : len(raw)-1]
		}
		return ast.Expr{Kind: ast.ExprLiteral, Span: t.Span(), Type: types.NewString(), Const: true, Literal: ast.Literal{Str: body}, ConstVal: ast.Literal{Str: body}}
	}
}

func (r *Resolver) resolveIdentifier(t *parse.Tree, ctx ExprContext) ast.Expr {
	name := t.Children[0].Source.Lexeme()

	// `_` is the modifier-body placeholder spec.md §4.7 splices the wrapped
	// function/next modifier's call into; it never resolves as a symbol.
	if name == "_" {
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: types.NewVoid(), Name: "_", VarID: -1}
	}

	if lv, ok := r.LookupLocal(name); ok {
		if r.usedVars != nil {
			r.usedVars[lv.ID] = true
		}
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: lv.Type, Name: name, VarID: lv.ID, LValue: true}
	}

	sym, ok := r.NS.ResolveVar(ctx.File, ctx.Contract, name)
	if !ok {
		if builtinTyp, isBuiltin := builtinGlobal(name); isBuiltin {
			return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: builtinTyp, Name: name, VarID: -1}
		}
		r.errorf(t.Span(), "undeclared identifier %q", name)
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: types.NewUnresolved(), Name: name}
	}

	switch sym.Kind {
	case namespace.KindVariable:
		v := r.NS.Get(namespace.KindVariable, sym.ID).(*ast.Variable)
		if ctx.Constant && !v.Constant {
			r.errorf(t.Span(), "cannot read mutable contract variable %q in a constant context", name)
		}
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: v.Type, Name: name, VarID: int(sym.ID), LValue: !v.Constant && !v.Immutable}
	case namespace.KindContract:
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: types.NewContract(int(sym.ID)), Name: name, VarID: int(sym.ID)}
	case namespace.KindEnum:
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: types.NewEnum(int(sym.ID)), Name: name, VarID: int(sym.ID)}
	case namespace.KindStruct:
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: types.NewStruct(int(sym.ID)), Name: name, VarID: int(sym.ID)}
	default:
		return ast.Expr{Kind: ast.ExprIdent, Span: t.Span(), Type: types.NewUnresolved(), Name: name, VarID: int(sym.ID)}
	}
}

// builtinGlobal recognizes the always-in-scope namespace globals
// (block, msg, tx, abi, ...) from spec.md §4.5's member-access dispatch
// order; here they are given an Unresolved placeholder type, real field
// shapes (block.timestamp etc.) are resolved by member.go on access.
func builtinGlobal(name string) (types.Type, bool) {
	switch name {
	case "block", "msg", "tx", "abi", "this", "super":
		return types.NewUnresolved(), true
	}
	return types.Type{}, false
}

func (r *Resolver) resolveUnary(t *parse.Tree, ctx ExprContext) ast.Expr {
	op := t.Children[0].Source.Lexeme()
	operand := r.ResolveExpr(t.Children[1], ctx, ResolveTo{Kind: ResolveUnknown})
	typ := operand.Type
	if op == "!" {
		typ = types.NewBool()
	}
	e := ast.Expr{Kind: ast.ExprUnary, Span: t.Span(), Type: typ, Operator: op, Right: &operand}
	if operand.Const && (op == "-" || op == "~" || op == "!") {
		e.Const = true
		e.ConstVal = foldUnary(op, operand.ConstVal)
	}
	return e
}

func foldUnary(op string, v ast.Literal) ast.Literal {
	switch op {
	case "-":
		n := new(big.Int)
		n.SetString(v.Int, 10)
		n.Neg(n)
		return ast.Literal{Int: n.String()}
	case "!":
		return ast.Literal{Bool: !v.Bool}
	default:
		return v
	}
}

func (r *Resolver) resolveBinary(t *parse.Tree, ctx ExprContext) ast.Expr {
	op := t.Children[1].Source.Lexeme()
	left := r.ResolveExpr(t.Children[0], ctx, ResolveTo{Kind: ResolveUnknown})
	right := r.ResolveExpr(t.Children[2], ctx, ResolveTo{Kind: ResolveUnknown})

	var resultType types.Type
	switch op {
	case "&&", "||":
		resultType = types.NewBool()
	case "==", "!=", "<", ">", "<=", ">=":
		resultType = types.NewBool()
	default:
		if left.Type.IsNumeric() && right.Type.IsNumeric() {
			resultType = ArithmeticCoerce(left.Type, right.Type)
		} else {
			resultType = left.Type
		}
	}

	e := ast.Expr{Kind: ast.ExprBinary, Span: t.Span(), Type: resultType, Operator: op, Left: &left, Right: &right}
	if left.Const && right.Const && left.Type.IsNumeric() && right.Type.IsNumeric() {
		if folded, ok := foldBinaryNumeric(op, left.ConstVal.Int, right.ConstVal.Int); ok {
			e.Const = true
			e.ConstVal = ast.Literal{Int: folded}
		}
	}
	return e
}

func foldBinaryNumeric(op, a, b string) (string, bool) {
	x, y := new(big.Int), new(big.Int)
	if _, ok := x.SetString(a, 10); !ok {
		return "", false
	}
	if _, ok := y.SetString(b, 10); !ok {
		return "", false
	}
	z := new(big.Int)
	switch op {
	case "+":
		z.Add(x, y)
	case "-":
		z.Sub(x, y)
	case "*":
		z.Mul(x, y)
	case "/":
		if y.Sign() == 0 {
			return "", false
		}
		z.Quo(x, y)
	case "%":
		if y.Sign() == 0 {
			return "", false
		}
		z.Rem(x, y)
	case "**":
		z.Exp(x, y, nil)
	default:
		return "", false
	}
	return z.String(), true
}

func (r *Resolver) resolveTernary(t *parse.Tree, ctx ExprContext, to ResolveTo) ast.Expr {
	cond := r.ResolveExpr(t.Children[0], ctx, ResolveTo{Kind: ResolveUnknown})
	whenTrue := r.ResolveExpr(t.Children[2], ctx, to)
	whenFalse := r.ResolveExpr(t.Children[4], ctx, to)
	resultType := whenTrue.Type
	if !whenTrue.Type.Equal(whenFalse.Type) && whenFalse.Type.IsNumeric() && whenTrue.Type.IsNumeric() {
		resultType = ArithmeticCoerce(whenTrue.Type, whenFalse.Type)
	}
	return ast.Expr{Kind: ast.ExprTernary, Span: t.Span(), Type: resultType, Cond: &cond, Left: &whenTrue, Right: &whenFalse}
}

func (r *Resolver) resolveAssignment(t *parse.Tree, ctx ExprContext) ast.Expr {
	op := t.Children[1].Source.Lexeme()
	lctx := ctx
	lctx.LValue = true
	left := r.ResolveExpr(t.Children[0], lctx, ResolveTo{Kind: ResolveUnknown})
	if !left.LValue {
		r.errorf(left.Span, "left-hand side of assignment is not assignable")
	}
	if ctx.Constant {
		r.errorf(t.Span(), "assignment is not allowed in a constant context")
	}
	right := r.ResolveExpr(t.Children[2], ctx, ResolveTo{Kind: ResolveTypeHint, Type: left.Type})
	conv := Convert(right.Type, left.Type, true, r.NS.Target.AddressWidth)
	if conv.Kind == ConvInvalid && !left.Type.Equal(right.Type) && !left.Type.Equal(types.NewUnresolved()) {
		r.errorf(right.Span, "cannot implicitly convert %s to %s", right.Type, left.Type)
	}
	return ast.Expr{Kind: ast.ExprAssign, Span: t.Span(), Type: left.Type, Operator: op, Left: &left, Right: &right}
}

func (r *Resolver) resolveIndexAccess(t *parse.Tree, ctx ExprContext) ast.Expr {
	base := r.ResolveExpr(t.Children[0], ctx, ResolveTo{Kind: ResolveUnknown})
	var index *ast.Expr
	if len(t.Children) == 4 {
		idx := r.ResolveExpr(t.Children[2], ctx, ResolveTo{Kind: ResolveUnknown})
		index = &idx
	}
	var elemType types.Type
	switch base.Type.Kind {
	case types.Array, types.Slice:
		elemType = *base.Type.Elem
	case types.Mapping:
		elemType = *base.Type.Elem
	case types.DynamicBytes, types.Bytes:
		elemType = types.NewBytes(1)
	default:
		if base.Type.Kind != types.Unresolved {
			r.errorf(t.Span(), "%s is not indexable", base.Type)
		}
		elemType = types.NewUnresolved()
	}
	return ast.Expr{Kind: ast.ExprIndex, Span: t.Span(), Type: elemType, Left: &base, Right: index, LValue: base.LValue}
}

func (r *Resolver) resolveNew(t *parse.Tree, ctx ExprContext) ast.Expr {
	typ := r.ResolveTypeName(t.Children[1], ctx.Contract)
	if typ.Kind == types.Array {
		return ast.Expr{Kind: ast.ExprNew, Span: t.Span(), Type: typ}
	}
	return ast.Expr{Kind: ast.ExprNew, Span: t.Span(), Type: types.NewContract(typ.ID)}
}

func isTypeNode(t *parse.Tree) bool {
	switch t.Value {
	case "elementary-type", "user-defined-type", "array-type", "mapping-type", "function-type", "located-type":
		return true
	default:
		return false
	}
}

func paramsToTypes(ps []ast.Parameter) []types.Param {
	out := make([]types.Param, len(ps))
	for i, p := range ps {
		out[i] = types.Param{Name: p.Name, Type: p.Type}
	}
	return out
}

func functionTypeOf(fn *ast.Function) types.Type {
	external := fn.Visibility == ast.VisibilityExternal || fn.Visibility == ast.VisibilityPublic
	return types.NewFunction(external, paramsToTypes(fn.Params), paramsToTypes(fn.Returns), fn.Mutability)
}

// selectOverload picks the first candidate whose parameter list matches
// argTypes in arity and implicit-convertibility, per spec.md §4.5's overload
// resolution algorithm; falls back to the first candidate (best-effort, so
// the caller still gets a usable node to keep resolving the rest of the
// file) when nothing matches exactly.
func (r *Resolver) selectOverload(candidates []namespace.Symbol, argTypes []types.Type) namespace.Symbol {
	for _, c := range candidates {
		fn, ok := r.NS.Get(namespace.KindFunction, c.ID).(*ast.Function)
		if !ok || fn == nil || len(fn.Params) != len(argTypes) {
			continue
		}
		match := true
		for i, p := range fn.Params {
			if p.Type.Equal(argTypes[i]) {
				continue
			}
			if Convert(argTypes[i], p.Type, true, r.NS.Target.AddressWidth).Kind == ConvInvalid {
				match = false
				break
			}
		}
		if match {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return namespace.Symbol{ID: namespace.InvalidID}
}

// buildCall checks args against ftype's declared parameters and produces the
// resolved call node; retType is the single return type, or Void for
// no-return functions (multi-value returns are represented by their first
// declared return here -- full tuple typing is a CFG-level concern once
// destructuring assigns each slot, see internal/cfg's lowering of
// StmtDestructure).
func (r *Resolver) buildCall(t *parse.Tree, callee ast.Expr, args []ast.Expr, ftype types.Type) ast.Expr {
	retType := types.NewVoid()
	if len(ftype.Returns) > 0 {
		retType = ftype.Returns[0].Type
	}
	if len(args) != len(ftype.Params) {
		r.errorf(t.Span(), "expected %d argument(s), got %d", len(ftype.Params), len(args))
	} else {
		for i, p := range ftype.Params {
			if p.Type.Equal(args[i].Type) || args[i].Type.Kind == types.Unresolved {
				continue
			}
			if Convert(args[i].Type, p.Type, true, r.NS.Target.AddressWidth).Kind == ConvInvalid {
				r.errorf(args[i].Span, "cannot implicitly convert argument %d from %s to %s", i+1, args[i].Type, p.Type)
			}
		}
	}
	return ast.Expr{Kind: ast.ExprCall, Span: t.Span(), Type: retType, Callee: &callee, Args: args}
}

// dispatchCallOnExpr handles call-expressions whose callee resolved through
// the generic identifier/member paths (a local function-pointer variable, a
// struct literal constructor, or an explicit contract(address) cast).
func (r *Resolver) dispatchCallOnExpr(t *parse.Tree, callee ast.Expr, args []ast.Expr) ast.Expr {
	switch callee.Type.Kind {
	case types.FunctionInternal, types.FunctionExternal:
		return r.buildCall(t, callee, args, callee.Type)
	case types.Struct:
		return ast.Expr{Kind: ast.ExprCall, Span: t.Span(), Type: callee.Type, Callee: &callee, Args: args}
	case types.Contract:
		var arg *ast.Expr
		if len(args) > 0 {
			arg = &args[0]
		}
		return ast.Expr{Kind: ast.ExprCast, Span: t.Span(), Type: callee.Type, Right: arg}
	case types.Unresolved:
		return ast.Expr{Kind: ast.ExprCall, Span: t.Span(), Type: types.NewUnresolved(), Callee: &callee, Args: args}
	default:
		r.errorf(t.Span(), "%s is not callable", callee.Type)
		return ast.Expr{Kind: ast.ExprInvalid, Span: t.Span(), Type: types.NewUnresolved()}
	}
}

func (r *Resolver) resolveCall(t *parse.Tree, ctx ExprContext, to ResolveTo) ast.Expr {
	calleeNode := t.Children[0]

	var args []ast.Expr
	var argTypes []types.Type
	if al := childByValue(t, "argument-list"); al != nil {
		for _, c := range al.Children {
			a := r.ResolveExpr(c, ctx, ResolveTo{Kind: ResolveUnknown})
			args = append(args, a)
			argTypes = append(argTypes, a.Type)
		}
	}
	for _, c := range t.Children {
		if c.Value == "named-argument" {
			a := r.ResolveExpr(c.Children[2], ctx, ResolveTo{Kind: ResolveUnknown})
			args = append(args, a)
			argTypes = append(argTypes, a.Type)
		}
	}

	if isTypeNode(calleeNode) {
		typ := r.ResolveTypeName(calleeNode, ctx.Contract)
		var argPtr *ast.Expr
		if len(args) == 1 {
			argPtr = &args[0]
			if Convert(args[0].Type, typ, false, r.NS.Target.AddressWidth).Kind == ConvInvalid && !args[0].Type.Equal(typ) && args[0].Type.Kind != types.Unresolved {
				r.errorf(args[0].Span, "cannot convert %s to %s", args[0].Type, typ)
			}
		} else {
			r.errorf(t.Span(), "type conversion requires exactly one argument")
		}
		return ast.Expr{Kind: ast.ExprCast, Span: t.Span(), Type: typ, Right: argPtr}
	}

	switch calleeNode.Value {
	case "identifier-expression":
		name := calleeNode.Children[0].Source.Lexeme()
		if lv, ok := r.LookupLocal(name); ok {
			callee := ast.Expr{Kind: ast.ExprIdent, Span: calleeNode.Span(), Type: lv.Type, Name: name, VarID: lv.ID}
			return r.dispatchCallOnExpr(t, callee, args)
		}
		if candidates := r.NS.ResolveFunctions(ctx.File, ctx.Contract, name); len(candidates) > 0 {
			chosen := r.selectOverload(candidates, argTypes)
			fn, _ := r.NS.Get(namespace.KindFunction, chosen.ID).(*ast.Function)
			if fn == nil {
				break
			}
			ftype := functionTypeOf(fn)
			callee := ast.Expr{Kind: ast.ExprIdent, Span: calleeNode.Span(), Type: ftype, Name: name, VarID: int(chosen.ID)}
			return r.buildCall(t, callee, args, ftype)
		}
		callee := r.resolveIdentifier(calleeNode, ctx)
		return r.dispatchCallOnExpr(t, callee, args)

	case "member-access":
		baseNode := calleeNode.Children[0]
		base := r.ResolveExpr(baseNode, ctx, ResolveTo{Kind: ResolveUnknown})
		member := calleeNode.Children[2].Source.Lexeme()
		if base.Type.Kind == types.Contract {
			if candidates := r.NS.ResolveFunctions(ctx.File, namespace.ID(base.Type.ID), member); len(candidates) > 0 {
				chosen := r.selectOverload(candidates, argTypes)
				fn, _ := r.NS.Get(namespace.KindFunction, chosen.ID).(*ast.Function)
				if fn != nil {
					ftype := functionTypeOf(fn)
					callee := ast.Expr{Kind: ast.ExprMember, Span: calleeNode.Span(), Type: ftype, Left: &base, Name: member}
					return r.buildCall(t, callee, args, ftype)
				}
			}
		}
		callee := r.resolveMemberAccess(calleeNode, ctx)
		return r.dispatchCallOnExpr(t, callee, args)
	}

	callee := r.ResolveExpr(calleeNode, ctx, ResolveTo{Kind: ResolveUnknown})
	return r.dispatchCallOnExpr(t, callee, args)
}

// builtinMember recognizes the fixed set of always-available members on the
// global namespace identifiers resolveIdentifier hands back as Unresolved
// placeholders (block, msg, tx, abi); spec.md §4.5 lists these ahead of
// using-for extension functions in the member-access dispatch order, but
// user-defined using-for members are not yet implemented here.
func builtinMember(namespaceName, member string) (types.Type, bool) {
	switch namespaceName {
	case "block":
		switch member {
		case "timestamp", "number", "chainid", "difficulty", "prevrandao", "basefee", "gaslimit":
			return types.NewUint(256), true
		case "coinbase":
			return types.NewAddress(true), true
		}
	case "msg":
		switch member {
		case "sender":
			return types.NewAddress(true), true
		case "value", "gas":
			return types.NewUint(256), true
		case "data":
			return types.NewDynamicBytes(), true
		case "sig":
			return types.NewBytes(4), true
		}
	case "tx":
		switch member {
		case "origin":
			return types.NewAddress(true), true
		case "gasprice":
			return types.NewUint(256), true
		}
	case "abi":
		switch member {
		case "encode", "encodePacked", "encodeWithSelector", "encodeWithSignature", "encodeCall":
			return types.NewDynamicBytes(), true
		case "decode":
			return types.NewUnresolved(), true
		}
	}
	return types.Type{}, false
}

func (r *Resolver) resolveMemberAccess(t *parse.Tree, ctx ExprContext) ast.Expr {
	base := r.ResolveExpr(t.Children[0], ctx, ResolveTo{Kind: ResolveUnknown})
	member := t.Children[2].Source.Lexeme()

	if base.Kind == ast.ExprIdent && base.VarID == -1 {
		if typ, ok := builtinMember(base.Name, member); ok {
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: typ, Left: &base, Name: member}
		}
	}

	switch base.Type.Kind {
	case types.Enum:
		if e, ok := r.NS.Get(namespace.KindEnum, namespace.ID(base.Type.ID)).(*ast.Enum); ok && e != nil {
			for i, v := range e.Values {
				if v == member {
					return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: base.Type, Left: &base, Name: member, Const: true, ConstVal: ast.Literal{Int: fmt.Sprint(i)}}
				}
			}
			r.errorf(t.Span(), "enum %q has no value %q", e.Name, member)
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUnresolved(), Left: &base, Name: member}
		}

	case types.Struct:
		if s, ok := r.NS.Get(namespace.KindStruct, namespace.ID(base.Type.ID)).(*ast.Struct); ok && s != nil {
			for _, f := range s.Fields {
				if f.Name == member {
					return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: f.Type, Left: &base, Name: member, LValue: base.LValue}
				}
			}
			r.errorf(t.Span(), "struct %q has no field %q", s.Name, member)
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUnresolved(), Left: &base, Name: member}
		}

	case types.Array, types.Slice, types.DynamicBytes, types.Bytes:
		if member == "length" {
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUint(256), Left: &base, Name: member}
		}
		if member == "push" || member == "pop" {
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUnresolved(), Left: &base, Name: member}
		}

	case types.Address:
		switch member {
		case "balance":
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUint(256), Left: &base, Name: member}
		case "code":
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewDynamicBytes(), Left: &base, Name: member}
		case "codehash":
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewBytes(32), Left: &base, Name: member}
		case "transfer", "send", "call", "delegatecall", "staticcall":
			return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUnresolved(), Left: &base, Name: member}
		}

	case types.Contract:
		if candidates := r.NS.ResolveFunctions(ctx.File, namespace.ID(base.Type.ID), member); len(candidates) > 0 {
			fn, _ := r.NS.Get(namespace.KindFunction, candidates[0].ID).(*ast.Function)
			if fn != nil {
				return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: functionTypeOf(fn), Left: &base, Name: member}
			}
		}
		if sym, ok := r.NS.ResolveVar(ctx.File, namespace.ID(base.Type.ID), member); ok && sym.Kind == namespace.KindVariable {
			if v, ok := r.NS.Get(namespace.KindVariable, sym.ID).(*ast.Variable); ok && v != nil {
				return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: v.Type, Left: &base, Name: member, LValue: !v.Constant && !v.Immutable}
			}
		}

	case types.Unresolved:
		return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUnresolved(), Left: &base, Name: member}
	}

	r.errorf(t.Span(), "%s has no member %q", base.Type, member)
	return ast.Expr{Kind: ast.ExprMember, Span: t.Span(), Type: types.NewUnresolved(), Left: &base, Name: member}
}
