package sema

import (
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/types"
)

// ResolveTypeName turns a parse-tree type production ("elementary-type",
// "user-defined-type", "array-type", "mapping-type", "function-type",
// "located-type") into a concrete types.Type, consulting the symbol table
// for identifiers that are not one of the built-in numeric/bytes names
// (spec.md §4.4 Pass A/B; the elementary-numeric-name special case is
// documented in internal/sema/elementary.go).
func (r *Resolver) ResolveTypeName(t *parse.Tree, contract namespace.ID) types.Type {
	switch t.Value {
	case "elementary-type":
		kw := t.Children[0]
		switch kw.Value {
		case "kw-address":
			return types.NewAddress(false)
		case "kw-bool":
			return types.NewBool()
		case "kw-string":
			return types.NewString()
		case "kw-bytes":
			return types.NewDynamicBytes()
		case "kw-var":
			return types.NewUnresolved()
		}
		r.errorf(t.Span(), "unknown elementary type")
		return types.NewUnresolved()

	case "user-defined-type":
		name := t.Children[0].Source.Lexeme()
		if elem, ok := elementaryByName(name); ok {
			return elem
		}
		sym, ok := r.NS.ResolveType(r.File, contract, name)
		if !ok {
			r.errorf(t.Span(), "undeclared identifier %q used as a type", name)
			return types.NewUnresolved()
		}
		switch sym.Kind {
		case namespace.KindStruct:
			return types.NewStruct(int(sym.ID))
		case namespace.KindEnum:
			return types.NewEnum(int(sym.ID))
		case namespace.KindContract:
			return types.NewContract(int(sym.ID))
		case namespace.KindUserType:
			return types.NewUserType(int(sym.ID))
		default:
			r.NS.WrongSymbol(t.Span(), sym, namespace.KindStruct)
			return types.NewUnresolved()
		}

	case "array-type":
		elem := r.ResolveTypeName(t.Children[0], contract)
		// children: [base, lbracket, size?, rbracket]
		if len(t.Children) == 4 {
			// a fixed-size dimension; constant folding of the size
			// expression happens in the expression resolver (which this
			// package also implements), but the array type itself only
			// needs the integer value.
			sizeExpr := r.ResolveExpr(t.Children[2], ExprContext{File: r.File, Contract: contract, Constant: true}, ResolveTo{Kind: ResolveUnknown})
			if sizeExpr.Const && sizeExpr.ConstVal.Int != "" {
				n := parseDecimalInt64(sizeExpr.ConstVal.Int)
				return types.NewArray(elem, types.Fixed(n))
			}
			return types.NewArray(elem, types.AnyFixed())
		}
		return types.NewArray(elem, types.Dynamic())

	case "mapping-type":
		// children: [kw-mapping, lparen, keyType, arrow, valueType, rparen]
		key := r.ResolveTypeName(t.Children[2], contract)
		val := r.ResolveTypeName(t.Children[4], contract)
		return types.NewMapping(key, val)

	case "function-type":
		params, _ := r.resolveParamList(childByValue(t, "parameter-list"), contract)
		var returns []types.Param
		mut := types.Nonpayable
		external := true
		for _, c := range t.Children {
			if c.Value == "function-attribute" {
				switch c.Children[0].Value {
				case "kw-pure":
					mut = types.Pure
				case "kw-view":
					mut = types.View
				case "kw-payable":
					mut = types.Payable
				case "kw-internal":
					external = false
				}
			}
		}
		if idx := indexOfValue(t.Children, "parameter-list"); idx >= 0 && idx+1 < len(t.Children) {
			// second parameter-list (if present) is the returns list
			for i := idx + 1; i < len(t.Children); i++ {
				if t.Children[i].Value == "parameter-list" {
					returns, _ = r.resolveParamList(t.Children[i], contract)
				}
			}
		}
		return types.NewFunction(external, params, returns, mut)

	case "located-type":
		// children: [base, storage-location-kw]; the location qualifier
		// only matters for the CFG's l-value lowering, not the type
		// itself, so resolve the base and let the caller inspect the
		// qualifier keyword separately if it needs it.
		return r.ResolveTypeName(t.Children[0], contract)

	default:
		r.errorf(t.Span(), "internal: not a type-name node: %s", t.Value)
		return types.NewUnresolved()
	}
}

func indexOfValue(children []*parse.Tree, value string) int {
	for i, c := range children {
		if c.Value == value {
			return i
		}
	}
	return -1
}

// resolveParamList resolves a "parameter-list" (or "event-parameter-list")
// node into []types.Param plus []ast-level Parameter spans via the
// Resolver's own field-resolution helper in fields.go.
func (r *Resolver) resolveParamList(t *parse.Tree, contract namespace.ID) ([]types.Param, []string) {
	if t == nil {
		return nil, nil
	}
	var params []types.Param
	var names []string
	for _, p := range t.Children {
		if p.Value != "parameter" {
			continue
		}
		typ := r.ResolveTypeName(p.Children[0], contract)
		name := ""
		if last := p.Children[len(p.Children)-1]; last.Terminal && last.Value == "identifier" {
			name = last.Source.Lexeme()
		}
		params = append(params, types.Param{Name: name, Type: typ})
		names = append(names, name)
	}
	return params, names
}

func parseDecimalInt64(s string) int64 {
	var n int64
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
