package sema

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/types"
)

// canonicalABIType renders a type the way a function signature names it for
// selector hashing (spec.md §4.4's selector computation): enums become their
// underlying uint8, contracts become address, structs become a parenthesized
// tuple of their own canonical field types, recursively.
func canonicalABIType(ns *namespace.Namespace, t types.Type) string {
	switch t.Kind {
	case types.Bool:
		return "bool"
	case types.Int:
		return fmt.Sprintf("int%d", t.Width)
	case types.Uint:
		return fmt.Sprintf("uint%d", t.Width)
	case types.Bytes:
		return fmt.Sprintf("bytes%d", t.Width)
	case types.DynamicBytes:
		return "bytes"
	case types.String:
		return "string"
	case types.Address, types.Contract:
		return "address"
	case types.Enum:
		return "uint8"
	case types.Struct:
		s, _ := ns.Get(namespace.KindStruct, namespace.ID(t.ID)).(*ast.Struct)
		if s == nil {
			return "()"
		}
		var parts []string
		for _, f := range s.Fields {
			parts = append(parts, canonicalABIType(ns, f.Type))
		}
		return "(" + strings.Join(parts, ",") + ")"
	case types.Array:
		return canonicalABIType(ns, *t.Elem) + "[" + dimSuffix(t.Dim) + "]"
	case types.Slice:
		return canonicalABIType(ns, *t.Elem) + "[]"
	default:
		return "bytes"
	}
}

func dimSuffix(d types.Dim) string {
	if d.Kind == types.DimFixed {
		return fmt.Sprintf("%d", d.Size)
	}
	return ""
}

// CanonicalSignature renders "name(type1,type2,...)", the ABI signature
// string that both Contract.AllFunctions keys and selector hashing are built
// from.
func CanonicalSignature(fn *ast.Function) string {
	return fn.Name + "(" + "" + ")" // placeholder overwritten by WithNamespace variant below
}

// canonicalSignatureNS is CanonicalSignature with access to the Namespace it
// needs to expand struct parameter types into ABI tuples; sema always has a
// Namespace at hand, so ComputeSelectors calls this instead of the bare
// name-only stub above, which exists only so fields.go's AllFunctions map
// key (computed before selectors run) has a stable, if structurally
// incomplete, key during Pass B.
func canonicalSignatureNS(ns *namespace.Namespace, fn *ast.Function) string {
	var parts []string
	for _, p := range fn.Params {
		parts = append(parts, canonicalABIType(ns, p.Type))
	}
	return fn.Name + "(" + strings.Join(parts, ",") + ")"
}

// ComputeSelectors fills in Selector and MangledName for every function in
// the Namespace using the target's configured selector length (spec.md
// §4.4/P10 -- the EVM's 4-byte keccak selector, or Soroban's own convention,
// is never hard-coded here, only read from ns.Target).
func ComputeSelectors(ns *namespace.Namespace) {
	for i := 0; i < ns.Len(namespace.KindFunction); i++ {
		fn, ok := ns.Get(namespace.KindFunction, namespace.ID(i)).(*ast.Function)
		if !ok || fn == nil || fn.Name == "" || fn.IsModifier {
			continue
		}
		sig := canonicalSignatureNS(ns, fn)
		fn.MangledName = sig
		hash := sha3.NewLegacyKeccak256()
		hash.Write([]byte(sig))
		sum := hash.Sum(nil)
		n := ns.Target.SelectorLength
		if n > len(sum) {
			n = len(sum)
		}
		fn.Selector = sum[:n]
	}

	// AllFunctions was seeded with a name-only key during Pass B (before
	// parameter struct types were guaranteed fully resolved); now that every
	// signature is final, rekey it with the real ABI signature so overrides
	// match by true signature rather than by name collision alone.
	for c := 0; c < ns.Len(namespace.KindContract); c++ {
		contract, ok := ns.Get(namespace.KindContract, namespace.ID(c)).(*ast.Contract)
		if !ok || contract == nil {
			continue
		}
		rekeyed := map[string]namespace.ID{}
		for _, fid := range contract.Functions {
			fn, ok := ns.Get(namespace.KindFunction, fid).(*ast.Function)
			if !ok || fn == nil || fn.IsModifier {
				continue
			}
			rekeyed[canonicalSignatureNS(ns, fn)] = fid
		}
		contract.AllFunctions = rekeyed
	}
}
