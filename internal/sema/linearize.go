package sema

import (
	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/namespace"
)

// Linearize computes every contract's C3-like base merge order and folds
// inherited function signatures into Contract.AllFunctions, most-derived
// override winning (spec.md §4.4). Call after ComputeSelectors has given
// every contract its own (non-inherited) AllFunctions map.
func Linearize(ns *namespace.Namespace) {
	memo := map[namespace.ID][]namespace.ID{}
	var chain func(id namespace.ID) []namespace.ID
	chain = func(id namespace.ID) []namespace.ID {
		if c, ok := memo[id]; ok {
			return c
		}
		contract, ok := ns.Get(namespace.KindContract, id).(*ast.Contract)
		if !ok || contract == nil {
			return nil
		}
		var merged []namespace.ID
		seen := map[namespace.ID]bool{}
		for i := len(contract.Bases) - 1; i >= 0; i-- {
			for _, b := range chain(contract.Bases[i]) {
				if !seen[b] {
					seen[b] = true
					merged = append(merged, b)
				}
			}
		}
		result := append([]namespace.ID{id}, merged...)
		memo[id] = result
		contract.Linearized = result
		return result
	}

	for i := 0; i < ns.Len(namespace.KindContract); i++ {
		chain(namespace.ID(i))
	}

	for i := 0; i < ns.Len(namespace.KindContract); i++ {
		contract, ok := ns.Get(namespace.KindContract, namespace.ID(i)).(*ast.Contract)
		if !ok || contract == nil {
			continue
		}
		final := map[string]namespace.ID{}
		for j := len(contract.Linearized) - 1; j >= 0; j-- {
			base, ok := ns.Get(namespace.KindContract, contract.Linearized[j]).(*ast.Contract)
			if !ok || base == nil {
				continue
			}
			for sig, fid := range base.AllFunctions {
				final[sig] = fid
			}
		}
		contract.AllFunctions = final
	}
}
