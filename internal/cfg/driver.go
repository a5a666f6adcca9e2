package cfg

import (
	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/namespace"
)

// BuildProgram builds every function/modifier's ControlFlowGraph and stores
// it on Function.IR, skipping declarations with no body (interfaces,
// abstract functions) and any function whose resolution already recorded an
// error (I3: a Namespace with errors never reaches codegen, so there is no
// point lowering it).
func BuildProgram(ns *namespace.Namespace) {
	if ns.HasErrors() {
		return
	}
	for i := 0; i < ns.Len(namespace.KindFunction); i++ {
		fn, ok := ns.Get(namespace.KindFunction, namespace.ID(i)).(*ast.Function)
		if !ok || fn == nil || fn.Body == nil {
			continue
		}
		fn.IR = BuildFunction(ns, fn)
	}
}
