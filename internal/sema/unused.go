package sema

// reportUnusedLocals warns for every declared local (from a plain or
// destructuring declaration, never a parameter) that resolveIdentifier
// never marked used, matching the single-pass tracking spec.md §4.6
// describes: a variable is "used" the moment any read reaches it, so a
// write-only local (assigned but never read) still triggers the warning.
func (r *Resolver) reportUnusedLocals() {
	for id, lv := range r.declaredVars {
		if !r.usedVars[id] {
			r.warnf(lv.Span, "local variable %q is declared but never used", lv.Name)
		}
	}
}
