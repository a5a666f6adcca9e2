package cfg

// dirtyTracker records, for one conditionally-executed region, every
// variable reassigned inside it (spec.md §4.7). limit is the Vartable
// length when the region was entered: only Vars whose name already existed
// at that point need a phi at the join block (a variable declared fresh
// inside the region cannot escape it).
type dirtyTracker struct {
	limit int
	dirty map[string]bool
}

func (b *Builder) pushDirty() {
	b.dirty = append(b.dirty, dirtyTracker{limit: b.vars.Len(), dirty: map[string]bool{}})
}

// popDirty pops the tracker and returns the set of names reassigned inside
// the region, which becomes the join block's phi set once resolved to Var
// IDs by the caller.
func (b *Builder) popDirty() map[string]bool {
	dt := b.dirty[len(b.dirty)-1]
	b.dirty = b.dirty[:len(b.dirty)-1]
	return dt.dirty
}

// recordAssign marks name dirty in every open tracker whose region was
// entered after name was already declared (priorID < tracker.limit) --
// "this variable existed before the region and was reassigned inside it, so
// it needs a phi at the region's join block." A variable declared inside the
// region itself (priorID >= tracker.limit) cannot outlive it, so it is never
// marked.
func (b *Builder) recordAssign(name string, priorID int) {
	if name == "" {
		return
	}
	for i := range b.dirty {
		if priorID < b.dirty[i].limit {
			b.dirty[i].dirty[name] = true
		}
	}
}
