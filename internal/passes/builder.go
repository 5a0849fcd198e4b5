package passes

// Builder assembles the standard optimization pipeline. Level 0 installs only
// the always-on passes; level 2 adds the scalar optimizations. The vectorizer
// and merge toggles exist for target adjustment hooks.
type Builder struct {
	OptLevel           int
	SizeLevel          int
	Inliner            bool
	SLPVectorize       bool
	LoopVectorize      bool
	DisableUnrollLoops bool
	MergeFunctions     bool
	RerollLoops        bool
}

// PopulateFunc installs the function-scoped sequence.
func (b *Builder) PopulateFunc(fm *FuncManager) {
	if b.OptLevel == 0 {
		return
	}
	fm.Add(&constFoldPass{})
	fm.Add(&simplifyCFGPass{})
}

// PopulateModule installs the module-scoped sequence.
func (b *Builder) PopulateModule(pm *Manager) {
	if b.OptLevel == 0 {
		return
	}
	if b.Inliner {
		pm.Add(&inlineAlwaysPass{})
	}
	pm.Add(&pruneDeadDeclsPass{})
}
