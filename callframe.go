package feather

import "fmt"

// variable is a slot in a callframe's variable map: it either owns a value
// directly, or links to a (name, frame) pair elsewhere (upvar/global).
type variable struct {
	value      *Obj
	linkFrame  *callFrame
	linkName   string
	isLink     bool
}

// callFrame is a lexical scope: a variable map, a parent link, the
// arguments that invoked it (for `info level`), and an epoch used to
// invalidate cached variable lookups (VariableType) when the frame's
// variable set changes shape, e.g. after `unset`.
type callFrame struct {
	vars   map[string]*variable
	parent *callFrame
	level  int    // 0 = global frame
	args   []*Obj // the command line that created this frame
	procName string
	epoch  uint64
}

func newCallFrame(parent *callFrame, level int, args []*Obj, procName string) *callFrame {
	return &callFrame{
		vars:     make(map[string]*variable),
		parent:   parent,
		level:    level,
		args:     args,
		procName: procName,
	}
}

// lookupLocal returns the variable slot named name in this frame only, not
// following any link.
func (f *callFrame) lookupLocal(name string) (*variable, bool) {
	v, ok := f.vars[name]
	return v, ok
}

// resolve follows link chains starting at name in frame f until it reaches
// an owning slot, returning that slot's frame and slot. It creates the slot
// (unlinked, empty) at f if absent so that writes always have somewhere to
// land; callers that must not auto-vivify use lookupLocal directly.
func (f *callFrame) resolve(name string) (*callFrame, *variable) {
	frame := f
	slot, ok := frame.vars[name]
	if !ok {
		slot = &variable{}
		frame.vars[name] = slot
		return frame, slot
	}
	visited := map[*callFrame]map[string]bool{}
	for slot.isLink {
		if visited[frame] == nil {
			visited[frame] = map[string]bool{}
		}
		if visited[frame][name] {
			// Shouldn't happen: cycles are rejected at link-creation time.
			break
		}
		visited[frame][name] = true
		nextFrame, nextName := slot.linkFrame, slot.linkName
		frame, name = nextFrame, nextName
		next, ok := frame.vars[name]
		if !ok {
			next = &variable{}
			frame.vars[name] = next
		}
		slot = next
	}
	return frame, slot
}

// wouldCycle reports whether linking name in frame f to (target, targetName)
// would create a cycle: i.e. following the link chain from the target
// eventually reaches (f, name) itself.
func wouldCycle(f *callFrame, name string, target *callFrame, targetName string) bool {
	frame, n := target, targetName
	for i := 0; i < 10000; i++ {
		if frame == f && n == name {
			return true
		}
		slot, ok := frame.vars[n]
		if !ok || !slot.isLink {
			return false
		}
		frame, n = slot.linkFrame, slot.linkName
	}
	return true // pathological depth, treat as a cycle
}

// setVariable creates or updates name in frame f, following any link chain
// to the owning slot. Dict-sugar names (`x(k)`) are handled by the caller
// (see dictSugarSet in eval.go); this only ever stores a plain scalar.
func (f *callFrame) setVariable(name string, value *Obj) {
	_, slot := f.resolve(name)
	slot.value = value
	slot.isLink = false
}

// getVariable reads name from frame f, following links. Returns an error
// matching the spec's "no such variable" wording if unset.
func (f *callFrame) getVariable(name string) (*Obj, error) {
	local, ok := f.lookupLocal(name)
	if !ok {
		return nil, fmt.Errorf("can't read %q: no such variable", name)
	}
	slot := local
	if local.isLink {
		_, slot = f.resolve(name)
	}
	if slot.value == nil {
		return nil, fmt.Errorf("can't read %q: no such variable", name)
	}
	return slot.value, nil
}

// unsetVariable removes name from f (following one hop of a link, matching
// spec §4.F: "following a link removes at the target"). Bumps f's epoch so
// stale VariableType caches naming this frame re-resolve.
func (f *callFrame) unsetVariable(name string) error {
	slot, ok := f.vars[name]
	if !ok {
		return fmt.Errorf("can't unset %q: no such variable", name)
	}
	if slot.isLink {
		delete(slot.linkFrame.vars, slot.linkName)
		slot.linkFrame.epoch++
	}
	delete(f.vars, name)
	f.epoch++
	return nil
}

// link makes name in frame f a link to (target, targetName). Rejects a
// cycle back to (f, name) itself.
func (f *callFrame) link(name string, target *callFrame, targetName string) error {
	if wouldCycle(f, name, target, targetName) {
		return fmt.Errorf("can't upvar from variable to itself")
	}
	f.vars[name] = &variable{isLink: true, linkFrame: target, linkName: targetName}
	f.epoch++
	return nil
}

// VariableType caches the resolution of a name in a specific frame,
// together with the frame's epoch at resolution time. The evaluator
// consults this before doing a fresh map lookup + link-chain walk.
type VariableType struct {
	frame *callFrame
	epoch uint64
	name  string
}

func (t *VariableType) Name() string         { return "variable" }
func (t *VariableType) UpdateString() string { return t.name }
func (t *VariableType) Dup() ObjType         { return &VariableType{frame: t.frame, epoch: t.epoch, name: t.name} }

// resolveCachedVariable returns the frame+slot for a name obj in frame f,
// shimmering the obj into a VariableType cache and reusing it on a cache
// hit (same frame, same epoch).
func resolveCachedVariable(f *callFrame, nameObj *Obj) (name string, frame *callFrame, slot *variable) {
	name = nameObj.String()
	if vt, ok := nameObj.intrep.(*VariableType); ok && vt.frame == f && vt.epoch == f.epoch {
		frame, slot = f.resolve(name)
		return
	}
	frame, slot = f.resolve(name)
	nameObj.SetInternalRep(&VariableType{frame: f, epoch: f.epoch, name: name})
	return
}
