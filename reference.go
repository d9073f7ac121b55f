package feather

import (
	"fmt"
	"time"
)

// referenceCell is one live reference slot: a value plus an optional
// finalizer command name invoked when the cell is collected (spec §4.I).
type referenceCell struct {
	value     *Obj
	finalizer string
	id        uint64
}

// referenceTable implements the `ref`/`getref`/`setref`/`collect` command
// family: a fixed 32-byte token names a cell in this table, and a
// conservative mark-by-string-scan GC reclaims cells no live object still
// names (spec §4.I).
//
// Feather values themselves are ordinary Go-GC'd memory; this table exists
// to give scripts their own opaque, collectible handles independent of
// Go's object graph, matching the reference/GC contract the language
// exposes to user code.
type referenceTable struct {
	interp    *Interp
	cells     map[uint64]*referenceCell
	nextID    uint64
	allocs    int
	lastGC    time.Time
	gcEvery   int           // trigger a collection every N allocations
	gcAfter   time.Duration // or after this much wall time since the last GC
}

func newReferenceTable(ip *Interp) *referenceTable {
	return &referenceTable{
		interp:  ip,
		cells:   make(map[uint64]*referenceCell),
		lastGC:  time.Now(),
		gcEvery: 1000,
		gcAfter: 5 * time.Minute,
	}
}

// create allocates a new reference cell holding value, with an optional
// finalizer command name, and returns its token object.
func (rt *referenceTable) create(value *Obj, finalizer string) *Obj {
	rt.nextID++
	id := rt.nextID
	rt.cells[id] = &referenceCell{value: value, finalizer: finalizer, id: id}
	rt.allocs++
	if rt.shouldCollect() {
		rt.collect()
	}
	rep := &ReferenceType{id: id}
	o := &Obj{interp: rt.interp}
	o.SetInternalRep(rep)
	return o
}

func (rt *referenceTable) shouldCollect() bool {
	return rt.allocs >= rt.gcEvery || time.Since(rt.lastGC) >= rt.gcAfter
}

// get dereferences a reference token, returning its current value.
func (rt *referenceTable) get(tokenObj *Obj) (*Obj, error) {
	id, err := rt.tokenID(tokenObj)
	if err != nil {
		return nil, err
	}
	cell, ok := rt.cells[id]
	if !ok {
		return nil, fmt.Errorf("invalid reference %q", tokenObj.String())
	}
	return cell.value, nil
}

// set updates the value held by a reference token in place.
func (rt *referenceTable) set(tokenObj *Obj, value *Obj) error {
	id, err := rt.tokenID(tokenObj)
	if err != nil {
		return err
	}
	cell, ok := rt.cells[id]
	if !ok {
		return fmt.Errorf("invalid reference %q", tokenObj.String())
	}
	cell.value = value
	return nil
}

func (rt *referenceTable) tokenID(tokenObj *Obj) (uint64, error) {
	if rp, ok := tokenObj.intrep.(*ReferenceType); ok {
		return rp.id, nil
	}
	id, ok := parseReferenceToken(tokenObj.String())
	if !ok {
		return 0, fmt.Errorf("invalid reference %q", tokenObj.String())
	}
	tokenObj.SetInternalRep(&ReferenceType{id: id})
	return id, nil
}

// collect runs a mark-and-sweep pass: every reachable reference id is found
// by scanning the string form of every root and every already-marked cell's
// value for embedded reference tokens (a conservative scan, since Feather
// values don't carry a precise pointer graph the way Go's own GC does).
// Cells not marked are swept, running their finalizer command first.
func (rt *referenceTable) collect() int {
	marked := make(map[uint64]bool)
	var roots []*Obj
	roots = append(roots, walkFrameValues(rt.interp.global)...)
	for f := rt.interp.current; f != nil; f = f.parent {
		roots = append(roots, walkFrameValues(f)...)
	}

	var work []uint64
	for _, root := range roots {
		for _, id := range findReferenceIDs(root) {
			if !marked[id] {
				marked[id] = true
				work = append(work, id)
			}
		}
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		cell, ok := rt.cells[id]
		if !ok {
			continue
		}
		for _, nested := range findReferenceIDs(cell.value) {
			if !marked[nested] {
				marked[nested] = true
				work = append(work, nested)
			}
		}
	}

	collected := 0
	for id, cell := range rt.cells {
		if marked[id] {
			continue
		}
		if cell.finalizer != "" {
			_, _ = rt.interp.Call(cell.finalizer, formatReferenceToken(id), cell.value.String())
		}
		delete(rt.cells, id)
		collected++
	}
	rt.allocs = 0
	rt.lastGC = time.Now()
	return collected
}

func walkFrameValues(f *callFrame) []*Obj {
	var out []*Obj
	for _, v := range f.vars {
		if v != nil && v.value != nil {
			out = append(out, v.value)
		}
	}
	return out
}

// findReferenceIDs extracts every reference token embedded in obj's value:
// directly, if obj's internal rep is itself a reference; via a type's own
// mayContainReferences contribution; or by scanning its string form as a
// last resort (e.g. a reference token embedded in a plain string or list).
func findReferenceIDs(obj *Obj) []uint64 {
	if obj == nil {
		return nil
	}
	if mc, ok := obj.intrep.(mayContainReferences); ok {
		return mc.referenceIDs()
	}
	if items, ok := AsList(obj); ok == nil {
		var ids []uint64
		for _, it := range items {
			ids = append(ids, findReferenceIDs(it)...)
		}
		if len(ids) > 0 {
			return ids
		}
	}
	return scanReferenceTokens(obj.String())
}

// scanReferenceTokens finds every fixed-width reference token substring in
// s, tolerating tokens embedded inside larger strings or lists.
func scanReferenceTokens(s string) []uint64 {
	var ids []uint64
	for i := 0; i+referenceTokenLen <= len(s); i++ {
		if s[i:i+len(referenceTokenPrefix)] != referenceTokenPrefix {
			continue
		}
		if id, ok := parseReferenceToken(s[i : i+referenceTokenLen]); ok {
			ids = append(ids, id)
			i += referenceTokenLen - 1
		}
	}
	return ids
}

// count returns the number of live reference cells, for `debug refcount`.
func (rt *referenceTable) count() int { return len(rt.cells) }
