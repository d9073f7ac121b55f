package feather

import "fmt"

// Obj is a Feather value: a byte-string representation paired with an
// optional internal representation that can be lazily computed from it
// ("shimmering"). A value shared by more than one owner must be copied
// before it is mutated in place (see Obj.Copy / Obj.IsShared).
type Obj struct {
	bytes  string  // string representation ("" = empty string if intrep == nil)
	intrep ObjType // internal representation (nil = pure string)
	interp *Interp // owning interpreter (for shimmering that requires parsing)

	refs int // owner count read by IsShared; nothing in this package increments it
}

// NewString creates an interpreter-less pure-string object. Used by internal
// machinery (the parser, the expression VM) that doesn't need to attribute
// the object to a particular interpreter for later shimmering.
func NewString(s string) *Obj {
	return &Obj{bytes: s}
}

// NewInt creates an object whose internal representation is already an int,
// so its string form is computed lazily from IntType.UpdateString.
func NewInt(v int64) *Obj {
	o := &Obj{}
	o.SetInternalRep(IntType(v))
	o.bytes = ""
	return o
}

// NewObj creates an object directly from an internal representation.
func NewObj(rep ObjType) *Obj {
	o := &Obj{}
	o.intrep = rep
	return o
}

// ObjType defines the core behavior for an internal representation.
type ObjType interface {
	// Name returns the type name (e.g., "int", "list").
	Name() string

	// UpdateString regenerates the string representation from this internal rep.
	UpdateString() string

	// Dup creates a copy of this internal representation.
	Dup() ObjType
}

// mayContainReferences is implemented by internal representations whose
// string form can embed reference tokens (see reference.go). ReferenceType
// itself implements it to contribute its id directly instead of being
// re-parsed out of its own string form.
type mayContainReferences interface {
	referenceIDs() []uint64
}

// IntoInt can convert directly to int64 without parsing a string.
type IntoInt interface {
	IntoInt() (int64, bool)
}

// IntoDouble can convert directly to float64 without parsing a string.
type IntoDouble interface {
	IntoDouble() (float64, bool)
}

// IntoList can convert directly to a list without parsing a string.
type IntoList interface {
	IntoList() ([]*Obj, bool)
}

// IntoDict can convert directly to a dictionary without parsing a string.
type IntoDict interface {
	IntoDict() (map[string]*Obj, []string, bool)
}

// IntoBool can convert directly to a boolean without parsing a string.
type IntoBool interface {
	IntoBool() (bool, bool)
}

// String returns the string representation of the object, regenerating it
// from the internal representation on first access.
func (o *Obj) String() string {
	if o == nil {
		return ""
	}
	if o.bytes == "" && o.intrep != nil {
		o.bytes = o.intrep.UpdateString()
	}
	return o.bytes
}

// Type returns the type name of the object. Pure string objects report "string".
func (o *Obj) Type() string {
	if o == nil || o.intrep == nil {
		return "string"
	}
	return o.intrep.Name()
}

// InternalRep returns the internal representation of the object, or nil for
// pure string objects.
//
// Use type assertion to access custom ObjType implementations:
//
//	if myType, ok := obj.InternalRep().(*MyType); ok {
//	    // use myType
//	}
func (o *Obj) InternalRep() ObjType {
	if o == nil {
		return nil
	}
	return o.intrep
}

// SetInternalRep shimmers the object to a new internal representation. The
// string form is materialized first so it survives the transition; the
// previous internal rep is discarded (this is what "shimmering" means).
func (o *Obj) SetInternalRep(rep ObjType) {
	if o == nil {
		return
	}
	_ = o.String()
	o.intrep = rep
}

// Invalidate clears the cached string representation, forcing it to be
// regenerated from the internal representation on next access. Call this
// after mutating an internal representation in place.
func (o *Obj) Invalidate() {
	if o != nil {
		o.bytes = ""
	}
}

// IsShared reports whether this object has more than one owner and must be
// copied before an in-place mutation.
func (o *Obj) IsShared() bool {
	return o != nil && o.refs > 1
}

// Copy creates a duplicate of the object. If it has an internal
// representation, it is duplicated via Dup(); callers use this for
// copy-on-write before mutating a shared value.
func (o *Obj) Copy() *Obj {
	if o == nil {
		return nil
	}
	if o.intrep == nil {
		return &Obj{bytes: o.bytes, interp: o.interp}
	}
	return &Obj{bytes: o.bytes, intrep: o.intrep.Dup(), interp: o.interp}
}

// setBytes overrides the string representation directly, used when an
// object's canonical string must be something other than what its intrep
// would regenerate (e.g. a foreign handle name).
func (o *Obj) setBytes(s string) {
	if o != nil {
		o.bytes = s
	}
}

// Int returns the integer value of this object, shimmering if needed.
func (o *Obj) Int() (int64, error) { return AsInt(o) }

// Double returns the float64 value of this object, shimmering if needed.
func (o *Obj) Double() (float64, error) { return AsDouble(o) }

// Bool returns the boolean value of this object using TCL truthiness rules.
func (o *Obj) Bool() (bool, error) { return AsBool(o) }

// List returns the list elements of this object, shimmering (parsing) if needed.
func (o *Obj) List() ([]*Obj, error) {
	if list, err := AsList(o); err == nil {
		return list, nil
	}
	if o == nil || o.interp == nil {
		return nil, fmt.Errorf("cannot parse list without interpreter")
	}
	list, err := o.interp.parseListString(o.String())
	if err != nil {
		return nil, err
	}
	o.SetInternalRep(ListType(list))
	return list, nil
}

// Dict returns the dict representation of this object, shimmering if needed.
func (o *Obj) Dict() (*DictType, error) {
	if d, err := AsDict(o); err == nil {
		return d, nil
	}
	if o == nil || o.interp == nil {
		return nil, fmt.Errorf("cannot parse dict without interpreter")
	}
	d, err := o.interp.parseDictString(o.String())
	if err != nil {
		return nil, err
	}
	o.SetInternalRep(d)
	return d, nil
}

// Interp returns the interpreter that owns this object, or nil.
func (o *Obj) Interp() *Interp {
	if o == nil {
		return nil
	}
	return o.interp
}
