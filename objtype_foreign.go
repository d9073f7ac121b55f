package feather

import "fmt"

// ForeignType is the internal representation for a foreign (host-exposed)
// object: a Go value tagged with its registered type name. Its string
// representation is an opaque handle name assigned when the instance
// was created (see foreign.go); it never contains a reference token.
type ForeignType struct {
	TypeName string
	Value    any
}

func (t *ForeignType) Name() string { return t.TypeName }

func (t *ForeignType) Dup() ObjType {
	// Foreign values carry identity through the Go value itself; duplicating
	// the wrapper does not duplicate the underlying instance.
	return &ForeignType{TypeName: t.TypeName, Value: t.Value}
}

func (t *ForeignType) UpdateString() string {
	return fmt.Sprintf("<%s:%p>", t.TypeName, t)
}
