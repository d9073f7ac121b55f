package feather

// Value is a read-only, type-safe view over an *Obj, for embedders that
// prefer an interface boundary to the concrete object type. Every accessor
// shimmers the same way the corresponding Obj method does: string.
type Value interface {
	// String returns the string representation of the value.
	String() string

	// Int returns the integer representation of the value.
	Int() (int64, error)

	// Float returns the floating-point representation of the value.
	Float() (float64, error)

	// Bool returns the boolean representation of the value.
	Bool() (bool, error)

	// List returns the list representation of the value.
	List() ([]Value, error)

	// Dict returns the dict representation of the value, keyed by string.
	Dict() (map[string]Value, error)

	// Type names the value's current internal representation, or
	// "string" if it carries none.
	Type() string

	// IsNil reports whether this is the empty string.
	IsNil() bool
}

// objValue adapts an *Obj to the Value interface.
type objValue struct {
	obj *Obj
}

// ValueOf wraps obj as a Value, for callers that want the narrower
// interface instead of the concrete *Obj type.
func ValueOf(obj *Obj) Value { return objValue{obj: obj} }

func (v objValue) String() string { return v.obj.String() }

func (v objValue) Int() (int64, error) { return v.obj.Int() }

func (v objValue) Float() (float64, error) { return v.obj.Double() }

func (v objValue) Bool() (bool, error) { return AsBool(v.obj) }

func (v objValue) List() ([]Value, error) {
	items, err := v.obj.List()
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = objValue{obj: item}
	}
	return out, nil
}

func (v objValue) Dict() (map[string]Value, error) {
	d, err := v.obj.Dict()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Value, len(d.Items))
	for k, item := range d.Items {
		out[k] = objValue{obj: item}
	}
	return out, nil
}

func (v objValue) Type() string {
	if v.obj.intrep == nil {
		return "string"
	}
	return v.obj.intrep.Name()
}

func (v objValue) IsNil() bool { return v.obj.String() == "" }

// Value reads a variable and returns it through the narrower Value
// interface rather than the concrete *Obj type.
func (i *Interp) Value(name string) (Value, error) {
	o, err := i.current.getVariable(name)
	if err != nil {
		return nil, err
	}
	return objValue{obj: o}, nil
}
