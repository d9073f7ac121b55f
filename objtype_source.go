package feather

// SourceType tags a token's value with its provenance (file name and line
// number) so errors raised while evaluating it can be attributed. It never
// changes the string form of the object it decorates.
type SourceType struct {
	Value string
	File  string
	Line  int
}

func (t *SourceType) Name() string         { return "source" }
func (t *SourceType) UpdateString() string { return t.Value }
func (t *SourceType) Dup() ObjType         { return &SourceType{Value: t.Value, File: t.File, Line: t.Line} }

// SourceLocation returns the file and line an object was parsed from, and
// whether it carries source provenance at all.
func SourceLocation(o *Obj) (file string, line int, ok bool) {
	if o == nil {
		return "", 0, false
	}
	if s, isSource := o.intrep.(*SourceType); isSource {
		return s.File, s.Line, true
	}
	return "", 0, false
}

// withSource tags obj with file/line provenance, preserving its current
// string value.
func withSource(obj *Obj, file string, line int) *Obj {
	if obj == nil {
		return nil
	}
	obj.SetInternalRep(&SourceType{Value: obj.String(), File: file, Line: line})
	return obj
}
