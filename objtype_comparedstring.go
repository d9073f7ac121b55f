package feather

// ComparedStringType caches an affirmative equality result between an
// object's string form and one particular literal, so repeated comparisons
// against that same literal (e.g. cmdIf checking a word against "then",
// "else" or "elseif") skip the byte scan. It never
// caches a negative result: a mismatch just falls back to plain comparison.
type ComparedStringType struct {
	value   string
	literal string
}

func (t *ComparedStringType) Name() string         { return "compared-string" }
func (t *ComparedStringType) UpdateString() string { return t.value }
func (t *ComparedStringType) Dup() ObjType         { return &ComparedStringType{value: t.value, literal: t.literal} }

// EqualsLiteral reports whether o's string form equals literal, consulting
// (and populating) the compared-string cache on o.
func EqualsLiteral(o *Obj, literal string) bool {
	if o == nil {
		return literal == ""
	}
	if cs, ok := o.intrep.(*ComparedStringType); ok && cs.literal == literal {
		return true
	}
	s := o.String()
	eq := s == literal
	if eq {
		o.SetInternalRep(&ComparedStringType{value: s, literal: literal})
	}
	return eq
}
