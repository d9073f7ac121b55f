package feather

import "fmt"

// referenceTokenPrefix and referenceTokenLen define the bit-exact wire
// format of a reference token: "~reference:" + 20 zero-padded decimal
// digits + ":", 32 bytes total. Any string containing this pattern
// contributes to the GC mark set (see reference.go).
const (
	referenceTokenPrefix = "~reference:"
	referenceTokenLen    = 32
	referenceDigits      = 20
)

// ReferenceType is the internal representation of a value returned by the
// `ref` command: a GC-tracked handle whose canonical string form is a
// fixed-width token. The referenced value and optional finalizer live in
// the interpreter's reference table, keyed by id.
type ReferenceType struct {
	id uint64
}

func (t *ReferenceType) Name() string { return "reference" }

func (t *ReferenceType) Dup() ObjType {
	// References are handles, not owned data: duplicating the wrapper
	// keeps pointing at the same underlying record.
	return &ReferenceType{id: t.id}
}

func (t *ReferenceType) UpdateString() string {
	return formatReferenceToken(t.id)
}

func (t *ReferenceType) referenceIDs() []uint64 {
	return []uint64{t.id}
}

func formatReferenceToken(id uint64) string {
	return fmt.Sprintf("%s%020d:", referenceTokenPrefix, id)
}

// parseReferenceToken decodes a canonical reference token, returning its id
// and true on success.
func parseReferenceToken(s string) (uint64, bool) {
	if len(s) != referenceTokenLen {
		return 0, false
	}
	if s[:len(referenceTokenPrefix)] != referenceTokenPrefix {
		return 0, false
	}
	digits := s[len(referenceTokenPrefix) : len(referenceTokenPrefix)+referenceDigits]
	if s[len(s)-1] != ':' {
		return 0, false
	}
	var id uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		id = id*10 + uint64(c-'0')
	}
	return id, true
}
