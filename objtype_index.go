package feather

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexType is the internal representation of a resolved list index: a
// non-negative offset from the start, or a negative offset meaning
// "n slots from the end" (so -1 is the last element, `end`, and -2 is
// `end-1`).
type IndexType int

func (t IndexType) Name() string         { return "index" }
func (t IndexType) Dup() ObjType         { return t }
func (t IndexType) UpdateString() string { return strconv.Itoa(int(t)) }

func (t IndexType) IntoInt() (int64, bool) { return int64(t), true }

// Resolve turns the index into a concrete 0-based position for a sequence
// of the given length. A negative index counts back from length (end == -1
// means length-1). The bool reports whether the position is in [0, length).
func (t IndexType) Resolve(length int) (int, bool) {
	pos := int(t)
	if pos < 0 {
		pos = length + pos
	}
	return pos, pos >= 0 && pos < length
}

// ParseIndex parses a TCL index expression: a plain integer, "end", or
// "end-N"/"end+N".
func ParseIndex(s string) (IndexType, error) {
	if s == "end" {
		return -1, nil
	}
	if rest, ok := strings.CutPrefix(s, "end-"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("bad index %q", s)
		}
		return IndexType(-1 - n), nil
	}
	if rest, ok := strings.CutPrefix(s, "end+"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("bad index %q", s)
		}
		return IndexType(-1 + n), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	return IndexType(n), nil
}
