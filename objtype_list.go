package feather

import "strings"

// ListType is the internal representation for list values: an ordered
// sequence of owned element objects.
type ListType []*Obj

func (t ListType) Name() string { return "list" }

func (t ListType) Dup() ObjType {
	dup := make(ListType, len(t))
	copy(dup, t)
	return dup
}

func (t ListType) UpdateString() string {
	parts := make([]string, len(t))
	for i, item := range t {
		parts[i] = quoteListElement(item.String())
	}
	return strings.Join(parts, " ")
}

func (t ListType) IntoList() ([]*Obj, bool) { return []*Obj(t), true }

func (t ListType) IntoBool() (bool, bool) { return len(t) != 0, true }

// quoteListElement braces s if it is empty or contains characters that
// would otherwise be mis-parsed by the list/script tokenizer.
func quoteListElement(s string) string {
	if s == "" {
		return "{}"
	}
	if !strings.ContainsAny(s, " \t\n\r{}\"[]$;\\") {
		return s
	}
	if canBraceQuote(s) {
		return "{" + s + "}"
	}
	return backslashQuote(s)
}

// canBraceQuote reports whether s can be safely wrapped in a single brace
// pair: braces inside must balance, and a trailing backslash would escape
// the closing brace.
func canBraceQuote(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		case '\\':
			i++
		}
	}
	if depth != 0 {
		return false
	}
	return len(s) == 0 || s[len(s)-1] != '\\'
}

// backslashQuote escapes every character that is significant to the list
// or script tokenizer, for elements that cannot be brace-quoted.
func backslashQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '{', '}', '"', '[', ']', '$', ';', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
