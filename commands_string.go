package feather

import (
	"fmt"
	"strings"
)

// sprintfOne renders a single Go-compatible format spec against one value,
// reusing fmt's verb handling for the numeric/string formatting Tcl's
// `format` command shares with C's printf family.
func sprintfOne(spec string, v any) string {
	return fmt.Sprintf(spec, v)
}

func registerStringCommands(ip *Interp) {
	ip.registry.define("string", &command{native: cmdString})
	ip.registry.define("format", &command{native: cmdFormat})
}

func cmdString(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"string subcommand ...\"")
	}
	sub := args[1].String()
	rest := args[2:]
	switch sub {
	case "length":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"string length string\"")
		}
		return OK(ip.Int(int64(len(rest[0].String()))))
	case "index":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string index string charIndex\"")
		}
		s := rest[0].String()
		idx, err := ParseIndex(rest[1].String())
		if err != nil {
			return Error(err.Error())
		}
		pos, ok := idx.Resolve(len(s))
		if !ok {
			return OK(ip.String(""))
		}
		return OK(ip.String(string(s[pos])))
	case "range":
		if len(rest) != 3 {
			return Errorf("wrong # args: should be \"string range string first last\"")
		}
		s := rest[0].String()
		first, err := ParseIndex(rest[1].String())
		if err != nil {
			return Error(err.Error())
		}
		last, err := ParseIndex(rest[2].String())
		if err != nil {
			return Error(err.Error())
		}
		fp, _ := first.Resolve(len(s))
		lp, ok := last.Resolve(len(s))
		if !ok {
			lp = len(s) - 1
		}
		if fp < 0 {
			fp = 0
		}
		if lp >= len(s) {
			lp = len(s) - 1
		}
		if fp > lp {
			return OK(ip.String(""))
		}
		return OK(ip.String(s[fp : lp+1]))
	case "tolower":
		return OK(ip.String(strings.ToLower(joinStrings(rest))))
	case "toupper":
		return OK(ip.String(strings.ToUpper(joinStrings(rest))))
	case "trim":
		return OK(ip.String(strings.TrimSpace(joinStrings(rest))))
	case "trimleft":
		return OK(ip.String(strings.TrimLeft(joinStrings(rest), " \t\n\r")))
	case "trimright":
		return OK(ip.String(strings.TrimRight(joinStrings(rest), " \t\n\r")))
	case "reverse":
		s := []byte(joinStrings(rest))
		for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
			s[i], s[j] = s[j], s[i]
		}
		return OK(ip.String(string(s)))
	case "repeat":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string repeat string count\"")
		}
		n, err := rest[1].Int()
		if err != nil {
			return Error(err.Error())
		}
		if n < 0 {
			n = 0
		}
		return OK(ip.String(strings.Repeat(rest[0].String(), int(n))))
	case "cat":
		return OK(ip.String(joinStrings(rest)))
	case "compare":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string compare string1 string2\"")
		}
		return OK(ip.Int(int64(strings.Compare(rest[0].String(), rest[1].String()))))
	case "equal":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string equal string1 string2\"")
		}
		return OK(rest[0].String() == rest[1].String())
	case "first":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string first needle haystack\"")
		}
		return OK(ip.Int(int64(strings.Index(rest[1].String(), rest[0].String()))))
	case "last":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string last needle haystack\"")
		}
		return OK(ip.Int(int64(strings.LastIndex(rest[1].String(), rest[0].String()))))
	case "match":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"string match pattern string\"")
		}
		return OK(globMatch(rest[0].String(), rest[1].String()))
	case "replace":
		if len(rest) < 3 {
			return Errorf("wrong # args: should be \"string replace string first last ?newstring?\"")
		}
		s := rest[0].String()
		first, err := ParseIndex(rest[1].String())
		if err != nil {
			return Error(err.Error())
		}
		last, err := ParseIndex(rest[2].String())
		if err != nil {
			return Error(err.Error())
		}
		fp, _ := first.Resolve(len(s))
		lp, ok := last.Resolve(len(s))
		if !ok {
			lp = len(s) - 1
		}
		if fp < 0 {
			fp = 0
		}
		if lp >= len(s) {
			lp = len(s) - 1
		}
		repl := ""
		if len(rest) == 4 {
			repl = rest[3].String()
		}
		if fp > lp || fp >= len(s) {
			return OK(ip.String(s))
		}
		return OK(ip.String(s[:fp] + repl + s[lp+1:]))
	case "is":
		if len(rest) < 2 {
			return Errorf("wrong # args: should be \"string is class string\"")
		}
		return OK(stringIsClass(rest[0].String(), rest[1].String()))
	default:
		return Errorf("unknown or ambiguous subcommand %q: must be length, index, range, tolower, toupper, trim, reverse, repeat, cat, compare, equal, first, last, match, replace, or is", sub)
	}
}

func joinStrings(objs []*Obj) string {
	if len(objs) == 1 {
		return objs[0].String()
	}
	parts := make([]string, len(objs))
	for i, o := range objs {
		parts[i] = o.String()
	}
	return strings.Join(parts, "")
}

func stringIsClass(class, s string) bool {
	if s == "" {
		return true
	}
	switch class {
	case "alpha":
		for _, c := range s {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
				return false
			}
		}
		return true
	case "digit":
		for _, c := range s {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	case "alnum":
		for _, c := range s {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				return false
			}
		}
		return true
	case "integer":
		_, err := NewString(s).Int()
		return err == nil
	case "double":
		_, err := NewString(s).Double()
		return err == nil
	case "space":
		return strings.TrimSpace(s) == ""
	}
	return false
}

// globMatch implements Tcl's `string match` glob syntax: * ? and [set].
func globMatch(pattern, s string) bool {
	return globMatchBytes(pattern, s)
}

func globMatchBytes(pat, s string) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			pat = pat[1:]
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchBytes(pat, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pat, s = pat[1:], s[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			end := strings.IndexByte(pat, ']')
			if end < 0 {
				if pat[0] != s[0] {
					return false
				}
				pat, s = pat[1:], s[1:]
				continue
			}
			set := pat[1:end]
			if !strings.ContainsRune(set, rune(s[0])) {
				return false
			}
			pat, s = pat[end+1:], s[1:]
		case '\\':
			if len(pat) < 2 || len(s) == 0 || pat[1] != s[0] {
				return false
			}
			pat, s = pat[2:], s[1:]
		default:
			if len(s) == 0 || pat[0] != s[0] {
				return false
			}
			pat, s = pat[1:], s[1:]
		}
	}
	return len(s) == 0
}

func cmdFormat(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"format formatString ?arg ...?\"")
	}
	fmtStr := args[1].String()
	fmtArgs := args[2:]
	var b strings.Builder
	ai := 0
	for i := 0; i < len(fmtStr); i++ {
		c := fmtStr[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(fmtStr) && strings.ContainsRune("-+ 0#123456789.", rune(fmtStr[j])) {
			j++
		}
		if j >= len(fmtStr) {
			b.WriteByte('%')
			break
		}
		verb := fmtStr[j]
		spec := fmtStr[i : j+1]
		if verb == '%' {
			b.WriteByte('%')
			i = j
			continue
		}
		if ai >= len(fmtArgs) {
			return Errorf("not enough arguments for all format specifiers")
		}
		arg := fmtArgs[ai]
		ai++
		switch verb {
		case 'd', 'x', 'X', 'o', 'b':
			v, err := arg.Int()
			if err != nil {
				return Error(err.Error())
			}
			goVerb := spec
			if verb == 'b' {
				goVerb = strings.TrimSuffix(spec, "b") + "b"
			}
			b.WriteString(sprintfOne(goVerb, v))
		case 'f', 'g', 'e':
			v, err := arg.Double()
			if err != nil {
				return Error(err.Error())
			}
			b.WriteString(sprintfOne(spec, v))
		case 's':
			b.WriteString(sprintfOne(spec, arg.String()))
		default:
			b.WriteString(spec)
		}
		i = j
	}
	return OK(ip.String(b.String()))
}
