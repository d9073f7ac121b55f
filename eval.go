package feather

import (
	"fmt"
	"strings"
)

// ctrlErr is the internal signal used to unwind a `return`, `break`, or
// `continue` command through the Go call stack that mirrors nested script
// evaluation (spec §4.H). Loop commands and procedure calls intercept it;
// anything else lets it propagate.
type ctrlErr struct {
	code  ReturnCode
	value *Obj
}

func (e *ctrlErr) Error() string {
	switch e.code {
	case CodeBreak:
		return `invoked "break" outside of a loop`
	case CodeContinue:
		return `invoked "continue" outside of a loop`
	default:
		return "control flow signal"
	}
}

// evalError is a plain script failure, carrying the accumulated call-stack
// trace the way Tcl's errorInfo does. errorFlag semantics (spec §4.H) are
// modeled by this being freshly created at the point of failure and only
// appended to, never merged, as it unwinds.
type evalError struct {
	message   string
	errorInfo string
}

func (e *evalError) Error() string { return e.message }

func newEvalError(msg string) *evalError {
	return &evalError{message: msg, errorInfo: msg}
}

func (e *evalError) appendFrame(desc string) *evalError {
	e.errorInfo += "\n    " + desc
	return e
}

// evalString compiles and runs src as a script within frame, returning the
// value of its last command.
func (ip *Interp) evalString(src string, frame *callFrame) (*Obj, error) {
	obj := &Obj{interp: ip}
	obj.setBytes(src)
	return ip.evalObjScript(obj, frame)
}

// evalObjScript shimmers obj to a ScriptType (reusing a cached compilation
// when the string hasn't changed) and executes it.
func (ip *Interp) evalObjScript(obj *Obj, frame *callFrame) (*Obj, error) {
	src := obj.String()
	st, ok := obj.intrep.(*ScriptType)
	if !ok || st.source != src {
		file := ""
		if ip.scriptPath != nil {
			file = ip.scriptPath.String()
		}
		compiled, err := compileScript(src, file)
		if err != nil {
			return nil, newEvalError(err.Error())
		}
		obj.SetInternalRep(compiled)
		st = compiled
	}
	st.inUse++
	defer func() { st.inUse-- }()

	var result *Obj = ip.String("")
	for _, cmd := range st.commands {
		argv, expandCount, err := ip.buildArgv(cmd, frame)
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 {
			continue
		}
		_ = expandCount
		r, err := ip.dispatch(argv, frame)
		if err != nil {
			if ee, ok := err.(*evalError); ok {
				loc := ""
				if file := st.scriptFile(); file != "" {
					loc = fmt.Sprintf(" (file %q line %d)", file, cmd.line)
				}
				return nil, ee.appendFrame(fmt.Sprintf("while executing\n\"%s\"%s", truncateForTrace(argv), loc))
			}
			return nil, err
		}
		result = r
	}
	return result, nil
}

func truncateForTrace(argv []*Obj) string {
	parts := make([]string, len(argv))
	for i, o := range argv {
		parts[i] = o.String()
	}
	s := strings.Join(parts, " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// buildArgv materializes every argument word of a command, splicing in the
// elements of any `{*}word` marked for expansion.
func (ip *Interp) buildArgv(cmd cmdLayout, frame *callFrame) ([]*Obj, int, error) {
	var argv []*Obj
	expandCount := 0
	for i, word := range cmd.argTokens {
		val, err := ip.materializeWord(word, frame)
		if err != nil {
			return nil, 0, err
		}
		if cmd.expand[i] {
			items, err := val.List()
			if err != nil {
				return nil, 0, newEvalError(fmt.Sprintf("expand argument is not a valid list: %v", err))
			}
			argv = append(argv, items...)
			expandCount++
			continue
		}
		argv = append(argv, val)
	}
	return argv, expandCount, nil
}

// materializeWord evaluates one argument word's tokens. A single token is
// returned directly, preserving its shimmered type (the "1-token shortcut"
// of spec §4.H); multiple tokens are concatenated as strings.
func (ip *Interp) materializeWord(toks []token, frame *callFrame) (*Obj, error) {
	if len(toks) == 0 {
		return ip.String(""), nil
	}
	if len(toks) == 1 {
		return ip.materializeToken(toks[0], frame)
	}
	var b strings.Builder
	for _, t := range toks {
		o, err := ip.materializeToken(t, frame)
		if err != nil {
			return nil, err
		}
		b.WriteString(o.String())
	}
	return ip.String(b.String()), nil
}

func (ip *Interp) materializeToken(t token, frame *callFrame) (*Obj, error) {
	switch t.kind {
	case tokStr:
		return ip.String(t.text), nil
	case tokEsc:
		return ip.String(unescape(t.text)), nil
	case tokVar:
		_, _, slot := resolveCachedVariable(frame, NewString(t.text))
		if slot.value == nil {
			return nil, newEvalError(fmt.Sprintf("can't read %q: no such variable", t.text))
		}
		return slot.value, nil
	case tokDictSugar:
		idx := strings.IndexByte(t.text, '(')
		name := t.text[:idx]
		keyRaw := t.text[idx+1 : len(t.text)-1]
		key, err := ip.substitute(keyRaw, frame)
		if err != nil {
			return nil, err
		}
		return ip.dictSugarGet(frame, name, key)
	case tokCmd:
		val, err := ip.evalString(t.text, frame)
		if err != nil {
			if ce, ok := err.(*ctrlErr); ok {
				return nil, ce
			}
			return nil, err
		}
		return val, nil
	}
	return ip.String(""), nil
}

// substitute resolves $var/[cmd] substitutions (but not command-boundary
// splitting) within an arbitrary string, e.g. a dict-sugar key or the body
// of `subst`.
func (ip *Interp) substitute(s string, frame *callFrame) (string, error) {
	p := &parser{src: s, line: 1}
	toks, err := p.parseBareOrSubst(func(byte) bool { return false })
	if err != nil {
		return "", newEvalError(err.Error())
	}
	obj, err := ip.materializeWord(toks, frame)
	if err != nil {
		return "", err
	}
	return obj.String(), nil
}

func dictSugarSplit(name string) int {
	if len(name) == 0 || name[len(name)-1] != ')' {
		return -1
	}
	return strings.IndexByte(name, '(')
}

func (ip *Interp) dictSugarGet(frame *callFrame, varName, key string) (*Obj, error) {
	val, err := frame.getVariable(varName)
	if err != nil {
		return nil, newEvalError(err.Error())
	}
	d, err := val.Dict()
	if err != nil {
		return nil, newEvalError(fmt.Sprintf("can't read %q: variable isn't array", varName))
	}
	v, ok := d.Items[key]
	if !ok {
		return nil, newEvalError(fmt.Sprintf("can't read %q: no such element in array", varName+"("+key+")"))
	}
	return v, nil
}

func (ip *Interp) dictSugarSet(frame *callFrame, varName, key string, value *Obj) error {
	var d *DictType
	if existing, err := frame.getVariable(varName); err == nil {
		if dd, derr := existing.Dict(); derr == nil {
			d = dd.Dup().(*DictType)
		}
	}
	if d == nil {
		d = &DictType{Items: make(map[string]*Obj)}
	}
	if _, exists := d.Items[key]; !exists {
		d.Order = append(d.Order, key)
	}
	d.Items[key] = value
	newObj := &Obj{interp: ip}
	newObj.SetInternalRep(d)
	frame.setVariable(varName, newObj)
	return nil
}

// dispatch resolves argv[0] and runs the resulting command (native or user
// procedure), falling back to the `unknown` handler when no command with
// that name is registered (spec §4.G).
func (ip *Interp) dispatch(argv []*Obj, frame *callFrame) (*Obj, error) {
	prevFrame := ip.current
	ip.current = frame
	defer func() { ip.current = prevFrame }()

	cmd := resolveCachedCommand(ip.registry, argv[0])
	if cmd == nil {
		if ip.unknownHandler != nil {
			return ip.runResult(ip.unknownHandler(ip, append([]*Obj{ip.String("unknown")}, argv...)))
		}
		return nil, newEvalError(fmt.Sprintf("invalid command name %q", argv[0].String()))
	}
	if cmd.native != nil {
		return ip.runResult(cmd.native(ip, argv))
	}
	return ip.callProcedure(cmd.proc, argv)
}

func (ip *Interp) runResult(r Result) (*Obj, error) {
	switch r.code {
	case CodeOK:
		return ip.resultObj(r), nil
	case CodeError:
		return nil, newEvalError(ip.resultObj(r).String())
	case CodeReturn, CodeBreak, CodeContinue:
		return nil, &ctrlErr{code: r.code, value: ip.resultObj(r)}
	}
	return ip.resultObj(r), nil
}

func (ip *Interp) resultObj(r Result) *Obj {
	if r.hasObj && r.obj != nil {
		return r.obj
	}
	return ip.String(r.val)
}

const defaultRecursionLimit = 1000

// callProcedure invokes a user-defined procedure: binds formals into a new
// call frame, evaluates the body, and reduces an explicit `return` into a
// plain value (spec §4.G, §4.H).
func (ip *Interp) callProcedure(proc *procedure, argv []*Obj) (*Obj, error) {
	if ip.depth >= ip.effectiveRecursionLimit() {
		return nil, newEvalError("too many nested evaluations (infinite loop?)")
	}
	actuals := argv[1:]
	if len(actuals) < proc.arityMin || (proc.arityMax >= 0 && len(actuals) > proc.arityMax) {
		return nil, newEvalError(fmt.Sprintf("wrong # args: should be \"%s %s\"", proc.name, formalsUsage(proc)))
	}

	frame := newCallFrame(ip.global, ip.current.level+1, argv, proc.name)
	ai := 0
	for fi, f := range proc.formals {
		if f.name == "args" && proc.hasArgs && fi == len(proc.formals)-1 {
			rest := actuals[ai:]
			frame.setVariable("args", ip.Obj(ListType(append([]*Obj{}, rest...))))
			ai = len(actuals)
			break
		}
		if ai < len(actuals) {
			frame.setVariable(f.name, actuals[ai])
			ai++
		} else if f.hasDflt {
			frame.setVariable(f.name, f.dflt)
		}
	}

	prevCurrent := ip.current
	ip.current = frame
	ip.depth++
	val, err := ip.evalObjScript(proc.body, frame)
	ip.depth--
	ip.current = prevCurrent

	if err != nil {
		if ce, ok := err.(*ctrlErr); ok {
			switch ce.code {
			case CodeReturn:
				return ce.value, nil
			case CodeBreak, CodeContinue:
				// Propagate unchanged: a break/continue raised inside a
				// procedure body terminates the caller's enclosing loop,
				// not the procedure call itself (spec §4.H).
				return nil, ce
			}
		}
		if ee, ok := err.(*evalError); ok {
			return nil, ee.appendFrame(fmt.Sprintf("(procedure \"%s\" line %d)", proc.name, 1))
		}
		return nil, err
	}
	return val, nil
}

func (ip *Interp) effectiveRecursionLimit() int {
	if ip.recursionLimit > 0 {
		return ip.recursionLimit
	}
	return defaultRecursionLimit
}

func formalsUsage(proc *procedure) string {
	parts := make([]string, 0, len(proc.formals))
	for _, f := range proc.formals {
		if f.hasDflt {
			parts = append(parts, "?"+f.name+"?")
		} else {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, " ")
}
