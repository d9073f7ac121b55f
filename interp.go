package feather

import (
	"fmt"
	"reflect"
	"strings"
)

// Interp is a Feather interpreter instance.
//
// Create a new interpreter with [New]. An interpreter is not safe for
// concurrent use from multiple goroutines.
//
//	interp := feather.New()
//	result, err := interp.Eval("expr {2 + 2}")
type Interp struct {
	global  *callFrame
	current *callFrame

	registry *registry
	refs     *referenceTable

	result        *Obj
	returnOptions *Obj

	recursionLimit int
	depth          int

	scriptPath *Obj

	unknownHandler nativeCommand

	// ForeignRegistry stores foreign type definitions for the high-level API.
	ForeignRegistry *ForeignRegistry
}

// New creates a new interpreter with the standard command set registered.
func New() *Interp {
	ip := &Interp{
		registry: newRegistry(),
	}
	ip.result = ip.String("")
	ip.global = newCallFrame(nil, 0, nil, "")
	ip.current = ip.global
	ip.refs = newReferenceTable(ip)
	ip.ForeignRegistry = newForeignRegistry()
	registerCoreCommands(ip)
	return ip
}

// Close exists for API symmetry and does nothing: Feather's values are
// ordinary Go-GC'd memory. Foreign-type Destroy hooks run only when an
// instance's `destroy` method is called, not from Close.
func (i *Interp) Close() {}

// -----------------------------------------------------------------------------
// Object construction
// -----------------------------------------------------------------------------

func (i *Interp) String(s string) *Obj {
	o := &Obj{interp: i}
	o.setBytes(s)
	return o
}

func (i *Interp) Int(v int64) *Obj {
	o := &Obj{interp: i}
	o.SetInternalRep(IntType(v))
	return o
}

func (i *Interp) Double(v float64) *Obj {
	o := &Obj{interp: i}
	o.SetInternalRep(DoubleType(v))
	return o
}

func (i *Interp) Bool(v bool) *Obj {
	if v {
		return i.Int(1)
	}
	return i.Int(0)
}

func (i *Interp) List(items ...*Obj) *Obj {
	o := &Obj{interp: i}
	o.SetInternalRep(ListType(items))
	return o
}

// ListFrom converts a Go slice to a list object via reflection.
func (i *Interp) ListFrom(slice any) *Obj {
	rv := reflect.ValueOf(slice)
	items := make([]*Obj, rv.Len())
	for j := 0; j < rv.Len(); j++ {
		items[j] = i.anyToObj(rv.Index(j).Interface())
	}
	return i.List(items...)
}

func (i *Interp) Dict() *Obj {
	o := &Obj{interp: i}
	o.SetInternalRep(&DictType{Items: make(map[string]*Obj)})
	return o
}

// Obj wraps an already-constructed internal representation.
func (i *Interp) Obj(intrep ObjType) *Obj {
	o := &Obj{interp: i}
	o.SetInternalRep(intrep)
	return o
}

func (i *Interp) DictKV(kvs ...any) *Obj {
	d := &DictType{Items: make(map[string]*Obj)}
	for j := 0; j+1 < len(kvs); j += 2 {
		key := fmt.Sprintf("%v", kvs[j])
		if _, exists := d.Items[key]; !exists {
			d.Order = append(d.Order, key)
		}
		d.Items[key] = i.anyToObj(kvs[j+1])
	}
	o := &Obj{interp: i}
	o.SetInternalRep(d)
	return o
}

func (i *Interp) DictFrom(m map[string]any) *Obj {
	d := &DictType{Items: make(map[string]*Obj, len(m))}
	for k, v := range m {
		d.Order = append(d.Order, k)
		d.Items[k] = i.anyToObj(v)
	}
	o := &Obj{interp: i}
	o.SetInternalRep(d)
	return o
}

func (i *Interp) anyToObj(v any) *Obj {
	switch val := v.(type) {
	case *Obj:
		return val
	case string:
		return i.String(val)
	case int:
		return i.Int(int64(val))
	case int64:
		return i.Int(val)
	case float64:
		return i.Double(val)
	case bool:
		return i.Bool(val)
	case []string:
		items := make([]*Obj, len(val))
		for j, s := range val {
			items[j] = i.String(s)
		}
		return i.List(items...)
	default:
		return i.String(fmt.Sprintf("%v", v))
	}
}

// -----------------------------------------------------------------------------
// Script evaluation
// -----------------------------------------------------------------------------

// Eval evaluates a script and returns its result.
//
//	result, err := interp.Eval("set x 10; expr {$x * 2}")
func (i *Interp) Eval(script string) (*Obj, error) {
	val, err := i.evalString(script, i.current)
	if err != nil {
		if ce, ok := err.(*ctrlErr); ok {
			if ce.code == CodeReturn {
				return ce.value, nil
			}
			return nil, fmt.Errorf("%s", ce.Error())
		}
		return nil, err
	}
	i.result = val
	return val, nil
}

// EvalObj evaluates a script contained in an object.
func (i *Interp) EvalObj(obj *Obj) (*Obj, error) { return i.Eval(obj.String()) }

// Call invokes a single command with the given arguments, bypassing script
// parsing so arguments containing braces, $, or [ don't need quoting.
//
//	result, err := interp.Call("llength", myList)
func (i *Interp) Call(cmd string, args ...any) (*Obj, error) {
	argv := make([]*Obj, len(args)+1)
	argv[0] = i.String(cmd)
	for j, a := range args {
		argv[j+1] = i.anyToObj(a)
	}
	val, err := i.dispatch(argv, i.current)
	if err != nil {
		if ce, ok := err.(*ctrlErr); ok && ce.code == CodeReturn {
			return ce.value, nil
		}
		return nil, err
	}
	return val, nil
}

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

// Var returns the value of a global variable, or an empty string object if
// it does not exist.
func (i *Interp) Var(name string) *Obj {
	v, err := i.global.getVariable(name)
	if err != nil {
		return i.String("")
	}
	return v
}

// SetScriptPath records the file a script about to be evaluated came from,
// so `info script` reports it and evaluation errors carry file/line
// provenance (spec §4.D). The host is responsible for reading the file; the
// core never performs file I/O itself.
func (i *Interp) SetScriptPath(path string) {
	i.scriptPath = i.String(path)
}

// SetVar sets a global variable to a value, converting Go types as needed.
func (i *Interp) SetVar(name string, val any) {
	i.global.setVariable(name, i.anyToObj(val))
}

// SetVars sets multiple global variables at once.
func (i *Interp) SetVars(vars map[string]any) {
	for name, val := range vars {
		i.SetVar(name, val)
	}
}

// GetVars returns multiple global variables as a map.
func (i *Interp) GetVars(names ...string) map[string]*Obj {
	result := make(map[string]*Obj, len(names))
	for _, name := range names {
		result[name] = i.Var(name)
	}
	return result
}

// -----------------------------------------------------------------------------
// Command registration
// -----------------------------------------------------------------------------

// CommandFunc is the signature for custom commands registered with
// [Interp.RegisterCommand]. Return [OK] for success or [Error]/[Errorf] for
// failure.
type CommandFunc func(i *Interp, cmd *Obj, args []*Obj) Result

// RegisterCommand adds a command using the low-level CommandFunc interface.
func (i *Interp) RegisterCommand(name string, fn CommandFunc) {
	i.registry.define(name, &command{native: func(ip *Interp, args []*Obj) Result {
		return fn(ip, args[0], args[1:])
	}})
}

// UnregisterCommand removes a previously registered command.
func (i *Interp) UnregisterCommand(name string) {
	delete(i.registry.commands, name)
	i.registry.procEpoch++
}

// Register adds a command with automatic argument conversion driven by fn's
// Go signature (spec DOMAIN STACK: reflection-based Go<->Feather bridging).
//
//	interp.Register("greet", func(name string) string { return "Hello, " + name })
func (i *Interp) Register(name string, fn any) {
	i.registry.define(name, &command{native: wrapFunc(fn)})
}

// SetUnknownHandler sets a handler invoked when a command name can't be
// resolved. Pass nil to restore the default "invalid command name" error.
func (i *Interp) SetUnknownHandler(fn CommandFunc) {
	if fn == nil {
		i.unknownHandler = nil
		return
	}
	i.unknownHandler = func(ip *Interp, args []*Obj) Result {
		return fn(ip, args[0], args[1:])
	}
}

// -----------------------------------------------------------------------------
// Parsing
// -----------------------------------------------------------------------------

type ParseStatus int

const (
	ParseOK ParseStatus = iota
	ParseIncomplete
	ParseError
)

type ParseResult struct {
	Status  ParseStatus
	Message string
}

// Parse checks whether script is syntactically complete, for REPL use.
func (i *Interp) Parse(script string) ParseResult {
	if err := checkBalance(script); err != nil {
		return ParseResult{Status: ParseIncomplete, Message: err.Error()}
	}
	if _, err := parseScriptTokens(script); err != nil {
		return ParseResult{Status: ParseError, Message: err.Error()}
	}
	return ParseResult{Status: ParseOK}
}

// checkBalance reports whether script has unterminated braces, brackets, or
// quotes, the cheap check a REPL runs before deciding to prompt for more
// input versus treating a real syntax error as fatal.
func checkBalance(script string) error {
	depthBrace, depthBracket := 0, 0
	inQuote := false
	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c == '\\':
			i++
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '{':
			depthBrace++
		case c == '}':
			depthBrace--
		case c == '[':
			depthBracket++
		case c == ']':
			depthBracket--
		}
	}
	if depthBrace > 0 {
		return fmt.Errorf("missing close-brace")
	}
	if depthBracket > 0 {
		return fmt.Errorf("missing close-bracket")
	}
	if inQuote {
		return fmt.Errorf("missing close-quote")
	}
	return nil
}

// parseListString parses s as a list, used by Obj.List() for shimmering.
func (i *Interp) parseListString(s string) ([]*Obj, error) {
	var items []*Obj
	pos := 0
	for pos < len(s) {
		for pos < len(s) && isListSpace(s[pos]) {
			pos++
		}
		if pos >= len(s) {
			break
		}
		var elem string
		switch s[pos] {
		case '{':
			depth := 1
			start := pos + 1
			pos++
			for pos < len(s) && depth > 0 {
				switch s[pos] {
				case '{':
					depth++
				case '}':
					depth--
				case '\\':
					pos++
				}
				pos++
			}
			if depth != 0 {
				return nil, fmt.Errorf("unmatched open brace in list")
			}
			elem = s[start : pos-1]
		case '"':
			start := pos + 1
			pos++
			for pos < len(s) && s[pos] != '"' {
				if s[pos] == '\\' && pos+1 < len(s) {
					pos++
				}
				pos++
			}
			if pos >= len(s) {
				return nil, fmt.Errorf("unmatched open quote in list")
			}
			elem = unescape(s[start:pos])
			pos++
		default:
			start := pos
			for pos < len(s) && !isListSpace(s[pos]) {
				if s[pos] == '\\' && pos+1 < len(s) {
					pos++
				}
				pos++
			}
			elem = unescape(s[start:pos])
		}
		items = append(items, i.String(elem))
	}
	return items, nil
}

func isListSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// parseDictString parses s as a dict, used by Obj.Dict() for shimmering.
func (i *Interp) parseDictString(s string) (*DictType, error) {
	items, err := i.parseListString(s)
	if err != nil {
		return nil, err
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("missing value to go with key")
	}
	d := &DictType{Items: make(map[string]*Obj, len(items)/2)}
	for j := 0; j < len(items); j += 2 {
		key := items[j].String()
		if _, exists := d.Items[key]; !exists {
			d.Order = append(d.Order, key)
		}
		d.Items[key] = items[j+1]
	}
	return d, nil
}

// -----------------------------------------------------------------------------
// Command results
// -----------------------------------------------------------------------------

// Result represents the outcome of a command execution. Create results
// using [OK], [Error], or [Errorf].
type Result struct {
	code   ReturnCode
	val    string
	obj    *Obj
	hasObj bool
}

// OK returns a successful result with a value, auto-converted to a
// Feather string representation. Pass a [*Obj] to preserve its type.
func OK(v any) Result {
	if o, ok := v.(*Obj); ok {
		return Result{code: CodeOK, obj: o, hasObj: true}
	}
	switch val := v.(type) {
	case string:
		return Result{code: CodeOK, val: val}
	case int:
		return Result{code: CodeOK, val: fmt.Sprintf("%d", val)}
	case int64:
		return Result{code: CodeOK, val: fmt.Sprintf("%d", val)}
	case float64:
		return Result{code: CodeOK, val: fmt.Sprintf("%g", val)}
	case bool:
		if val {
			return Result{code: CodeOK, val: "1"}
		}
		return Result{code: CodeOK, val: "0"}
	case []string:
		return Result{code: CodeOK, val: strings.Join(val, " ")}
	default:
		return Result{code: CodeOK, val: fmt.Sprintf("%v", v)}
	}
}

// Error returns an error result with a message or *Obj.
func Error(v any) Result {
	if o, ok := v.(*Obj); ok {
		return Result{code: CodeError, obj: o, hasObj: true}
	}
	if s, ok := v.(string); ok {
		return Result{code: CodeError, val: s}
	}
	return Result{code: CodeError, val: fmt.Sprintf("%v", v)}
}

// Errorf returns a formatted error result.
func Errorf(format string, args ...any) Result {
	return Result{code: CodeError, val: fmt.Sprintf(format, args...)}
}

// registerCoreCommands wires the built-in command set (commands_*.go) into
// a fresh interpreter's registry.
func registerCoreCommands(ip *Interp) {
	registerCoreControlCommands(ip)
	registerListCommands(ip)
	registerDictCommands(ip)
	registerStringCommands(ip)
	registerArithCommands(ip)
	registerMetaCommands(ip)
	registerReferenceCommands(ip)
}
