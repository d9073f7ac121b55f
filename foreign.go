package feather

import (
	"fmt"
	"reflect"
	"sync"
)

// foreignTypeInfo describes a Go type registered with RegisterType: its
// constructor, its exposed methods, and optional custom stringification and
// destructor hooks.
type foreignTypeInfo struct {
	name         string
	newFunc      reflect.Value
	methods      map[string]reflect.Value
	stringRep    reflect.Value
	destroy      reflect.Value
	receiverType reflect.Type
}

// ForeignRegistry holds every foreign type registered on an interpreter and
// hands out sequential instance names ("Counter1", "Counter2", ...) the way
// TCL's `new` idiom expects.
type ForeignRegistry struct {
	mu       sync.Mutex
	types    map[string]*foreignTypeInfo
	counters map[string]int
}

func newForeignRegistry() *ForeignRegistry {
	return &ForeignRegistry{
		types:    make(map[string]*foreignTypeInfo),
		counters: make(map[string]int),
	}
}

// foreignConstructor implements "TypeName new ...": the registered command
// for typeName routes here, and any other subcommand is an error. Each new
// instance gets its own handle command, which routes per-instance calls
// through foreignMethodDispatch.
func (ip *Interp) foreignConstructor(typeName string, args []*Obj) Result {
	info := ip.ForeignRegistry.types[typeName]
	if info == nil {
		return Errorf("unknown foreign type %q", typeName)
	}
	if len(args) < 2 || args[1].String() != "new" {
		return Errorf("wrong # args: should be \"%s new\"", typeName)
	}
	ctorArgs := args[2:]
	in := make([]reflect.Value, 0, len(ctorArgs))
	ctorType := info.newFunc.Type()
	for j, a := range ctorArgs {
		if j >= ctorType.NumIn() {
			break
		}
		v, err := convertArgTo(a, ctorType.In(j))
		if err != nil {
			return Errorf("argument %d to %s new: %v", j+1, typeName, err)
		}
		in = append(in, v)
	}
	out := info.newFunc.Call(in)
	instance := out[0].Interface()

	ip.ForeignRegistry.mu.Lock()
	ip.ForeignRegistry.counters[typeName]++
	handle := fmt.Sprintf("%s%d", typeName, ip.ForeignRegistry.counters[typeName])
	ip.ForeignRegistry.mu.Unlock()

	ft := &ForeignType{TypeName: typeName, Value: instance}
	obj := &Obj{interp: ip}
	obj.SetInternalRep(ft)
	obj.setBytes(handle)

	ip.registry.define(handle, &command{native: func(ii *Interp, iargs []*Obj) Result {
		return ii.foreignMethodDispatch(info, instance, iargs)
	}})
	return OK(obj)
}

// foreignMethodDispatch implements `$handle method args...` for a foreign
// instance: iargs[0] is the handle name, iargs[1] the method name.
func (ip *Interp) foreignMethodDispatch(info *foreignTypeInfo, receiver any, iargs []*Obj) Result {
	if len(iargs) < 2 {
		return Errorf("wrong # args: should be \"handle method ?arg ...?\"")
	}
	methodName := iargs[1].String()
	if methodName == "destroy" {
		if info.destroy.IsValid() {
			info.destroy.Call([]reflect.Value{reflect.ValueOf(receiver)})
		}
		delete(ip.registry.commands, iargs[0].String())
		return OK("")
	}
	fn, ok := info.methods[methodName]
	if !ok {
		return Errorf("unknown method %q on %s", methodName, info.name)
	}
	fnType := fn.Type()
	callArgs := iargs[2:]
	in := make([]reflect.Value, 0, len(callArgs)+1)
	in = append(in, reflect.ValueOf(receiver))
	for j, a := range callArgs {
		paramIdx := j + 1
		if paramIdx >= fnType.NumIn() {
			break
		}
		v, err := convertArgTo(a, fnType.In(paramIdx))
		if err != nil {
			return Errorf("argument %d to %s: %v", j+1, methodName, err)
		}
		in = append(in, v)
	}
	out := fn.Call(in)
	return resultsToResult(out, fnType)
}

// GetForeignMethods lists the method names exposed by a registered foreign
// type, useful for `info` introspection commands.
func (ip *Interp) GetForeignMethods(typeName string) []string {
	info := ip.ForeignRegistry.types[typeName]
	if info == nil {
		return nil
	}
	names := make([]string, 0, len(info.methods))
	for name := range info.methods {
		names = append(names, name)
	}
	return names
}

// TypeDef defines a foreign type that can be exposed to Feather scripts.
//
// Foreign types let a Go struct behave as a Feather object with methods.
// See [RegisterType] for usage.
type TypeDef[T any] struct {
	// New is the constructor, called when "TypeName new" is evaluated.
	// Extra words after "new" are not forwarded to it.
	New func() T

	// Methods maps method names to Go functions; each function's first
	// parameter must be T.
	Methods map[string]any

	// String is stored with the type but not called: an instance's string
	// form is always its handle name (e.g. "Counter1").
	String func(T) string

	// Destroy is called when the instance's `destroy` method is invoked.
	Destroy func(T)
}

// RegisterType registers a foreign type with the interpreter. After
// registration, TypeName becomes a command supporting "new" to create
// instances, and instances support `$handle method args...` dispatch.
//
//	type Counter struct{ value int }
//
//	feather.RegisterType[*Counter](interp, "Counter", feather.TypeDef[*Counter]{
//		New: func() *Counter { return &Counter{} },
//		Methods: map[string]any{
//			"get":  func(c *Counter) int { return c.value },
//			"incr": func(c *Counter) int { c.value++; return c.value },
//		},
//	})
func RegisterType[T any](i *Interp, typeName string, def TypeDef[T]) error {
	if def.New == nil {
		return fmt.Errorf("RegisterType: New function is required for type %s", typeName)
	}
	info := &foreignTypeInfo{
		name:         typeName,
		newFunc:      reflect.ValueOf(def.New),
		methods:      make(map[string]reflect.Value),
		receiverType: reflect.TypeOf((*T)(nil)).Elem(),
	}
	for name, fn := range def.Methods {
		info.methods[name] = reflect.ValueOf(fn)
	}
	if def.String != nil {
		info.stringRep = reflect.ValueOf(def.String)
	}
	if def.Destroy != nil {
		info.destroy = reflect.ValueOf(func(v T) { def.Destroy(v) })
	}

	i.ForeignRegistry.mu.Lock()
	i.ForeignRegistry.types[typeName] = info
	i.ForeignRegistry.counters[typeName] = 0
	i.ForeignRegistry.mu.Unlock()

	i.registry.define(typeName, &command{native: func(ip *Interp, args []*Obj) Result {
		return ip.foreignConstructor(typeName, args)
	}})
	return nil
}
