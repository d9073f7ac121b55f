package feather

import "sort"

// registerMetaCommands wires up the `info` and `debug` introspection
// families: `info` answers questions a script can rely on (existence of
// commands/variables, procedure signatures); `debug` exposes interpreter
// internals that are useful for tooling but carry no portability promise.
func registerMetaCommands(ip *Interp) {
	r := ip.registry
	r.define("info", &command{native: cmdInfo})
	r.define("debug", &command{native: cmdDebug})
}

func cmdInfo(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"info subcommand ...\"")
	}
	sub := args[1].String()
	rest := args[2:]
	switch sub {
	case "exists":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"info exists varName\"")
		}
		_, err := ip.current.getVariable(rest[0].String())
		return OK(err == nil)
	case "commands":
		names := make([]string, 0, len(ip.registry.commands))
		for name := range ip.registry.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		items := make([]*Obj, len(names))
		for i, n := range names {
			items[i] = ip.String(n)
		}
		return OK(ip.Obj(ListType(items)))
	case "vars":
		names := make([]string, 0, len(ip.current.vars))
		for name := range ip.current.vars {
			names = append(names, name)
		}
		sort.Strings(names)
		items := make([]*Obj, len(names))
		for i, n := range names {
			items[i] = ip.String(n)
		}
		return OK(ip.Obj(ListType(items)))
	case "procs":
		var names []string
		for name, cmd := range ip.registry.commands {
			if cmd.proc != nil {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		items := make([]*Obj, len(names))
		for i, n := range names {
			items[i] = ip.String(n)
		}
		return OK(ip.Obj(ListType(items)))
	case "args":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"info args procname\"")
		}
		cmd := ip.registry.lookup(rest[0].String())
		if cmd == nil || cmd.proc == nil {
			return Errorf("%q isn't a procedure", rest[0].String())
		}
		items := make([]*Obj, len(cmd.proc.formals))
		for i, f := range cmd.proc.formals {
			items[i] = ip.String(f.name)
		}
		return OK(ip.Obj(ListType(items)))
	case "body":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"info body procname\"")
		}
		cmd := ip.registry.lookup(rest[0].String())
		if cmd == nil || cmd.proc == nil {
			return Errorf("%q isn't a procedure", rest[0].String())
		}
		return OK(cmd.proc.body)
	case "level":
		depth := 0
		for f := ip.current; f != nil; f = f.parent {
			depth++
		}
		return OK(ip.Int(int64(depth - 1)))
	case "script":
		if ip.scriptPath != nil {
			return OK(ip.scriptPath)
		}
		return OK(ip.String(""))
	case "tclversion", "version":
		return OK(ip.String("1.0"))
	default:
		return Errorf("unknown or ambiguous subcommand %q: must be exists, commands, vars, procs, args, body, level, script, or version", sub)
	}
}

func cmdDebug(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"debug subcommand ...\"")
	}
	sub := args[1].String()
	switch sub {
	case "refcount":
		return OK(ip.Int(int64(ip.refs.count())))
	case "collect":
		return OK(ip.Int(int64(ip.refs.collect())))
	case "objtype":
		if len(args) != 3 {
			return Errorf("wrong # args: should be \"debug objtype value\"")
		}
		o := args[2]
		if o.intrep == nil {
			return OK(ip.String("none"))
		}
		return OK(ip.String(o.intrep.Name()))
	default:
		return Errorf("unknown or ambiguous subcommand %q: must be refcount, collect, or objtype", sub)
	}
}
