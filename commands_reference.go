package feather

// registerReferenceCommands wires the referenceTable (reference.go) up as
// the `ref`, `getref`, `setref`, and `collect` script-level commands.
func registerReferenceCommands(ip *Interp) {
	r := ip.registry
	r.define("ref", &command{native: cmdRef})
	r.define("getref", &command{native: cmdGetref})
	r.define("setref", &command{native: cmdSetref})
	r.define("collect", &command{native: cmdCollect})
}

func cmdRef(ip *Interp, args []*Obj) Result {
	if len(args) < 2 || len(args) > 3 {
		return Errorf("wrong # args: should be \"ref value ?finalizer?\"")
	}
	finalizer := ""
	if len(args) == 3 {
		finalizer = args[2].String()
	}
	return OK(ip.refs.create(args[1], finalizer))
}

func cmdGetref(ip *Interp, args []*Obj) Result {
	if len(args) != 2 {
		return Errorf("wrong # args: should be \"getref reference\"")
	}
	v, err := ip.refs.get(args[1])
	if err != nil {
		return Error(err.Error())
	}
	return OK(v)
}

func cmdSetref(ip *Interp, args []*Obj) Result {
	if len(args) != 3 {
		return Errorf("wrong # args: should be \"setref reference value\"")
	}
	if err := ip.refs.set(args[1], args[2]); err != nil {
		return Error(err.Error())
	}
	return OK(args[2])
}

func cmdCollect(ip *Interp, args []*Obj) Result {
	if len(args) != 1 {
		return Errorf("wrong # args: should be \"collect\"")
	}
	return OK(ip.Int(int64(ip.refs.collect())))
}
