package feather


func registerListCommands(ip *Interp) {
	r := ip.registry
	r.define("list", &command{native: cmdList})
	r.define("lindex", &command{native: cmdLindex})
	r.define("llength", &command{native: cmdLlength})
	r.define("lappend", &command{native: cmdLappend})
	r.define("lset", &command{native: cmdLset})
	r.define("lrange", &command{native: cmdLrange})
	r.define("concat", &command{native: cmdConcat})
	r.define("append", &command{native: cmdAppend})
}

func cmdList(ip *Interp, args []*Obj) Result {
	return OK(ip.Obj(ListType(append([]*Obj{}, args[1:]...))))
}

func cmdLindex(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"lindex list ?index ...?\"")
	}
	cur := args[1]
	for _, idxArg := range args[2:] {
		items, err := cur.List()
		if err != nil {
			return Error(err.Error())
		}
		idx, err := ParseIndex(idxArg.String())
		if err != nil {
			return Error(err.Error())
		}
		pos, ok := idx.Resolve(len(items))
		if !ok {
			return OK(ip.String(""))
		}
		cur = items[pos]
	}
	return OK(cur)
}

func cmdLlength(ip *Interp, args []*Obj) Result {
	if len(args) != 2 {
		return Errorf("wrong # args: should be \"llength list\"")
	}
	items, err := args[1].List()
	if err != nil {
		return Error(err.Error())
	}
	return OK(ip.Int(int64(len(items))))
}

func cmdLappend(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"lappend varName ?value ...?\"")
	}
	name := args[1].String()
	var items []*Obj
	if existing, err := ip.current.getVariable(name); err == nil {
		items, _ = existing.List()
	}
	items = append(items, args[2:]...)
	result := ip.Obj(ListType(items))
	ip.current.setVariable(name, result)
	return OK(result)
}

func cmdLset(ip *Interp, args []*Obj) Result {
	if len(args) != 4 {
		return Errorf("wrong # args: should be \"lset varName index value\"")
	}
	name := args[1].String()
	existing, err := ip.current.getVariable(name)
	if err != nil {
		return Error(err.Error())
	}
	items, err := existing.List()
	if err != nil {
		return Error(err.Error())
	}
	items = append([]*Obj{}, items...)
	idx, err := ParseIndex(args[2].String())
	if err != nil {
		return Error(err.Error())
	}
	pos, ok := idx.Resolve(len(items))
	if !ok {
		return Errorf("list index out of range")
	}
	items[pos] = args[3]
	result := ip.Obj(ListType(items))
	ip.current.setVariable(name, result)
	return OK(result)
}

func cmdLrange(ip *Interp, args []*Obj) Result {
	if len(args) != 4 {
		return Errorf("wrong # args: should be \"lrange list first last\"")
	}
	items, err := args[1].List()
	if err != nil {
		return Error(err.Error())
	}
	first, err := ParseIndex(args[2].String())
	if err != nil {
		return Error(err.Error())
	}
	last, err := ParseIndex(args[3].String())
	if err != nil {
		return Error(err.Error())
	}
	fp, _ := first.Resolve(len(items))
	lp, ok := last.Resolve(len(items))
	if !ok {
		lp = len(items) - 1
	}
	if fp < 0 {
		fp = 0
	}
	if lp >= len(items) {
		lp = len(items) - 1
	}
	if fp > lp {
		return OK(ip.Obj(ListType(nil)))
	}
	return OK(ip.Obj(ListType(append([]*Obj{}, items[fp:lp+1]...))))
}

func cmdConcat(ip *Interp, args []*Obj) Result {
	var items []*Obj
	for _, a := range args[1:] {
		list, err := a.List()
		if err != nil {
			return Error(err.Error())
		}
		items = append(items, list...)
	}
	return OK(ip.Obj(ListType(items)))
}

func cmdAppend(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"append varName ?value ...?\"")
	}
	name := args[1].String()
	base := ""
	if existing, err := ip.current.getVariable(name); err == nil {
		base = existing.String()
	}
	for _, a := range args[2:] {
		base += a.String()
	}
	result := ip.String(base)
	ip.current.setVariable(name, result)
	return OK(result)
}
