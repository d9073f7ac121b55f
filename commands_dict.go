package feather

func registerDictCommands(ip *Interp) {
	ip.registry.define("dict", &command{native: cmdDict})
	ip.registry.define("array", &command{native: cmdArray})
}

// cmdArray implements `array`, the traditional entry point for a variable
// holding a dict-sugar array (`set a(x) 1`, see dictSugarSet in eval.go):
// dict-sugar and `array` read and write the same underlying DictType value,
// so either syntax sees the other's writes.
func cmdArray(ip *Interp, args []*Obj) Result {
	if len(args) < 3 {
		return Errorf("wrong # args: should be \"array subcommand arrayName\"")
	}
	sub := args[1].String()
	name := args[2].String()
	existing, err := ip.current.getVariable(name)
	switch sub {
	case "get":
		if err != nil {
			return OK(ip.Obj(ListType(nil)))
		}
		d, derr := existing.Dict()
		if derr != nil {
			return Errorf("%q isn't an array", name)
		}
		items := make([]*Obj, 0, 2*len(d.Order))
		for _, k := range d.Order {
			items = append(items, ip.String(k), d.Items[k])
		}
		return OK(ip.Obj(ListType(items)))
	case "names":
		if err != nil {
			return OK(ip.Obj(ListType(nil)))
		}
		d, derr := existing.Dict()
		if derr != nil {
			return Errorf("%q isn't an array", name)
		}
		items := make([]*Obj, len(d.Order))
		for i, k := range d.Order {
			items[i] = ip.String(k)
		}
		return OK(ip.Obj(ListType(items)))
	case "size":
		if err != nil {
			return OK(ip.Int(0))
		}
		d, derr := existing.Dict()
		if derr != nil {
			return Errorf("%q isn't an array", name)
		}
		return OK(ip.Int(int64(len(d.Order))))
	case "exists":
		if err != nil {
			return OK(ip.Bool(false))
		}
		_, derr := existing.Dict()
		return OK(ip.Bool(derr == nil))
	case "unset":
		if err == nil {
			_ = ip.current.unsetVariable(name)
		}
		return OK(ip.String(""))
	case "set":
		if len(args) != 4 {
			return Errorf("wrong # args: should be \"array set arrayName list\"")
		}
		kv, kerr := args[3].List()
		if kerr != nil || len(kv)%2 != 0 {
			return Errorf("list must have an even number of elements")
		}
		for i := 0; i+1 < len(kv); i += 2 {
			if err := ip.dictSugarSet(ip.current, name, kv[i].String(), kv[i+1]); err != nil {
				return Error(err.Error())
			}
		}
		return OK(ip.String(""))
	default:
		return Errorf("unknown or ambiguous subcommand %q: must be get, names, size, exists, unset, or set", sub)
	}
}

func cmdDict(ip *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"dict subcommand ...\"")
	}
	sub := args[1].String()
	rest := args[2:]
	switch sub {
	case "create":
		d := &DictType{Items: make(map[string]*Obj)}
		for i := 0; i+1 < len(rest); i += 2 {
			key := rest[i].String()
			if _, exists := d.Items[key]; !exists {
				d.Order = append(d.Order, key)
			}
			d.Items[key] = rest[i+1]
		}
		return OK(ip.Obj(d))
	case "get":
		if len(rest) < 1 {
			return Errorf("wrong # args: should be \"dict get dictionary ?key ...?\"")
		}
		d, err := rest[0].Dict()
		if err != nil {
			return Error(err.Error())
		}
		if len(rest) == 1 {
			return OK(ip.Obj(d))
		}
		v, ok := d.Items[rest[1].String()]
		if !ok {
			return Errorf("key %q not known in dictionary", rest[1].String())
		}
		return OK(v)
	case "set":
		if len(rest) != 3 {
			return Errorf("wrong # args: should be \"dict set varName key value\"")
		}
		name := rest[0].String()
		var d *DictType
		if existing, err := ip.current.getVariable(name); err == nil {
			if dd, derr := existing.Dict(); derr == nil {
				d = dd.Dup().(*DictType)
			}
		}
		if d == nil {
			d = &DictType{Items: make(map[string]*Obj)}
		}
		key := rest[1].String()
		if _, exists := d.Items[key]; !exists {
			d.Order = append(d.Order, key)
		}
		d.Items[key] = rest[2]
		result := ip.Obj(d)
		ip.current.setVariable(name, result)
		return OK(result)
	case "exists":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"dict exists dictionary key\"")
		}
		d, err := rest[0].Dict()
		if err != nil {
			return Error(err.Error())
		}
		_, ok := d.Items[rest[1].String()]
		return OK(ok)
	case "unset":
		if len(rest) != 2 {
			return Errorf("wrong # args: should be \"dict unset varName key\"")
		}
		name := rest[0].String()
		existing, err := ip.current.getVariable(name)
		if err != nil {
			return Error(err.Error())
		}
		d, err := existing.Dict()
		if err != nil {
			return Error(err.Error())
		}
		d = d.Dup().(*DictType)
		key := rest[1].String()
		delete(d.Items, key)
		for i, k := range d.Order {
			if k == key {
				d.Order = append(d.Order[:i], d.Order[i+1:]...)
				break
			}
		}
		result := ip.Obj(d)
		ip.current.setVariable(name, result)
		return OK(result)
	case "keys":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"dict keys dictionary\"")
		}
		d, err := rest[0].Dict()
		if err != nil {
			return Error(err.Error())
		}
		items := make([]*Obj, len(d.Order))
		for i, k := range d.Order {
			items[i] = ip.String(k)
		}
		return OK(ip.Obj(ListType(items)))
	case "values":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"dict values dictionary\"")
		}
		d, err := rest[0].Dict()
		if err != nil {
			return Error(err.Error())
		}
		items := make([]*Obj, len(d.Order))
		for i, k := range d.Order {
			items[i] = d.Items[k]
		}
		return OK(ip.Obj(ListType(items)))
	case "size":
		if len(rest) != 1 {
			return Errorf("wrong # args: should be \"dict size dictionary\"")
		}
		d, err := rest[0].Dict()
		if err != nil {
			return Error(err.Error())
		}
		return OK(ip.Int(int64(len(d.Order))))
	case "merge":
		merged := &DictType{Items: make(map[string]*Obj)}
		for _, a := range rest {
			d, err := a.Dict()
			if err != nil {
				return Error(err.Error())
			}
			for _, k := range d.Order {
				if _, exists := merged.Items[k]; !exists {
					merged.Order = append(merged.Order, k)
				}
				merged.Items[k] = d.Items[k]
			}
		}
		return OK(ip.Obj(merged))
	default:
		return Errorf("unknown or ambiguous subcommand %q: must be create, get, set, exists, unset, keys, values, size, or merge", sub)
	}
}
