package feather

// registerArithCommands exposes the same integer-first/double-fallback
// arithmetic the expression VM uses (exprvm.go's binaryNum) as ordinary
// top-level commands, so scripts can write `+ 1 2` directly without going
// through `expr`.
func registerArithCommands(ip *Interp) {
	r := ip.registry
	r.define("+", &command{native: makeArithCommand(opAdd, 0)})
	r.define("*", &command{native: makeArithCommand(opMul, 1)})
	r.define("-", &command{native: cmdSub})
	r.define("/", &command{native: cmdDivCmd})
}

func makeArithCommand(op exprOp, identity int64) nativeCommand {
	return func(ip *Interp, args []*Obj) Result {
		acc := exprNum{i: identity}
		for _, a := range args[1:] {
			n, err := objToNum(a)
			if err != nil {
				return Error(err.Error())
			}
			acc, err = binaryNum(op, acc, n)
			if err != nil {
				return Error(err.Error())
			}
		}
		return OK(acc.toObj())
	}
}

func cmdSub(ip *Interp, args []*Obj) Result {
	nums := args[1:]
	if len(nums) == 0 {
		return Errorf("wrong # args: should be \"- number ?number ...?\"")
	}
	first, err := objToNum(nums[0])
	if err != nil {
		return Error(err.Error())
	}
	if len(nums) == 1 {
		zero := exprNum{i: 0}
		neg, err := binaryNum(opSub, zero, first)
		if err != nil {
			return Error(err.Error())
		}
		return OK(neg.toObj())
	}
	acc := first
	for _, a := range nums[1:] {
		n, err := objToNum(a)
		if err != nil {
			return Error(err.Error())
		}
		acc, err = binaryNum(opSub, acc, n)
		if err != nil {
			return Error(err.Error())
		}
	}
	return OK(acc.toObj())
}

func cmdDivCmd(ip *Interp, args []*Obj) Result {
	nums := args[1:]
	if len(nums) == 0 {
		return Errorf("wrong # args: should be \"/ number ?number ...?\"")
	}
	first, err := objToNum(nums[0])
	if err != nil {
		return Error(err.Error())
	}
	if len(nums) == 1 {
		one := exprNum{i: 1}
		q, err := binaryNum(opDiv, one, first)
		if err != nil {
			return Error(err.Error())
		}
		return OK(q.toObj())
	}
	acc := first
	for _, a := range nums[1:] {
		n, err := objToNum(a)
		if err != nil {
			return Error(err.Error())
		}
		acc, err = binaryNum(opDiv, acc, n)
		if err != nil {
			return Error(err.Error())
		}
	}
	return OK(acc.toObj())
}
