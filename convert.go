package feather

import (
	"fmt"
	"reflect"
	"strings"
)

// toTclString converts a Go value to a TCL string representation.
func toTclString(v any) string {
	if v == nil {
		return "{}"
	}
	switch val := v.(type) {
	case string:
		return quote(val)
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []string:
		parts := make([]string, len(val))
		for i, s := range val {
			parts[i] = quote(s)
		}
		return strings.Join(parts, " ")
	case *Obj:
		if val == nil {
			return "{}"
		}
		return quote(val.String())
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			parts := make([]string, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				parts[i] = toTclString(rv.Index(i).Interface())
			}
			return strings.Join(parts, " ")
		case reflect.Map:
			var parts []string
			iter := rv.MapRange()
			for iter.Next() {
				parts = append(parts, toTclString(iter.Key().Interface()))
				parts = append(parts, toTclString(iter.Value().Interface()))
			}
			return strings.Join(parts, " ")
		default:
			return quote(fmt.Sprintf("%v", v))
		}
	}
}

// quote adds braces around a string if it contains special characters.
func quote(s string) string {
	if s == "" {
		return "{}"
	}
	for _, c := range s {
		if c == ' ' || c == '\t' || c == '\n' || c == '{' || c == '}' || c == '"' || c == '\\' || c == '$' || c == '[' || c == ']' {
			return "{" + s + "}"
		}
	}
	return s
}

// wrapFunc wraps a Go function to be callable from TCL, converting
// arguments and results between Go and Obj values by reflection.
func wrapFunc(fn any) nativeCommand {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("Register: expected function, got %T", fn))
	}

	return func(ip *Interp, args []*Obj) Result {
		callArgs := args[1:] // args[0] is the command name
		numIn := fnType.NumIn()
		isVariadic := fnType.IsVariadic()

		if isVariadic {
			if len(callArgs) < numIn-1 {
				return Errorf("wrong # args: expected at least %d, got %d", numIn-1, len(callArgs))
			}
		} else if len(callArgs) != numIn {
			return Errorf("wrong # args: expected %d, got %d", numIn, len(callArgs))
		}

		in := make([]reflect.Value, len(callArgs))
		for j, arg := range callArgs {
			var paramType reflect.Type
			if isVariadic && j >= numIn-1 {
				paramType = fnType.In(numIn - 1).Elem()
			} else {
				paramType = fnType.In(j)
			}
			converted, err := convertArgTo(arg, paramType)
			if err != nil {
				return Errorf("argument %d: %v", j+1, err)
			}
			in[j] = converted
		}

		results := fnVal.Call(in)
		return resultsToResult(results, fnType)
	}
}

// convertArgTo converts a *Obj to a Go value of the given reflect.Type,
// the way `expr`'s number coercion and Obj's shimmering accessors do.
func convertArgTo(arg *Obj, targetType reflect.Type) (reflect.Value, error) {
	switch targetType.Kind() {
	case reflect.String:
		return reflect.ValueOf(arg.String()), nil
	case reflect.Int:
		v, err := arg.Int()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(int(v)), nil
	case reflect.Int64:
		v, err := arg.Int()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Float64:
		v, err := arg.Double()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Bool:
		v, err := arg.Bool()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Slice:
		items, err := arg.List()
		if err != nil {
			return reflect.Value{}, err
		}
		if targetType.Elem().Kind() == reflect.String {
			slice := make([]string, len(items))
			for j, item := range items {
				slice[j] = item.String()
			}
			return reflect.ValueOf(slice), nil
		}
		slice := reflect.MakeSlice(targetType, len(items), len(items))
		for j, item := range items {
			converted, err := convertArgTo(item, targetType.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %v", j, err)
			}
			slice.Index(j).Set(converted)
		}
		return slice, nil
	case reflect.Interface:
		if targetType.NumMethod() == 0 {
			return reflect.ValueOf(arg.String()), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot convert to interface %v", targetType)
	case reflect.Ptr:
		if ft, ok := arg.InternalRep().(*ForeignType); ok {
			v := reflect.ValueOf(ft.Value)
			if v.Type().AssignableTo(targetType) {
				return v, nil
			}
		}
		return reflect.Value{}, fmt.Errorf("cannot convert %q to %v", arg.String(), targetType)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type: %v", targetType)
	}
}

func resultsToResult(results []reflect.Value, fnType reflect.Type) Result {
	if len(results) == 0 {
		return OK("")
	}
	last := results[len(results)-1]
	if fnType.NumOut() > 0 && fnType.Out(fnType.NumOut()-1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			return Error(last.Interface().(error).Error())
		}
		results = results[:len(results)-1]
	}
	if len(results) == 0 {
		return OK("")
	}
	return OK(goValueToAny(results[0]))
}

// goValueToAny extracts a plain Go value from a reflect.Value so OK() can
// dispatch on its dynamic type, converting slices to []string the way a
// native command building a TCL result would; maps and other kinds are
// formatted with fmt's %v.
func goValueToAny(v reflect.Value) any {
	if !v.IsValid() {
		return ""
	}
	switch v.Kind() {
	case reflect.String, reflect.Int, reflect.Int64, reflect.Float64, reflect.Bool:
		return v.Interface()
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32:
		return v.Float()
	case reflect.Slice, reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprintf("%v", goValueToAny(v.Index(i)))
		}
		return parts
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return ""
		}
		return fmt.Sprintf("%v", v.Interface())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
