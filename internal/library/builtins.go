package library

import (
	"fmt"
	"strconv"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// pureFunctions are the free functions bound in every starting namespace:
// len, str, int, float, bool, isinstance, and the display-only constructors
// for building containers from an iterable, matching the original's small
// builtins surface (no import, no eval/exec, no file I/O).
func pureFunctions() map[string]value.Fn {
	return map[string]value.Fn{
		"len":        builtinLen,
		"str":        builtinStr,
		"int":        builtinInt,
		"float":      builtinFloat,
		"bool":       builtinBool,
		"list":       builtinList,
		"tuple":      builtinTuple,
		"set":        builtinSet,
		"dict":       builtinDict,
		"sorted":     builtinSorted,
		"isinstance": builtinIsinstance,
		"range":      builtinRange,
	}
}

func arg(args []value.Value, i int) (value.Value, bool) {
	if i < len(args) {
		return args[i], true
	}
	return nil, false
}

func builtinLen(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return nil, fmt.Errorf("len() missing required argument")
	}
	var n int
	switch t := v.(type) {
	case *value.Str:
		n = t.Len()
	case *value.Tuple:
		n = len(t.Items)
	case *value.List:
		n = len(t.Items)
	case *value.Set:
		n = t.Len()
	case *value.Dict:
		n = t.Len()
	default:
		return nil, fmt.Errorf("object of type %q has no len()", v.Kind())
	}
	return value.NewInt(int64(n), capabilities.CaMeL(), value.DepsOf(v)), nil
}

func builtinStr(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewStrFromRaw("", capabilities.CaMeL(), nil), nil
	}
	if s, ok := v.(*value.Str); ok {
		return value.NewStr(s.Chars, s.Capabilities(), value.DepsOf(v)), nil
	}
	return value.NewStrFromRaw(displayOf(v), capabilities.CaMeL(), value.DepsOf(v)), nil
}

func displayOf(v value.Value) string {
	if b, ok := v.(*value.Bool); ok {
		return b.String()
	}
	return v.String()
}

func builtinInt(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewInt(0, capabilities.CaMeL(), nil), nil
	}
	switch t := v.(type) {
	case *value.Int:
		return value.NewInt(t.Val, capabilities.CaMeL(), value.DepsOf(v)), nil
	case *value.Float:
		return value.NewInt(int64(t.Val), capabilities.CaMeL(), value.DepsOf(v)), nil
	case *value.Bool:
		n := int64(0)
		if t.Val {
			n = 1
		}
		return value.NewInt(n, capabilities.CaMeL(), value.DepsOf(v)), nil
	case *value.Str:
		n, err := strconv.ParseInt(t.Go(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal for int(): %q", t.Go())
		}
		return value.NewInt(n, capabilities.CaMeL(), value.DepsOf(v)), nil
	default:
		return nil, fmt.Errorf("int() argument must be a string or a number, not %q", v.Kind())
	}
}

func builtinFloat(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewFloat(0, capabilities.CaMeL(), nil), nil
	}
	switch t := v.(type) {
	case *value.Float:
		return value.NewFloat(t.Val, capabilities.CaMeL(), value.DepsOf(v)), nil
	case *value.Int:
		return value.NewFloat(float64(t.Val), capabilities.CaMeL(), value.DepsOf(v)), nil
	case *value.Str:
		f, err := strconv.ParseFloat(t.Go(), 64)
		if err != nil {
			return nil, fmt.Errorf("could not convert string to float: %q", t.Go())
		}
		return value.NewFloat(f, capabilities.CaMeL(), value.DepsOf(v)), nil
	default:
		return nil, fmt.Errorf("float() argument must be a string or a number, not %q", v.Kind())
	}
}

func builtinBool(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewBool(false, capabilities.CaMeL(), nil), nil
	}
	return value.NewBool(value.Truthy(v), capabilities.CaMeL(), value.DepsOf(v)), nil
}

func iterableItems(v value.Value) ([]value.Value, error) {
	it, err := value.Iterate(v)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, item)
	}
	return out, nil
}

func builtinList(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewList(nil, capabilities.CaMeL(), nil), nil
	}
	items, err := iterableItems(v)
	if err != nil {
		return nil, err
	}
	return value.NewList(items, capabilities.CaMeL(), value.DepsOf(v)), nil
}

func builtinTuple(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewTuple(nil, capabilities.CaMeL(), nil), nil
	}
	items, err := iterableItems(v)
	if err != nil {
		return nil, err
	}
	return value.NewTuple(items, capabilities.CaMeL(), value.DepsOf(v)), nil
}

func builtinSet(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return value.NewSet(nil, capabilities.CaMeL(), nil), nil
	}
	items, err := iterableItems(v)
	if err != nil {
		return nil, err
	}
	return value.NewSet(items, capabilities.CaMeL(), value.DepsOf(v)), nil
}

func builtinDict(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	d := value.NewDict(capabilities.CaMeL(), nil)
	if v, ok := arg(args, 0); ok {
		if src, ok := v.(*value.Dict); ok {
			for _, k := range src.Keys {
				val, _ := src.Get(k)
				d.Set(k, val)
			}
		}
	}
	for k, v := range kwargs {
		d.Set(value.NewStrFromRaw(k, capabilities.Default(), nil), v)
	}
	return d, nil
}

func builtinSorted(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	if !ok {
		return nil, fmt.Errorf("sorted() missing required argument")
	}
	items, err := iterableItems(v)
	if err != nil {
		return nil, err
	}
	out := append([]value.Value(nil), items...)
	reverse := false
	if rv, ok := kwargs["reverse"]; ok {
		reverse = value.Truthy(rv)
	}
	less := func(a, b value.Value) (bool, error) {
		r, err := value.Compare(value.CmpLt, a, b)
		if err != nil {
			return false, err
		}
		ok := value.Truthy(r)
		if reverse {
			return !ok, nil
		}
		return ok, nil
	}
	var sortErr error
	for i := 1; i < len(out) && sortErr == nil; i++ {
		for j := i; j > 0; j-- {
			lt, err := less(out[j], out[j-1])
			if err != nil {
				sortErr = err
				break
			}
			if !lt {
				break
			}
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if sortErr != nil {
		return nil, sortErr
	}
	return value.NewList(out, capabilities.CaMeL(), value.DepsOf(v)), nil
}

func builtinIsinstance(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	v, ok := arg(args, 0)
	cls, ok2 := arg(args, 1)
	if !ok || !ok2 {
		return nil, fmt.Errorf("isinstance() requires 2 arguments")
	}
	c, ok := cls.(*value.Class)
	if !ok {
		return nil, fmt.Errorf("isinstance() arg 2 must be a class")
	}
	inst, ok := v.(*value.ClassInstance)
	if !ok {
		return value.NewBoolResult(false, v), nil
	}
	return value.NewBoolResult(inst.Class.IsSubclassOf(c), v), nil
}

func builtinRange(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		stop = mustInt(args[0])
	case 2:
		start = mustInt(args[0])
		stop = mustInt(args[1])
	case 3:
		start = mustInt(args[0])
		stop = mustInt(args[1])
		step = mustInt(args[2])
	default:
		return nil, fmt.Errorf("range() expected 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return nil, fmt.Errorf("range() step argument must not be zero")
	}
	var items []value.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			items = append(items, value.NewInt(i, capabilities.CaMeL(), value.DepsOf(args)))
		}
	} else {
		for i := start; i > stop; i += step {
			items = append(items, value.NewInt(i, capabilities.CaMeL(), value.DepsOf(args)))
		}
	}
	return value.NewList(items, capabilities.CaMeL(), value.DepsOf(args)), nil
}

func mustInt(v value.Value) int64 {
	if i, ok := v.(*value.Int); ok {
		return i.Val
	}
	return 0
}
