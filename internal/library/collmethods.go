package library

import (
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func listMethods() map[string]value.Fn {
	return map[string]value.Fn{
		"append": listAppend,
		"count":  listCount,
		"index":  listIndex,
		"extend": listExtend,
		"pop":    listPop,
	}
}

func requireList(args []value.Value, i int, label string) (*value.List, error) {
	v, ok := arg(args, i)
	if !ok {
		return nil, fmt.Errorf("missing %s argument", label)
	}
	l, ok := v.(*value.List)
	if !ok {
		return nil, fmt.Errorf("%s must be a list, got %s", label, v.Kind())
	}
	return l, nil
}

func listAppend(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireList(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	v, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("append() missing value argument")
	}
	recv.Append(v)
	return value.NewNone(capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func listExtend(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireList(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	other, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("extend() missing iterable argument")
	}
	items, err := iterableItems(other)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		recv.Append(it)
	}
	return value.NewNone(capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func listCount(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireList(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	target, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("count() missing value argument")
	}
	n := 0
	for _, it := range recv.Items {
		eq, err := value.Compare(value.CmpEq, it, target)
		if err != nil {
			return nil, err
		}
		if value.Truthy(eq) {
			n++
		}
	}
	return value.NewInt(int64(n), capabilities.CaMeL(), value.DepsOf(value.Value(recv), target)), nil
}

func listIndex(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireList(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	target, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("index() missing value argument")
	}
	for i, it := range recv.Items {
		eq, err := value.Compare(value.CmpEq, it, target)
		if err != nil {
			return nil, err
		}
		if value.Truthy(eq) {
			return value.NewInt(int64(i), capabilities.CaMeL(), value.DepsOf(value.Value(recv), target)), nil
		}
	}
	return nil, fmt.Errorf("%s is not in list", target.String())
}

func listPop(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireList(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	idx := len(recv.Items) - 1
	if len(args) > 1 {
		if i, ok := args[1].(*value.Int); ok {
			idx = int(i.Val)
			if idx < 0 {
				idx += len(recv.Items)
			}
		}
	}
	if idx < 0 || idx >= len(recv.Items) {
		return nil, fmt.Errorf("pop index out of range")
	}
	v := recv.Items[idx]
	recv.Items = append(recv.Items[:idx], recv.Items[idx+1:]...)
	return v.WithDependency(recv), nil
}

func dictMethods() map[string]value.Fn {
	return map[string]value.Fn{
		"get":    dictGet,
		"keys":   dictKeys,
		"values": dictValues,
		"items":  dictItems,
		"pop":    dictPop,
	}
}

func requireDict(args []value.Value, i int, label string) (*value.Dict, error) {
	v, ok := arg(args, i)
	if !ok {
		return nil, fmt.Errorf("missing %s argument", label)
	}
	d, ok := v.(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("%s must be a dict, got %s", label, v.Kind())
	}
	return d, nil
}

func dictGet(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireDict(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	key, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("get() missing key argument")
	}
	if v, ok := recv.Get(key); ok {
		return v.WithDependency(recv), nil
	}
	if def, ok := arg(args, 2); ok {
		return def, nil
	}
	return value.NewNone(capabilities.CaMeL(), value.DepsOf(value.Value(recv), key)), nil
}

func dictKeys(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireDict(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	items := make([]value.Value, len(recv.Keys))
	for i, k := range recv.Keys {
		items[i] = k.WithDependency(recv)
	}
	return value.NewList(items, capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func dictValues(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireDict(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	items := make([]value.Value, len(recv.Keys))
	for i, k := range recv.Keys {
		v, _ := recv.Get(k)
		items[i] = v.WithDependency(recv)
	}
	return value.NewList(items, capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func dictItems(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireDict(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	items := make([]value.Value, len(recv.Keys))
	for i, k := range recv.Keys {
		v, _ := recv.Get(k)
		pair := value.NewTuple([]value.Value{k, v}, capabilities.CaMeL(), value.DepsOf(value.Value(recv)))
		items[i] = pair
	}
	return value.NewList(items, capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func dictPop(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireDict(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	key, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("pop() missing key argument")
	}
	v, ok := recv.Get(key)
	if !ok {
		if def, ok := arg(args, 2); ok {
			return def, nil
		}
		return nil, fmt.Errorf("%s", key.String())
	}
	recv.Delete(key)
	return v.WithDependency(recv), nil
}

func setMethods() map[string]value.Fn {
	return map[string]value.Fn{
		"add":    setAdd,
		"remove": setRemove,
		"union":  setUnion,
	}
}

func requireSet(args []value.Value, i int, label string) (*value.Set, error) {
	v, ok := arg(args, i)
	if !ok {
		return nil, fmt.Errorf("missing %s argument", label)
	}
	s, ok := v.(*value.Set)
	if !ok {
		return nil, fmt.Errorf("%s must be a set, got %s", label, v.Kind())
	}
	return s, nil
}

func setAdd(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireSet(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	v, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("add() missing value argument")
	}
	recv.Add(v)
	return value.NewNone(capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func setRemove(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireSet(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	v, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("remove() missing value argument")
	}
	if !recv.Remove(v) {
		return nil, fmt.Errorf("%s", v.String())
	}
	return value.NewNone(capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func setUnion(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireSet(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	other, ok := arg(args, 1)
	if !ok {
		return nil, fmt.Errorf("union() missing argument")
	}
	out := value.NewSet(recv.Items(), capabilities.CaMeL(), value.DepsOf(value.Value(recv)))
	items, err := iterableItems(other)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out.Add(it)
	}
	return out, nil
}
