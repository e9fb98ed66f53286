package value

import "github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"

// FromRaw wraps a plain Go payload (as returned by a tool function or a
// built-in) into the tagged-union Value model, recursively for slices and
// maps. It reverses Value.Raw for scalars, lists and dicts; tuples and sets
// come back as List (their Raw is also []any) and class instances as Dict.
// It is the single entry point the tool adapter and built-in library use to
// label external data (spec §4.6).
func FromRaw(raw any, meta capabilities.Capabilities, deps []Value) Value {
	switch t := raw.(type) {
	case nil:
		return NewNone(meta, deps)
	case bool:
		return NewBool(t, meta, deps)
	case int:
		return NewInt(int64(t), meta, deps)
	case int64:
		return NewInt(t, meta, deps)
	case float64:
		return NewFloat(t, meta, deps)
	case string:
		return NewStrFromRaw(t, meta, deps)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromRaw(it, meta, nil)
		}
		return NewList(items, meta, deps)
	case map[string]any:
		d := NewDict(meta, deps)
		for k, v := range t {
			d.Set(NewStrFromRaw(k, meta, nil), FromRaw(v, meta, nil))
		}
		return d
	case map[any]any:
		d := NewDict(meta, deps)
		for k, v := range t {
			d.Set(FromRaw(k, meta, nil), FromRaw(v, meta, nil))
		}
		return d
	default:
		return NewStrFromRaw("", meta, deps)
	}
}

// Rewrap rebuilds v's native payload under a fresh, explicit capability
// label and dependency list, discarding whatever label the value carried
// before. This implements the call boundary's uniform built-in wrapping
// rule (spec §4.4 step 6), which overrides per-operator metadata rather
// than composing with it.
func Rewrap(v Value, meta capabilities.Capabilities, deps []Value) Value {
	return FromRaw(v.Raw(), meta, deps)
}
