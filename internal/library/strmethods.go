package library

import (
	"fmt"
	"strings"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// strMethods implements the small slice of str methods the original
// sandbox exposes: case folding, whitespace trimming, splitting/joining,
// substring tests, and replacement. Every result's dependencies include
// the receiver (args[0], see value.Callable.Call) per spec §4.2's
// method-call rule.
func strMethods() map[string]value.Fn {
	return map[string]value.Fn{
		"upper":      strUnary(strings.ToUpper),
		"lower":      strUnary(strings.ToLower),
		"strip":      strUnary(strings.TrimSpace),
		"title":      strUnary(titleCase),
		"capitalize": strUnary(capitalize),
		"startswith": strPredicate(strings.HasPrefix),
		"endswith":   strPredicate(strings.HasSuffix),
		"split":      strSplit,
		"join":       strJoin,
		"replace":    strReplace,
		"find":       strFind,
	}
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

func strUnary(f func(string) string) value.Fn {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		recv, err := requireStr(args, 0, "receiver")
		if err != nil {
			return nil, err
		}
		return value.NewStrFromRaw(f(recv.Go()), capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
	}
}

func strPredicate(f func(s, prefix string) bool) value.Fn {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		recv, err := requireStr(args, 0, "receiver")
		if err != nil {
			return nil, err
		}
		other, err := requireStr(args, 1, "argument")
		if err != nil {
			return nil, err
		}
		return value.NewBoolResult(f(recv.Go(), other.Go()), value.Value(recv), value.Value(other)), nil
	}
}

func strSplit(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireStr(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	sep := " "
	hasSep := len(args) > 1
	if hasSep {
		other, err := requireStr(args, 1, "sep")
		if err != nil {
			return nil, err
		}
		sep = other.Go()
	}
	var parts []string
	if hasSep {
		parts = strings.Split(recv.Go(), sep)
	} else {
		parts = strings.Fields(recv.Go())
	}
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = value.NewStrFromRaw(p, capabilities.CaMeL(), value.DepsOf(value.Value(recv)))
	}
	return value.NewList(items, capabilities.CaMeL(), value.DepsOf(value.Value(recv))), nil
}

func strJoin(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireStr(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("join() missing iterable argument")
	}
	items, err := iterableItems(args[1])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	deps := value.DepsOf(value.Value(recv))
	for i, it := range items {
		s, ok := it.(*value.Str)
		if !ok {
			return nil, fmt.Errorf("sequence item %d: expected str instance", i)
		}
		parts[i] = s.Go()
		deps = append(deps, it)
	}
	return value.NewStrFromRaw(strings.Join(parts, recv.Go()), capabilities.CaMeL(), deps), nil
}

func strReplace(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireStr(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	old, err := requireStr(args, 1, "old")
	if err != nil {
		return nil, err
	}
	new_, err := requireStr(args, 2, "new")
	if err != nil {
		return nil, err
	}
	out := strings.ReplaceAll(recv.Go(), old.Go(), new_.Go())
	return value.NewStrFromRaw(out, capabilities.CaMeL(), value.DepsOf(value.Value(recv), value.Value(old), value.Value(new_))), nil
}

func strFind(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	recv, err := requireStr(args, 0, "receiver")
	if err != nil {
		return nil, err
	}
	needle, err := requireStr(args, 1, "sub")
	if err != nil {
		return nil, err
	}
	idx := strings.Index(recv.Go(), needle.Go())
	return value.NewInt(int64(idx), capabilities.CaMeL(), value.DepsOf(value.Value(recv), value.Value(needle))), nil
}

func requireStr(args []value.Value, i int, label string) (*value.Str, error) {
	v, ok := arg(args, i)
	if !ok {
		return nil, fmt.Errorf("missing %s argument", label)
	}
	s, ok := v.(*value.Str)
	if !ok {
		return nil, fmt.Errorf("%s must be a str, got %s", label, v.Kind())
	}
	return s, nil
}
