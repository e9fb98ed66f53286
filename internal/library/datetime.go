package library

import (
	"fmt"
	"time"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// datetimeClass mirrors the original's reliance on Python's datetime for
// scheduling tools (calendar/email agents in the expanded spec): a single
// opaque field ("iso") holding an RFC3339 string. == compares instances by
// that field; ordering comparisons (<, <=, >, >=) between instances are
// not supported and raise a TypeError.
func datetimeClass() *value.Class {
	fields := []value.FieldSpec{{Name: "iso", Required: true}}
	c := value.NewClass("datetime", nil, fields, true)
	c.New = func(cl *value.Class, args []value.Value, kwargs map[string]value.Value) (*value.ClassInstance, error) {
		year, month, day := 1970, 1, 1
		hour, min, sec := 0, 0, 0
		ints := []*int{&year, &month, &day, &hour, &min, &sec}
		for i, v := range args {
			if i >= len(ints) {
				break
			}
			n, ok := v.(*value.Int)
			if !ok {
				return nil, fmt.Errorf("datetime() arguments must be int")
			}
			*ints[i] = int(n.Val)
		}
		t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
		inst := value.NewClassInstance(cl, capabilities.CaMeL(), value.DepsOf(args))
		// Set directly: the class is frozen, so SetAttr would refuse.
		inst.Fields["iso"] = value.NewStrFromRaw(t.Format(time.RFC3339), capabilities.CaMeL(), value.DepsOf(args))
		return inst, nil
	}
	c.ClassAttrs["now"] = value.NewBuiltinFn("datetime.now", func(_ []value.Value, _ map[string]value.Value) (value.Value, error) {
		return nil, fmt.Errorf("datetime.now() is not available: runs must be deterministic")
	}, capabilities.CaMeL(), nil)
	return c
}
