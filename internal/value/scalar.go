package value

import (
	"fmt"
	"strconv"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

// None is the singleton-shaped null value. Unlike Python, each evaluation
// produces its own None instance so dependency tracking stays per-site.
type None struct{ base }

func NewNone(meta capabilities.Capabilities, deps []Value) *None {
	return &None{newBase(meta, deps)}
}
func (*None) Kind() Kind       { return KindNone }
func (*None) Raw() any         { return nil }
func (n *None) String() string { return "None" }
func (n *None) WithDependency(extra Value) Value {
	return NewNone(n.meta, appendDeps(n.deps, []Value{extra}))
}

// Bool wraps a Python boolean.
type Bool struct {
	base
	Val bool
}

func NewBool(v bool, meta capabilities.Capabilities, deps []Value) *Bool {
	return &Bool{newBase(meta, deps), v}
}
func (*Bool) Kind() Kind { return KindBool }
func (b *Bool) Raw() any { return b.Val }
func (b *Bool) String() string {
	if b.Val {
		return "True"
	}
	return "False"
}
func (b *Bool) WithDependency(extra Value) Value {
	return NewBool(b.Val, b.meta, appendDeps(b.deps, []Value{extra}))
}

// Int wraps a Python int (arbitrary-precision in the original; this
// implementation uses int64, matching the teacher's preference for fixed
// native integer types over big.Int where the domain does not need it).
type Int struct {
	base
	Val int64
}

func NewInt(v int64, meta capabilities.Capabilities, deps []Value) *Int {
	return &Int{newBase(meta, deps), v}
}
func (*Int) Kind() Kind       { return KindInt }
func (i *Int) Raw() any       { return i.Val }
func (i *Int) String() string { return strconv.FormatInt(i.Val, 10) }
func (i *Int) WithDependency(extra Value) Value {
	return NewInt(i.Val, i.meta, appendDeps(i.deps, []Value{extra}))
}

// Float wraps a Python float.
type Float struct {
	base
	Val float64
}

func NewFloat(v float64, meta capabilities.Capabilities, deps []Value) *Float {
	return &Float{newBase(meta, deps), v}
}
func (*Float) Kind() Kind       { return KindFloat }
func (f *Float) Raw() any       { return f.Val }
func (f *Float) String() string { return strconv.FormatFloat(f.Val, 'g', -1, 64) }
func (f *Float) WithDependency(extra Value) Value {
	return NewFloat(f.Val, f.meta, appendDeps(f.deps, []Value{extra}))
}

// Truthy implements Python truthiness for the scalar and container kinds
// that the interpreter needs for `if`/`while`/bool ops. Collections answer
// via their own Len.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case *None:
		return false
	case *Bool:
		return t.Val
	case *Int:
		return t.Val != 0
	case *Float:
		return t.Val != 0
	case *Str:
		return len(t.Chars) != 0
	case *Tuple:
		return len(t.Items) != 0
	case *List:
		return len(t.Items) != 0
	case *Set:
		return t.Len() != 0
	case *Dict:
		return len(t.Keys) != 0
	default:
		return true
	}
}

// NewBoolResult is a helper used throughout operator implementations: the
// result of any comparison/containment is always camel()-labelled per
// spec §4.2 rule 2, with the given dependencies.
func NewBoolResult(v bool, deps ...Value) *Bool {
	return NewBool(v, capabilities.CaMeL(), deps)
}

func typeErrorUnsupportedOperand(op string, a, b Value) error {
	return fmt.Errorf("unsupported operand type(s) for %s: %q and %q", op, a.Kind(), b.Kind())
}
