package value

import "github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"

// CallableKind discriminates the three callable flavors named in spec §3.4.
type CallableKind int

const (
	CallableBuiltinFn CallableKind = iota
	CallableBuiltinMethod
	CallableToolFn
)

// Fn is the underlying Go function a Callable invokes. args/kwargs are
// already-evaluated, fully capability-labelled values. For bound methods,
// Call passes the Receiver as args[0], so built-in method tables hold plain
// Fns that do not close over a receiver.
type Fn func(args []Value, kwargs map[string]Value) (Value, error)

// Callable implements the "common call interface" from spec §9: built-in
// functions, bound methods, and tool functions all carry a name, a Go
// implementation, and (for methods) a receiver that is automatically added
// to the result's dependencies by the interpreter's call site.
type Callable struct {
	base
	Name     string
	Kind_    CallableKind
	Impl     Fn
	Receiver Value // non-nil for CallableBuiltinMethod
	ToolID   string
}

func NewBuiltinFn(name string, impl Fn, meta capabilities.Capabilities, deps []Value) *Callable {
	return &Callable{newBase(meta, deps), name, CallableBuiltinFn, impl, nil, ""}
}

func NewBoundMethod(name string, impl Fn, receiver Value) *Callable {
	return &Callable{newBase(capabilities.CaMeL(), DepsOf(receiver)), name, CallableBuiltinMethod, impl, receiver, ""}
}

func NewToolFn(toolID string, impl Fn, meta capabilities.Capabilities, deps []Value) *Callable {
	return &Callable{newBase(meta, deps), toolID, CallableToolFn, impl, nil, toolID}
}

func (*Callable) Kind() Kind       { return KindCallable }
func (c *Callable) Raw() any       { return c.Name }
func (c *Callable) String() string { return "<callable " + c.Name + ">" }
func (c *Callable) WithDependency(extra Value) Value {
	cp := *c
	cp.base = newBase(c.meta, appendDeps(c.deps, []Value{extra}))
	return &cp
}

// Call invokes the underlying Go function. It does not perform policy
// checks, dependency aggregation, or the side-effect-aliasing guard: those
// are the interpreter's responsibility (spec §4.4) since they need the
// call-site's aggregated dependency context and the tool registry.
//
// Bound methods receive their receiver as args[0]: the method table holds
// plain Fns unaware of binding, so Call prepends it here rather than making
// every table entry close over a receiver at lookup time.
func (c *Callable) Call(args []Value, kwargs map[string]Value) (Value, error) {
	if c.Kind_ == CallableBuiltinMethod && c.Receiver != nil {
		full := make([]Value, 0, len(args)+1)
		full = append(full, c.Receiver)
		full = append(full, args...)
		return c.Impl(full, kwargs)
	}
	return c.Impl(args, kwargs)
}
