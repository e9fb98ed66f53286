// Package namespace implements the interpreter's name bindings: immutable
// by rebind (assigning a name produces a new Namespace), with interior
// mutability for containers (mutating a list bound in the namespace does
// not require rebinding — see spec §3.5).
package namespace

import "github.com/jbhoffman613/camel-prompt-injection/internal/value"

// Namespace is a persistent (copy-on-write) mapping from name to value.
// Sharing the parent's map and only copying on write keeps `with_variables`
// and per-statement rebinding cheap for the common case of a handful of
// names touched per run.
type Namespace struct {
	vars map[string]value.Value
}

// New builds an empty namespace.
func New() *Namespace {
	return &Namespace{vars: map[string]value.Value{}}
}

// WithBuiltins is populated by the library package at startup (see
// library.NamespaceWithBuiltins) to avoid an import cycle between
// namespace and library.
func WithBuiltins(builtins map[string]value.Value) *Namespace {
	n := New()
	for k, v := range builtins {
		n.vars[k] = v
	}
	return n
}

// WithVariables returns a new Namespace with the given bindings merged in,
// leaving the receiver untouched. This is the only path the driver uses to
// seed user-supplied starting values (spec §6.1).
func (n *Namespace) WithVariables(vars map[string]value.Value) *Namespace {
	out := n.clone()
	for k, v := range vars {
		out.vars[k] = v
	}
	return out
}

// Get looks up a name.
func (n *Namespace) Get(name string) (value.Value, bool) {
	v, ok := n.vars[name]
	return v, ok
}

// Bind returns a new Namespace with name rebound to v. The interpreter
// calls this for every assignment statement; container mutation in place
// (list.append, attribute set) does not call Bind since the bound value's
// identity does not change.
func (n *Namespace) Bind(name string, v value.Value) *Namespace {
	out := n.clone()
	out.vars[name] = v
	return out
}

// BindAll is a convenience for multi-assignment / unpacking.
func (n *Namespace) BindAll(vars map[string]value.Value) *Namespace {
	return n.WithVariables(vars)
}

// Names returns every bound name, for diagnostics and class-scope capture.
func (n *Namespace) Names() []string {
	out := make([]string, 0, len(n.vars))
	for k := range n.vars {
		out = append(out, k)
	}
	return out
}

func (n *Namespace) clone() *Namespace {
	out := &Namespace{vars: make(map[string]value.Value, len(n.vars)+1)}
	for k, v := range n.vars {
		out.vars[k] = v
	}
	return out
}
