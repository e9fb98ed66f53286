// Package value implements the tagged-union runtime value model: every
// value the interpreter produces carries a Python-shaped payload, a
// Capabilities label, and an ordered, append-only dependency list. Operator
// semantics live alongside each concrete variant (ops.go groups the
// shared contracts), mirroring the teacher's per-type method tables.
package value

import (
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

// Kind discriminates the Value variants enumerated in spec §3.4.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindTuple
	KindList
	KindSet
	KindDict
	KindIterator
	KindClass
	KindClassInstance
	KindCallable
	KindException
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindDict:
		return "dict"
	case KindIterator:
		return "iterator"
	case KindClass:
		return "class"
	case KindClassInstance:
		return "instance"
	case KindCallable:
		return "callable"
	case KindException:
		return "exception"
	default:
		return "unknown"
	}
}

// Value is the common interface every runtime value implements. Concrete
// variants are defined across this package's files (str.go, scalar.go,
// collections.go, class.go, callable.go, exception.go).
type Value interface {
	// Kind identifies the variant for pattern-match-style dispatch.
	Kind() Kind
	// Capabilities returns the value's own (non-effective) label.
	Capabilities() capabilities.Capabilities
	// Dependencies returns the value's own, directly recorded dependency
	// list (not the transitive closure; see AllSources/AllReaders).
	Dependencies() []Value
	// Raw unwraps to the native Go payload, recursively for collections.
	Raw() any
	// String renders a debug representation.
	String() string
	// WithDependency returns a shallow copy of the value with extra
	// appended to its dependency list. Used by attribute/subscript reads
	// and iteration to thread in the container/receiver as a dependency
	// without duplicating the (possibly large) payload.
	WithDependency(extra Value) Value
}

// base is embedded by every immutable variant; mutable containers
// (List, Dict, Set, ClassInstance) embed it too but mutate their payload
// field in place rather than rebinding the value.
type base struct {
	meta capabilities.Capabilities
	deps []Value
}

func (b base) Capabilities() capabilities.Capabilities { return b.meta }
func (b base) Dependencies() []Value                   { return b.deps }

func newBase(meta capabilities.Capabilities, deps []Value) base {
	return base{meta: meta, deps: append([]Value(nil), deps...)}
}

// appendDeps implements the "union-by-append" invariant from spec §3.4:
// identity-equality suffices, ordering is preserved, duplicates by pointer
// identity are not specially collapsed (matching the original's tuple
// concatenation semantics).
func appendDeps(groups ...[]Value) []Value {
	var out []Value
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DepsOf is a convenience for building a dependency list from individual
// values and slices of values interchangeably.
func DepsOf(items ...any) []Value {
	var out []Value
	for _, it := range items {
		switch v := it.(type) {
		case Value:
			out = append(out, v)
		case []Value:
			out = append(out, v...)
		case nil:
			// skip
		default:
			panic(fmt.Sprintf("value.DepsOf: unsupported item %T", it))
		}
	}
	return out
}

// Identity is used by cycle-guarded traversals (AllSources, AllReaders) to
// detect revisits. Every variant is a pointer type, so the traversals key a
// map[any]bool on the Value itself, which compares by pointer identity.
// Only the mutable containers and class instances are recorded there;
// other kinds are not tracked, since cycles require a mutable container or
// class instance.
type Identity = any
