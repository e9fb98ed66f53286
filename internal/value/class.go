package value

import (
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

// FieldSpec describes one declared field of a pydantic-style model class:
// name, a validator, and whether it is required.
type FieldSpec struct {
	Name     string
	Validate func(Value) error
	Required bool
	Default  Value
}

// Class represents a class definition: built-in classes (datetime, model,
// enum) and user `class Foo(Base): ...` definitions share this shape. A
// Class is itself callable (constructor).
type Class struct {
	base
	Name       string
	Parent     *Class
	Fields     []FieldSpec
	ClassAttrs map[string]Value
	Frozen     bool
	// New constructs an instance from positional/keyword constructor args.
	// Built-in classes (datetime, EnumMeta-style) provide their own; plain
	// user classes get the default field-assigning constructor generated
	// at class-definition time (see interpreter/classdef.go).
	New func(c *Class, args []Value, kwargs map[string]Value) (*ClassInstance, error)
}

func NewClass(name string, parent *Class, fields []FieldSpec, frozen bool) *Class {
	return &Class{
		base:       newBase(capabilities.CaMeL(), nil),
		Name:       name,
		Parent:     parent,
		Fields:     fields,
		ClassAttrs: map[string]Value{},
		Frozen:     frozen,
	}
}

func (*Class) Kind() Kind       { return KindClass }
func (c *Class) Raw() any       { return c.Name }
func (c *Class) String() string { return "<class " + c.Name + ">" }
func (c *Class) WithDependency(extra Value) Value {
	cp := *c
	cp.base = newBase(c.meta, appendDeps(c.deps, []Value{extra}))
	return &cp
}

// IsSubclassOf reports whether c is base or a descendant of base.
func (c *Class) IsSubclassOf(base *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == base {
			return true
		}
	}
	return false
}

// FieldNames returns the names in c.Fields, which for a subclass begin
// with the fields copied from its parent, used by
// the default constructor and by pydantic-style validation.
func (c *Class) FieldNames() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// ClassInstance is a mutable bag of capability-tracked attribute values.
// Setting an attribute on a Frozen instance is an error (spec §3.4).
type ClassInstance struct {
	base
	Class  *Class
	Fields map[string]Value
	Frozen bool
}

func NewClassInstance(class *Class, meta capabilities.Capabilities, deps []Value) *ClassInstance {
	return &ClassInstance{
		base:   newBase(meta, deps),
		Class:  class,
		Fields: map[string]Value{},
		Frozen: class.Frozen,
	}
}

func (*ClassInstance) Kind() Kind { return KindClassInstance }
func (ci *ClassInstance) Raw() any {
	out := make(map[string]any, len(ci.Fields))
	for k, v := range ci.Fields {
		out[k] = v.Raw()
	}
	return out
}
func (ci *ClassInstance) String() string { return fmt.Sprintf("<%s instance>", ci.Class.Name) }
func (ci *ClassInstance) WithDependency(extra Value) Value {
	return &ClassInstance{newBase(ci.meta, appendDeps(ci.deps, []Value{extra})), ci.Class, ci.Fields, ci.Frozen}
}

// GetAttr reads a field, propagating the instance itself into the result's
// dependencies per spec §4.2's attribute-read rule.
func (ci *ClassInstance) GetAttr(name string) (Value, bool) {
	v, ok := ci.Fields[name]
	if !ok {
		return nil, false
	}
	return rebindDeps(v, ci), true
}

// SetAttr mutates a field in place. Returns an error if the instance is
// frozen.
func (ci *ClassInstance) SetAttr(name string, v Value) error {
	if ci.Frozen {
		return &kindError{fmt.Sprintf("cannot set attribute %q on frozen instance of %s", name, ci.Class.Name)}
	}
	ci.Fields[name] = v
	return nil
}
