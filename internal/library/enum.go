package library

import (
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// enumMetaClass is the base class user code subclasses to declare a closed
// set of named constants (`class Color(EnumMeta): RED = 1`); members are
// captured as ClassAttrs by evalClassDef's plain-Assign branch, so this
// base only needs a constructor that rejects direct instantiation, matching
// Python's "Enum cannot be instantiated" behavior.
func enumMetaClass() *value.Class {
	c := value.NewClass("EnumMeta", nil, nil, true)
	c.New = func(cl *value.Class, _ []value.Value, _ map[string]value.Value) (*value.ClassInstance, error) {
		return nil, fmt.Errorf("%s cannot be instantiated directly", cl.Name)
	}
	return c
}
