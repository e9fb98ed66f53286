package library

import "github.com/jbhoffman613/camel-prompt-injection/internal/value"

// modelBaseClass is the pydantic-style base every user-declared record type
// subclasses (`class Email(BaseModel): subject: str`). It carries no
// fields and no constructor of its own: instantiate() (interpreter/calls.go)
// always calls the subclass's own generated constructor, which applies
// each field's Validate and fills in defaults. BaseModel exists purely so
// `class Foo(BaseModel)` resolves to a real Class at evalClassDef time.
func modelBaseClass() *value.Class {
	return value.NewClass("BaseModel", nil, nil, false)
}
