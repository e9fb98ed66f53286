// Package library supplies the built-in names and per-kind methods the
// interpreter needs beyond the bare language: pure functions (len, str,
// int, ...), per-type methods (str.upper, list.append, ...), the
// exception constructors raise statements call, and three built-in
// classes modelled on the original's datetime/pydantic/enum support
// (spec §4.3, §4.6's "built-in classes" note).
package library

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter"
	"github.com/jbhoffman613/camel-prompt-injection/internal/namespace"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// NamespaceWithBuiltins builds the starting Namespace every Run call seeds
// user values on top of: pure functions, exception constructors, and the
// built-in classes, all bound by name.
func NamespaceWithBuiltins() *namespace.Namespace {
	vars := map[string]value.Value{}
	for name, fn := range pureFunctions() {
		vars[name] = value.NewBuiltinFn(name, fn, capabilities.CaMeL(), nil)
	}
	for name, ctor := range exceptionConstructors() {
		vars[name] = value.NewBuiltinFn(name, ctor, capabilities.CaMeL(), nil)
	}
	vars["datetime"] = datetimeClass()
	vars["EnumMeta"] = enumMetaClass()
	vars["BaseModel"] = modelBaseClass()
	return namespace.WithBuiltins(vars)
}

// Methods builds the interpreter's MethodTable: per-Kind bound-method
// implementations looked up by interpreter.methodFor at attribute-access
// time (eval.go).
func Methods() interpreter.MethodTable {
	return interpreter.MethodTable{
		value.KindStr:  strMethods(),
		value.KindList: listMethods(),
		value.KindDict: dictMethods(),
		value.KindSet:  setMethods(),
	}
}
