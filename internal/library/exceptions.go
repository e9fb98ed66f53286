package library

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// exceptionConstructors binds every ExceptionKind from spec §7 as a
// callable: `raise ValueError("bad input")` evaluates ValueError("bad
// input") to an *value.Exception, which the interpreter's raise handling
// then propagates.
func exceptionConstructors() map[string]value.Fn {
	ctors := map[string]value.ExceptionKind{
		"ValueError":                 value.ExcValueError,
		"TypeError":                  value.ExcTypeError,
		"KeyError":                   value.ExcKeyError,
		"IndexError":                 value.ExcIndexError,
		"AttributeError":             value.ExcAttributeError,
		"NameError":                  value.ExcNameError,
		"ZeroDivisionError":          value.ExcZeroDivisionError,
		"NotEnoughInformation":       value.ExcNotEnoughInformation,
		"SecurityPolicyDenied":       value.ExcSecurityPolicyDenied,
		"FunctionCallWithSideEffect": value.ExcFunctionCallWithSideEffect,
		"UndefinedClass":             value.ExcUndefinedClass,
	}
	out := make(map[string]value.Fn, len(ctors))
	for name, kind := range ctors {
		kind := kind
		out[name] = func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			msg := ""
			if len(args) > 0 {
				if s, ok := args[0].(*value.Str); ok {
					msg = s.Go()
				} else {
					msg = args[0].String()
				}
			}
			return value.NewException(kind, msg, capabilities.CaMeL(), value.DepsOf(args)), nil
		}
	}
	return out
}
