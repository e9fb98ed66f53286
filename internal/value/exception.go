package value

import "github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"

// ExceptionKind enumerates the error taxonomy from spec §7.
type ExceptionKind string

const (
	ExcParseError                 ExceptionKind = "ParseError"
	ExcNameError                  ExceptionKind = "NameError"
	ExcTypeError                  ExceptionKind = "TypeError"
	ExcValueError                 ExceptionKind = "ValueError"
	ExcKeyError                   ExceptionKind = "KeyError"
	ExcIndexError                 ExceptionKind = "IndexError"
	ExcAttributeError             ExceptionKind = "AttributeError"
	ExcZeroDivisionError          ExceptionKind = "ZeroDivisionError"
	ExcFunctionCallWithSideEffect ExceptionKind = "FunctionCallWithSideEffect"
	ExcSecurityPolicyDenied       ExceptionKind = "SecurityPolicyDenied"
	ExcNotEnoughInformation       ExceptionKind = "NotEnoughInformation"
	ExcUndefinedClass             ExceptionKind = "UndefinedClass"
)

// Exception is a value: it can be raised, caught by the driver (never by
// user code — there is no try/except), and carries dependencies so the
// traceback renderer can decide whether to redact its message.
type Exception struct {
	base
	ExcKind ExceptionKind
	Message string
	Cause   *Exception
	Line    int // set via SetPos; zero means "no source span recorded"
	Col     int
}

func NewException(kind ExceptionKind, message string, meta capabilities.Capabilities, deps []Value) *Exception {
	return &Exception{base: newBase(meta, deps), ExcKind: kind, Message: message}
}

// SetPos records the source line/col of the statement that raised this
// exception, for traceback's source-highlighted span (spec §4.7). Only the
// first call takes effect, matching how a raise propagates unchanged
// through enclosing statements on its way out of Run.
func (e *Exception) SetPos(line, col int) *Exception {
	if e.Line == 0 && e.Col == 0 {
		e.Line, e.Col = line, col
	}
	return e
}

func (*Exception) Kind() Kind { return KindException }
func (e *Exception) Raw() any { return e.Message }
func (e *Exception) String() string {
	return string(e.ExcKind) + ": " + e.Message
}
func (e *Exception) WithDependency(extra Value) Value {
	return &Exception{
		base:    newBase(e.meta, appendDeps(e.deps, []Value{extra})),
		ExcKind: e.ExcKind,
		Message: e.Message,
		Cause:   e.Cause,
		Line:    e.Line,
		Col:     e.Col,
	}
}

// Error implements the standard error interface so Exception values can
// flow through Go's error-handling idioms inside the interpreter package.
func (e *Exception) Error() string { return e.String() }
