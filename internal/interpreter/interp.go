package interpreter

import (
	"context"
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter/parser"
	"github.com/jbhoffman613/camel-prompt-injection/internal/namespace"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/toolregistry"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// Logger is the narrow logging surface the interpreter needs around policy
// decisions and tool calls; internal/telemetry supplies the clue-backed
// implementation used in production.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// SpanEnd closes a span started by Tracer.StartToolCall, recording the
// outcome.
type SpanEnd func(allowed bool, err error)

// Tracer is the narrow tracing surface the interpreter needs; nil is a
// valid zero value (no spans emitted).
type Tracer interface {
	StartToolCall(ctx context.Context, toolName string) (context.Context, SpanEnd)
}

type noopTracer struct{}

func (noopTracer) StartToolCall(ctx context.Context, _ string) (context.Context, SpanEnd) {
	return ctx, func(bool, error) {}
}

// MethodTable maps a value Kind to its named bound-method implementations;
// the built-in library populates this once at startup (library.Methods()).
type MethodTable map[value.Kind]map[string]value.Fn

// Interpreter holds the collaborators a run needs beyond the AST itself:
// the tool registry it may call into, and optional logging/tracing.
type Interpreter struct {
	Registry      *toolregistry.Registry
	Methods       MethodTable
	Logger        Logger
	Tracer        Tracer
	MaxStatements int // 0 = unbounded; spec §5 cancellation ceiling
}

// New builds an Interpreter with no-op logging/tracing; set the fields
// directly to wire in real collaborators.
func New(reg *toolregistry.Registry, methods MethodTable) *Interpreter {
	return &Interpreter{
		Registry: reg,
		Methods:  methods,
		Logger:   noopLogger{},
		Tracer:   noopTracer{},
	}
}

// state threads everything one Run call accumulates across statement
// execution: the current namespace, the running aggregated dependency
// list (spec §4.4's "dependencies ... at this program point"), and the
// tool-call log.
type state struct {
	interp *Interpreter
	ctx    context.Context
	ns     *namespace.Namespace
	mode   EvalMode
	policy policy.Engine
	calls  []FunctionCall
	deps   []value.Value
	stmts  int
}

func (s *state) addDep(v value.Value) {
	s.deps = append(s.deps, v)
}

func (s *state) checkBudget() error {
	s.stmts++
	if s.interp.MaxStatements > 0 && s.stmts > s.interp.MaxStatements {
		return fmt.Errorf("statement budget exceeded (%d)", s.interp.MaxStatements)
	}
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return nil
	}
}

// Run implements the core API entry point (spec §6.1): it strips markdown
// fencing, parses, and evaluates statements in order, returning whichever
// namespace resulted even on a raised exception (already-executed
// bindings survive, per spec §4.7's "State transitions").
func Run(ctx context.Context, interp *Interpreter, codeText string, ns *namespace.Namespace, initialDeps []value.Value, args EvalArgs) (Result, *namespace.Namespace, []FunctionCall, []value.Value) {
	code := ExtractCodeBlock(codeText)
	stmts, err := parser.Parse(code)
	if err != nil {
		exc := value.NewException(value.ExcParseError, err.Error(), capabilities.CaMeL(), nil)
		return Failed(exc), ns, nil, initialDeps
	}

	s := &state{
		interp: interp,
		ctx:    ctx,
		ns:     ns,
		mode:   args.Mode,
		policy: args.Policy,
		deps:   append([]value.Value(nil), initialDeps...),
	}

	var last value.Value = value.NewNone(capabilities.Default(), nil)
	for _, stmt := range stmts {
		if err := s.checkBudget(); err != nil {
			exc := value.NewException(value.ExcTypeError, err.Error(), capabilities.CaMeL(), nil)
			return Failed(exc), s.ns, s.calls, s.deps
		}
		v, err := evalStmt(s, stmt)
		if err != nil {
			exc := asException(err)
			return Failed(exc), s.ns, s.calls, s.deps
		}
		if v != nil {
			last = v
		}
	}
	return Ok(last), s.ns, s.calls, s.deps
}

// asException normalizes any error surfaced while walking the tree into an
// Exception value: *value.Exception passes through; anything else is
// wrapped as a TypeError carrying no dependencies (interpreter-internal
// failures are trusted by construction).
func asException(err error) *value.Exception {
	if exc, ok := err.(*value.Exception); ok {
		return exc
	}
	return value.NewException(value.ExcTypeError, err.Error(), capabilities.CaMeL(), nil)
}
