// Package interpreter implements the tree-walking evaluator (component E):
// it walks the ast node set, threads the capability-tracked value model
// through every operation, and gates tool calls at the policy boundary
// (spec §4.3–§4.4).
package interpreter

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// EvalMode selects how eagerly synthesized results accrue dependencies
// (spec §4.3's "Metadata evaluation mode").
type EvalMode int

const (
	ModeNormal EvalMode = iota
	ModeStrict
)

// EvalArgs configures one run (spec §6.5).
type EvalArgs struct {
	Policy policy.Engine
	Mode   EvalMode
}

// FunctionCall records one invocation, builtin or tool, for the log the
// driver inspects after a run (spec §6.4). It is the sole record of side
// effects: nothing else in this package observes the outside world.
type FunctionCall struct {
	Function   string
	ObjectType string
	Args       map[string]any
	Output     any
	IsBuiltin  bool
	Err        error
}

// Result is the outcome of Run: exactly one of Value/Err is populated.
type Result struct {
	Value value.Value
	Err   *value.Exception
}

// Ok and Failed build a Result from a successful value or a raised
// exception, respectively.
func Ok(v value.Value) Result          { return Result{Value: v} }
func Failed(e *value.Exception) Result { return Result{Err: e} }

// IsOk reports whether the run produced a value rather than an exception.
func (r Result) IsOk() bool { return r.Err == nil }
