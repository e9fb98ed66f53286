// Package policy defines the security-policy engine interface the
// interpreter consults before every side-effecting tool call (spec §4.5).
// Concrete engines live in basic (a reference glob-rule engine) and
// profiles (environment-specific rule sets built on top of it).
package policy

import (
	"context"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// Decision is the outcome of one Check call.
type Decision struct {
	Allowed bool
	Reason  string // populated when Allowed is false
}

// Allow and Deny are the constructors callers use to build a Decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Engine is implemented by every policy profile. The interpreter's call
// boundary (spec §4.4 step 3) calls NoSideEffect before Check so pure
// tools bypass policy evaluation entirely.
type Engine interface {
	// NoSideEffect reports whether toolName is in the engine's
	// no-side-effect registry.
	NoSideEffect(toolName string) bool
	// Check evaluates one tool call against its keyword arguments and the
	// dependency list aggregated at the call site.
	Check(ctx context.Context, toolName string, kwargs map[string]value.Value, deps []value.Value) (Decision, error)
}

// RuleFn is a pure policy function over a tool call's name and keyword
// arguments (spec §4.5's "policy functions are pure over (tool_name,
// kwargs_by_name)").
type RuleFn func(toolName string, kwargs map[string]value.Value) Decision

// Rule pairs a glob pattern with the policy function that governs every
// tool name it matches.
type Rule struct {
	Pattern string
	Decide  RuleFn
}

// RequireTrustedArg builds a RuleFn that denies unless the named keyword
// argument's effective source set is trusted (spec §4.5 check (a)).
func RequireTrustedArg(argName string) RuleFn {
	return func(toolName string, kwargs map[string]value.Value) Decision {
		arg, ok := kwargs[argName]
		if !ok {
			return Deny("missing required argument " + argName)
		}
		if !value.IsTrusted(arg) {
			return Deny(argName + " does not come from a trusted source")
		}
		return Allow()
	}
}

// RequireReadableBy builds a RuleFn that denies unless every reader in
// recipients can read the named payload argument (spec §4.5 check (b)).
func RequireReadableBy(argName string, recipients func(kwargs map[string]value.Value) []string) RuleFn {
	return func(toolName string, kwargs map[string]value.Value) Decision {
		arg, ok := kwargs[argName]
		if !ok {
			return Deny("missing required argument " + argName)
		}
		ids := recipients(kwargs)
		candidates := capabilities.Readers(ids...)
		if !value.CanRead(candidates, arg) {
			return Deny("recipients are not permitted to read " + argName)
		}
		return Allow()
	}
}

// RequirePublicArg builds a RuleFn that denies unless the named argument
// is public (spec §4.5 check (c)).
func RequirePublicArg(argName string) RuleFn {
	return func(toolName string, kwargs map[string]value.Value) Decision {
		arg, ok := kwargs[argName]
		if !ok {
			return Deny("missing required argument " + argName)
		}
		if !value.IsPublic(arg) {
			return Deny(argName + " is not public")
		}
		return Allow()
	}
}
