// Package basic is the reference policy engine, grounded on
// camel.security_policy.SecurityPolicyEngine: a default-deny check over the
// call's aggregated dependencies, then an ordered list of glob-matched
// rules, the first match winning. It additionally enforces a token-bucket
// ceiling on state-changing calls per Engine (golang.org/x/time/rate): the
// bucket is shared by every run that uses the same Engine, which makes it a
// generalization of the teacher's remaining-tool-calls budget that also
// smooths bursts across concurrent runs.
package basic

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// Engine is a reference policy.Engine: an ordered rule list matched by
// glob pattern against the tool name, a no-side-effect set, and an
// optional rate limiter over state-changing calls.
type Engine struct {
	Rules         []policy.Rule
	NoSideEffects map[string]bool
	Limiter       *rate.Limiter // nil disables rate limiting
}

// New builds an Engine with the given rules and no-side-effect tool names.
// limit <= 0 disables the rate limiter.
func New(rules []policy.Rule, noSideEffectTools []string, limit rate.Limit, burst int) *Engine {
	set := make(map[string]bool, len(noSideEffectTools))
	for _, n := range noSideEffectTools {
		set[n] = true
	}
	var limiter *rate.Limiter
	if limit > 0 {
		limiter = rate.NewLimiter(limit, burst)
	}
	return &Engine{Rules: rules, NoSideEffects: set, Limiter: limiter}
}

func (e *Engine) NoSideEffect(toolName string) bool {
	return e.NoSideEffects[toolName]
}

// Check implements policy.Engine: deny if any dependency is non-public,
// else evaluate rules in order by glob pattern, first match wins; no match
// is a default deny (spec §4.5's "deny by default").
func (e *Engine) Check(ctx context.Context, toolName string, kwargs map[string]value.Value, deps []value.Value) (policy.Decision, error) {
	for _, d := range deps {
		if !value.IsPublic(d) {
			return policy.Deny(fmt.Sprintf("%s is state-changing and depends on a non-public value", toolName)), nil
		}
	}
	if e.Limiter != nil && !e.Limiter.Allow() {
		return policy.Deny(fmt.Sprintf("%s exceeds the state-changing call rate limit", toolName)), nil
	}
	for _, rule := range e.Rules {
		matched, err := filepath.Match(rule.Pattern, toolName)
		if err != nil {
			return policy.Decision{}, fmt.Errorf("policy: invalid pattern %q: %w", rule.Pattern, err)
		}
		if matched {
			return rule.Decide(toolName, kwargs), nil
		}
	}
	return policy.Deny("no security policy matched for tool; defaulting to denial"), nil
}
