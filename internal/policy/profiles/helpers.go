package profiles

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// allOf composes RuleFns, short-circuiting on the first denial.
func allOf(rules ...policy.RuleFn) policy.RuleFn {
	return func(toolName string, kwargs map[string]value.Value) policy.Decision {
		for _, r := range rules {
			d := r(toolName, kwargs)
			if !d.Allowed {
				return d
			}
		}
		return policy.Allow()
	}
}

func strListFromArg(kwargs map[string]value.Value, name string) []string {
	v, ok := kwargs[name]
	if !ok {
		return nil
	}
	var out []string
	switch t := v.(type) {
	case *value.Str:
		out = append(out, t.Go())
	case *value.List:
		for _, item := range t.Items {
			if s, ok := item.(*value.Str); ok {
				out = append(out, s.Go())
			}
		}
	}
	return out
}

func recipientsFromTo(kwargs map[string]value.Value) []string {
	return strListFromArg(kwargs, "recipients")
}

func recipientsFromParticipants(kwargs map[string]value.Value) []string {
	return strListFromArg(kwargs, "participants")
}

func recipientsFromChannel(kwargs map[string]value.Value) []string {
	return strListFromArg(kwargs, "channel")
}

func recipientsFromRecipient(kwargs map[string]value.Value) []string {
	return strListFromArg(kwargs, "recipient")
}
