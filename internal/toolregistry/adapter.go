package toolregistry

import (
	"context"
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// CallResult carries everything the interpreter's call boundary needs from
// one tool invocation beyond the wrapped return value: the raw args it
// passed (for the side-effect-aliasing guard, spec §4.4 step 5) and the raw
// output (for the FunctionCall log, spec §6.4).
type CallResult struct {
	RawArgs map[string]any
	RawOut  any
	Wrapped value.Value
}

// Invoke unwraps kwargs to raw Go values, validates them against the tool's
// param schema, calls the underlying Fn, validates and classifies the
// return, and wraps it back into a Value. The interpreter's call boundary
// (internal/interpreter) is responsible for the policy check, the
// side-effect guard, and the tool-call log entry; Invoke only performs the
// mechanical unwrap/call/wrap cycle spec §4.6 describes.
func (t *Tool) Invoke(ctx context.Context, kwargs map[string]value.Value) (CallResult, error) {
	rawArgs := make(map[string]any, len(kwargs))
	for name, v := range kwargs {
		rawArgs[name] = v.Raw()
	}
	for _, p := range t.Spec.Params {
		if p.Required {
			if _, ok := rawArgs[p.Name]; !ok {
				return CallResult{}, fmt.Errorf("toolregistry: %s: missing required parameter %q", t.Spec.Name, p.Name)
			}
		}
	}
	if err := t.ValidateParams(rawArgs); err != nil {
		return CallResult{}, fmt.Errorf("toolregistry: %s: invalid parameters: %w", t.Spec.Name, err)
	}

	raw, err := t.Spec.Fn(ctx, rawArgs)
	if err != nil {
		return CallResult{RawArgs: rawArgs}, err
	}
	if err := t.ValidateReturn(raw); err != nil {
		return CallResult{RawArgs: rawArgs, RawOut: raw}, fmt.Errorf("toolregistry: %s: invalid return value: %w", t.Spec.Name, err)
	}

	var meta capabilities.Capabilities
	if t.Spec.Classify != nil {
		meta = t.Spec.Classify(t.Spec.Name, kwargs, raw)
	} else {
		meta = capabilities.Tool(t.Spec.Name, capabilities.FromPrincipal(capabilities.TrustedToolSource))
	}
	wrapped := value.FromRaw(raw, meta, nil)
	return CallResult{RawArgs: rawArgs, RawOut: raw, Wrapped: wrapped}, nil
}
