package interpreter

import (
	"reflect"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter/ast"
	"github.com/jbhoffman613/camel-prompt-injection/internal/toolregistry"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// evalCall implements the call boundary (spec §4.4): evaluate the
// callable and its arguments, route tool calls through the policy engine
// and the side-effect-aliasing guard, and wrap the return value per the
// applicable wrapping rule.
func evalCall(s *state, e ast.Call) (value.Value, error) {
	fnVal, err := evalExpr(s, e.Func)
	if err != nil {
		return nil, err
	}

	args, err := evalExprList(s, e.Args)
	if err != nil {
		return nil, err
	}
	kwargs := make(map[string]value.Value, len(e.Kwargs))
	for name, node := range e.Kwargs {
		v, err := evalExpr(s, node)
		if err != nil {
			return nil, err
		}
		kwargs[name] = v
	}
	if e.StarArgs != nil {
		splat, err := evalExpr(s, e.StarArgs)
		if err != nil {
			return nil, err
		}
		args = append(args, splatValues(splat)...)
	}
	if e.StarKwargs != nil {
		splat, err := evalExpr(s, e.StarKwargs)
		if err != nil {
			return nil, err
		}
		if d, ok := splat.(*value.Dict); ok {
			for _, k := range d.Keys {
				if ks, ok := k.(*value.Str); ok {
					v, _ := d.Get(k)
					kwargs[ks.Go()] = v
				}
			}
		}
	}

	switch callee := fnVal.(type) {
	case *value.Class:
		return instantiate(s, callee, args, kwargs)
	case *value.Callable:
		switch callee.Kind_ {
		case value.CallableToolFn:
			return callTool(s, callee, args, kwargs)
		default:
			return callBuiltin(s, callee, args, kwargs)
		}
	default:
		return nil, excAt(value.ExcTypeError, value.DepsOf(fnVal), "'%s' object is not callable", fnVal.Kind())
	}
}

func splatValues(v value.Value) []value.Value {
	switch t := v.(type) {
	case *value.Tuple:
		return t.Items
	case *value.List:
		return t.Items
	default:
		return nil
	}
}

func instantiate(s *state, class *value.Class, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if class.New == nil {
		return nil, excAt(value.ExcUndefinedClass, nil, "class %q has no constructor", class.Name)
	}
	inst, err := class.New(class, args, kwargs)
	if err != nil {
		return nil, excAt(value.ExcValueError, argDeps(args, kwargs), "%s", err.Error())
	}
	return inst.WithDependency(class), nil
}

func argDeps(args []value.Value, kwargs map[string]value.Value) []value.Value {
	deps := append([]value.Value(nil), args...)
	for _, v := range kwargs {
		deps = append(deps, v)
	}
	return deps
}

// callBuiltin invokes a built-in function or bound method and applies the
// uniform built-in wrapping rule: metadata = Tool(name), dependencies =
// (callable, args-tuple, kwargs-dict) (spec §4.4 step 6). Exception
// constructors are exempt: their own ExcKind must survive verbatim.
func callBuiltin(s *state, callee *value.Callable, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	argsTuple := value.NewTuple(args, capabilities.CaMeL(), args)
	kwargsDict := value.NewDict(capabilities.CaMeL(), nil)
	for k, v := range kwargs {
		kwargsDict.Set(value.NewStrFromRaw(k, capabilities.Default(), nil), v)
	}

	result, err := callee.Call(args, kwargs)
	call := FunctionCall{Function: callee.Name, IsBuiltin: true, Args: rawKwargs(kwargs)}
	if callee.Receiver != nil {
		call.ObjectType = callee.Receiver.Kind().String()
	}
	if err != nil {
		call.Err = err
		s.calls = append(s.calls, call)
		return nil, excAt(value.ExcTypeError, argDeps(args, kwargs), "%s", err.Error())
	}
	call.Output = result.Raw()
	s.calls = append(s.calls, call)

	if result.Kind() == value.KindException {
		exc := result.(*value.Exception)
		return exc.WithDependency(argsTuple), nil
	}

	wrapped := value.Rewrap(result, capabilities.Tool(callee.Name), []value.Value{callee, argsTuple, kwargsDict})
	s.addDep(wrapped)
	return wrapped, nil
}

// callTool implements the policy-gated external tool call path.
func callTool(s *state, callee *value.Callable, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	tool, ok := s.interp.Registry.Get(callee.ToolID)
	if !ok {
		return nil, excAt(value.ExcNameError, nil, "tool %q is not registered", callee.ToolID)
	}
	allKwargs := zipPositional(tool, args, kwargs)

	argsTuple := value.NewTuple(args, capabilities.CaMeL(), args)
	kwargsDict := value.NewDict(capabilities.CaMeL(), nil)
	for k, v := range allKwargs {
		kwargsDict.Set(value.NewStrFromRaw(k, capabilities.Default(), nil), v)
	}

	callDeps := append(append([]value.Value(nil), s.deps...), argDeps(args, allKwargs)...)

	noSideEffect := s.policy != nil && s.policy.NoSideEffect(callee.ToolID)
	var ctx = s.ctx
	var endSpan SpanEnd
	if s.interp.Tracer != nil {
		ctx, endSpan = s.interp.Tracer.StartToolCall(ctx, callee.ToolID)
	} else {
		endSpan = func(bool, error) {}
	}

	if !noSideEffect {
		if s.policy == nil {
			endSpan(false, nil)
			return nil, excAt(value.ExcSecurityPolicyDenied, callDeps, "no policy engine configured: default-deny")
		}
		decision, err := s.policy.Check(ctx, callee.ToolID, allKwargs, callDeps)
		if err != nil {
			endSpan(false, err)
			return nil, excAt(value.ExcSecurityPolicyDenied, callDeps, "%s", err.Error())
		}
		if !decision.Allowed {
			s.interp.Logger.Warn("tool call denied", "tool", callee.ToolID, "reason", decision.Reason)
			endSpan(false, nil)
			return nil, excAt(value.ExcSecurityPolicyDenied, callDeps, "%s", decision.Reason)
		}
	}
	s.interp.Logger.Info("tool call allowed", "tool", callee.ToolID)

	before := cloneRaw(rawKwargs(allKwargs))
	result, err := tool.Invoke(ctx, allKwargs)
	endSpan(true, err)
	call := FunctionCall{Function: callee.ToolID, Args: before}
	if err != nil {
		call.Err = err
		s.calls = append(s.calls, call)
		return nil, excAt(value.ExcValueError, callDeps, "%s", err.Error())
	}
	after := result.RawArgs
	if !reflect.DeepEqual(before, after) {
		call.Err = excAt(value.ExcFunctionCallWithSideEffect, callDeps, "tool %q mutated an aliased argument", callee.ToolID)
		s.calls = append(s.calls, call)
		return nil, call.Err.(*value.Exception)
	}
	call.Output = result.RawOut
	s.calls = append(s.calls, call)

	wrapped := result.Wrapped.WithDependency(callee).WithDependency(argsTuple).WithDependency(kwargsDict)
	s.addDep(wrapped)
	return wrapped, nil
}

// zipPositional assigns each positional arg to the next declared parameter
// name not already supplied as a keyword argument, per the tool's param
// order (spec §6.2's "param_schema enumerates named parameters ... the
// adapter uses the schema to zip positional args to names").
func zipPositional(tool *toolregistry.Tool, args []value.Value, kwargs map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(kwargs)+len(args))
	for k, v := range kwargs {
		out[k] = v
	}
	pi := 0
	for _, p := range tool.Spec.Params {
		if pi >= len(args) {
			break
		}
		if _, already := out[p.Name]; already {
			continue
		}
		out[p.Name] = args[pi]
		pi++
	}
	return out
}

func rawKwargs(kwargs map[string]value.Value) map[string]any {
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		out[k] = v.Raw()
	}
	return out
}

func cloneRaw(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = cloneAny(it)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, it := range t {
			out[k] = cloneAny(it)
		}
		return out
	default:
		return v
	}
}
