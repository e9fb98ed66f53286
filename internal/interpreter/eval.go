package interpreter

import (
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter/ast"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func excAt(kind value.ExceptionKind, deps []value.Value, format string, args ...any) *value.Exception {
	return value.NewException(kind, fmt.Sprintf(format, args...), capabilities.CaMeL(), deps)
}

// evalStmt executes one statement, mutating s.ns in place via rebinding.
// It returns the statement's value when meaningful (expression statements
// and the implicit value of the last statement executed), for Run's
// "value of the program" result.
// evalStmt executes one statement and stamps the source position of any
// exception it raises, so traceback can render the offending span (spec
// §4.7) without every raise site threading position explicitly.
func evalStmt(s *state, n ast.Node) (value.Value, error) {
	v, err := evalStmtInner(s, n)
	if exc, ok := err.(*value.Exception); ok {
		pos := n.At()
		exc.SetPos(pos.Line, pos.Col)
	}
	return v, err
}

func evalStmtInner(s *state, n ast.Node) (value.Value, error) {
	switch st := n.(type) {
	case ast.ExprStmt:
		return evalExpr(s, st.X)

	case ast.Assign:
		v, err := evalExpr(s, st.Value)
		if err != nil {
			return nil, err
		}
		for _, target := range st.Targets {
			if err := assign(s, target, v); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case ast.AugAssign:
		cur, err := evalExpr(s, st.Target)
		if err != nil {
			return nil, err
		}
		rhs, err := evalExpr(s, st.Value)
		if err != nil {
			return nil, err
		}
		result, err := value.Binary(value.BinOp(st.Op), cur, rhs)
		if err != nil {
			return nil, excAt(value.ExcTypeError, value.DepsOf(cur, rhs), "%s", err.Error())
		}
		return nil, assign(s, st.Target, result)

	case ast.AnnAssign:
		if st.Value == nil {
			return nil, nil
		}
		v, err := evalExpr(s, st.Value)
		if err != nil {
			return nil, err
		}
		return nil, assign(s, st.Target, v)

	case ast.If:
		cond, err := evalExpr(s, st.Cond)
		if err != nil {
			return nil, err
		}
		if value.Truthy(cond) {
			return execBlock(s, st.Body)
		}
		return execBlock(s, st.Else)

	case ast.While:
		var last value.Value
		for {
			cond, err := evalExpr(s, st.Cond)
			if err != nil {
				return nil, err
			}
			if !value.Truthy(cond) {
				break
			}
			v, err := execBlock(s, st.Body)
			if err != nil {
				if isBreak(err) {
					return last, nil
				}
				if isContinue(err) {
					continue
				}
				return nil, err
			}
			last = v
			if err := s.checkBudget(); err != nil {
				return nil, err
			}
		}
		elseVal, err := execBlock(s, st.Else)
		if err != nil {
			return nil, err
		}
		if elseVal != nil {
			last = elseVal
		}
		return last, nil

	case ast.For:
		iterVal, err := evalExpr(s, st.Iter)
		if err != nil {
			return nil, err
		}
		it, err := value.Iterate(iterVal)
		if err != nil {
			return nil, excAt(value.ExcTypeError, value.DepsOf(iterVal), "%s", err.Error())
		}
		var last value.Value
	loop:
		for {
			item, ok := it.Next()
			if !ok {
				break
			}
			if err := assign(s, st.Target, item); err != nil {
				return nil, err
			}
			v, err := execBlock(s, st.Body)
			if err != nil {
				if isBreak(err) {
					break loop
				}
				if isContinue(err) {
					continue
				}
				return nil, err
			}
			last = v
			if err := s.checkBudget(); err != nil {
				return nil, err
			}
		}
		elseVal, err := execBlock(s, st.Else)
		if err != nil {
			return nil, err
		}
		if elseVal != nil {
			last = elseVal
		}
		return last, nil

	case ast.Pass:
		return nil, nil
	case ast.Break:
		return nil, errBreak
	case ast.Continue:
		return nil, errContinue

	case ast.Raise:
		return nil, evalRaise(s, st)

	case ast.ClassDef:
		return nil, evalClassDef(s, st)

	default:
		return nil, fmt.Errorf("interpreter: unsupported statement %T", n)
	}
}

func execBlock(s *state, stmts []ast.Node) (value.Value, error) {
	var last value.Value
	for _, st := range stmts {
		if err := s.checkBudget(); err != nil {
			return nil, err
		}
		v, err := evalStmt(s, st)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

func evalRaise(s *state, st ast.Raise) error {
	if st.Exc == nil {
		return excAt(value.ExcValueError, nil, "raise with no active exception")
	}
	v, err := evalExpr(s, st.Exc)
	if err != nil {
		return err
	}
	exc, ok := v.(*value.Exception)
	if !ok {
		return excAt(value.ExcTypeError, value.DepsOf(v), "exceptions must derive from an exception class")
	}
	if st.Cause != nil {
		causeVal, err := evalExpr(s, st.Cause)
		if err != nil {
			return err
		}
		if causeExc, ok := causeVal.(*value.Exception); ok {
			exc.Cause = causeExc
		}
	}
	return exc
}

// assign binds v into target, handling tuple/list unpacking recursively
// per spec §4.3's assignment forms.
func assign(s *state, target ast.Node, v value.Value) error {
	switch t := target.(type) {
	case ast.Name:
		s.ns = s.ns.Bind(t.Ident, v)
		return nil
	case ast.TupleExpr:
		return assignUnpack(s, t.Elts, v)
	case ast.ListExpr:
		return assignUnpack(s, t.Elts, v)
	case ast.Attribute:
		recv, err := evalExpr(s, t.Recv)
		if err != nil {
			return err
		}
		ci, ok := recv.(*value.ClassInstance)
		if !ok {
			return excAt(value.ExcAttributeError, value.DepsOf(recv), "'%s' object has no attribute %q", recv.Kind(), t.Attr)
		}
		if err := ci.SetAttr(t.Attr, v); err != nil {
			return excAt(value.ExcAttributeError, value.DepsOf(recv), "%s", err.Error())
		}
		return nil
	case ast.Subscript:
		recv, err := evalExpr(s, t.Recv)
		if err != nil {
			return err
		}
		key, err := evalExpr(s, t.Index)
		if err != nil {
			return err
		}
		if err := value.SetItem(recv, key, v); err != nil {
			return excAt(value.ExcTypeError, value.DepsOf(recv, key), "%s", err.Error())
		}
		return nil
	default:
		return fmt.Errorf("interpreter: invalid assignment target %T", target)
	}
}

func assignUnpack(s *state, elts []ast.Node, v value.Value) error {
	var items []value.Value
	switch src := v.(type) {
	case *value.Tuple:
		items = src.Items
	case *value.List:
		items = src.Items
	default:
		it, err := value.Iterate(v)
		if err != nil {
			return excAt(value.ExcTypeError, value.DepsOf(v), "cannot unpack non-iterable %s", v.Kind())
		}
		for {
			nv, ok := it.Next()
			if !ok {
				break
			}
			items = append(items, nv)
		}
	}
	if len(items) != len(elts) {
		return excAt(value.ExcValueError, value.DepsOf(v), "expected %d values to unpack, got %d", len(elts), len(items))
	}
	for i, elt := range elts {
		if err := assign(s, elt, items[i]); err != nil {
			return err
		}
	}
	return nil
}

// evalExpr evaluates an expression node to a Value. Walrus assignments
// (NamedExpr) are the only expression form that mutates s.ns.
func evalExpr(s *state, n ast.Node) (value.Value, error) {
	switch e := n.(type) {
	case ast.NoneLit:
		return value.NewNone(capabilities.Default(), nil), nil
	case ast.BoolLit:
		return value.NewBool(e.Value, capabilities.Default(), nil), nil
	case ast.IntLit:
		return value.NewInt(e.Value, capabilities.Default(), nil), nil
	case ast.FloatLit:
		return value.NewFloat(e.Value, capabilities.Default(), nil), nil
	case ast.StrLit:
		return value.NewStrFromRaw(e.Value, capabilities.Default(), nil), nil

	case ast.FString:
		return evalFString(s, e)

	case ast.Name:
		v, ok := s.ns.Get(e.Ident)
		if !ok {
			return nil, excAt(value.ExcNameError, nil, "name %q is not defined", e.Ident)
		}
		return v, nil

	case ast.Attribute:
		return evalAttribute(s, e)

	case ast.Subscript:
		recv, err := evalExpr(s, e.Recv)
		if err != nil {
			return nil, err
		}
		key, err := evalExpr(s, e.Index)
		if err != nil {
			return nil, err
		}
		v, err := value.GetItem(recv, key)
		if err != nil {
			return nil, excAt(subscriptExcKind(recv), value.DepsOf(recv, key), "%s", err.Error())
		}
		return v, nil

	case ast.Slice:
		return evalSlice(s, e)

	case ast.UnaryOp:
		return evalUnary(s, e)

	case ast.BinOp:
		lhs, err := evalExpr(s, e.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := evalExpr(s, e.Rhs)
		if err != nil {
			return nil, err
		}
		op := value.BinOp(e.Op)
		if (op == value.OpDiv || op == value.OpFloorDiv || op == value.OpMod) &&
			value.Equal(rhs, value.NewInt(0, capabilities.Default(), nil)) {
			return nil, excAt(value.ExcZeroDivisionError, value.DepsOf(lhs, rhs), "division by zero")
		}
		v, err := value.Binary(op, lhs, rhs)
		if err != nil {
			return nil, excAt(value.ExcTypeError, value.DepsOf(lhs, rhs), "%s", err.Error())
		}
		return v, nil

	case ast.BoolOp:
		return evalBoolOp(s, e)

	case ast.Compare:
		return evalCompare(s, e)

	case ast.IfExp:
		cond, err := evalExpr(s, e.Cond)
		if err != nil {
			return nil, err
		}
		if value.Truthy(cond) {
			return evalExpr(s, e.Body)
		}
		return evalExpr(s, e.OrElse)

	case ast.NamedExpr:
		v, err := evalExpr(s, e.Value)
		if err != nil {
			return nil, err
		}
		s.ns = s.ns.Bind(e.Target, v)
		return v, nil

	case ast.TupleExpr:
		items, err := evalExprList(s, e.Elts)
		if err != nil {
			return nil, err
		}
		return value.NewTuple(items, capabilities.CaMeL(), items), nil

	case ast.ListExpr:
		items, err := evalExprList(s, e.Elts)
		if err != nil {
			return nil, err
		}
		return value.NewList(items, capabilities.CaMeL(), items), nil

	case ast.SetExpr:
		items, err := evalExprList(s, e.Elts)
		if err != nil {
			return nil, err
		}
		return value.NewSet(items, capabilities.CaMeL(), items), nil

	case ast.DictExpr:
		d := value.NewDict(capabilities.CaMeL(), nil)
		for i := range e.Keys {
			k, err := evalExpr(s, e.Keys[i])
			if err != nil {
				return nil, err
			}
			v, err := evalExpr(s, e.Values[i])
			if err != nil {
				return nil, err
			}
			d.Set(k, v)
		}
		return d, nil

	case ast.Comprehension:
		return evalComprehension(s, e)

	case ast.Call:
		return evalCall(s, e)

	default:
		return nil, fmt.Errorf("interpreter: unsupported expression %T", n)
	}
}

func subscriptExcKind(recv value.Value) value.ExceptionKind {
	switch recv.(type) {
	case *value.Dict:
		return value.ExcKeyError
	case *value.List, *value.Tuple, *value.Str:
		return value.ExcIndexError
	default:
		return value.ExcTypeError
	}
}

func evalExprList(s *state, nodes []ast.Node) ([]value.Value, error) {
	out := make([]value.Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := evalExpr(s, n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func evalFString(s *state, e ast.FString) (value.Value, error) {
	var chars []value.Char
	for _, part := range e.Parts {
		if part.Expr == nil {
			for _, r := range part.Text {
				chars = append(chars, value.Char{Rune: r, Meta: capabilities.Default()})
			}
			continue
		}
		v, err := evalExpr(s, part.Expr)
		if err != nil {
			return nil, err
		}
		text := displayString(v)
		for _, r := range text {
			chars = append(chars, value.Char{Rune: r, Meta: v.Capabilities(), Deps: value.DepsOf(v)})
		}
	}
	return value.NewStr(chars, capabilities.CaMeL(), nil), nil
}

func displayString(v value.Value) string {
	if s, ok := v.(*value.Str); ok {
		return s.Go()
	}
	return v.String()
}

func evalAttribute(s *state, e ast.Attribute) (value.Value, error) {
	recv, err := evalExpr(s, e.Recv)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case *value.ClassInstance:
		if v, ok := r.GetAttr(e.Attr); ok {
			return v, nil
		}
		if v, ok := r.Class.ClassAttrs[e.Attr]; ok {
			return v, nil
		}
		if fn, ok := methodFor(s, value.KindClassInstance, e.Attr); ok {
			return value.NewBoundMethod(e.Attr, fn, recv), nil
		}
		return nil, excAt(value.ExcAttributeError, value.DepsOf(recv), "'%s' object has no attribute %q", r.Class.Name, e.Attr)
	case *value.Class:
		if v, ok := r.ClassAttrs[e.Attr]; ok {
			return v, nil
		}
		return nil, excAt(value.ExcAttributeError, value.DepsOf(recv), "class %q has no attribute %q", r.Name, e.Attr)
	default:
		if fn, ok := methodFor(s, recv.Kind(), e.Attr); ok {
			return value.NewBoundMethod(e.Attr, fn, recv), nil
		}
		return nil, excAt(value.ExcAttributeError, value.DepsOf(recv), "'%s' object has no attribute %q", recv.Kind(), e.Attr)
	}
}

func methodFor(s *state, k value.Kind, name string) (value.Fn, bool) {
	if s.interp.Methods == nil {
		return nil, false
	}
	table, ok := s.interp.Methods[k]
	if !ok {
		return nil, false
	}
	fn, ok := table[name]
	return fn, ok
}

func evalSlice(s *state, e ast.Slice) (value.Value, error) {
	recv, err := evalExpr(s, e.Recv)
	if err != nil {
		return nil, err
	}
	start, extra1, err := evalSliceBound(s, e.Start)
	if err != nil {
		return nil, err
	}
	stop, extra2, err := evalSliceBound(s, e.Stop)
	if err != nil {
		return nil, err
	}
	step, extra3, err := evalSliceBound(s, e.Step)
	if err != nil {
		return nil, err
	}
	extra := append(append(extra1, extra2...), extra3...)

	n := seqLen(recv)
	str, isStr := recv.(*value.Str)
	if isStr {
		n = str.Len()
	}
	// Omitted bounds follow Python: a negative step walks from the last
	// element down past the first.
	st := defaultBound(step, 1)
	lo, hi := defaultBound(start, 0), defaultBound(stop, n)
	if st < 0 {
		lo, hi = defaultBound(start, n-1), defaultBound(stop, -n-1)
	}
	if isStr {
		return str.Slice(lo, hi, st, extra), nil
	}
	v, err := value.SliceSeq(recv, lo, hi, st, extra)
	if err != nil {
		return nil, excAt(value.ExcTypeError, value.DepsOf(recv), "%s", err.Error())
	}
	return v, nil
}

func seqLen(v value.Value) int {
	switch t := v.(type) {
	case *value.List:
		return len(t.Items)
	case *value.Tuple:
		return len(t.Items)
	default:
		return 0
	}
}

func defaultBound(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func evalSliceBound(s *state, n ast.Node) (*int, []value.Value, error) {
	if n == nil {
		return nil, nil, nil
	}
	v, err := evalExpr(s, n)
	if err != nil {
		return nil, nil, err
	}
	iv, ok := v.(*value.Int)
	if !ok {
		return nil, nil, excAt(value.ExcTypeError, value.DepsOf(v), "slice indices must be integers")
	}
	i := int(iv.Val)
	return &i, []value.Value{v}, nil
}

func evalUnary(s *state, e ast.UnaryOp) (value.Value, error) {
	v, err := evalExpr(s, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "not":
		return value.NewBoolResult(!value.Truthy(v), v), nil
	case "-":
		return value.Binary(value.OpSub, value.NewInt(0, capabilities.Default(), nil), v)
	case "+":
		return v, nil
	default:
		return nil, excAt(value.ExcTypeError, value.DepsOf(v), "bad operand type for unary %s", e.Op)
	}
}

func evalBoolOp(s *state, e ast.BoolOp) (value.Value, error) {
	var last value.Value
	for _, node := range e.Values {
		v, err := evalExpr(s, node)
		if err != nil {
			return nil, err
		}
		last = v
		if e.Op == "and" && !value.Truthy(v) {
			return v, nil
		}
		if e.Op == "or" && value.Truthy(v) {
			return v, nil
		}
	}
	return last, nil
}

func evalCompare(s *state, e ast.Compare) (value.Value, error) {
	left, err := evalExpr(s, e.Left)
	if err != nil {
		return nil, err
	}
	cur := left
	var result *value.Bool = value.NewBoolResult(true)
	for i, op := range e.Ops {
		rhs, err := evalExpr(s, e.Comparators[i])
		if err != nil {
			return nil, err
		}
		switch op {
		case "in":
			b, err := value.Contains(rhs, cur)
			if err != nil {
				return nil, excAt(value.ExcTypeError, value.DepsOf(cur, rhs), "%s", err.Error())
			}
			result = b
		case "not in":
			b, err := value.Contains(rhs, cur)
			if err != nil {
				return nil, excAt(value.ExcTypeError, value.DepsOf(cur, rhs), "%s", err.Error())
			}
			result = value.NewBoolResult(!b.Val, b)
		case "is":
			result = value.NewBoolResult(cur == rhs, cur, rhs)
		case "is not":
			result = value.NewBoolResult(cur != rhs, cur, rhs)
		default:
			b, err := value.Compare(value.CompareOp(op), cur, rhs)
			if err != nil {
				return nil, excAt(value.ExcTypeError, value.DepsOf(cur, rhs), "%s", err.Error())
			}
			result = b
		}
		if !result.Val {
			return result, nil
		}
		cur = rhs
	}
	return result, nil
}

func evalComprehension(s *state, e ast.Comprehension) (value.Value, error) {
	var results []value.Value
	var keys, vals []value.Value
	var sourceDeps []value.Value

	var walk func(idx int) error
	walk = func(idx int) error {
		if idx == len(e.Clauses) {
			if e.Kind == "dict" {
				k, err := evalExpr(s, e.Key)
				if err != nil {
					return err
				}
				v, err := evalExpr(s, e.Value)
				if err != nil {
					return err
				}
				keys = append(keys, k)
				vals = append(vals, v)
				return nil
			}
			v, err := evalExpr(s, e.Elt)
			if err != nil {
				return err
			}
			results = append(results, v)
			return nil
		}
		clause := e.Clauses[idx]
		iterVal, err := evalExpr(s, clause.Iter)
		if err != nil {
			return err
		}
		sourceDeps = append(sourceDeps, iterVal)
		it, err := value.Iterate(iterVal)
		if err != nil {
			return excAt(value.ExcTypeError, value.DepsOf(iterVal), "%s", err.Error())
		}
		for {
			item, ok := it.Next()
			if !ok {
				break
			}
			if err := assign(s, clause.Target, item); err != nil {
				return err
			}
			pass := true
			for _, ifNode := range clause.Ifs {
				cv, err := evalExpr(s, ifNode)
				if err != nil {
					return err
				}
				if !value.Truthy(cv) {
					pass = false
					break
				}
			}
			if !pass {
				continue
			}
			if err := walk(idx + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}

	switch e.Kind {
	case "list", "gen":
		return value.NewList(results, capabilities.CaMeL(), sourceDeps), nil
	case "set":
		return value.NewSet(results, capabilities.CaMeL(), sourceDeps), nil
	case "dict":
		d := value.NewDict(capabilities.CaMeL(), sourceDeps)
		for i := range keys {
			d.Set(keys[i], vals[i])
		}
		return d, nil
	default:
		return nil, fmt.Errorf("interpreter: unknown comprehension kind %q", e.Kind)
	}
}
