package interpreter

import (
	"fmt"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter/ast"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// evalClassDef builds a value.Class from a `class Foo(Base): ...` body,
// evaluated in a fresh class-scope namespace (spec §4.3). Methods in the
// body are rejected: only the built-in classes provide methods.
func evalClassDef(s *state, st ast.ClassDef) error {
	var parent *value.Class
	if len(st.Bases) > 0 {
		baseVal, err := evalExpr(s, st.Bases[0])
		if err != nil {
			return err
		}
		bc, ok := baseVal.(*value.Class)
		if !ok {
			return excAt(value.ExcTypeError, value.DepsOf(baseVal), "base %q is not a class", baseVal.Kind())
		}
		parent = bc
	}

	classNS := s.ns
	classAttrs := map[string]value.Value{}
	if parent != nil {
		for k, v := range parent.ClassAttrs {
			classAttrs[k] = v
		}
	}
	var fields []value.FieldSpec
	if parent != nil {
		fields = append(fields, parent.Fields...)
	}
	for _, bodyStmt := range st.Body {
		switch bs := bodyStmt.(type) {
		case ast.Pass:
			continue
		case ast.AnnAssign:
			name, ok := bs.Target.(ast.Name)
			if !ok {
				return fmt.Errorf("interpreter: class field target must be a name")
			}
			var def value.Value
			required := bs.Value == nil
			if bs.Value != nil {
				v, err := evalExpr(s, bs.Value)
				if err != nil {
					return err
				}
				def = v
			}
			fields = append(fields, value.FieldSpec{Name: name.Ident, Required: required, Default: def})
		case ast.Assign:
			saved := s.ns
			s.ns = classNS
			v, err := evalExpr(s, bs.Value)
			s.ns = saved
			if err != nil {
				return err
			}
			for _, target := range bs.Targets {
				name, ok := target.(ast.Name)
				if !ok {
					continue
				}
				classNS = classNS.Bind(name.Ident, v)
				classAttrs[name.Ident] = v
			}
		case ast.ClassDef:
			return excAt(value.ExcTypeError, nil, "nested class definitions are not supported")
		default:
			return excAt(value.ExcTypeError, nil, "class body statement %T is not supported (user-defined methods are disallowed)", bodyStmt)
		}
	}

	class := value.NewClass(st.Name, parent, fields, false)
	class.New = defaultConstructor
	class.ClassAttrs = classAttrs
	s.ns = s.ns.Bind(st.Name, class)
	return nil
}

// defaultConstructor assigns positional args to declared fields in order,
// then any keyword args by name, applying each field's validator and
// defaulting unset-but-optional fields.
func defaultConstructor(c *value.Class, args []value.Value, kwargs map[string]value.Value) (*value.ClassInstance, error) {
	inst := value.NewClassInstance(c, capabilities.CaMeL(), argDeps(args, kwargs))
	names := c.FieldNames()
	for i, v := range args {
		if i >= len(names) {
			return nil, fmt.Errorf("%s() takes at most %d positional arguments", c.Name, len(names))
		}
		if err := setValidatedField(c, inst, names[i], v); err != nil {
			return nil, err
		}
	}
	for name, v := range kwargs {
		if err := setValidatedField(c, inst, name, v); err != nil {
			return nil, err
		}
	}
	for _, f := range c.Fields {
		if _, ok := inst.Fields[f.Name]; ok {
			continue
		}
		if f.Default != nil {
			inst.Fields[f.Name] = f.Default
			continue
		}
		if f.Required {
			return nil, fmt.Errorf("%s() missing required field %q", c.Name, f.Name)
		}
	}
	return inst, nil
}

func setValidatedField(c *value.Class, inst *value.ClassInstance, name string, v value.Value) error {
	for _, f := range c.Fields {
		if f.Name == name {
			if f.Validate != nil {
				if err := f.Validate(v); err != nil {
					return err
				}
			}
			break
		}
	}
	_ = inst.SetAttr(name, v)
	return nil
}
