package interpreter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter"
	"github.com/jbhoffman613/camel-prompt-injection/internal/library"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/toolregistry"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func run(t *testing.T, code string) (interpreter.Result, *interpreter.Interpreter) {
	t.Helper()
	interp := interpreter.New(toolregistry.NewRegistry(), library.Methods())
	ns := library.NamespaceWithBuiltins()
	res, _, _, _ := interpreter.Run(context.Background(), interp, code, ns, nil, interpreter.EvalArgs{})
	return res, interp
}

func TestLenOfList(t *testing.T) {
	res, _ := run(t, "len([1, 2, 3])")
	require.True(t, res.IsOk())
	n, ok := res.Value.(*value.Int)
	require.True(t, ok)
	require.Equal(t, int64(3), n.Val)
}

func TestStringUpperMethod(t *testing.T) {
	res, _ := run(t, `"hello".upper()`)
	require.True(t, res.IsOk())
	s, ok := res.Value.(*value.Str)
	require.True(t, ok)
	require.Equal(t, "HELLO", s.Go())
}

func TestRaiseValueErrorPropagates(t *testing.T) {
	res, _ := run(t, `raise ValueError("bad input")`)
	require.False(t, res.IsOk())
	require.Equal(t, value.ExcValueError, res.Err.ExcKind)
}

func TestDivisionByZeroRaisesZeroDivisionError(t *testing.T) {
	res, _ := run(t, "1 / 0")
	require.False(t, res.IsOk())
	require.Equal(t, value.ExcZeroDivisionError, res.Err.ExcKind)
}

func TestClassInstanceFieldDependsOnConstructorArg(t *testing.T) {
	code := `
class Point:
    x: int
    y: int

p = Point(1, 2)
p.x
`
	res, _ := run(t, code)
	require.True(t, res.IsOk())
	n, ok := res.Value.(*value.Int)
	require.True(t, ok)
	require.Equal(t, int64(1), n.Val)
	require.NotEmpty(t, n.Dependencies())
}

func TestClassAttrFromEnumStyleAssignIsReadable(t *testing.T) {
	code := `
class Color:
    RED = 1
    BLUE = 2

Color.BLUE
`
	res, _ := run(t, code)
	require.True(t, res.IsOk())
	n, ok := res.Value.(*value.Int)
	require.True(t, ok)
	require.Equal(t, int64(2), n.Val)
}

func TestDictComprehensionUnpacksTupleTarget(t *testing.T) {
	code := `
d = {"a": 1, "b": 2}
{v: k for k, v in d.items()}
`
	res, _ := run(t, code)
	require.True(t, res.IsOk())
	d, ok := res.Value.(*value.Dict)
	require.True(t, ok)
	// Keys come out of d.items(), a built-in call, so they carry the
	// Tool("items") label; dict keys hash on value and label together.
	v, ok := d.Get(value.NewInt(1, capabilities.Tool("items"), nil))
	require.True(t, ok)
	require.Equal(t, "a", v.(*value.Str).Go())
}

func TestListComprehensionUnpacksTupleTarget(t *testing.T) {
	code := `
pairs = [(1, 2), (3, 4)]
[x + y for x, y in pairs]
`
	res, _ := run(t, code)
	require.True(t, res.IsOk())
	list, ok := res.Value.(*value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
	require.Equal(t, int64(3), list.Items[0].(*value.Int).Val)
	require.Equal(t, int64(7), list.Items[1].(*value.Int).Val)
}

func TestExtractCodeBlockFindsFenceAmongProse(t *testing.T) {
	text := "Some text.\n```python\nlen([1, 2, 3])\n```\nMore text."
	require.Equal(t, "len([1, 2, 3])", interpreter.ExtractCodeBlock(text))
}

func TestContainmentWithNegativeEvidenceDependency(t *testing.T) {
	// "x in lst" being false is itself a dependency on the untrusted list,
	// not just a trusted boolean (spec §4.4's negative-evidence rule):
	// the result must carry the list's own capabilities forward.
	res, _ := run(t, "3 in [1, 2]")
	require.True(t, res.IsOk())
	b, ok := res.Value.(*value.Bool)
	require.True(t, ok)
	require.False(t, b.Val)
	require.NotEmpty(t, b.Dependencies())
}

// allowEngine lets every tool call through and flags every tool as having
// a side effect, so Check is always consulted.
type allowEngine struct{}

func (allowEngine) NoSideEffect(string) bool { return false }
func (allowEngine) Check(_ context.Context, _ string, _ map[string]value.Value, _ []value.Value) (policy.Decision, error) {
	return policy.Allow(), nil
}

func TestToolCallDeniedWithoutPolicyEngine(t *testing.T) {
	interp := interpreter.New(toolregistry.NewRegistry(), library.Methods())
	require.NoError(t, interp.Registry.Register(toolregistry.ToolSpec{
		Name: "get_date",
		Fn: func(_ context.Context, _ map[string]any) (any, error) {
			return "2026-07-30", nil
		},
		Classify: toolregistry.ClassificationRule{Kind: toolregistry.ScalarConfirmation}.Classifier(),
	}))
	ns := library.NamespaceWithBuiltins()
	ns = ns.Bind("get_date", value.NewToolFn("get_date", nil, capabilities.CaMeL(), nil))

	res, _, _, _ := interpreter.Run(context.Background(), interp, "get_date()", ns, nil, interpreter.EvalArgs{})
	require.False(t, res.IsOk())
	require.Equal(t, value.ExcSecurityPolicyDenied, res.Err.ExcKind)
}

func TestToolCallAllowedWithPolicyEngine(t *testing.T) {
	interp := interpreter.New(toolregistry.NewRegistry(), library.Methods())
	require.NoError(t, interp.Registry.Register(toolregistry.ToolSpec{
		Name: "get_date",
		Fn: func(_ context.Context, _ map[string]any) (any, error) {
			return "2026-07-30", nil
		},
		Classify: toolregistry.ClassificationRule{Kind: toolregistry.ScalarConfirmation}.Classifier(),
	}))
	ns := library.NamespaceWithBuiltins()
	ns = ns.Bind("get_date", value.NewToolFn("get_date", nil, capabilities.CaMeL(), nil))

	res, _, calls, _ := interpreter.Run(context.Background(), interp, "get_date()", ns, nil, interpreter.EvalArgs{Policy: allowEngine{}})
	require.True(t, res.IsOk())
	require.Len(t, calls, 1)
	s, ok := res.Value.(*value.Str)
	require.True(t, ok)
	require.Equal(t, "2026-07-30", s.Go())
}
