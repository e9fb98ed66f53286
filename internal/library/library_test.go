package library_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/library"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func TestNamespaceWithBuiltinsBindsCoreFunctions(t *testing.T) {
	ns := library.NamespaceWithBuiltins()
	for _, name := range []string{"len", "str", "int", "sorted", "isinstance", "range", "ValueError", "datetime", "EnumMeta", "BaseModel"} {
		_, ok := ns.Get(name)
		require.True(t, ok, "expected %q to be bound", name)
	}
}

func TestLenBuiltinCountsListItems(t *testing.T) {
	ns := library.NamespaceWithBuiltins()
	fn, ok := ns.Get("len")
	require.True(t, ok)
	callable := fn.(*value.Callable)
	list := value.NewList([]value.Value{value.NewInt(1, capabilities.Default(), nil), value.NewInt(2, capabilities.Default(), nil)}, capabilities.Default(), nil)
	out, err := callable.Call([]value.Value{list}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), out.(*value.Int).Val)
}

func TestValueErrorConstructorBuildsException(t *testing.T) {
	ns := library.NamespaceWithBuiltins()
	fn, ok := ns.Get("ValueError")
	require.True(t, ok)
	callable := fn.(*value.Callable)
	msg := value.NewStrFromRaw("bad", capabilities.Default(), nil)
	out, err := callable.Call([]value.Value{msg}, nil)
	require.NoError(t, err)
	exc, ok := out.(*value.Exception)
	require.True(t, ok)
	require.Equal(t, value.ExcValueError, exc.ExcKind)
}

func TestStrMethodsUpperIsBoundForStrKind(t *testing.T) {
	methods := library.Methods()
	strMethods, ok := methods[value.KindStr]
	require.True(t, ok)
	upper, ok := strMethods["upper"]
	require.True(t, ok)
	recv := value.NewStrFromRaw("hello", capabilities.Default(), nil)
	out, err := upper([]value.Value{recv}, nil)
	require.NoError(t, err)
	require.Equal(t, "HELLO", out.(*value.Str).Go())
}

func TestDatetimeNowIsUnavailable(t *testing.T) {
	ns := library.NamespaceWithBuiltins()
	dtVal, ok := ns.Get("datetime")
	require.True(t, ok)
	dt := dtVal.(*value.Class)
	now, ok := dt.ClassAttrs["now"]
	require.True(t, ok)
	callable := now.(*value.Callable)
	_, err := callable.Call(nil, nil)
	require.Error(t, err)
}
