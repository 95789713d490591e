package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

func TestScope_DefineAndGet(t *testing.T) {
	global := NewScope(nil)
	sym := NewVariable("x", "x", types.Int, token.Position{Line: 1})
	require.NoError(t, global.Define(sym))

	got, ok := global.Get("x")
	require.True(t, ok)
	require.Same(t, sym, got)
}

func TestScope_DefineDuplicateFails(t *testing.T) {
	global := NewScope(nil)
	require.NoError(t, global.Define(NewVariable("x", "x", types.Int, token.Position{})))
	err := global.Define(NewVariable("x", "x", types.Real, token.Position{}))
	require.Error(t, err)
}

func TestScope_ResolveWalksParentChain(t *testing.T) {
	global := NewScope(nil)
	require.NoError(t, global.Define(NewVariable("x", "x", types.Int, token.Position{})))

	child := NewScope(global)
	_, ok := child.Get("x")
	require.False(t, ok, "Get must not walk the parent chain")

	got, ok := child.Resolve("x")
	require.True(t, ok)
	require.Equal(t, "x", got.Name)
}

func TestScope_ShadowingAllowed(t *testing.T) {
	global := NewScope(nil)
	require.NoError(t, global.Define(NewVariable("x", "x", types.Int, token.Position{})))
	child := NewScope(global)
	require.NoError(t, child.Define(NewVariable("x", "_r11_", types.Real, token.Position{})))

	got, _ := child.Resolve("x")
	require.True(t, types.Real.Equals(got.Type))
}

func TestScope_CountAndLocals(t *testing.T) {
	s := NewScope(nil)
	require.Equal(t, 0, s.Count())
	s.AddLocal("a")
	s.AddLocal("b")
	require.Equal(t, 2, s.Count())
	require.Equal(t, []string{"a", "b"}, s.Locals())
}

func TestScope_Depth(t *testing.T) {
	global := NewScope(nil)
	require.Equal(t, 0, global.Depth)
	require.True(t, global.IsGlobal())

	child := NewScope(global)
	require.Equal(t, 1, child.Depth)
	require.False(t, child.IsGlobal())
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	m := NewModule("/abs/a.ama")
	reg.Register(m)

	got, ok := reg.Get("/abs/a.ama")
	require.True(t, ok)
	require.Same(t, m, got)
	require.False(t, got.Loaded)

	_, ok = reg.Get("/abs/missing.ama")
	require.False(t, ok)
}

func TestClassSymbol_MembersAndConstructor(t *testing.T) {
	classType := types.NewClass("Ponto")
	class := NewClass("Ponto", "Ponto", classType, token.Position{})
	class.Members["x"] = NewVariable("x", "x", types.Int, token.Position{})
	class.Members["y"] = NewVariable("y", "y", types.Int, token.Position{})
	class.Constructor = NewFunction("Ponto", "Ponto", classType, token.Position{})
	class.Constructor.Params = []Param{{Name: "x", Type: types.Int}, {Name: "y", Type: types.Int}}

	require.Len(t, class.Members, 2)
	require.Len(t, class.Constructor.Params, 2)
	require.Equal(t, "x", class.Constructor.Params[0].Name)
}

func TestSymbol_CanEvaluate(t *testing.T) {
	v := NewVariable("x", "x", types.Int, token.Position{})
	require.True(t, v.CanEvaluate())

	class := NewClass("Ponto", "Ponto", types.NewClass("Ponto"), token.Position{})
	require.False(t, class.CanEvaluate(), "a bare class name has no evaluable value")
}
