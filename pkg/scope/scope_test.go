package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/pkg/scope"
)

func TestScope_ReadFallsThroughToParent(t *testing.T) {
	root := scope.NewRoot(map[string]any{"who": "world"})
	child := scope.New(root, "dialog")

	v, ok := child.Read("who")
	assert.True(t, ok)
	assert.Equal(t, "world", v)

	_, ok = child.Read("missing")
	assert.False(t, ok)
}

func TestScope_WriteShadows(t *testing.T) {
	root := scope.NewRoot(map[string]any{"count": 1})
	child := scope.New(root, "inner")

	old := child.Write("count", 2)
	assert.Equal(t, 1, old)
	assert.Equal(t, 2, child.Get("count"))
	assert.Equal(t, 1, root.Get("count"), "parent must not see a shadowing write")
	assert.True(t, child.Owns("count"))

	child.Delete("count")
	assert.Equal(t, 1, child.Get("count"))
}

func TestScope_WriteTo(t *testing.T) {
	root := scope.NewRoot(nil)
	outer := scope.New(root, "outer")
	inner := scope.New(outer, "inner")

	assert.Nil(t, inner.WriteTo("outer", "flag", true))
	assert.Equal(t, true, outer.Get("flag"))
	assert.Equal(t, true, inner.Get("flag"))
	assert.Nil(t, root.Get("flag"))

	assert.Nil(t, inner.WriteTo(".", "own", 1))
	assert.True(t, inner.Owns("own"))

	// an unknown name lands in the root, like "key@name" on an instance
	assert.Nil(t, inner.WriteTo("nope", "stray", 2))
	assert.Equal(t, 2, root.Get("stray"))
	assert.Equal(t, 2, inner.WriteTo("nope", "stray", 3))

	assert.Same(t, inner, inner.Resolve(""))
	assert.Same(t, outer, inner.Resolve("outer"))
	assert.Same(t, root, inner.Resolve("missing"))
}

func TestScope_Lookup(t *testing.T) {
	root := scope.NewRoot(nil)
	a := scope.New(root, "a")
	b := scope.New(a, "b")

	found, ok := b.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, found)
	assert.Same(t, root, b.Root())
	assert.Same(t, a, b.Parent())
}

func TestScope_Snapshot(t *testing.T) {
	root := scope.NewRoot(map[string]any{"x": 1, "y": 1})
	child := scope.New(root, "")
	child.Write("y", 2)
	child.Write("z", 3)

	assert.Equal(t, map[string]any{"x": 1, "y": 2, "z": 3}, child.Snapshot())
	assert.Equal(t, []string{"y", "z"}, child.Keys())
}
