package owned_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owngen/owned"
)

type doc struct {
	lines []string
}

func (d doc) Clone() doc {
	return doc{lines: append([]string(nil), d.lines...)}
}

func TestCow_BorrowedMaterializes(t *testing.T) {
	t.Parallel()

	buf := []byte("borrowed")
	view := owned.Borrow[owned.Local](&buf)
	require.True(t, view.IsBorrowed())

	own := view.IntoOwned()
	assert.False(t, own.IsBorrowed())
	assert.Equal(t, []byte("borrowed"), own.Get())

	buf[0] = 'B'
	assert.Equal(t, []byte("borrowed"), own.Get(), "owned form must not alias the source")
}

func TestCow_StringView(t *testing.T) {
	t.Parallel()

	s := "hello"
	own := owned.Borrow[owned.Local](&s).IntoOwned()

	s = "changed"
	assert.Equal(t, "hello", own.Get())
}

func TestCow_UsesClone(t *testing.T) {
	t.Parallel()

	d := doc{lines: []string{"a", "b"}}
	own := owned.Borrow[owned.Local](&d).IntoOwned()

	d.lines[0] = "z"
	assert.Equal(t, []string{"a", "b"}, own.Get().lines)
}

func TestCow_OwnedPassesThrough(t *testing.T) {
	t.Parallel()

	c := owned.Own[owned.Local](42)
	assert.False(t, c.IsBorrowed())
	assert.Equal(t, 42, c.IntoOwned().Get())

	var zero owned.Cow[owned.Local, string]
	assert.Equal(t, "", zero.IntoOwned().Get())
}

type node struct {
	Name string
	Next *node
	Tags map[string][]int
}

func TestCow_SliceAndMapDoNotAlias(t *testing.T) {
	t.Parallel()

	data := []int{1, 2, 3}
	fromSlice := owned.Borrow[owned.Local](&data).IntoOwned()

	data[0] = 99
	assert.False(t, fromSlice.IsBorrowed())
	assert.Equal(t, []int{1, 2, 3}, fromSlice.Get())

	m := map[string]int{"a": 1}
	fromMap := owned.Borrow[owned.Local](&m).IntoOwned()

	m["a"] = 42
	m["b"] = 2
	assert.Equal(t, map[string]int{"a": 1}, fromMap.Get())

	nested := [][]string{{"x"}}
	fromNested := owned.Borrow[owned.Local](&nested).IntoOwned()

	nested[0][0] = "y"
	assert.Equal(t, [][]string{{"x"}}, fromNested.Get())
}

func TestCow_PointerGraphIsCopied(t *testing.T) {
	t.Parallel()

	head := &node{Name: "head", Tags: map[string][]int{"k": {1}}}
	head.Next = head

	own := owned.Borrow[owned.Local](&head).IntoOwned().Get()
	require.NotSame(t, head, own)
	assert.Same(t, own, own.Next, "cycles keep their shape")

	head.Name = "changed"
	head.Tags["k"][0] = 7
	assert.Equal(t, "head", own.Name)
	assert.Equal(t, []int{1}, own.Tags["k"])
}

func TestCow_ElementsReown(t *testing.T) {
	t.Parallel()

	items := []counter{{n: 1}, {n: 2}}
	own := owned.Borrow[owned.Local](&items).IntoOwned().Get()

	assert.Equal(t, []counter{{n: 1, copied: true}, {n: 2, copied: true}}, own)
	assert.False(t, items[0].copied)

	var nothing []int
	assert.Nil(t, owned.Borrow[owned.Local](&nothing).IntoOwned().Get())
}
