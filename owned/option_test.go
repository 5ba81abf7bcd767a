package owned_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"owngen/owned"
)

func TestOption(t *testing.T) {
	t.Parallel()

	v, ok := owned.Some("x").Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	none := owned.None[int]()
	assert.False(t, none.IsSome())
	assert.False(t, none.IntoOwned().IsSome())

	got, ok := owned.Some(counter{n: 1}).IntoOwned().Get()
	assert.True(t, ok)
	assert.True(t, got.copied)
}

func TestResult(t *testing.T) {
	t.Parallel()

	ok := owned.Ok[int, error](3)
	assert.True(t, ok.IsOk())
	v, isOk := ok.IntoOwned().Value()
	assert.True(t, isOk)
	assert.Equal(t, 3, v)

	boom := errors.New("boom")
	failed := owned.Err[int](boom)
	assert.False(t, failed.IsOk())
	e, isErr := failed.IntoOwned().Failure()
	assert.True(t, isErr)
	assert.ErrorIs(t, e, boom)

	_, isOk = failed.Value()
	assert.False(t, isOk)
}
