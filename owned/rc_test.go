package owned_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"owngen/owned"
)

func TestRc_SoleOwnerTakes(t *testing.T) {
	t.Parallel()

	d := doc{lines: []string{"a"}}
	rc := owned.NewRc(d)
	assert.Equal(t, int64(1), rc.Owners())

	got := rc.Take()
	assert.Equal(t, int64(0), rc.Owners())

	// The sole owner receives the payload itself, not a copy.
	got.lines[0] = "b"
	assert.Equal(t, "b", d.lines[0])
}

func TestRc_SharedDuplicates(t *testing.T) {
	t.Parallel()

	rc := owned.NewRc(doc{lines: []string{"a"}})
	other := rc.Clone()
	assert.Equal(t, int64(2), rc.Owners())

	got := rc.Take()
	assert.Equal(t, int64(1), other.Owners())

	got.lines[0] = "b"
	assert.Equal(t, "a", other.Get().lines[0])

	other.Release()
	assert.Equal(t, int64(0), other.Owners())
}

func TestRc_SharedPayloadWithoutClone(t *testing.T) {
	t.Parallel()

	rc := owned.NewRc([]int{1, 2, 3})
	other := rc.Clone()

	p := rc.IntoOwned().Get()
	p[0] = 99
	assert.Equal(t, []int{1, 2, 3}, other.Get())

	m := owned.NewRc(map[string]int{"a": 1})
	shared := m.Clone()

	got := m.Take()
	got["a"] = 42
	assert.Equal(t, map[string]int{"a": 1}, shared.Get())
}

func TestRc_IntoOwned(t *testing.T) {
	t.Parallel()

	rc := owned.NewRc(counter{n: 2})
	own := rc.IntoOwned()
	assert.Equal(t, int64(1), own.Owners())
	assert.True(t, own.Get().copied)

	var zero owned.Rc[int]
	assert.Equal(t, 0, zero.Take())
	assert.Equal(t, int64(0), zero.Clone().Owners())
}

func TestRc_ConcurrentTake(t *testing.T) {
	t.Parallel()

	const owners = 16

	rc := owned.NewRc(doc{lines: []string{"payload"}})
	handles := make([]owned.Rc[doc], owners)
	handles[0] = rc
	for i := 1; i < owners; i++ {
		handles[i] = rc.Clone()
	}

	results := make([]doc, owners)

	var wg sync.WaitGroup
	for i := range owners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = handles[i].Take()
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []string{"payload"}, r.lines)
	}
	assert.Equal(t, int64(0), rc.Owners())
}
