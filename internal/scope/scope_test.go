package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"owngen/internal/analyze"
)

func TestErase(t *testing.T) {
	t.Parallel()

	m := Erase(2, "owned.Static")
	assert.Equal(t, []string{"_", "_"}, m.Input)
	assert.Equal(t, []string{"owned.Static", "owned.Static"}, m.Output)

	empty := Erase(0, "owned.Static")
	assert.Empty(t, empty.Input)
	assert.Empty(t, empty.Output)
}

func TestApply_Positional(t *testing.T) {
	t.Parallel()

	roles := []analyze.Role{analyze.RoleScope, analyze.RoleType, analyze.RoleScope, analyze.RoleType}
	names := []string{"A", "T", "B", "U"}

	recv, res := Erase(2, "owned.Static").Apply(roles, names)
	assert.Equal(t, []string{"_", "T", "_", "U"}, recv)
	assert.Equal(t, []string{"owned.Static", "T", "owned.Static", "U"}, res)
}

func TestApply_NoMarkers(t *testing.T) {
	t.Parallel()

	recv, res := Erase(0, "owned.Static").Apply([]analyze.Role{analyze.RoleType}, []string{"T"})
	assert.Equal(t, []string{"T"}, recv)
	assert.Equal(t, []string{"T"}, res)

	recv, res = Erase(0, "owned.Static").Apply(nil, nil)
	assert.Empty(t, recv)
	assert.Empty(t, res)
}

func TestApply_CountMismatchPanics(t *testing.T) {
	t.Parallel()

	roles := []analyze.Role{analyze.RoleScope, analyze.RoleScope}
	names := []string{"A", "B"}

	assert.Panics(t, func() { Erase(1, "owned.Static").Apply(roles, names) })
	assert.Panics(t, func() { Erase(3, "owned.Static").Apply(roles, names) })
	assert.Panics(t, func() {
		Erase(0, "owned.Static").Apply([]analyze.Role{analyze.RoleConst}, []string{"N"})
	})
}
