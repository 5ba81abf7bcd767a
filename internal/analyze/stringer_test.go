package analyze

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypePath(t *testing.T) {
	// Simple path
	p1 := NewTypePath("Record")
	assert.Equal(t, "Record", p1.String())

	// Field path
	p2 := p1.Field("Names")
	assert.Equal(t, "Record.Names", p2.String())

	// Element path
	p3 := p2.Slice()
	assert.Equal(t, "Record.Names[]", p3.String())

	// Field in element
	p4 := p3.Field("Label")
	assert.Equal(t, "Record.Names[].Label", p4.String())

	// Pointer
	p5 := NewTypePath("Node").Field("Parent").Pointer()
	assert.Equal(t, "Node.*Parent", p5.String())

	// Paths are immutable
	assert.Equal(t, "Record.Names", p2.String())

	var nilPath *TypePath
	assert.Empty(t, nilPath.String())
}

func TestTypeString(t *testing.T) {
	pkgs := loadPackages(t, LoaderConfig{}, "owngen/examples/containers")
	require.Len(t, pkgs, 1)

	record := lookup(t, pkgs[0], "Record")
	st := record.Type().Underlying().(*types.Struct)

	fields := make(map[string]string)
	for i := range st.NumFields() {
		fields[st.Field(i).Name()] = TypeString(st.Field(i).Type())
	}

	assert.Equal(t, "int64", fields["ID"])
	assert.Equal(t, "containers.Tags", fields["Tags"])
	assert.Equal(t, "[]owned.Cow[S, string]", fields["Names"])
	assert.Equal(t, "*time.Location", fields["Zone"])
	assert.Equal(t, "containers.Shape[S]", fields["Kind"])
	assert.Equal(t, "<nil>", TypeString(nil))
}
