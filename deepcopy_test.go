package deepcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	Title    string
	Sections []*section
}

type section struct {
	Heading string
	Body    string
}

func TestPackageLevelCopy(t *testing.T) {
	orig := document{
		Title:    "draft",
		Sections: []*section{{Heading: "h1", Body: "b1"}},
	}

	copied, err := Copy(orig)
	require.NoError(t, err)
	assert.Equal(t, orig, copied)

	copied.Sections[0].Body = "changed"
	assert.Equal(t, "b1", orig.Sections[0].Body)
}

func TestPackageLevelCopyScalar(t *testing.T) {
	n, err := Copy(42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestPackageLevelCopyNilPointer(t *testing.T) {
	var d *document
	copied, err := Copy(d)
	require.NoError(t, err)
	assert.Nil(t, copied)
}

func TestMustCopy(t *testing.T) {
	orig := document{Title: "x"}
	assert.Equal(t, orig, MustCopy(orig))
}

func TestRegisterImmutableTypeGeneric(t *testing.T) {
	type frozenDoc struct{ Body *string }
	require.NoError(t, RegisterImmutableType[frozenDoc]())

	body := "shared"
	copied, err := Copy(frozenDoc{Body: &body})
	require.NoError(t, err)
	assert.Same(t, &body, copied.Body)
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
