package deepcopy

import (
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Street string
	City   string
}

type person struct {
	Name    string
	Age     int
	Home    *address
	Work    *address
	Tags    []string
	Extra   map[string]int
	Contact any
}

func TestDeepCopyNestedStruct(t *testing.T) {
	p := New()
	home := &address{Street: "1 Main St", City: "Springfield"}
	orig := person{
		Name:  "Ada",
		Age:   36,
		Home:  home,
		Work:  &address{Street: "2 Side St", City: "Springfield"},
		Tags:  []string{"a", "b"},
		Extra: map[string]int{"x": 1},
	}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied, ok := out.(person)
	require.True(t, ok)

	if !assert.Equal(t, orig, copied) {
		t.Log(spew.Sdump(copied))
	}

	// Mutating the copy must not leak into the original.
	copied.Home.City = "Shelbyville"
	copied.Tags[0] = "z"
	copied.Extra["x"] = 99
	assert.Equal(t, "Springfield", orig.Home.City)
	assert.Equal(t, "a", orig.Tags[0])
	assert.Equal(t, 1, orig.Extra["x"])
}

func TestSharedReferencesStayShared(t *testing.T) {
	p := New()
	shared := &address{Street: "1 Main St"}
	orig := person{Home: shared, Work: shared}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(person)

	assert.NotSame(t, shared, copied.Home)
	assert.Same(t, copied.Home, copied.Work, "aliased pointers must alias in the copy")
}

type node struct {
	Value int
	Next  *node
}

func TestCyclicGraph(t *testing.T) {
	p := New()
	a := &node{Value: 1}
	b := &node{Value: 2, Next: a}
	a.Next = b

	out, err := p.Copy(a)
	require.NoError(t, err)
	ca := out.(*node)

	assert.NotSame(t, a, ca)
	assert.Equal(t, 1, ca.Value)
	assert.Equal(t, 2, ca.Next.Value)
	assert.Same(t, ca, ca.Next.Next, "cycle must close onto the copy")
}

type selfMap map[string]selfMap

func TestSelfReferentialContainer(t *testing.T) {
	p := New()

	// A container holding itself would overflow a naive walk; the map
	// copier's visited tracking must close the loop onto the new map.
	g := selfMap{}
	g["self"] = g

	c, err := p.GetCopier(reflect.TypeOf(g))
	require.NoError(t, err)
	assert.IsType(t, mapCopier{}, c, "self-linked container must use the container copier")

	out, err := p.Copy(g)
	require.NoError(t, err)
	copied := out.(selfMap)

	require.Contains(t, copied, "self")
	assert.Equal(t,
		reflect.ValueOf(copied).Pointer(),
		reflect.ValueOf(copied["self"]).Pointer(),
		"copy must reference itself")
	assert.NotEqual(t,
		reflect.ValueOf(g).Pointer(),
		reflect.ValueOf(copied).Pointer())
}

func TestMapKeysAreCopied(t *testing.T) {
	p := New()
	k := address{Street: "key"}
	orig := map[address]int{k: 1}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(map[address]int)
	assert.Equal(t, 1, copied[k])
}

func TestInterfaceFieldCopiesDynamicValue(t *testing.T) {
	p := New()
	orig := person{Contact: &address{Street: "1 Main St"}}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(person)

	ca, ok := copied.Contact.(*address)
	require.True(t, ok)
	assert.NotSame(t, orig.Contact.(*address), ca)
	assert.Equal(t, "1 Main St", ca.Street)
}

func TestNilValuesPreserved(t *testing.T) {
	p := New()
	orig := person{Name: "only name"}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(person)

	assert.Nil(t, copied.Home)
	assert.Nil(t, copied.Tags)
	assert.Nil(t, copied.Extra)
	assert.Nil(t, copied.Contact)
}

func TestArraysAndSlices(t *testing.T) {
	p := New()

	arr := [3]*address{{Street: "a"}, nil, {Street: "c"}}
	out, err := p.Copy(arr)
	require.NoError(t, err)
	carr := out.([3]*address)
	assert.NotSame(t, arr[0], carr[0])
	assert.Equal(t, "a", carr[0].Street)
	assert.Nil(t, carr[1])

	sl := [][]int{{1, 2}, {3}}
	out, err = p.Copy(sl)
	require.NoError(t, err)
	csl := out.([][]int)
	csl[0][0] = 9
	assert.Equal(t, 1, sl[0][0])
}

type withHidden struct {
	Visible *address
	hidden  string
}

func TestUnexportedFieldsCarriedShallow(t *testing.T) {
	p := New()
	orig := withHidden{Visible: &address{Street: "v"}, hidden: "kept"}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(withHidden)

	assert.Equal(t, "kept", copied.hidden)
	assert.NotSame(t, orig.Visible, copied.Visible)
}

func TestTimeIsIdentityCopied(t *testing.T) {
	p := New()
	now := time.Now()

	out, err := p.Copy(now)
	require.NoError(t, err)
	assert.True(t, now.Equal(out.(time.Time)))

	// *time.Location is registered immutable at bootstrap: shared, never
	// walked.
	loc := now.Location()
	lout, err := p.Copy(loc)
	require.NoError(t, err)
	assert.Same(t, loc, lout.(*time.Location))
}

func TestStructWithTimeField(t *testing.T) {
	p := New()
	type event struct {
		Name string
		At   time.Time
	}
	orig := event{Name: "deploy", At: time.Now()}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(event)
	assert.True(t, orig.At.Equal(copied.At))
}

func TestPointerAliasAcrossSliceAndField(t *testing.T) {
	p := New()
	shared := &address{Street: "shared"}
	type holder struct {
		One  *address
		Many []*address
	}
	orig := holder{One: shared, Many: []*address{shared, shared}}

	out, err := p.Copy(orig)
	require.NoError(t, err)
	copied := out.(holder)

	assert.Same(t, copied.One, copied.Many[0])
	assert.Same(t, copied.Many[0], copied.Many[1])
	assert.NotSame(t, shared, copied.One)
}
