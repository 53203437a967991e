package value

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{nil, Null()},
		{true, Bool(true)},
		{42, Int(42)},
		{int32(7), Int(7)},
		{uint16(9), Int(9)},
		{3.5, Float(3.5)},
		{float32(2), Float(2)},
		{"hi", Text("hi")},
		{[]byte("raw"), Text("raw")},
		{Int(1), Int(1)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FromAny(c.in), "FromAny(%v)", c.in)
	}
	assert.Equal(t, KindOpaque, FromAny(struct{ X int }{1}).Kind)
}

func TestCompareTotalOrder(t *testing.T) {
	// ascending under the documented order
	ordered := []Value{
		Null(),
		Bool(false),
		Bool(true),
		Int(-3),
		Float(0.5),
		Int(1),
		Int(2),
		Float(2.5),
		Text("a"),
		Text("b"),
		Opaque([]int{1}),
	}
	for i := range ordered {
		for j := range ordered {
			c := Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Negative(t, c, "%v < %v", ordered[i], ordered[j])
			case i > j:
				assert.Positive(t, c, "%v > %v", ordered[i], ordered[j])
			default:
				assert.Zero(t, c)
			}
		}
	}
}

func TestCompareNumericCrossKind(t *testing.T) {
	assert.Zero(t, Compare(Int(1), Float(1)))
	assert.True(t, Equal(Int(1), Float(1)))
	assert.Negative(t, Compare(Int(1), Float(1.5)))
	assert.Positive(t, Compare(Float(2.5), Int(2)))
}

func TestSortIsDeterministic(t *testing.T) {
	vals := []Value{Text("b"), Int(2), Null(), Float(1.5), Bool(true), Text("a"), Null()}
	sort.SliceStable(vals, func(i, j int) bool { return Compare(vals[i], vals[j]) < 0 })
	require.True(t, vals[0].IsNull())
	require.True(t, vals[1].IsNull())
	assert.Equal(t, Bool(true), vals[2])
	assert.Equal(t, Float(1.5), vals[3])
	assert.Equal(t, Int(2), vals[4])
	assert.Equal(t, Text("a"), vals[5])
	assert.Equal(t, Text("b"), vals[6])
}

func TestIsBlank(t *testing.T) {
	assert.True(t, Null().IsBlank())
	assert.True(t, Text("").IsBlank())
	assert.False(t, Text(" ").IsBlank())
	assert.False(t, Int(0).IsBlank())
	assert.False(t, Bool(false).IsBlank())
}

func TestString(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "1", Int(1).String())
	assert.Equal(t, "1.5", Float(1.5).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "x", Text("x").String())
}

func TestKeyCollisionFree(t *testing.T) {
	// values containing the separator or each other's string forms must not
	// produce equal keys
	assert.NotEqual(t, Key(Text("a"), Text("b")), Key(Text("a\x1fb")))
	assert.NotEqual(t, Key(Text("1")), Key(Int(1)))
	assert.NotEqual(t, Key(Text("a,b"), Text("c")), Key(Text("a"), Text("b,c")))
	assert.Equal(t, Key(Text("a"), Int(1)), Key(Text("a"), Int(1)))
}

func TestKeyMatchesEquality(t *testing.T) {
	// numerically equal values must hash identically, Key is the hash for
	// every bucketing operation
	assert.Equal(t, Key(Int(1)), Key(Float(1)))
	assert.Equal(t, Key(Int(0)), Key(Float(math.Copysign(0, -1))))
	assert.Equal(t, Key(Int(-3)), Key(Float(-3)))

	assert.NotEqual(t, Key(Int(2)), Key(Float(2.5)))
	assert.NotEqual(t, Key(Int(1)), Key(Bool(true)))
	assert.NotEqual(t, Key(Float(1.5)), Key(Text("1.5")))
}
