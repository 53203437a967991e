package table

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabdiff/pkg/value"
)

func aggTable() *Table {
	return New(
		Row{"g": value.Text("x"), "v": value.Int(1), "w": value.Int(1)},
		Row{"g": value.Text("x"), "v": value.Int(3), "w": value.Int(3)},
		Row{"g": value.Text("y"), "v": value.Int(5), "w": value.Int(1)},
	)
}

func TestAggregateSum(t *testing.T) {
	out, err := aggTable().Aggregate([]string{"g"}, map[string]Aggregator{"v": Sum("v")})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, value.Text("x"), out.Row(0)["g"])
	assert.Equal(t, value.Int(4), out.Row(0)["v"])
	assert.Equal(t, value.Text("y"), out.Row(1)["g"])
	assert.Equal(t, value.Int(5), out.Row(1)["v"])
}

func TestAggregateNoAggsIsDistinctSelect(t *testing.T) {
	out, err := aggTable().Aggregate([]string{"g"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"g"}, out.Headers())
	assert.Equal(t, 2, out.Len())
}

func TestAggregateRegistry(t *testing.T) {
	out, err := aggTable().Aggregate([]string{"g"}, map[string]Aggregator{
		"count":    Count(),
		"distinct": CountDistinct("w"),
		"first":    First("v"),
		"concat":   Concat("v", ","),
		"avg":      Average("v"),
		"min":      Min("v"),
		"max":      Max("v"),
		"span":     Span("v"),
		"wavg":     WeightedAverage("v", "w"),
		"const":    Constant(value.Text("k")),
	})
	require.NoError(t, err)

	x := out.FilterMatch(Row{"g": value.Text("x")}).Row(0)
	assert.Equal(t, value.Int(2), x["count"])
	assert.Equal(t, value.Int(2), x["distinct"])
	assert.Equal(t, value.Int(1), x["first"])
	assert.Equal(t, value.Text("1,3"), x["concat"])
	assert.Equal(t, value.Float(2), x["avg"])
	assert.Equal(t, value.Int(1), x["min"])
	assert.Equal(t, value.Int(3), x["max"])
	assert.Equal(t, value.Float(2), x["span"])
	assert.Equal(t, value.Float(2.5), x["wavg"]) // (1*1 + 3*3) / 4
	assert.Equal(t, value.Text("k"), x["const"])
}

func TestFirstNonBlank(t *testing.T) {
	tbl := New(
		Row{"v": value.Null()},
		Row{"v": value.Text("")},
		Row{"v": value.Text("hit")},
	)
	agg := FirstNonBlank("v")
	got, err := agg(tbl)
	require.NoError(t, err)
	assert.Equal(t, value.Text("hit"), got)
}

func TestConcatDistinct(t *testing.T) {
	tbl := New(
		Row{"v": value.Text("a")},
		Row{"v": value.Text("b")},
		Row{"v": value.Text("a")},
	)
	got, err := ConcatDistinct("v", "|")(tbl)
	require.NoError(t, err)
	assert.Equal(t, value.Text("a|b"), got)
}

func TestDistinctValuesSorted(t *testing.T) {
	tbl := New(
		Row{"v": value.Int(3)},
		Row{"v": value.Int(1)},
		Row{"v": value.Int(3)},
	)
	got, err := DistinctValues("v")(tbl)
	require.NoError(t, err)
	vals, ok := got.V.([]value.Value)
	require.True(t, ok)
	require.Len(t, vals, 2)
	assert.Equal(t, value.Int(1), vals[0])
	assert.Equal(t, value.Int(3), vals[1])
}

func TestEmptyBucketErrors(t *testing.T) {
	empty := New()
	for name, agg := range map[string]Aggregator{
		"avg":  Average("v"),
		"min":  Min("v"),
		"max":  Max("v"),
		"span": Span("v"),
		"wavg": WeightedAverage("v", "w"),
	} {
		_, err := agg(empty)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrEmptyBucket), name)
	}

	// Sum of an empty bucket is defined as zero
	got, err := Sum("v")(empty)
	require.NoError(t, err)
	assert.Equal(t, value.Int(0), got)
}

func TestAggregateStrictErrors(t *testing.T) {
	tbl := New(Row{"g": value.Text("x"), "v": value.Text("not numeric")})
	boom := func(*Table) (value.Value, error) { return value.Null(), errors.New("boom") }
	_, err := tbl.Aggregate([]string{"g"}, map[string]Aggregator{"v": boom})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSumMixedBecomesFloat(t *testing.T) {
	tbl := New(
		Row{"v": value.Int(1)},
		Row{"v": value.Float(0.5)},
		Row{"v": value.Null()},
	)
	got, err := Sum("v")(tbl)
	require.NoError(t, err)
	assert.Equal(t, value.Float(1.5), got)
}
