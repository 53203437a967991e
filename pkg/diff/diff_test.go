package diff

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

func TestDiffSingleFieldChange(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("b")})

	rs := Diff(from, to, "k")
	require.Equal(t, 1, rs.Len())

	results := rs.Results()
	require.Len(t, results, 1)
	r := results[0]
	assert.True(t, r.Significant())
	assert.True(t, r.Comparable())
	assert.Equal(t, []string{"f"}, r.ChangedFields())

	c, ok := r.Changed("f")
	require.True(t, ok)
	assert.Equal(t, value.Text("a"), c.From)
	assert.Equal(t, value.Text("b"), c.To)
}

func TestDiffIgnoreFieldRemovesResult(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("b")})

	rs := Diff(from, to, "k")
	rs.IgnoreField("f")
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.Pick())
}

func TestDiffEqualTablesEmpty(t *testing.T) {
	from := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("a")},
		table.Row{"k": value.Int(2), "f": value.Text("b")},
	)
	rs := Diff(from, table.Clone(from), "k")
	assert.Equal(t, 0, rs.Len())
}

func TestDiffPairsNumericKinds(t *testing.T) {
	// keys equal under the numeric cross-kind rule must land in one bucket
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})
	to := table.New(table.Row{"k": value.Float(1), "f": value.Text("a")})
	rs := Diff(from, to, "k")
	assert.Equal(t, 0, rs.Len())

	to = table.New(table.Row{"k": value.Float(1), "f": value.Text("b")})
	rs = Diff(from, to, "k")
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, []string{"f"}, rs.Results()[0].ChangedFields())
}

func TestDiffCardinalityMismatch(t *testing.T) {
	from := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("a")},
		table.Row{"k": value.Int(1), "f": value.Text("b")},
	)
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})

	rs := Diff(from, to, "k")
	require.Equal(t, 1, rs.Len())
	r := rs.Results()[0]
	assert.True(t, r.Significant())
	assert.False(t, r.Comparable(), "count mismatch is never positionally diffed")
	assert.Equal(t, 2, r.FromCount())
	assert.Equal(t, 1, r.ToCount())
}

func TestDiffOneSideAbsent(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})
	to := table.New(table.Row{"k": value.Int(2), "f": value.Text("b")})

	rs := Diff(from, to, "k")
	assert.Equal(t, 2, rs.Len())
	for _, r := range rs.Results() {
		assert.True(t, r.Significant())
		assert.False(t, r.Comparable())
	}
}

func TestDiffPairsSortedWithinBucket(t *testing.T) {
	// both sides hold the same two rows per key, in different order: the
	// sorted positional pairing must produce no differences
	from := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("x")},
		table.Row{"k": value.Int(1), "f": value.Text("y")},
	)
	to := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("y")},
		table.Row{"k": value.Int(1), "f": value.Text("x")},
	)
	rs := Diff(from, to, "k")
	assert.Equal(t, 0, rs.Len())
}

func TestDiffSideOnlyHeadersTrackedSeparately(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "common": value.Text("c"), "fromonly": value.Text("f")})
	to := table.New(table.Row{"k": value.Int(1), "common": value.Text("c"), "toonly": value.Text("t")})

	rs := Diff(from, to, "k")
	require.Equal(t, 1, rs.Len())
	r := rs.Results()[0]
	// from-only went from "f" to the Null placeholder; to-only from Null to "t"
	assert.ElementsMatch(t, []string{"fromonly", "toonly"}, r.ChangedFields())

	c, ok := r.Changed("fromonly")
	require.True(t, ok)
	assert.Equal(t, value.Text("f"), c.From)
	assert.True(t, c.To.IsNull())

	c, ok = r.Changed("toonly")
	require.True(t, ok)
	assert.True(t, c.From.IsNull())
	assert.Equal(t, value.Text("t"), c.To)
}

func TestDiffAbsentKeyFieldDropsFromThatSide(t *testing.T) {
	// "sub" is a key field only the from side carries; the from key is
	// (k, sub) while the to key is just (k), so nothing matches and both
	// buckets report one-sided results
	from := table.New(table.Row{"k": value.Int(1), "sub": value.Int(9), "f": value.Text("a")})
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})

	rs := Diff(from, to, "k", "sub")
	assert.Equal(t, 2, rs.Len())
}

func TestDiffDeterministicOrder(t *testing.T) {
	from := table.New(
		table.Row{"k": value.Int(2), "f": value.Text("a")},
		table.Row{"k": value.Int(1), "f": value.Text("a")},
	)
	to := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("z")},
		table.Row{"k": value.Int(2), "f": value.Text("z")},
	)
	rs := Diff(from, to, "k")
	results := rs.Results()
	require.Len(t, results, 2)
	assert.Equal(t, value.Int(1), results[0].Key()[0])
	assert.Equal(t, value.Int(2), results[1].Key()[0])
}

func TestCheckRemove(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a"), "g": value.Int(1)})
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("b"), "g": value.Int(2)})

	rs := Diff(from, to, "k")
	rs.CheckRemove("f", ExpectedChange(value.Text("a"), value.Text("b")))

	require.Equal(t, 1, rs.Len())
	r := rs.Results()[0]
	assert.Equal(t, []string{"g"}, r.ChangedFields())

	rs.CheckRemove("g", func(from, to value.Value) bool { return false })
	assert.Equal(t, 1, rs.Len(), "unsatisfied predicate must not remove")

	rs.CheckRemove("g", func(from, to value.Value) bool { return true })
	assert.Equal(t, 0, rs.Len())
}

func TestCheckRemoveMultiField(t *testing.T) {
	// value moved from field a to field b, sum preserved
	from := table.New(table.Row{"k": value.Int(1), "a": value.Int(10), "b": value.Int(0)})
	to := table.New(table.Row{"k": value.Int(1), "a": value.Int(4), "b": value.Int(6)})

	sumPreserved := func(fr, tr table.Row) bool {
		var fs, ts int64
		for _, v := range fr {
			fs += v.V.(int64)
		}
		for _, v := range tr {
			ts += v.V.(int64)
		}
		return fs == ts
	}

	rs := Diff(from, to, "k")
	require.Equal(t, 1, rs.Len())
	rs.CheckRemoveMultiField(sumPreserved, "a", "b")
	assert.Equal(t, 0, rs.Len())
}

func TestCheckRemoveMultiFieldRequiresAllChanged(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "a": value.Int(10), "b": value.Int(5)})
	to := table.New(table.Row{"k": value.Int(1), "a": value.Int(4), "b": value.Int(5)})

	rs := Diff(from, to, "k")
	rs.CheckRemoveMultiField(func(fr, tr table.Row) bool { return true }, "a", "b")
	assert.Equal(t, 1, rs.Len(), "b did not change, so nothing may be removed")
}

func TestCustomCheck(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a"), "note": value.Text("renamed")})
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("b"), "note": value.Text("renamed")})

	rs := Diff(from, to, "k")
	rs.CustomCheck(func(fr, tr table.Row) bool {
		return value.Equal(fr["note"], value.Text("renamed"))
	}, "f")
	assert.Equal(t, 0, rs.Len())
}

func TestCustomCheckPrecondition(t *testing.T) {
	from := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("a")},
		table.Row{"k": value.Int(1), "f": value.Text("b")},
	)
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("a")})

	rs := Diff(from, to, "k")
	r := rs.Results()[0]
	err := r.CustomCheck(func(fr, tr table.Row) bool { return true }, "f")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSuppressionPrecondition))

	// the set-level sweep skips such results instead of failing
	rs.CustomCheck(func(fr, tr table.Row) bool { return true }, "f")
	assert.Equal(t, 1, rs.Len())
}

func TestOriginalRows(t *testing.T) {
	from := table.New(table.Row{"k": value.Int(1), "f": value.Text("a"), "extra": value.Int(7)})
	to := table.New(table.Row{"k": value.Int(1), "f": value.Text("b"), "extra": value.Int(7)})

	rs := Diff(from, to, "k")
	origFrom := rs.OriginalFromRows()
	require.Equal(t, 1, origFrom.Len())
	assert.Equal(t, value.Int(1), origFrom.Row(0)["k"])
	assert.Equal(t, value.Text("a"), origFrom.Row(0)["f"])
	assert.Equal(t, value.Int(7), origFrom.Row(0)["extra"])

	origTo := rs.OriginalToRows()
	require.Equal(t, 1, origTo.Len())
	assert.Equal(t, value.Text("b"), origTo.Row(0)["f"])
}

func TestFilter(t *testing.T) {
	from := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("a")},
		table.Row{"k": value.Int(2), "f": value.Text("b")},
	)
	to := table.New(
		table.Row{"k": value.Int(1), "f": value.Text("x")},
		table.Row{"k": value.Int(2), "f": value.Text("b")},
	)
	rs := Diff(from, to, "k")
	require.Equal(t, 1, rs.Len())

	kept := rs.Filter(func(r *Result) bool {
		return value.Equal(r.Key()[0], value.Int(1))
	})
	assert.Equal(t, 1, kept.Len())

	none := rs.Filter(func(*Result) bool { return false })
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, 1, rs.Len(), "filter must not mutate the source set")
}

func TestChangedFieldsAcrossSet(t *testing.T) {
	from := table.New(
		table.Row{"k": value.Int(1), "a": value.Int(1), "b": value.Int(1)},
		table.Row{"k": value.Int(2), "a": value.Int(1), "b": value.Int(1)},
	)
	to := table.New(
		table.Row{"k": value.Int(1), "a": value.Int(2), "b": value.Int(1)},
		table.Row{"k": value.Int(2), "a": value.Int(1), "b": value.Int(2)},
	)
	rs := Diff(from, to, "k")
	assert.Equal(t, []string{"a", "b"}, rs.ChangedFields())
}

func TestFromNothingToNothing(t *testing.T) {
	assert.True(t, FromNothingToNothing(value.Null(), value.Text("")))
	assert.False(t, FromNothingToNothing(value.Null(), value.Text("x")))
}
