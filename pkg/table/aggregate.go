package table

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/value"
)

// Aggregator reduces a bucket to a single value. Aggregators are pure with
// respect to the bucket argument.
type Aggregator func(bucket *Table) (value.Value, error)

// Aggregate groups the table by the groupBy fields and builds one output row
// per bucket: the group-by field values plus, for each named output field,
// its aggregator's result on the bucket.
//
// With no aggregations given this is SelectColumns(groupBy...).Distinct().
// Error semantics are strict: the first aggregator failure aborts and is
// returned wrapped with the offending group key.
func (t *Table) Aggregate(groupBy []string, aggs map[string]Aggregator) (*Table, error) {
	if len(aggs) == 0 {
		return t.SelectColumns(groupBy...).Distinct(), nil
	}
	var rows []Row
	var aggErr error
	t.Bucket(groupBy...).Each(func(key []value.Value, bucket *Table) {
		if aggErr != nil {
			return
		}
		row := make(Row, len(groupBy)+len(aggs))
		for i, f := range groupBy {
			row[f] = key[i]
		}
		for field, agg := range aggs {
			v, err := agg(bucket)
			if err != nil {
				aggErr = errors.Wrapf(err, "aggregate %q for group %s", field, value.Key(key...))
				return
			}
			row[field] = v
		}
		rows = append(rows, row)
	})
	if aggErr != nil {
		return nil, aggErr
	}
	return New(rows...), nil
}

// First returns the field's value in the bucket's first row.
func First(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		if bucket.Len() == 0 {
			return value.Null(), ErrEmptyBucket
		}
		return bucket.rows[0][field], nil
	}
}

// FirstNonBlank returns the field's first non-blank value, or Null when the
// whole column is blank.
func FirstNonBlank(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		for _, v := range bucket.Column(field).Values() {
			if !v.IsBlank() {
				return v, nil
			}
		}
		return value.Null(), nil
	}
}

// Count returns the bucket's row count.
func Count() Aggregator {
	return func(bucket *Table) (value.Value, error) {
		return value.Int(int64(bucket.Len())), nil
	}
}

// CountDistinct counts the distinct values in the field.
func CountDistinct(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		seen := map[string]struct{}{}
		for _, v := range bucket.Column(field).Values() {
			seen[value.Key(v)] = struct{}{}
		}
		return value.Int(int64(len(seen))), nil
	}
}

// DistinctValues returns the sorted distinct values of the field as an
// opaque []value.Value.
func DistinctValues(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		seen := map[string]struct{}{}
		var vals []value.Value
		for _, v := range bucket.Column(field).Values() {
			k := value.Key(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			vals = append(vals, v)
		}
		sort.SliceStable(vals, func(i, j int) bool { return value.Compare(vals[i], vals[j]) < 0 })
		return value.Opaque(vals), nil
	}
}

// AllValues returns the field's values in row order as an opaque
// []value.Value.
func AllValues(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		return value.Opaque(bucket.Column(field).Values()), nil
	}
}

// Concat string-joins the field's values with sep.
func Concat(field, sep string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		vals := bucket.Column(field).Values()
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.String()
		}
		return value.Text(strings.Join(parts, sep)), nil
	}
}

// ConcatDistinct string-joins the field's distinct values, in first-seen
// order, with sep.
func ConcatDistinct(field, sep string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		seen := map[string]struct{}{}
		var parts []string
		for _, v := range bucket.Column(field).Values() {
			k := value.Key(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			parts = append(parts, v.String())
		}
		return value.Text(strings.Join(parts, sep)), nil
	}
}

// numericSum adds up the field's numeric values. Nulls and non-numeric
// values are skipped; the result stays Int unless a float contributed.
func numericSum(bucket *Table, field string) (value.Value, int) {
	var fsum float64
	var isum int64
	float := false
	n := 0
	for _, v := range bucket.Column(field).Values() {
		f, ok := v.Float64()
		if !ok {
			continue
		}
		n++
		if v.Kind == value.KindFloat {
			float = true
		}
		fsum += f
		if v.Kind == value.KindInt {
			isum += v.V.(int64)
		}
	}
	if float {
		return value.Float(fsum), n
	}
	return value.Int(isum), n
}

// Sum adds the field's numeric values. The sum of an empty bucket is Int 0.
func Sum(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		v, _ := numericSum(bucket, field)
		return v, nil
	}
}

// Average returns the field's numeric sum divided by the bucket's row count.
func Average(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		if bucket.Len() == 0 {
			return value.Null(), ErrEmptyBucket
		}
		v, _ := numericSum(bucket, field)
		f, _ := v.Float64()
		return value.Float(f / float64(bucket.Len())), nil
	}
}

// WeightedAverage averages the field weighted by weightField.
func WeightedAverage(field, weightField string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		if bucket.Len() == 0 {
			return value.Null(), ErrEmptyBucket
		}
		var totalWeight, weighted float64
		for _, r := range bucket.rows {
			w, okw := r[weightField].Float64()
			v, okv := r[field].Float64()
			if !okw || !okv {
				continue
			}
			totalWeight += w
			weighted += v * w
		}
		if totalWeight == 0 {
			return value.Null(), errors.Wrap(ErrEmptyBucket, "zero total weight")
		}
		return value.Float(weighted / totalWeight), nil
	}
}

func extreme(bucket *Table, field string, wantMax bool) (value.Value, error) {
	vals := bucket.Column(field).Values()
	if len(vals) == 0 {
		return value.Null(), ErrEmptyBucket
	}
	best := vals[0]
	for _, v := range vals[1:] {
		c := value.Compare(v, best)
		if (wantMax && c > 0) || (!wantMax && c < 0) {
			best = v
		}
	}
	return best, nil
}

// Min returns the field's least value under the total value order.
func Min(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		return extreme(bucket, field, false)
	}
}

// Max returns the field's greatest value under the total value order.
func Max(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		return extreme(bucket, field, true)
	}
}

// Span returns max minus min of the field's numeric values.
func Span(field string) Aggregator {
	return func(bucket *Table) (value.Value, error) {
		lo, hi := 0.0, 0.0
		n := 0
		for _, v := range bucket.Column(field).Values() {
			f, ok := v.Float64()
			if !ok {
				continue
			}
			if n == 0 || f < lo {
				lo = f
			}
			if n == 0 || f > hi {
				hi = f
			}
			n++
		}
		if n == 0 {
			return value.Null(), ErrEmptyBucket
		}
		return value.Float(hi - lo), nil
	}
}

// Constant returns the given value for every bucket.
func Constant(v value.Value) Aggregator {
	return func(*Table) (value.Value, error) {
		return v, nil
	}
}
