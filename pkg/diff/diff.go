package diff

import (
	"sort"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

// Diff buckets both tables by the key fields and compares matched buckets
// field by field.
//
// Key fields absent from one side are dropped from that side's key
// computation only. Non-key headers are split into common, from-only and
// to-only sets; every bucketed row is a fixed-position tuple aligned to the
// combined header index, with Null placeholders for headers the row's table
// lacks. Buckets of equal size are sorted by the total tuple order and
// paired positionally, one result per pair; buckets of unequal size, or
// present on one side only, produce a single count-mismatch result with no
// positional field diff.
func Diff(from, to *table.Table, keyFields ...string) *ResultSet {
	fromKey := presentFields(from, keyFields)
	toKey := presentFields(to, keyFields)

	isKey := map[string]struct{}{}
	for _, f := range keyFields {
		isKey[f] = struct{}{}
	}

	var common, fromOnly, toOnly []string
	for _, h := range from.Headers() {
		if _, ok := isKey[h]; ok {
			continue
		}
		if to.HasHeader(h) {
			common = append(common, h)
		} else {
			fromOnly = append(fromOnly, h)
		}
	}
	for _, h := range to.Headers() {
		if _, ok := isKey[h]; ok {
			continue
		}
		if !from.HasHeader(h) {
			toOnly = append(toOnly, h)
		}
	}
	// ordered: common, then from-only, then to-only
	diffHeaderList := append(append(append([]string(nil), common...), fromOnly...), toOnly...)
	diffFields := make(map[string]int, len(diffHeaderList))
	for i, h := range diffHeaderList {
		diffFields[h] = i
	}

	fromBuckets := bucketTuples(from, fromKey, diffHeaderList)
	toBuckets := bucketTuples(to, toKey, diffHeaderList)

	keyOrder := append([]string(nil), fromBuckets.order...)
	for _, ks := range toBuckets.order {
		if _, ok := fromBuckets.byKey[ks]; !ok {
			keyOrder = append(keyOrder, ks)
		}
	}

	rs := NewResultSet(keyFields...)
	for _, ks := range keyOrder {
		fromSide, inFrom := fromBuckets.byKey[ks]
		toSide, inTo := toBuckets.byKey[ks]
		key := fromBuckets.keys[ks]
		if !inFrom {
			key = toBuckets.keys[ks]
		}
		if inFrom && inTo && len(fromSide) == len(toSide) {
			sortTuples(fromSide)
			sortTuples(toSide)
			for i := range fromSide {
				rs.Add(newResult(key, keyFields, diffFields,
					[][]value.Value{fromSide[i]}, [][]value.Value{toSide[i]}))
			}
			continue
		}
		rs.Add(newResult(key, keyFields, diffFields, fromSide, toSide))
	}
	return rs
}

func presentFields(t *table.Table, fields []string) []string {
	var out []string
	for _, f := range fields {
		if t.HasHeader(f) {
			out = append(out, f)
		}
	}
	return out
}

type tupleBuckets struct {
	order []string
	keys  map[string][]value.Value
	byKey map[string][][]value.Value
}

// bucketTuples groups a table's rows by the key fields, storing each row as
// a tuple aligned to the combined diff header list.
func bucketTuples(t *table.Table, keyFields, diffHeaders []string) *tupleBuckets {
	b := &tupleBuckets{
		keys:  map[string][]value.Value{},
		byKey: map[string][][]value.Value{},
	}
	t.Each(func(r table.Row) {
		key := make([]value.Value, len(keyFields))
		for i, f := range keyFields {
			key[i] = r[f]
		}
		tuple := make([]value.Value, len(diffHeaders))
		for i, h := range diffHeaders {
			if v, ok := r[h]; ok {
				tuple[i] = v
			} else {
				tuple[i] = value.Null()
			}
		}
		ks := value.Key(key...)
		if _, ok := b.byKey[ks]; !ok {
			b.order = append(b.order, ks)
			b.keys[ks] = key
		}
		b.byKey[ks] = append(b.byKey[ks], tuple)
	})
	return b
}

// sortTuples orders row tuples by the total value order, Null lowest, so
// equal-size buckets pair deterministically.
func sortTuples(tuples [][]value.Value) {
	sort.SliceStable(tuples, func(i, j int) bool {
		a, b := tuples[i], tuples[j]
		for k := range a {
			if c := value.Compare(a[k], b[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
