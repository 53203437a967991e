package table

import (
	"fmt"

	"tabdiff/pkg/value"
)

// Buckets maps each distinct key-field tuple to the sub-table of rows
// sharing it. Enumeration follows first-seen key order.
type Buckets struct {
	fields []string
	keys   [][]value.Value
	byKey  map[string]*Table
}

// Bucket groups the table's rows by the tuple of the given field values.
func (t *Table) Bucket(fields ...string) *Buckets {
	b := &Buckets{
		fields: append([]string(nil), fields...),
		byKey:  map[string]*Table{},
	}
	for _, r := range t.rows {
		key := make([]value.Value, len(fields))
		for i, f := range fields {
			key[i] = r[f]
		}
		ks := value.Key(key...)
		sub, ok := b.byKey[ks]
		if !ok {
			sub = New()
			sub.headers = append([]string(nil), t.headers...)
			b.byKey[ks] = sub
			b.keys = append(b.keys, key)
		}
		sub.rows = append(sub.rows, r.Clone())
	}
	return b
}

// Fields returns the key-field names the buckets were built over.
func (b *Buckets) Fields() []string { return append([]string(nil), b.fields...) }

// Len returns the number of distinct keys.
func (b *Buckets) Len() int { return len(b.keys) }

// Keys enumerates the key tuples in first-seen order.
func (b *Buckets) Keys() [][]value.Value { return b.keys }

// Get returns the sub-table for a key tuple.
func (b *Buckets) Get(key ...value.Value) (*Table, bool) {
	sub, ok := b.byKey[value.Key(key...)]
	return sub, ok
}

// Each calls fn for every key and sub-table in first-seen order.
func (b *Buckets) Each(fn func(key []value.Value, bucket *Table)) {
	for _, k := range b.keys {
		fn(k, b.byKey[value.Key(k...)])
	}
}

// BucketSize is one entry of SizeOfBuckets.
type BucketSize struct {
	Key   []value.Value
	Count int
}

// SizeOfBuckets counts rows per key-field tuple, in first-seen order.
func (t *Table) SizeOfBuckets(fields ...string) []BucketSize {
	index := map[string]int{}
	var out []BucketSize
	for _, r := range t.rows {
		key := make([]value.Value, len(fields))
		for i, f := range fields {
			key[i] = r[f]
		}
		ks := value.Key(key...)
		if i, ok := index[ks]; ok {
			out[i].Count++
			continue
		}
		index[ks] = len(out)
		out = append(out, BucketSize{Key: key, Count: 1})
	}
	return out
}

// Distinct returns a new table retaining the first occurrence of each row,
// where row equality is all header values equal. Order of first occurrence
// is preserved, so Distinct is idempotent.
func (t *Table) Distinct() *Table {
	seen := map[string]struct{}{}
	var rows []Row
	for _, r := range t.rows {
		k := r.key(t.headers)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, r)
	}
	out := New(rows...)
	if len(rows) == 0 {
		out.headers = append([]string(nil), t.headers...)
	}
	return out
}

// Duplicates returns only the rows whose tuple of the given field values
// occurs more than once.
func (t *Table) Duplicates(fields ...string) *Table {
	counts := map[string]int{}
	for _, r := range t.rows {
		counts[r.key(fields)]++
	}
	return t.FilterRows(func(r Row) bool {
		return counts[r.key(fields)] > 1
	})
}

// Pivot transposes the table: headers become values of a Field column and
// row positions become Row0..RowN columns, one output row per header.
func (t *Table) Pivot() *Table {
	var rows []Row
	for _, h := range t.headers {
		row := Row{"Field": value.Text(h)}
		for i, r := range t.rows {
			row[fmt.Sprintf("Row%d", i)] = r[h]
		}
		rows = append(rows, row)
	}
	return New(rows...)
}

// FillDownBlanks forward-fills blank values in the given columns, or in
// every column when none are given.
func (t *Table) FillDownBlanks(fields ...string) {
	if len(fields) == 0 {
		fields = t.headers
	}
	for _, f := range fields {
		t.Column(f).FillDownBlanks()
	}
}
