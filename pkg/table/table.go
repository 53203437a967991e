// Package table implements an in-memory relational table: ordered rows over
// a shared header set, with column views, structural operators, grouping,
// aggregation and a hash join.
package table

import (
	"fmt"
	"sort"
	"strings"

	"tabdiff/pkg/value"
)

// Row maps header names to cell values. Within a table every row holds
// exactly the table's header set; absent fields are stored as Null, never
// omitted.
type Row map[string]value.Value

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether two rows have the same headers and equal values.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !value.Equal(v, ov) {
			return false
		}
	}
	return true
}

// key renders the row's values for the given headers as a hash key.
func (r Row) key(headers []string) string {
	vals := make([]value.Value, len(headers))
	for i, h := range headers {
		vals[i] = r[h]
	}
	return value.Key(vals...)
}

// Table is an ordered sequence of rows sharing a common header set. The
// header set is derived from the union of all input rows at construction
// time and kept canonically sorted. Readers (filter, column access, join,
// diff) never mutate a table; the in-place operators do.
type Table struct {
	headers []string // sorted
	rows    []Row
}

// New builds a table from row mappings. Headers are the union of all row
// keys; rows missing a header get Null backfilled. Input rows are copied.
func New(rows ...Row) *Table {
	set := map[string]struct{}{}
	for _, r := range rows {
		for h := range r {
			set[h] = struct{}{}
		}
	}
	headers := make([]string, 0, len(set))
	for h := range set {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	t := &Table{headers: headers, rows: make([]Row, 0, len(rows))}
	for _, r := range rows {
		row := make(Row, len(headers))
		for _, h := range headers {
			row[h] = r[h] // zero Value is Null
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// FromRecords builds a table from a header row followed by value records.
// Short records are Null-padded, long records truncated.
func FromRecords(headers []string, records ...[]value.Value) *Table {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = value.Null()
			}
		}
		rows = append(rows, row)
	}
	return New(rows...)
}

// Clone deep-copies a table: every row is copied and the header bookkeeping
// rebuilt, so the copy shares no storage with the original.
func Clone(t *Table) *Table {
	out := &Table{headers: append([]string(nil), t.headers...)}
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		out.rows[i] = r.Clone()
	}
	return out
}

// ParseFunc turns raw text into row mappings, for Parse.
type ParseFunc func(text string) ([]Row, error)

// Parse builds a table by applying parse to raw text.
func Parse(text string, parse ParseFunc) (*Table, error) {
	rows, err := parse(text)
	if err != nil {
		return nil, err
	}
	return New(rows...), nil
}

// Collect concatenates tables into one, padding mismatched headers with
// Null columns as Augment does.
func Collect(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		out = out.Augment(t)
	}
	return out
}

// Headers returns the sorted header names.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// HasHeader reports whether the table carries the named header.
func (t *Table) HasHeader(name string) bool {
	i := sort.SearchStrings(t.headers, name)
	return i < len(t.headers) && t.headers[i] == name
}

// Column returns the named column view. A column for a header the table
// lacks is the empty variant: it iterates, filters and measures as empty,
// and its mutators are no-ops.
func (t *Table) Column(name string) Column {
	return Column{table: t, header: name}
}

// Columns returns one column per header, sorted by name.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.headers))
	for i, h := range t.headers {
		cols[i] = Column{table: t, header: h}
	}
	return cols
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i].Clone() }

// Rows returns a new table holding copies of the rows at the given indices.
func (t *Table) Rows(indices ...int) *Table {
	rows := make([]Row, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, t.rows[i])
	}
	return New(rows...)
}

// Each calls fn for every row in order. The row passed in is the table's own
// storage; callers must not retain or mutate it.
func (t *Table) Each(fn func(Row)) {
	for _, r := range t.rows {
		fn(r)
	}
}

// RowIter is a single-pass pull iterator over rows, consumed by formatters.
type RowIter func() (Row, bool)

// Iter returns a single-pass iterator over the table's rows.
func (t *Table) Iter() RowIter {
	i := 0
	return func() (Row, bool) {
		if i >= len(t.rows) {
			return nil, false
		}
		r := t.rows[i]
		i++
		return r, true
	}
}

// Equal reports whether two tables have the same headers and equal rows in
// the same order.
func (t *Table) Equal(other *Table) bool {
	if len(t.headers) != len(other.headers) || len(t.rows) != len(other.rows) {
		return false
	}
	for i, h := range t.headers {
		if other.headers[i] != h {
			return false
		}
	}
	for i, r := range t.rows {
		if !r.Equal(other.rows[i]) {
			return false
		}
	}
	return true
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%d rows, headers [%s])", len(t.rows), strings.Join(t.headers, " "))
}

// SortBy stable-sorts the table in place by the given fields, comparing with
// the total value order (Null lowest).
func (t *Table) SortBy(fields ...string) {
	sort.SliceStable(t.rows, func(i, j int) bool {
		for _, f := range fields {
			if c := value.Compare(t.rows[i][f], t.rows[j][f]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// headerCompatible reports whether two tables may be concatenated: their
// sorted header lists are equal, or either table has no headers.
func headerCompatible(a, b *Table) bool {
	if len(a.headers) == 0 || len(b.headers) == 0 {
		return true
	}
	if len(a.headers) != len(b.headers) {
		return false
	}
	for i := range a.headers {
		if a.headers[i] != b.headers[i] {
			return false
		}
	}
	return true
}

// addHeader inserts a header into the sorted header list if absent.
func (t *Table) addHeader(name string) {
	i := sort.SearchStrings(t.headers, name)
	if i < len(t.headers) && t.headers[i] == name {
		return
	}
	t.headers = append(t.headers, "")
	copy(t.headers[i+1:], t.headers[i:])
	t.headers[i] = name
	for _, r := range t.rows {
		if _, ok := r[name]; !ok {
			r[name] = value.Null()
		}
	}
}

// dropHeader removes a header from the table and from every row.
func (t *Table) dropHeader(name string) {
	i := sort.SearchStrings(t.headers, name)
	if i >= len(t.headers) || t.headers[i] != name {
		return
	}
	t.headers = append(t.headers[:i], t.headers[i+1:]...)
	for _, r := range t.rows {
		delete(r, name)
	}
}
