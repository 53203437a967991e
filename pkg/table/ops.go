package table

import (
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/value"
)

// The binary operators come in pairs: a non-mutating form returning a new
// table and an in-place form mutating the receiver. The non-mutating form is
// always a deep copy of the receiver followed by the in-place form.

// Union concatenates two header-compatible tables into a new one.
func (t *Table) Union(other *Table) (*Table, error) {
	out := Clone(t)
	if err := out.Append(other); err != nil {
		return nil, err
	}
	return out, nil
}

// Append concatenates other's rows onto t in place. The tables must be
// header-compatible: equal sorted header lists, or either side empty.
func (t *Table) Append(other *Table) error {
	if other == nil || other.Len() == 0 {
		return nil
	}
	if !headerCompatible(t, other) {
		return errors.Wrapf(ErrHeaderMismatch, "expected [%s], found [%s]",
			strings.Join(t.headers, " "), strings.Join(other.headers, " "))
	}
	if len(t.headers) == 0 {
		t.headers = append([]string(nil), other.headers...)
	}
	for _, r := range other.rows {
		t.rows = append(t.rows, r.Clone())
	}
	return nil
}

// Augment concatenates two tables, tolerating mismatched headers: each side
// is first padded with Null columns for the headers it lacks.
func (t *Table) Augment(other *Table) *Table {
	out := Clone(t)
	out.AugmentInPlace(other)
	return out
}

// AugmentInPlace pads t with other's missing headers, then appends a padded
// copy of other's rows.
func (t *Table) AugmentInPlace(other *Table) {
	if other == nil || other.Len() == 0 {
		return
	}
	if t.Len() == 0 && len(t.headers) == 0 {
		t.headers = append([]string(nil), other.headers...)
		for _, r := range other.rows {
			t.rows = append(t.rows, r.Clone())
		}
		return
	}
	for _, h := range other.headers {
		t.addHeader(h)
	}
	for _, r := range other.rows {
		row := make(Row, len(t.headers))
		for _, h := range t.headers {
			row[h] = r[h]
		}
		t.rows = append(t.rows, row)
	}
}

// Subtract removes from a copy of t every row that exact-matches a row in
// other, at most one occurrence per other-row.
func (t *Table) Subtract(other *Table) *Table {
	out := Clone(t)
	out.SubtractInPlace(other)
	return out
}

// SubtractInPlace removes matching rows from t in place.
func (t *Table) SubtractInPlace(other *Table) {
	if other == nil {
		return
	}
	for _, or := range other.rows {
		for i, r := range t.rows {
			if r.Equal(or) {
				t.rows = append(t.rows[:i], t.rows[i+1:]...)
				break
			}
		}
	}
}

// WithColumns returns a new table with the given columns added or
// overwritten. A column value may be a value.Value or Go native (broadcast
// to every row) or a func(Row) value.Value evaluated per row.
func (t *Table) WithColumns(cols map[string]any) *Table {
	out := Clone(t)
	out.SetColumns(cols)
	return out
}

// SetColumns adds or overwrites columns in place.
func (t *Table) SetColumns(cols map[string]any) {
	for header, v := range cols {
		t.addHeader(header)
		switch fn := v.(type) {
		case func(Row) value.Value:
			for _, r := range t.rows {
				r[header] = fn(r)
			}
		default:
			val := value.FromAny(v)
			for _, r := range t.rows {
				r[header] = val
			}
		}
	}
}

// WithoutColumns returns a new table with the named columns removed.
func (t *Table) WithoutColumns(headers ...string) *Table {
	out := Clone(t)
	out.DropColumns(headers...)
	return out
}

// DropColumns removes the named columns in place. Unknown names are ignored.
func (t *Table) DropColumns(headers ...string) {
	for _, h := range headers {
		t.dropHeader(h)
	}
}

// WithoutColumnsFunc returns a new table without the columns matching pred.
func (t *Table) WithoutColumnsFunc(pred func(Column) bool) *Table {
	out := Clone(t)
	out.DropColumnsFunc(pred)
	return out
}

// DropColumnsFunc removes the columns matching pred in place.
func (t *Table) DropColumnsFunc(pred func(Column) bool) {
	var drop []string
	for _, c := range t.Columns() {
		if pred(c) {
			drop = append(drop, c.header)
		}
	}
	t.DropColumns(drop...)
}

// SelectColumns returns a new table keeping only the named columns.
func (t *Table) SelectColumns(headers ...string) *Table {
	out := Clone(t)
	out.KeepColumns(headers...)
	return out
}

// KeepColumns keeps only the named columns, in place.
func (t *Table) KeepColumns(headers ...string) {
	keep := map[string]struct{}{}
	for _, h := range headers {
		keep[h] = struct{}{}
	}
	var drop []string
	for _, h := range t.headers {
		if _, ok := keep[h]; !ok {
			drop = append(drop, h)
		}
	}
	t.DropColumns(drop...)
}

// SelectColumnsFunc returns a new table keeping only columns matching pred.
func (t *Table) SelectColumnsFunc(pred func(Column) bool) *Table {
	out := Clone(t)
	out.KeepColumnsFunc(pred)
	return out
}

// KeepColumnsFunc keeps only the columns matching pred, in place.
func (t *Table) KeepColumnsFunc(pred func(Column) bool) {
	t.DropColumnsFunc(func(c Column) bool { return !pred(c) })
}

// PipeTo applies a row-sequence consumer to a single-pass iterator over the
// table's rows and returns its result. This is the adapter point for the
// CSV, fixed-width and XML encoders.
func (t *Table) PipeTo(consume func(RowIter) (string, error)) (string, error) {
	return consume(t.Iter())
}

// FilterRows returns a new table with the rows for which pred holds.
func (t *Table) FilterRows(pred func(Row) bool) *Table {
	var rows []Row
	for _, r := range t.rows {
		if pred(r) {
			rows = append(rows, r)
		}
	}
	out := New(rows...)
	if len(rows) == 0 {
		// keep the schema of the source table for empty results
		out.headers = append([]string(nil), t.headers...)
	}
	return out
}

// FilterMatch returns the rows whose values equal match's on every header
// match names.
func (t *Table) FilterMatch(match Row) *Table {
	return t.FilterRows(func(r Row) bool {
		for h, v := range match {
			if !value.Equal(r[h], v) {
				return false
			}
		}
		return true
	})
}

// RemoveBlankColumns returns a new table without the headers whose every
// value is blank (Null or empty text).
func (t *Table) RemoveBlankColumns() *Table {
	return t.WithoutColumnsFunc(BlankColumns)
}
