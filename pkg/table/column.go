package table

import (
	"fmt"

	"tabdiff/pkg/value"
)

// Column is a named view over a table. It is a lightweight handle: the table
// owns all row storage, and mutating through a column (Set, Sort,
// FillDownBlanks) writes into the owning table. A column whose header is
// absent from its table behaves as empty for reads and as a no-op for
// writes, so callers never need a presence check.
type Column struct {
	table  *Table
	header string
}

// Header returns the column's header name.
func (c Column) Header() string { return c.header }

func (c Column) exists() bool { return c.table != nil && c.table.HasHeader(c.header) }

// Values returns the column's values in table row order.
func (c Column) Values() []value.Value {
	if !c.exists() {
		return nil
	}
	out := make([]value.Value, len(c.table.rows))
	for i, r := range c.table.rows {
		out[i] = r[c.header]
	}
	return out
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	if !c.exists() {
		return 0
	}
	return len(c.table.rows)
}

// Get returns the i-th row's value for this column.
func (c Column) Get(i int) value.Value {
	if !c.exists() || i < 0 || i >= len(c.table.rows) {
		return value.Null()
	}
	return c.table.rows[i][c.header]
}

// Contains tests membership by iterating the column.
func (c Column) Contains(v value.Value) bool {
	if !c.exists() {
		return false
	}
	for _, r := range c.table.rows {
		if value.Equal(r[c.header], v) {
			return true
		}
	}
	return false
}

// Set overwrites every row's value for this column. No-op when the header is
// absent from the owning table.
func (c Column) Set(v value.Value) {
	if !c.exists() {
		return
	}
	for _, r := range c.table.rows {
		r[c.header] = v
	}
}

// SetFunc assigns fn's result per row, writing through to the owning table.
func (c Column) SetFunc(fn func(Row) value.Value) {
	if !c.exists() {
		return
	}
	for _, r := range c.table.rows {
		r[c.header] = fn(r)
	}
}

// Sort stable-sorts the owning table by this column alone.
func (c Column) Sort() {
	if !c.exists() {
		return
	}
	c.table.SortBy(c.header)
}

// GroupSize is one entry of SizeOfGroups.
type GroupSize struct {
	Value value.Value
	Count int
}

// SizeOfGroups counts occurrences per distinct value, in first-seen order.
func (c Column) SizeOfGroups() []GroupSize {
	if !c.exists() {
		return nil
	}
	index := map[string]int{}
	var out []GroupSize
	for _, r := range c.table.rows {
		v := r[c.header]
		k := value.Key(v)
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, GroupSize{Value: v, Count: 1})
	}
	return out
}

// FillDownBlanks propagates the last non-blank value forward through row
// order, writing through to the owning table.
func (c Column) FillDownBlanks() {
	if !c.exists() {
		return
	}
	prev := value.Null()
	for _, r := range c.table.rows {
		if r[c.header].IsBlank() {
			r[c.header] = prev
		} else {
			prev = r[c.header]
		}
	}
}

func (c Column) String() string {
	return fmt.Sprintf("Column(%q)", c.header)
}

// Ready-made predicates for SelectColumnsFunc and WithoutColumnsFunc.

// NullColumns matches columns whose every value is Null.
func NullColumns(c Column) bool {
	for _, v := range c.Values() {
		if !v.IsNull() {
			return false
		}
	}
	return true
}

// BlankColumns matches columns whose every value is blank.
func BlankColumns(c Column) bool {
	for _, v := range c.Values() {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

// HasValueColumns matches columns with at least one non-blank value.
func HasValueColumns(c Column) bool {
	for _, v := range c.Values() {
		if !v.IsBlank() {
			return true
		}
	}
	return false
}

// SingleValueColumns matches columns holding exactly one distinct value.
func SingleValueColumns(c Column) bool {
	return len(c.SizeOfGroups()) == 1
}

type criterionKind int

const (
	critNull criterionKind = iota
	critColumn
	critFunc
	critIn
	critValue
)

// Criterion is the closed set of filter arguments a column accepts. The
// variants mirror the dispatch priority of Filter: null check, same-table
// column equality, other-table column membership, predicate, collection
// membership, literal equality.
type Criterion struct {
	kind    criterionKind
	column  Column
	pred    func(value.Value) bool
	values  []value.Value
	literal value.Value
}

// WhereNull matches rows whose column value is Null.
func WhereNull() Criterion { return Criterion{kind: critNull} }

// WhereColumn matches against another column. When the other column belongs
// to the same table, rows where the two named columns are equal match; when
// it belongs to a different table, rows whose value is a member of the other
// column's value set match.
func WhereColumn(col Column) Criterion { return Criterion{kind: critColumn, column: col} }

// WhereFunc matches rows for which the predicate holds on the column value.
func WhereFunc(pred func(value.Value) bool) Criterion { return Criterion{kind: critFunc, pred: pred} }

// WhereIn matches rows whose column value is a member of the collection.
func WhereIn(vals ...value.Value) Criterion { return Criterion{kind: critIn, values: vals} }

// WhereValue matches rows whose column value equals the literal.
func WhereValue(v value.Value) Criterion { return Criterion{kind: critValue, literal: v} }

// Filter returns a new table containing only the rows matching the
// criterion. Filtering the empty column variant yields an empty table.
func (c Column) Filter(crit Criterion) *Table {
	if !c.exists() {
		return New()
	}
	var keep func(Row) bool
	switch crit.kind {
	case critNull:
		keep = func(r Row) bool { return r[c.header].IsNull() }
	case critColumn:
		if crit.column.table == c.table {
			other := crit.column.header
			keep = func(r Row) bool { return value.Equal(r[c.header], r[other]) }
		} else {
			members := map[string]struct{}{}
			for _, v := range crit.column.Values() {
				members[value.Key(v)] = struct{}{}
			}
			keep = func(r Row) bool {
				_, ok := members[value.Key(r[c.header])]
				return ok
			}
		}
	case critFunc:
		keep = func(r Row) bool { return crit.pred(r[c.header]) }
	case critIn:
		members := map[string]struct{}{}
		for _, v := range crit.values {
			members[value.Key(v)] = struct{}{}
		}
		keep = func(r Row) bool {
			_, ok := members[value.Key(r[c.header])]
			return ok
		}
	default:
		keep = func(r Row) bool { return value.Equal(r[c.header], crit.literal) }
	}
	return c.table.FilterRows(keep)
}
