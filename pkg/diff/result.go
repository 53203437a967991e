// Package diff compares two tables bucketed by a shared key and reports
// field-level changes as an orderable, filterable, suppressible collection.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

// ErrSuppressionPrecondition is returned by CustomCheck when a result's from
// and to sides are not exactly one row each, so the original row pair cannot
// be re-derived.
var ErrSuppressionPrecondition = errors.New("custom check requires exactly one from-row and one to-row")

// Change holds the two sides of one changed field.
type Change struct {
	From value.Value
	To   value.Value
}

// Result is the diff outcome for one bucket key: which fields changed
// between the paired from/to rows, plus the originating row tuples. A result
// is significant only if it has at least one changed field, the two sides'
// row counts differ, or one side is absent.
type Result struct {
	key        []value.Value
	keyFields  []string
	diffFields map[string]int // header -> index into the row tuples
	fromRows   [][]value.Value
	toRows     [][]value.Value
	changed    map[int]Change
}

func newResult(key []value.Value, keyFields []string, diffFields map[string]int, fromRows, toRows [][]value.Value) *Result {
	r := &Result{
		key:        key,
		keyFields:  keyFields,
		diffFields: diffFields,
		fromRows:   fromRows,
		toRows:     toRows,
		changed:    map[int]Change{},
	}
	if len(fromRows) == 1 && len(toRows) == 1 {
		for i, f := range fromRows[0] {
			if t := toRows[0][i]; !value.Equal(f, t) {
				r.changed[i] = Change{From: f, To: t}
			}
		}
	}
	return r
}

// Key returns the bucket key tuple.
func (r *Result) Key() []value.Value { return r.key }

// FromCount and ToCount return the number of rows on each side of the
// bucket pair.
func (r *Result) FromCount() int { return len(r.fromRows) }
func (r *Result) ToCount() int   { return len(r.toRows) }

// Significant reports whether the result represents a real difference:
// changed fields remain, or one side is absent, or the row counts differ.
func (r *Result) Significant() bool {
	return len(r.changed) > 0 || r.fromRows == nil || r.toRows == nil || len(r.fromRows) != len(r.toRows)
}

// Comparable reports whether the result carries positional field changes.
func (r *Result) Comparable() bool { return len(r.changed) > 0 }

// Changed returns the recorded from/to pair for a field.
func (r *Result) Changed(field string) (Change, bool) {
	idx, ok := r.diffFields[field]
	if !ok {
		return Change{}, false
	}
	c, ok := r.changed[idx]
	return c, ok
}

// ChangedFields returns the sorted names of the fields with recorded
// changes.
func (r *Result) ChangedFields() []string {
	var out []string
	for field, idx := range r.diffFields {
		if _, ok := r.changed[idx]; ok {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// Compare orders results by key first and, for equal keys, by the from/to
// value tuples over the union of both results' changed fields, using the
// total value order. The order is deterministic for stable, reviewable
// output.
func (r *Result) Compare(other *Result) int {
	for i := range r.key {
		if i >= len(other.key) {
			return 1
		}
		if c := value.Compare(r.key[i], other.key[i]); c != 0 {
			return c
		}
	}
	if len(r.key) < len(other.key) {
		return -1
	}
	idxSet := map[int]struct{}{}
	for i := range r.changed {
		idxSet[i] = struct{}{}
	}
	for i := range other.changed {
		idxSet[i] = struct{}{}
	}
	idxs := make([]int, 0, len(idxSet))
	for i := range idxSet {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	for _, i := range idxs {
		rc, rok := r.changed[i]
		oc, ook := other.changed[i]
		if !rok && !ook {
			continue
		}
		// a missing entry sorts below any recorded pair
		if !rok {
			return -1
		}
		if !ook {
			return 1
		}
		if c := value.Compare(rc.From, oc.From); c != 0 {
			return c
		}
		if c := value.Compare(rc.To, oc.To); c != 0 {
			return c
		}
	}
	return 0
}

// IgnoreField drops a field's recorded diff unconditionally.
func (r *Result) IgnoreField(field string) {
	if idx, ok := r.diffFields[field]; ok {
		delete(r.changed, idx)
	}
}

// CheckRemove drops the field's recorded diff when pred holds on its
// from/to pair.
func (r *Result) CheckRemove(field string, pred func(from, to value.Value) bool) {
	idx, ok := r.diffFields[field]
	if !ok {
		return
	}
	c, ok := r.changed[idx]
	if !ok {
		return
	}
	if pred(c.From, c.To) {
		delete(r.changed, idx)
	}
}

// CheckRemoveMultiField drops the whole set of fields together, but only
// when every field has a recorded diff and pred holds on the from/to rows
// restricted to those fields.
func (r *Result) CheckRemoveMultiField(pred func(from, to table.Row) bool, fields ...string) {
	idxs := make([]int, len(fields))
	for i, f := range fields {
		idx, ok := r.diffFields[f]
		if !ok {
			return
		}
		if _, ok := r.changed[idx]; !ok {
			return
		}
		idxs[i] = idx
	}
	from, to := table.Row{}, table.Row{}
	for i, f := range fields {
		c := r.changed[idxs[i]]
		from[f] = c.From
		to[f] = c.To
	}
	if !pred(from, to) {
		return
	}
	for _, idx := range idxs {
		delete(r.changed, idx)
	}
}

// CustomCheck re-derives the full original from/to rows and drops the named
// fields when pred holds on them. Valid only when the bucket paired exactly
// one from-row with one to-row.
func (r *Result) CustomCheck(pred func(from, to table.Row) bool, fieldsToRemove ...string) error {
	if len(r.fromRows) != 1 || len(r.toRows) != 1 {
		return errors.Wrapf(ErrSuppressionPrecondition, "from rows: %d, to rows: %d", len(r.fromRows), len(r.toRows))
	}
	from := r.originalRow(r.fromRows[0])
	to := r.originalRow(r.toRows[0])
	if !pred(from, to) {
		return nil
	}
	for _, f := range fieldsToRemove {
		r.IgnoreField(f)
	}
	return nil
}

// originalRow rebuilds a full row, key fields included, from a stored tuple.
func (r *Result) originalRow(tuple []value.Value) table.Row {
	row := make(table.Row, len(r.diffFields)+len(r.keyFields))
	for field, idx := range r.diffFields {
		row[field] = tuple[idx]
	}
	for i, f := range r.keyFields {
		if i >= len(r.key) {
			break
		}
		row[f] = r.key[i]
	}
	return row
}

// OriginalFromRows returns the full original from-side rows of this bucket.
func (r *Result) OriginalFromRows() []table.Row {
	out := make([]table.Row, len(r.fromRows))
	for i, tuple := range r.fromRows {
		out[i] = r.originalRow(tuple)
	}
	return out
}

// OriginalToRows returns the full original to-side rows of this bucket.
func (r *Result) OriginalToRows() []table.Row {
	out := make([]table.Row, len(r.toRows))
	for i, tuple := range r.toRows {
		out[i] = r.originalRow(tuple)
	}
	return out
}

func (r *Result) keyString() string {
	parts := make([]string, len(r.key))
	for i, k := range r.key {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

func (r *Result) String() string {
	if len(r.changed) > 0 {
		var parts []string
		for _, f := range r.ChangedFields() {
			c, _ := r.Changed(f)
			parts = append(parts, fmt.Sprintf("%s: (%s, %s)", f, c.From, c.To))
		}
		return fmt.Sprintf("(%s)\t\t{%s}", r.keyString(), strings.Join(parts, ", "))
	}
	return fmt.Sprintf("(%s)\tFrom: %d\tTo: %d", r.keyString(), len(r.fromRows), len(r.toRows))
}
