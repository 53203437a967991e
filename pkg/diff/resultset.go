package diff

import (
	"fmt"
	"sort"
	"strings"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

// ResultSet owns all results of one diff invocation, keyed by bucket key.
// Filtering returns a new set; suppression mutates in place and drops
// results that no longer represent a difference.
type ResultSet struct {
	keyFields []string
	order     []string // key strings in insertion order
	byKey     map[string][]*Result
}

// NewResultSet returns an empty result set over the given key fields.
func NewResultSet(keyFields ...string) *ResultSet {
	return &ResultSet{
		keyFields: append([]string(nil), keyFields...),
		byKey:     map[string][]*Result{},
	}
}

// KeyFields returns the bucket key field names.
func (rs *ResultSet) KeyFields() []string { return append([]string(nil), rs.keyFields...) }

// Add stores a result. Insignificant results are discarded.
func (rs *ResultSet) Add(r *Result) {
	if r == nil || !r.Significant() {
		return
	}
	ks := value.Key(r.key...)
	if _, ok := rs.byKey[ks]; !ok {
		rs.order = append(rs.order, ks)
	}
	rs.byKey[ks] = append(rs.byKey[ks], r)
}

// Len returns the number of distinct keys with differences.
func (rs *ResultSet) Len() int { return len(rs.byKey) }

// Results returns every result sorted by the deterministic result order.
func (rs *ResultSet) Results() []*Result {
	var out []*Result
	for _, ks := range rs.order {
		out = append(out, rs.byKey[ks]...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Get returns the results recorded for a key tuple.
func (rs *ResultSet) Get(key ...value.Value) []*Result {
	return rs.byKey[value.Key(key...)]
}

// Filter returns a new result set holding the results matching pred.
func (rs *ResultSet) Filter(pred func(*Result) bool) *ResultSet {
	out := NewResultSet(rs.keyFields...)
	for _, r := range rs.Results() {
		if pred(r) {
			out.Add(r)
		}
	}
	return out
}

// Pick returns an arbitrary result, or nil for an empty set.
func (rs *ResultSet) Pick() *Result {
	for _, ks := range rs.order {
		if list := rs.byKey[ks]; len(list) > 0 {
			return list[0]
		}
	}
	return nil
}

// ChangedFields returns the sorted union of fields that changed anywhere in
// the set.
func (rs *ResultSet) ChangedFields() []string {
	set := map[string]struct{}{}
	for _, r := range rs.Results() {
		for _, f := range r.ChangedFields() {
			set[f] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// sweep applies fn to every result and drops those left insignificant.
func (rs *ResultSet) sweep(fn func(*Result)) {
	for _, ks := range append([]string(nil), rs.order...) {
		var kept []*Result
		for _, r := range rs.byKey[ks] {
			fn(r)
			if r.Significant() {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(rs.byKey, ks)
			for i, o := range rs.order {
				if o == ks {
					rs.order = append(rs.order[:i], rs.order[i+1:]...)
					break
				}
			}
		} else {
			rs.byKey[ks] = kept
		}
	}
}

// IgnoreField drops the field's recorded diff from every result.
func (rs *ResultSet) IgnoreField(field string) {
	rs.sweep(func(r *Result) { r.IgnoreField(field) })
}

// CheckRemove drops the field from each result whose from/to pair satisfies
// pred.
func (rs *ResultSet) CheckRemove(field string, pred func(from, to value.Value) bool) {
	rs.sweep(func(r *Result) { r.CheckRemove(field, pred) })
}

// CheckRemoveMultiField drops the set of fields together from each result
// where pred holds jointly on all of them.
func (rs *ResultSet) CheckRemoveMultiField(pred func(from, to table.Row) bool, fields ...string) {
	rs.sweep(func(r *Result) { r.CheckRemoveMultiField(pred, fields...) })
}

// CustomCheck drops the named fields from each result whose original row
// pair satisfies pred. Results that did not pair exactly one row per side
// are skipped.
func (rs *ResultSet) CustomCheck(pred func(from, to table.Row) bool, fieldsToRemove ...string) {
	rs.sweep(func(r *Result) {
		_ = r.CustomCheck(pred, fieldsToRemove...) // precondition failures skip the result
	})
}

// OriginalFromRows re-materializes the from-side rows of every result as a
// table.
func (rs *ResultSet) OriginalFromRows() *table.Table {
	var rows []table.Row
	for _, r := range rs.Results() {
		rows = append(rows, r.OriginalFromRows()...)
	}
	return table.New(rows...)
}

// OriginalToRows re-materializes the to-side rows of every result as a
// table.
func (rs *ResultSet) OriginalToRows() *table.Table {
	var rows []table.Row
	for _, r := range rs.Results() {
		rows = append(rows, r.OriginalToRows()...)
	}
	return table.New(rows...)
}

func (rs *ResultSet) String() string {
	lines := []string{"Results:"}
	for _, r := range rs.Results() {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}

// GoString summarizes the set by its key count.
func (rs *ResultSet) GoString() string {
	return fmt.Sprintf("ResultSet(%d keys)", len(rs.byKey))
}

// ExpectedChange builds a CheckRemove predicate matching one specific
// before/after pair.
func ExpectedChange(before, after value.Value) func(from, to value.Value) bool {
	return func(from, to value.Value) bool {
		return value.Equal(from, before) && value.Equal(to, after)
	}
}

// FromNothingToNothing holds when both sides are blank.
func FromNothingToNothing(from, to value.Value) bool {
	return from.IsBlank() && to.IsBlank()
}
