package diff

import (
	"fmt"
	"sort"
	"strings"
)

// FormatResults renders a result set for review: first the buckets whose
// from/to row counts mismatch, then a fixed-width grid of common-bucket
// changes with a From and a To column per changed field. Column widths are
// computed from the longest value on each side.
func FormatResults(rs *ResultSet) string {
	return strings.Join(formatLines(rs), "\n")
}

// FormatResults renders the set; see the package-level function.
func (rs *ResultSet) FormatResults() string { return FormatResults(rs) }

func formatLines(rs *ResultSet) []string {
	if rs.Len() == 0 {
		return []string{"No results to compare"}
	}

	keyWidths := rs.maxKeyLengths()
	keyHeader := rs.formatKeyFields(keyWidths)

	var lines []string
	var mismatch []*Result
	for _, r := range rs.Results() {
		if r.fromRows == nil || r.toRows == nil || len(r.fromRows) != len(r.toRows) {
			mismatch = append(mismatch, r)
		}
	}
	if len(mismatch) > 0 {
		sort.SliceStable(mismatch, func(i, j int) bool { return mismatch[i].Compare(mismatch[j]) < 0 })
		lines = append(lines, "Buckets don't match number of rows:")
		lines = append(lines, keyHeader+" From Rows    To Rows")
		for _, r := range mismatch {
			lines = append(lines, fmt.Sprintf("%s %-12d %-12d", r.formatKey(keyWidths), len(r.fromRows), len(r.toRows)))
		}
	}

	common := rs.Filter(func(r *Result) bool {
		return r.fromRows != nil && r.toRows != nil && len(r.fromRows) == len(r.toRows)
	})
	if common.Len() == 0 {
		return append(lines, "No inline differences")
	}

	lines = append(lines, "Changes in common buckets:")
	fields := common.ChangedFields()

	// widths: key prefix column, then a from and a to column per field
	widths := make([]int, 1+2*len(fields))
	widths[0] = len(keyHeader)
	for i, f := range fields {
		widths[1+i*2] = len(f)
	}
	results := common.Results()
	cells := make([][]string, len(results))
	for ri, r := range results {
		row := make([]string, 1+2*len(fields))
		row[0] = r.formatKey(keyWidths)
		for i, f := range fields {
			if c, ok := r.Changed(f); ok {
				fs, ts := c.From.String(), c.To.String()
				row[1+i*2], row[2+i*2] = fs, ts
				if len(fs) > widths[1+i*2] {
					widths[1+i*2] = len(fs)
				}
				if len(ts) > widths[2+i*2] {
					widths[2+i*2] = len(ts)
				}
			}
		}
		cells[ri] = row
	}

	header := make([]string, 1+2*len(fields))
	header[0] = keyHeader
	for i, f := range fields {
		header[1+i*2] = f
	}
	lines = append(lines, padJoin(header, widths))
	for _, row := range cells {
		lines = append(lines, padJoin(row, widths))
	}
	return lines
}

func padJoin(cells []string, widths []int) string {
	var b strings.Builder
	for i, c := range cells {
		b.WriteString(fmt.Sprintf("%-*s", widths[i]+1, c))
	}
	return strings.TrimRight(b.String(), " ")
}

// maxKeyLengths computes, per key field, the width of the widest key value
// or field name.
func (rs *ResultSet) maxKeyLengths() []int {
	widths := make([]int, len(rs.keyFields))
	for i, f := range rs.keyFields {
		widths[i] = len(f)
	}
	for _, r := range rs.Results() {
		for i, k := range r.key {
			if i >= len(widths) {
				break
			}
			if l := len(k.String()); l > widths[i] {
				widths[i] = l
			}
		}
	}
	return widths
}

// formatKeyFields renders the key field names right-aligned to the computed
// widths, with the same shape formatKey uses for values.
func (rs *ResultSet) formatKeyFields(widths []int) string {
	parts := make([]string, len(rs.keyFields))
	for i, f := range rs.keyFields {
		parts[i] = fmt.Sprintf("%*s", widths[i], f)
	}
	return strings.Join(parts, ", ") + " |"
}

func (r *Result) formatKey(widths []int) string {
	parts := make([]string, 0, len(r.key))
	for i, k := range r.key {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		parts = append(parts, fmt.Sprintf("%*s", w, k.String()))
	}
	return strings.Join(parts, ", ") + " |"
}
