// Package format holds the row-sequence consumers a table can be piped to:
// CSV, fixed-width text and XML, plus the matching parsers and CSV file
// output.
package format

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/table"
)

// Consumer turns a lazy, finite, single-pass sequence of rows into
// formatted text. Any function with this shape can be the target of
// Table.PipeTo.
type Consumer func(table.RowIter) (string, error)

// drain collects the sequence and the sorted headers of its first row. All
// rows of one table share the header set.
func drain(next table.RowIter) ([]table.Row, []string) {
	var rows []table.Row
	for {
		r, ok := next()
		if !ok {
			break
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	headers := make([]string, 0, len(rows[0]))
	for h := range rows[0] {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return rows, headers
}

// CSV renders the sequence as comma-separated text: a sorted header line
// then one line per row. Fields containing the delimiter are quoted. No
// trailing newline; empty input yields the empty string.
func CSV(next table.RowIter) (string, error) {
	rows, headers := drain(next)
	if len(rows) == 0 {
		return "", nil
	}
	quote := func(f string) string {
		if strings.Contains(f, ",") {
			return `"` + f + `"`
		}
		return f
	}
	lines := make([]string, 0, len(rows)+1)
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = quote(h)
	}
	lines = append(lines, strings.Join(cells, ","))
	for _, r := range rows {
		for i, h := range headers {
			cells[i] = quote(r[h].String())
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n"), nil
}

// FixedWidth renders the sequence as space-padded columns sized to the
// longest value per column, headers included and sorted. Primarily for
// printing.
func FixedWidth(next table.RowIter) (string, error) {
	rows, headers := drain(next)
	if len(rows) == 0 {
		return "", nil
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	grid := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = r[h].String()
			if len(cells[i]) > widths[i] {
				widths[i] = len(cells[i])
			}
		}
		grid = append(grid, cells)
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, padLine(headers, widths))
	for _, cells := range grid {
		lines = append(lines, padLine(cells, widths))
	}
	return strings.Join(lines, "\n"), nil
}

func padLine(cells []string, widths []int) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-len(c)))
		}
	}
	return b.String()
}

// WriteFile writes the table's CSV rendering to path, replacing any
// existing content.
func WriteFile(t *table.Table, path string) error {
	text, err := t.PipeTo(CSV)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
