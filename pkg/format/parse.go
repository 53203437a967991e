package format

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

// inferValue maps a raw text field onto the variant: empty text becomes
// Null, then int, float and bool readings are tried before falling back to
// text.
func inferValue(s string) value.Value {
	if s == "" {
		return value.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float(f)
	}
	switch s {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	}
	return value.Text(s)
}

// ParseCSV turns comma-separated text (header line then records) into row
// mappings, with field values typed by inference. It is a table.ParseFunc,
// the inverse of the CSV consumer.
func ParseCSV(text string) ([]table.Row, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	if len(records) == 0 {
		return nil, nil
	}
	headers := records[0]
	rows := make([]table.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = inferValue(rec[i])
			} else {
				row[h] = value.Null()
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadCSV reads a CSV file into a table.
func LoadCSV(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return table.Parse(string(data), ParseCSV)
}
