// Package dbio builds tables from database result sets. The Cursor
// interface matches *sql.Rows, so any database/sql query result can be read
// directly; fakes satisfy it in tests.
package dbio

import (
	"github.com/pkg/errors"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

// Cursor is the subset of *sql.Rows the adapter needs: column descriptions,
// fetch, and multi-result-set traversal.
type Cursor interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	NextResultSet() bool
	Err() error
}

// Scrub returns a per-column value rewriting function, or nil to leave that
// column's values untouched. The rewrite runs on the raw scanned value
// before it enters the table.
type Scrub func(column string) func(any) any

// ReadAll drains the cursor into one table per result set.
func ReadAll(cur Cursor, scrub Scrub) ([]*table.Table, error) {
	var tables []*table.Table
	for {
		t, err := readSet(cur, scrub)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		if !cur.NextResultSet() {
			break
		}
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "cursor")
	}
	return tables, nil
}

// ReadOne drains a single-result-set cursor into one table.
func ReadOne(cur Cursor, scrub Scrub) (*table.Table, error) {
	tables, err := ReadAll(cur, scrub)
	if err != nil {
		return nil, err
	}
	return tables[0], nil
}

func readSet(cur Cursor, scrub Scrub) (*table.Table, error) {
	cols, err := cur.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}
	rewrites := make([]func(any) any, len(cols))
	if scrub != nil {
		for i, c := range cols {
			rewrites[i] = scrub(c)
		}
	}
	var rows []table.Row
	for cur.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := cur.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		row := make(table.Row, len(cols))
		for i, c := range cols {
			v := raw[i]
			if rewrites[i] != nil {
				v = rewrites[i](v)
			}
			row[c] = value.FromAny(v)
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "cursor")
	}
	return table.New(rows...), nil
}
