package table

import (
	"sort"

	"github.com/pkg/errors"

	"tabdiff/pkg/value"
)

type joinConfig struct {
	leftJoin  bool
	rightJoin bool
}

// JoinOption adjusts which unmatched rows a join keeps. The default policy
// is left join only: matched rows plus unmatched self rows.
type JoinOption func(*joinConfig)

// InnerOnly drops self rows with no match in the other table.
func InnerOnly() JoinOption {
	return func(c *joinConfig) { c.leftJoin = false }
}

// WithRightJoin additionally emits other-table rows whose key was never
// matched by any self row.
func WithRightJoin() JoinOption {
	return func(c *joinConfig) { c.rightJoin = true }
}

// Join hash-joins t with other over the given field mapping (t's field name
// to other's field name). Matched pairs merge t's fields with other's
// non-join fields, each prefixed by otherPrefix. Unmatched self rows are
// kept with Null other-side fields unless InnerOnly is given; WithRightJoin
// appends unmatched other rows with Null self fields.
func (t *Table) Join(other *Table, on map[string]string, otherPrefix string, opts ...JoinOption) (*Table, error) {
	if len(on) == 0 {
		return nil, ErrInvalidJoinSpec
	}
	cfg := joinConfig{leftJoin: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	// fixed field order for key tuples
	selfFields := make([]string, 0, len(on))
	for f := range on {
		selfFields = append(selfFields, f)
	}
	sort.Strings(selfFields)
	otherFields := make([]string, len(selfFields))
	for i, f := range selfFields {
		otherFields[i] = on[f]
	}

	joined := map[string]struct{}{}
	for _, f := range otherFields {
		if !other.HasHeader(f) {
			return nil, errors.Wrapf(ErrInvalidJoinSpec, "other table has no field %q", f)
		}
		joined[f] = struct{}{}
	}
	var carryHeaders []string
	for _, h := range other.headers {
		if _, ok := joined[h]; !ok {
			carryHeaders = append(carryHeaders, h)
		}
	}

	buckets := other.Bucket(otherFields...)
	seen := map[string]struct{}{}
	var rows []Row

	for _, r := range t.rows {
		key := make([]value.Value, len(selfFields))
		for i, f := range selfFields {
			key[i] = r[f]
		}
		seen[value.Key(key...)] = struct{}{}
		matches, ok := buckets.Get(key...)
		if !ok {
			if cfg.leftJoin {
				row := r.Clone()
				for _, h := range carryHeaders {
					row[otherPrefix+h] = value.Null()
				}
				rows = append(rows, row)
			}
			continue
		}
		for _, or := range matches.rows {
			row := r.Clone()
			for _, h := range carryHeaders {
				row[otherPrefix+h] = or[h]
			}
			rows = append(rows, row)
		}
	}

	if cfg.rightJoin {
		for _, or := range other.rows {
			key := make([]value.Value, len(otherFields))
			for i, f := range otherFields {
				key[i] = or[f]
			}
			if _, ok := seen[value.Key(key...)]; ok {
				continue
			}
			row := make(Row, len(t.headers)+len(or))
			for h, v := range or {
				row[otherPrefix+h] = v
			}
			for _, h := range t.headers {
				if _, ok := row[h]; !ok {
					row[h] = value.Null()
				}
			}
			rows = append(rows, row)
		}
	}
	return New(rows...), nil
}
