package table

import "github.com/pkg/errors"

var (
	// ErrHeaderMismatch is returned when two non-empty tables with different
	// header sets are concatenated. Use Augment to pad and concatenate
	// mismatched tables instead.
	ErrHeaderMismatch = errors.New("table headers do not match")

	// ErrInvalidJoinSpec is returned when a join is attempted without a
	// field mapping.
	ErrInvalidJoinSpec = errors.New("join requires a non-empty field mapping")

	// ErrEmptyBucket is returned by aggregators that are undefined on empty
	// input, such as Average, Min, Max and Span.
	ErrEmptyBucket = errors.New("aggregator applied to empty bucket")

	// ErrUnknownHeader is returned by operations that require a named header
	// to be present. Column access never returns it; a Column for a missing
	// header is the empty variant instead.
	ErrUnknownHeader = errors.New("unknown header")
)
