package engine

import "errors"

var (
	// ErrLoad is returned when a source cannot be read or fails schema validation.
	ErrLoad = errors.New("load error")

	// ErrInvalidColumn is returned when a filter or aggregation names a column
	// outside the schema, or a column of the wrong kind for its use.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrInvalidRange is returned for malformed numeric bounds.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidReduceOp is returned for an unsupported reduction.
	ErrInvalidReduceOp = errors.New("invalid reduce op")

	// ErrInvalidTopK is returned for a negative top_k.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidSort is returned for an unknown sort direction.
	ErrInvalidSort = errors.New("invalid sort direction")

	// ErrEmptyGroup is returned if a mean is requested over a group with no rows.
	ErrEmptyGroup = errors.New("empty group")
)
