package partition

import "errors"

var (
	// ErrInvalidTotal indicates a table created with a non-positive total size.
	ErrInvalidTotal = errors.New("partition: total memory must be positive")

	// ErrInvalidSize indicates a partition with a non-positive size.
	ErrInvalidSize = errors.New("partition: size must be positive")

	// ErrIndex indicates an index outside the table.
	ErrIndex = errors.New("partition: index out of range")

	// ErrSizeMismatch indicates a rebuild whose sizes do not add up to the total.
	ErrSizeMismatch = errors.New("partition: sizes do not sum to total memory")
)
