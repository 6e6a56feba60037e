package alloc

import "errors"

var (
	// ErrNoFit indicates that no free partition is large enough, even after compaction.
	ErrNoFit = errors.New("alloc: no free partition large enough")

	// ErrProcessNotFound indicates a deallocation for a process that holds no partition.
	ErrProcessNotFound = errors.New("alloc: process not found in memory")

	// ErrInvalidSize indicates a request for a non-positive size.
	ErrInvalidSize = errors.New("alloc: size must be positive")

	// ErrEmptyName indicates a request without a process name.
	ErrEmptyName = errors.New("alloc: process name must not be empty")

	// ErrDuplicateOwner indicates a request for a process that already holds a partition.
	ErrDuplicateOwner = errors.New("alloc: process already holds a partition")
)
