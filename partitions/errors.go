package partitions

import "errors"

// Sentinel errors for partition construction and lookup. Callers match
// with errors.Is; call sites add context via fmt.Errorf("...: %w", ...).
var (
	// ErrOutOfRange indicates a global index outside the partition bounds.
	// Always a caller error; never retryable.
	ErrOutOfRange = errors.New("partitions: index out of range")

	// ErrInvalidPartition indicates inconsistent partition shape at
	// construction time (empty, non-positive block size, owned range or
	// ghost rows inconsistent with the total size).
	ErrInvalidPartition = errors.New("partitions: invalid partition")
)
