package bcsr

import "errors"

// Sentinel errors. All failures in this package are structural invariant
// violations: none is transient or retryable, and the enclosing operation
// should abort rather than attempt recovery. Match with errors.Is.
var (
	// ErrInvalidSparsity indicates a dimension or shape mismatch between a
	// sparsity pattern and the partitions or distribution handed to Reinit.
	ErrInvalidSparsity = errors.New("bcsr: sparsity inconsistent with partitions")

	// ErrDimensionMismatch indicates a caller-provided dense matrix whose
	// shape does not match the block matrix.
	ErrDimensionMismatch = errors.New("bcsr: dimension mismatch")

	// ErrColumnDesynchronization indicates that two accessors sharing a
	// row set could not be aligned on a common block column: their
	// matrices' sparsities are inconsistent with the shared row semantics
	// the caller assumes. Proceeding would corrupt numerical results.
	ErrColumnDesynchronization = errors.New("bcsr: accessor columns desynchronized")
)
