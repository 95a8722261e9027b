package bcsr

import "fmt"

// SyncColumns aligns two accessors over the same row set but possibly
// different sparsity patterns (e.g. a source and a destination matrix) on
// their next common block column, advancing whichever cursor lags. It
// returns the matched column, or InvalidColumn with a nil error when both
// traversals finished together.
//
// If one side exhausts while the other still has an active column, the
// sparsities are structurally inconsistent with the shared row semantics
// and ErrColumnDesynchronization is returned; callers must abort rather
// than continue, as proceeding would silently corrupt results.
func SyncColumns(src, dst *RowsAccessor) (int, error) {
	for {
		a, b := src.CurrentColumn(), dst.CurrentColumn()
		switch {
		case a == b:
			// Either a common column or simultaneous exhaustion.
			return a, nil
		case a == InvalidColumn:
			return InvalidColumn, fmt.Errorf(
				"source exhausted while destination at column %d: %w",
				b, ErrColumnDesynchronization)
		case b == InvalidColumn:
			return InvalidColumn, fmt.Errorf(
				"destination exhausted while source at column %d: %w",
				a, ErrColumnDesynchronization)
		case a < b:
			src.Advance()
		default:
			dst.Advance()
		}
	}
}
