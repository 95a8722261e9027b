package bcsr

import (
	"fmt"
)

// RowsBlockAccessor is the batched counterpart of RowsAccessor, built for
// repeated traversals over the same row set (one per assembly loop
// iteration). The row set is resolved once into a RowMap; each traversal
// then visits exactly the column sequence the scalar accessor would and
// delivers, per active block row, one callback over every requested row
// in that block, suitable for lane-batched processing.
type RowsBlockAccessor struct {
	m   *BlockMatrix
	rm  *RowMap
	cur rowsCursor
}

// NewRowsBlockAccessor binds a precomputed row map to a matrix. The map
// must have been resolved against the matrix's row partition.
func NewRowsBlockAccessor(m *BlockMatrix, rm *RowMap) (*RowsBlockAccessor, error) {
	if rm.Partition() != m.rowBlocks {
		return nil, fmt.Errorf("row map resolved against a different row partition: %w",
			ErrInvalidSparsity)
	}
	return &RowsBlockAccessor{
		m:   m,
		rm:  rm,
		cur: buildCursor(m, rm),
	}, nil
}

// Reinit rewinds the traversal and returns the first active block column,
// or InvalidColumn if the row set touches no stored block
func (a *RowsBlockAccessor) Reinit() int {
	return a.cur.reset()
}

// Advance moves to the next strictly greater active column, returning it
// or InvalidColumn once exhausted
func (a *RowsBlockAccessor) Advance() int {
	return a.cur.advance()
}

// CurrentBlockColumn returns the block column under the cursor
func (a *RowsBlockAccessor) CurrentBlockColumn() int { return a.cur.current }

// ColBlockSize returns the width of the block column under the cursor
func (a *RowsBlockAccessor) ColBlockSize() int {
	if a.cur.current == InvalidColumn {
		return 0
	}
	return a.m.colBlocks.Size(a.cur.current)
}

// NumRows returns the size of the underlying row set
func (a *RowsBlockAccessor) NumRows() int { return a.rm.NumRows() }

// ProcessActiveRowsVectorized invokes fn once per touched block row that
// stores a block at the current column. refs lists every requested row
// mapping into that block row as (offset-within-block, request-index)
// pairs; view wraps the block's buffer so each row's ColBlockSize()
// values can be addressed directly, and column slices can be fed to the
// lane-batched helpers. Writes through the view land in the matrix
// immediately.
//
// Touched block rows without a block at this column are skipped: their
// values are implicit zeros.
func (a *RowsBlockAccessor) ProcessActiveRowsVectorized(fn func(refs []RowRef, view BlockView)) {
	c := a.cur.current
	if c == InvalidColumn {
		return
	}
	n := a.m.colBlocks.Size(c)
	for i := range a.cur.groups {
		g := &a.cur.groups[i]
		if !g.active(c) {
			continue
		}
		fn(g.refs, BlockView{
			Data: a.m.blockAt(g.rowStart + g.pos),
			M:    g.mSize,
			N:    n,
		})
	}
}

// BlockView wraps one dense block during batched row processing. Element
// (off, jj) lives at LocalIndex(off, jj, M, N); a full block column is
// contiguous, which is what the SIMD helpers exploit.
type BlockView struct {
	Data []float64
	M, N int
}

// At returns element (off, jj)
func (v BlockView) At(off, jj int) float64 { return v.Data[LocalIndex(off, jj, v.M, v.N)] }

// Set stores element (off, jj)
func (v BlockView) Set(off, jj int, x float64) { v.Data[LocalIndex(off, jj, v.M, v.N)] = x }

// ColumnSlice returns the contiguous M values of block column jj
func (v BlockView) ColumnSlice(jj int) []float64 {
	return v.Data[jj*v.M : (jj+1)*v.M]
}
