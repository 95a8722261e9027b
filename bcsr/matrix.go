// Package bcsr implements a distributed block-compressed-sparse-row
// matrix store with row-set accessors for finite-element-style local
// assembly: gathering and scattering arbitrary, non-contiguous sets of
// global rows against the block layout, column block by column block.
//
// Storage is one contiguous float64 buffer holding all nonzero dense
// blocks in block-row order, ascending block column within a row. Within
// a block of size M x N, element (ii, jj) lives at offset ii + jj*M
// (column-major). External code computes offsets directly against this
// convention; see LocalIndex.
package bcsr

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/davydden/bcsr/partitions"
	"github.com/davydden/bcsr/sparsity"
)

// BlockMatrix owns one zero-initialized dense block per nonzero entry of
// its sparsity pattern. The pattern and both partitions are frozen at
// Reinit; absent blocks read as implicit zero and cannot be inserted
// later.
//
// The matrix performs no synchronization: concurrent read-only accessors
// are safe, any writer requires external exclusivity.
type BlockMatrix struct {
	pattern   *sparsity.Pattern
	rowBlocks *partitions.BlockPartition
	colBlocks *partitions.BlockPartition
	dist      *partitions.RowDistribution

	// blockStart[k] is the offset of nonzero block k (in pattern stream
	// order) within data; blockStart[NumBlocks] == len(data)
	blockStart []int
	data       []float64
}

// Reinit allocates zero-filled storage for the given pattern and
// partitions, discarding any prior content
func (m *BlockMatrix) Reinit(pattern *sparsity.Pattern,
	rowBlocks, colBlocks *partitions.BlockPartition,
	dist *partitions.RowDistribution) error {

	if pattern.NumRowBlocks() != rowBlocks.NumBlocks() {
		return fmt.Errorf("pattern has %d row blocks, partition %d: %w",
			pattern.NumRowBlocks(), rowBlocks.NumBlocks(), ErrInvalidSparsity)
	}
	if pattern.NumColBlocks() != colBlocks.NumBlocks() {
		return fmt.Errorf("pattern has %d col blocks, partition %d: %w",
			pattern.NumColBlocks(), colBlocks.NumBlocks(), ErrInvalidSparsity)
	}
	if dist.TotalRows != rowBlocks.TotalSize() {
		return fmt.Errorf("distribution covers %d rows, row partition %d: %w",
			dist.TotalRows, rowBlocks.TotalSize(), ErrInvalidSparsity)
	}

	blockStart := make([]int, pattern.NumBlocks()+1)
	k := 0
	for i := 0; i < pattern.NumRowBlocks(); i++ {
		mi := rowBlocks.Size(i)
		for _, j := range pattern.RowColumns(i) {
			blockStart[k+1] = blockStart[k] + mi*colBlocks.Size(j)
			k++
		}
	}

	m.pattern = pattern
	m.rowBlocks = rowBlocks
	m.colBlocks = colBlocks
	m.dist = dist
	m.blockStart = blockStart
	m.data = make([]float64, blockStart[k])
	return nil
}

// M returns the total number of rows
func (m *BlockMatrix) M() int { return m.rowBlocks.TotalSize() }

// N returns the total number of columns
func (m *BlockMatrix) N() int { return m.colBlocks.TotalSize() }

// RowBlocks returns the row block partition
func (m *BlockMatrix) RowBlocks() *partitions.BlockPartition { return m.rowBlocks }

// ColBlocks returns the column block partition
func (m *BlockMatrix) ColBlocks() *partitions.BlockPartition { return m.colBlocks }

// Pattern returns the frozen sparsity pattern
func (m *BlockMatrix) Pattern() *sparsity.Pattern { return m.pattern }

// Distribution returns the row ownership classification
func (m *BlockMatrix) Distribution() *partitions.RowDistribution { return m.dist }

// LocalIndex maps (row-within-block, column-within-block) of an mRows x
// nCols block to its linear offset inside the block buffer. This
// column-major convention is a binding contract shared by every read and
// write path.
func LocalIndex(ii, jj, mRows, _ int) int {
	return ii + jj*mRows
}

// Block returns the dense buffer of block (i, j), or false if the
// pattern holds no block there
func (m *BlockMatrix) Block(i, j int) ([]float64, bool) {
	k, ok := m.pattern.Find(i, j)
	if !ok {
		return nil, false
	}
	return m.data[m.blockStart[k]:m.blockStart[k+1]], true
}

// blockAt returns the buffer for pattern stream position k
func (m *BlockMatrix) blockAt(k int) []float64 {
	return m.data[m.blockStart[k]:m.blockStart[k+1]]
}

// Zero resets every stored block to zero, keeping the pattern
func (m *BlockMatrix) Zero() {
	clear(m.data)
}

// El resolves a global coordinate to its element value, with absent
// blocks reading as zero. Debug and verification accessor, not a
// performance path.
func (m *BlockMatrix) El(i, j int) (float64, error) {
	bi, ii, err := m.rowBlocks.BlockOf(i)
	if err != nil {
		return 0, fmt.Errorf("row %d: %w", i, err)
	}
	bj, jj, err := m.colBlocks.BlockOf(j)
	if err != nil {
		return 0, fmt.Errorf("column %d: %w", j, err)
	}
	block, ok := m.Block(bi, bj)
	if !ok {
		return 0, nil
	}
	return block[LocalIndex(ii, jj, m.rowBlocks.Size(bi), m.colBlocks.Size(bj))], nil
}

// CopyTo materializes the matrix into a caller-provided dense matrix of
// shape M() x N(). Absent blocks contribute exact zeros.
func (m *BlockMatrix) CopyTo(d *mat.Dense) error {
	r, c := d.Dims()
	if r != m.M() || c != m.N() {
		return fmt.Errorf("dense target is %dx%d, matrix is %dx%d: %w",
			r, c, m.M(), m.N(), ErrDimensionMismatch)
	}

	d.Zero()
	for i := 0; i < m.pattern.NumRowBlocks(); i++ {
		mi := m.rowBlocks.Size(i)
		rowOff := m.rowBlocks.Offset(i)
		it := m.BeginLocal(i)
		for it.Next() {
			j := it.Column()
			nj := m.colBlocks.Size(j)
			colOff := m.colBlocks.Offset(j)
			block := it.Data()
			for jj := 0; jj < nj; jj++ {
				for ii := 0; ii < mi; ii++ {
					d.Set(rowOff+ii, colOff+jj, block[LocalIndex(ii, jj, mi, nj)])
				}
			}
		}
	}
	return nil
}
