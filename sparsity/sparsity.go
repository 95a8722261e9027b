// Package sparsity holds the block sparsity patterns for block-CSR
// matrices: which (block-row, block-column) pairs carry a dense block.
// Patterns are built incrementally on a Dynamic pattern and then frozen
// into a compressed Pattern whose per-row column lists are sorted and
// unique.
package sparsity

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange indicates a block coordinate outside the pattern bounds
var ErrOutOfRange = errors.New("sparsity: block index out of range")

// Dynamic accumulates nonzero block positions before compression.
// Duplicate adds are ignored.
type Dynamic struct {
	rowBlocks, colBlocks int
	rows                 []map[int]struct{}
}

// NewDynamic creates an empty dynamic pattern of rowBlocks x colBlocks blocks
func NewDynamic(rowBlocks, colBlocks int) *Dynamic {
	return &Dynamic{
		rowBlocks: rowBlocks,
		colBlocks: colBlocks,
		rows:      make([]map[int]struct{}, rowBlocks),
	}
}

// Add marks block (i, j) as nonzero
func (d *Dynamic) Add(i, j int) error {
	if i < 0 || i >= d.rowBlocks || j < 0 || j >= d.colBlocks {
		return fmt.Errorf("block (%d,%d) outside %dx%d pattern: %w",
			i, j, d.rowBlocks, d.colBlocks, ErrOutOfRange)
	}
	if d.rows[i] == nil {
		d.rows[i] = make(map[int]struct{})
	}
	d.rows[i][j] = struct{}{}
	return nil
}

// NumRowBlocks returns the number of block rows
func (d *Dynamic) NumRowBlocks() int { return d.rowBlocks }

// NumColBlocks returns the number of block columns
func (d *Dynamic) NumColBlocks() int { return d.colBlocks }

// Compress freezes the dynamic pattern into its compressed form.
// The dynamic pattern is left untouched and may keep accumulating for a
// later, independent compression.
func (d *Dynamic) Compress() *Pattern {
	rowPtr := make([]int, d.rowBlocks+1)
	nnz := 0
	for i, cols := range d.rows {
		nnz += len(cols)
		rowPtr[i+1] = nnz
	}

	colIdx := make([]int, 0, nnz)
	for _, cols := range d.rows {
		start := len(colIdx)
		for j := range cols {
			colIdx = append(colIdx, j)
		}
		sort.Ints(colIdx[start:])
	}

	return &Pattern{
		rowBlocks: d.rowBlocks,
		colBlocks: d.colBlocks,
		rowPtr:    rowPtr,
		colIdx:    colIdx,
	}
}

// Pattern is a frozen block sparsity pattern in compressed row form:
// for each block row, an ascending unique list of nonzero block columns.
// Immutable after construction.
type Pattern struct {
	rowBlocks, colBlocks int
	rowPtr               []int
	colIdx               []int
}

// NumRowBlocks returns the number of block rows
func (p *Pattern) NumRowBlocks() int { return p.rowBlocks }

// NumColBlocks returns the number of block columns
func (p *Pattern) NumColBlocks() int { return p.colBlocks }

// NumBlocks returns the number of nonzero blocks
func (p *Pattern) NumBlocks() int { return len(p.colIdx) }

// RowColumns returns the ascending block-column indices of block row i.
// The returned slice aliases the pattern storage and must not be mutated.
func (p *Pattern) RowColumns(i int) []int {
	return p.colIdx[p.rowPtr[i]:p.rowPtr[i+1]]
}

// Contains reports whether block (i, j) is nonzero
func (p *Pattern) Contains(i, j int) bool {
	_, ok := p.Find(i, j)
	return ok
}

// Find returns the position of block (i, j) in the compressed stream of
// nonzero blocks (block-row order, ascending columns within a row), or
// false if the block is absent. The position is what a matrix store uses
// to address per-block storage.
func (p *Pattern) Find(i, j int) (int, bool) {
	if i < 0 || i >= p.rowBlocks || j < 0 || j >= p.colBlocks {
		return 0, false
	}
	cols := p.RowColumns(i)
	k := sort.SearchInts(cols, j)
	if k == len(cols) || cols[k] != j {
		return 0, false
	}
	return p.rowPtr[i] + k, true
}
