package bcsr

import "fmt"

// BlockRowIterator walks the nonzero blocks of one block row in ascending
// column order. Usage follows the scanner idiom:
//
//	it := m.BeginLocal(i)
//	for it.Next() {
//		j, block := it.Column(), it.Data()
//		...
//	}
type BlockRowIterator struct {
	m        *BlockMatrix
	blockRow int
	cols     []int
	rowStart int // pattern stream position of the row's first block
	pos      int // -1 before the first Next
}

// BeginLocal starts iteration over the nonzero blocks of block row i.
// Panics on an out-of-range block row (programmer error).
func (m *BlockMatrix) BeginLocal(i int) *BlockRowIterator {
	if i < 0 || i >= m.pattern.NumRowBlocks() {
		panic(fmt.Sprintf("bcsr: block row %d outside [0, %d)", i, m.pattern.NumRowBlocks()))
	}

	cols := m.pattern.RowColumns(i)
	rowStart := 0
	if len(cols) > 0 {
		rowStart, _ = m.pattern.Find(i, cols[0])
	}
	return &BlockRowIterator{
		m:        m,
		blockRow: i,
		cols:     cols,
		rowStart: rowStart,
		pos:      -1,
	}
}

// Next advances to the next nonzero block, returning false when the row
// is exhausted
func (it *BlockRowIterator) Next() bool {
	if it.pos+1 >= len(it.cols) {
		it.pos = len(it.cols)
		return false
	}
	it.pos++
	return true
}

// Column returns the block column of the current block
func (it *BlockRowIterator) Column() int {
	return it.cols[it.pos]
}

// Data returns the current block's buffer, addressed by LocalIndex.
// The slice aliases matrix storage; writes take effect immediately.
func (it *BlockRowIterator) Data() []float64 {
	return it.m.blockAt(it.rowStart + it.pos)
}
