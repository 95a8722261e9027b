package partitions

import (
	"fmt"
	"sort"
)

// BlockPartition describes how one dimension (rows or columns) is split
// into contiguous blocks of possibly unequal size. It is built once and
// immutable afterwards, so a single instance can be shared read-only by
// every matrix using the same blocking.
type BlockPartition struct {
	// Block sizes, in order
	sizes []int

	// Prefix-sum offsets: offsets[i] is the global index of the first
	// entry of block i, offsets[len(sizes)] is the total size
	offsets []int
}

// NewBlockPartition creates a partition from an ordered list of block sizes
func NewBlockPartition(sizes []int) (*BlockPartition, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("block partition needs at least one block: %w", ErrInvalidPartition)
	}

	offsets := make([]int, len(sizes)+1)
	owned := make([]int, len(sizes))
	copy(owned, sizes)
	for i, s := range owned {
		if s <= 0 {
			return nil, fmt.Errorf("block %d has non-positive size %d: %w", i, s, ErrInvalidPartition)
		}
		offsets[i+1] = offsets[i] + s
	}

	return &BlockPartition{
		sizes:   owned,
		offsets: offsets,
	}, nil
}

// NumBlocks returns the number of blocks
func (bp *BlockPartition) NumBlocks() int {
	return len(bp.sizes)
}

// TotalSize returns the total number of global indices covered
func (bp *BlockPartition) TotalSize() int {
	return bp.offsets[len(bp.sizes)]
}

// Size returns the size of block b
func (bp *BlockPartition) Size(b int) int {
	return bp.sizes[b]
}

// Offset returns the global index of the first entry of block b
func (bp *BlockPartition) Offset(b int) int {
	return bp.offsets[b]
}

// BlockOf resolves a global index to (block, offset-within-block).
// Allocation-free: a binary search over the prefix offsets.
func (bp *BlockPartition) BlockOf(global int) (block, local int, err error) {
	if global < 0 || global >= bp.TotalSize() {
		return 0, 0, fmt.Errorf("global index %d outside [0, %d): %w",
			global, bp.TotalSize(), ErrOutOfRange)
	}

	// First block whose end offset exceeds global.
	block = sort.SearchInts(bp.offsets[1:], global+1)
	local = global - bp.offsets[block]
	return block, local, nil
}
