package bcsr

import (
	"fmt"
	"sort"

	"github.com/davydden/bcsr/partitions"
)

// RowRef addresses one requested row inside its owning block row
type RowRef struct {
	Offset  int // Row offset within the block row
	Request int // Index into the original request order
}

// RowGroup collects the requested rows that fall into one block row,
// in request order
type RowGroup struct {
	BlockRow int
	Refs     []RowRef
}

// RowMap resolves a fixed set of requested global rows to
// (block-row, local-offset, request-index) triples, grouped by block row.
// Built once per row set and reused across many accessor traversals; it
// never changes after construction. Duplicate rows and arbitrary request
// order are permitted.
type RowMap struct {
	rb      *partitions.BlockPartition
	groups  []RowGroup
	numRows int
}

// NewRowMap resolves rows against the row block partition
func NewRowMap(rows []int, rb *partitions.BlockPartition) (*RowMap, error) {
	byBlock := make(map[int]int) // block row -> index into groups
	groups := make([]RowGroup, 0)

	for req, row := range rows {
		block, offset, err := rb.BlockOf(row)
		if err != nil {
			return nil, fmt.Errorf("requested row %d: %w", row, err)
		}
		gi, ok := byBlock[block]
		if !ok {
			gi = len(groups)
			byBlock[block] = gi
			groups = append(groups, RowGroup{BlockRow: block})
		}
		groups[gi].Refs = append(groups[gi].Refs, RowRef{Offset: offset, Request: req})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].BlockRow < groups[j].BlockRow })

	return &RowMap{
		rb:      rb,
		groups:  groups,
		numRows: len(rows),
	}, nil
}

// Groups returns the touched block rows in ascending order. The slice
// aliases internal storage and must not be mutated.
func (rm *RowMap) Groups() []RowGroup { return rm.groups }

// NumRows returns the number of requested rows (duplicates included)
func (rm *RowMap) NumRows() int { return rm.numRows }

// Partition returns the row block partition the map was resolved against
func (rm *RowMap) Partition() *partitions.BlockPartition { return rm.rb }
