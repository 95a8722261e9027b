package bcsr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davydden/bcsr/partitions"
)

func TestRowMapGrouping(t *testing.T) {
	rb, err := partitions.NewBlockPartition([]int{3, 2, 1, 2})
	if err != nil {
		t.Fatalf("NewBlockPartition: %v", err)
	}

	// Scrambled request with a duplicate: groups come out in ascending
	// block order, refs preserve request order within a group.
	rm, err := NewRowMap([]int{7, 1, 3, 2, 1}, rb)
	if err != nil {
		t.Fatalf("NewRowMap: %v", err)
	}

	if rm.NumRows() != 5 {
		t.Errorf("NumRows expected 5, got %d", rm.NumRows())
	}

	groups := rm.Groups()
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	assert.Equal(t, 0, groups[0].BlockRow)
	assert.Equal(t, []RowRef{{Offset: 1, Request: 1}, {Offset: 2, Request: 3}, {Offset: 1, Request: 4}},
		groups[0].Refs)

	assert.Equal(t, 1, groups[1].BlockRow)
	assert.Equal(t, []RowRef{{Offset: 0, Request: 2}}, groups[1].Refs)

	assert.Equal(t, 3, groups[2].BlockRow)
	assert.Equal(t, []RowRef{{Offset: 1, Request: 0}}, groups[2].Refs)
}
