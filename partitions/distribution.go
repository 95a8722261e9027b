package partitions

import (
	"fmt"
	"sort"
)

// GhostRow identifies a row mirrored from a remote owner
type GhostRow struct {
	Row   int // Global row index
	Owner int // Rank that owns the row
}

// RowDistribution classifies each global row as locally owned or ghost.
// Each rank owns one contiguous range [OwnedLo, OwnedHi) of global rows;
// ghost rows are mirrored read-copies of rows owned elsewhere. Local
// writes to ghost rows are legal but hold only a partial contribution
// until an external reduction step merges them into the owning rank.
type RowDistribution struct {
	TotalRows int
	Rank      int

	// Owned range, half-open
	OwnedLo, OwnedHi int

	// Ghost rows sorted by global row index
	Ghosts []GhostRow

	ghostPos map[int]int // global row -> index into Ghosts
}

// NewRowDistribution builds a distribution from the owned range and the
// ghost rows mirrored on this rank
func NewRowDistribution(totalRows, ownedLo, ownedHi, rank int, ghosts []GhostRow) (*RowDistribution, error) {
	if totalRows < 0 || ownedLo < 0 || ownedHi < ownedLo || ownedHi > totalRows {
		return nil, fmt.Errorf("owned range [%d, %d) inconsistent with %d rows: %w",
			ownedLo, ownedHi, totalRows, ErrInvalidPartition)
	}

	sorted := make([]GhostRow, len(ghosts))
	copy(sorted, ghosts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Row < sorted[j].Row })

	ghostPos := make(map[int]int, len(sorted))
	for i, g := range sorted {
		if g.Row < 0 || g.Row >= totalRows {
			return nil, fmt.Errorf("ghost row %d outside [0, %d): %w",
				g.Row, totalRows, ErrOutOfRange)
		}
		if g.Row >= ownedLo && g.Row < ownedHi {
			return nil, fmt.Errorf("ghost row %d lies in owned range [%d, %d): %w",
				g.Row, ownedLo, ownedHi, ErrInvalidPartition)
		}
		if g.Owner == rank {
			return nil, fmt.Errorf("ghost row %d claims local rank %d as owner: %w",
				g.Row, rank, ErrInvalidPartition)
		}
		if _, dup := ghostPos[g.Row]; dup {
			return nil, fmt.Errorf("duplicate ghost row %d: %w", g.Row, ErrInvalidPartition)
		}
		ghostPos[g.Row] = i
	}

	return &RowDistribution{
		TotalRows: totalRows,
		Rank:      rank,
		OwnedLo:   ownedLo,
		OwnedHi:   ownedHi,
		Ghosts:    sorted,
		ghostPos:  ghostPos,
	}, nil
}

// NewSerialRowDistribution builds the single-process distribution that
// owns every row and mirrors none
func NewSerialRowDistribution(totalRows int) *RowDistribution {
	rd, err := NewRowDistribution(totalRows, 0, totalRows, 0, nil)
	if err != nil {
		panic(err) // cannot fail for a full owned range
	}
	return rd
}

// IsOwned reports whether this rank owns row
func (rd *RowDistribution) IsOwned(row int) bool {
	return row >= rd.OwnedLo && row < rd.OwnedHi
}

// IsGhost reports whether row is mirrored locally from a remote owner
func (rd *RowDistribution) IsGhost(row int) bool {
	_, ok := rd.ghostPos[row]
	return ok
}

// Owner returns the rank owning row. Rows neither owned nor mirrored
// locally are unknown to this rank.
func (rd *RowDistribution) Owner(row int) (int, error) {
	if rd.IsOwned(row) {
		return rd.Rank, nil
	}
	if i, ok := rd.ghostPos[row]; ok {
		return rd.Ghosts[i].Owner, nil
	}
	return -1, fmt.Errorf("row %d neither owned nor ghost on rank %d: %w",
		row, rd.Rank, ErrOutOfRange)
}

// NumOwned returns the number of locally owned rows
func (rd *RowDistribution) NumOwned() int {
	return rd.OwnedHi - rd.OwnedLo
}

// NumGhosts returns the number of ghost rows
func (rd *RowDistribution) NumGhosts() int {
	return len(rd.Ghosts)
}

// LocalSize returns the number of rows present locally (owned + ghost)
func (rd *RowDistribution) LocalSize() int {
	return rd.NumOwned() + rd.NumGhosts()
}

// GlobalToLocal maps a global row to its local position: owned rows come
// first in global order, then ghost rows in ascending global order
func (rd *RowDistribution) GlobalToLocal(row int) (int, error) {
	if rd.IsOwned(row) {
		return row - rd.OwnedLo, nil
	}
	if i, ok := rd.ghostPos[row]; ok {
		return rd.NumOwned() + i, nil
	}
	return -1, fmt.Errorf("row %d not present on rank %d: %w", row, rd.Rank, ErrOutOfRange)
}

// LocalToGlobal is the inverse of GlobalToLocal
func (rd *RowDistribution) LocalToGlobal(local int) (int, error) {
	switch {
	case local < 0 || local >= rd.LocalSize():
		return -1, fmt.Errorf("local index %d outside [0, %d): %w",
			local, rd.LocalSize(), ErrOutOfRange)
	case local < rd.NumOwned():
		return rd.OwnedLo + local, nil
	default:
		return rd.Ghosts[local-rd.NumOwned()].Row, nil
	}
}
