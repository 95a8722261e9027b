package partitions

import (
	"fmt"
)

// GhostExchangePlan precomputes pick and place indices for the reduction
// of ghost-row contributions into their owning ranks. The plan only
// describes the data movement; executing it (MPI or otherwise) belongs to
// an external communication layer.
//
// Pick side: rank p gathers its local ghost values destined for rank q.
// Place side: rank q accumulates received values into its owned rows.
type GhostExchangePlan struct {
	NumRanks int

	// Distributions for every rank, indexed by rank
	Dists []*RowDistribution

	// Pick/place indices per (source, target) rank pair
	PickIndices  [][]PickBuffer  // [sourceRank][targetRank]
	PlaceIndices [][]PlaceBuffer // [targetRank][sourceRank]
}

// PickBuffer lists local row positions on the source rank to gather
type PickBuffer struct {
	Indices    []int // Local row positions (GlobalToLocal) on the source
	TargetRank int
}

// PlaceBuffer lists local row positions on the target rank to accumulate into
type PlaceBuffer struct {
	Indices    []int // Local row positions of the owned destination rows
	SourceRank int
}

// NewGhostExchangePlan builds a plan from the distributions of all ranks.
// Every distribution must describe the same total row count, and every
// ghost row must name a rank that actually owns it.
func NewGhostExchangePlan(dists []*RowDistribution) (*GhostExchangePlan, error) {
	if len(dists) == 0 {
		return nil, fmt.Errorf("ghost exchange plan needs at least one rank: %w", ErrInvalidPartition)
	}

	numRanks := len(dists)
	totalRows := dists[0].TotalRows
	for r, d := range dists {
		if d.TotalRows != totalRows {
			return nil, fmt.Errorf("rank %d covers %d rows, rank 0 covers %d: %w",
				r, d.TotalRows, totalRows, ErrInvalidPartition)
		}
		if d.Rank != r {
			return nil, fmt.Errorf("distribution at position %d carries rank %d: %w",
				r, d.Rank, ErrInvalidPartition)
		}
	}

	plan := &GhostExchangePlan{
		NumRanks: numRanks,
		Dists:    dists,
	}
	plan.initializeBuffers()

	if err := plan.buildIndices(); err != nil {
		return nil, err
	}

	return plan, nil
}

// initializeBuffers creates empty pick and place buffer structures
func (gp *GhostExchangePlan) initializeBuffers() {
	gp.PickIndices = make([][]PickBuffer, gp.NumRanks)
	gp.PlaceIndices = make([][]PlaceBuffer, gp.NumRanks)

	for p := 0; p < gp.NumRanks; p++ {
		gp.PickIndices[p] = make([]PickBuffer, gp.NumRanks)
		gp.PlaceIndices[p] = make([]PlaceBuffer, gp.NumRanks)

		for q := 0; q < gp.NumRanks; q++ {
			gp.PickIndices[p][q] = PickBuffer{
				Indices:    make([]int, 0),
				TargetRank: q,
			}
			gp.PlaceIndices[p][q] = PlaceBuffer{
				Indices:    make([]int, 0),
				SourceRank: q,
			}
		}
	}
}

// buildIndices fills pick/place indices for all rank pairs. Ghost rows of
// each source rank are walked in ascending global order, so pick and
// place sequences for a pair line up entry by entry.
func (gp *GhostExchangePlan) buildIndices() error {
	for p := 0; p < gp.NumRanks; p++ {
		src := gp.Dists[p]
		for _, g := range src.Ghosts {
			if g.Owner < 0 || g.Owner >= gp.NumRanks {
				return fmt.Errorf("rank %d ghost row %d names unknown owner %d: %w",
					p, g.Row, g.Owner, ErrInvalidPartition)
			}
			owner := gp.Dists[g.Owner]
			if !owner.IsOwned(g.Row) {
				return fmt.Errorf("row %d not owned by rank %d as claimed by rank %d: %w",
					g.Row, g.Owner, p, ErrInvalidPartition)
			}

			srcLocal, err := src.GlobalToLocal(g.Row)
			if err != nil {
				return err
			}
			dstLocal, err := owner.GlobalToLocal(g.Row)
			if err != nil {
				return err
			}

			gp.PickIndices[p][g.Owner].Indices = append(
				gp.PickIndices[p][g.Owner].Indices, srcLocal)
			gp.PlaceIndices[g.Owner][p].Indices = append(
				gp.PlaceIndices[g.Owner][p].Indices, dstLocal)
		}
	}

	return nil
}

// GetPickIndices returns local positions on sourceRank to send to targetRank
func (gp *GhostExchangePlan) GetPickIndices(sourceRank, targetRank int) []int {
	if sourceRank < 0 || sourceRank >= gp.NumRanks ||
		targetRank < 0 || targetRank >= gp.NumRanks {
		return nil
	}
	return gp.PickIndices[sourceRank][targetRank].Indices
}

// GetPlaceIndices returns local positions on targetRank receiving from sourceRank
func (gp *GhostExchangePlan) GetPlaceIndices(targetRank, sourceRank int) []int {
	if targetRank < 0 || targetRank >= gp.NumRanks ||
		sourceRank < 0 || sourceRank >= gp.NumRanks {
		return nil
	}
	return gp.PlaceIndices[targetRank][sourceRank].Indices
}

// Verify checks index validity and conservation properties
func (gp *GhostExchangePlan) Verify() error {
	// Verify 1: pick indices address the ghost region of the source rank
	for p := 0; p < gp.NumRanks; p++ {
		src := gp.Dists[p]
		for q := 0; q < gp.NumRanks; q++ {
			for _, idx := range gp.PickIndices[p][q].Indices {
				if idx < src.NumOwned() || idx >= src.LocalSize() {
					return fmt.Errorf("pick index %d on rank %d outside ghost range [%d, %d)",
						idx, p, src.NumOwned(), src.LocalSize())
				}
			}
		}
	}

	// Verify 2: place indices address the owned region of the target rank
	for q := 0; q < gp.NumRanks; q++ {
		dst := gp.Dists[q]
		for p := 0; p < gp.NumRanks; p++ {
			for _, idx := range gp.PlaceIndices[q][p].Indices {
				if idx < 0 || idx >= dst.NumOwned() {
					return fmt.Errorf("place index %d on rank %d outside owned range [0, %d)",
						idx, q, dst.NumOwned())
				}
			}
		}
	}

	// Verify 3: correspondence - pick and place sequences have same length
	for p := 0; p < gp.NumRanks; p++ {
		for q := 0; q < gp.NumRanks; q++ {
			pickLen := len(gp.PickIndices[p][q].Indices)
			placeLen := len(gp.PlaceIndices[q][p].Indices)
			if pickLen != placeLen {
				return fmt.Errorf("length mismatch: pick[%d][%d]=%d, place[%d][%d]=%d",
					p, q, pickLen, q, p, placeLen)
			}
		}
	}

	// Verify 4: conservation - every ghost row is picked exactly once
	totalPicks := 0
	for p := 0; p < gp.NumRanks; p++ {
		for q := 0; q < gp.NumRanks; q++ {
			totalPicks += len(gp.PickIndices[p][q].Indices)
		}
	}

	totalGhosts := 0
	for _, d := range gp.Dists {
		totalGhosts += d.NumGhosts()
	}

	if totalPicks != totalGhosts {
		return fmt.Errorf("conservation error: total picks %d != total ghosts %d",
			totalPicks, totalGhosts)
	}

	return nil
}
