package bcsr

import (
	"fmt"
)

// InvalidColumn is the sentinel returned once a traversal has visited its
// last active block column
const InvalidColumn = -1

// rowsCursor is the traversal core shared by RowsAccessor and
// RowsBlockAccessor: a forward-only cursor over the merged, strictly
// ascending union of block columns active for any touched block row.
// Columns present only for untouched block rows are never visited.
//
// State machine: unresolved -> at column c -> at column c' (c' > c) ->
// exhausted. No transition returns to a prior column; a fresh reset is
// the only way to restart.
type rowsCursor struct {
	groups  []cursorGroup
	current int
}

// cursorGroup tracks one touched block row during a traversal
type cursorGroup struct {
	blockRow int
	refs     []RowRef
	mSize    int   // rows in this block row
	cols     []int // sparsity columns of this block row, ascending
	rowStart int   // pattern stream position of the row's first block
	pos      int   // next unvisited entry of cols
}

// head returns the group's next unvisited column, or InvalidColumn
func (g *cursorGroup) head() int {
	if g.pos >= len(g.cols) {
		return InvalidColumn
	}
	return g.cols[g.pos]
}

// active reports whether the group participates in column c
func (g *cursorGroup) active(c int) bool {
	return c != InvalidColumn && g.pos < len(g.cols) && g.cols[g.pos] == c
}

// reset rewinds every group and positions the cursor at the first active
// column, returning it (or InvalidColumn for a row set touching nothing)
func (rc *rowsCursor) reset() int {
	for i := range rc.groups {
		rc.groups[i].pos = 0
	}
	rc.current = rc.minHead()
	return rc.current
}

// advance moves to the next strictly greater active column, returning
// InvalidColumn once exhausted
func (rc *rowsCursor) advance() int {
	if rc.current == InvalidColumn {
		return InvalidColumn
	}
	for i := range rc.groups {
		if rc.groups[i].active(rc.current) {
			rc.groups[i].pos++
		}
	}
	rc.current = rc.minHead()
	return rc.current
}

func (rc *rowsCursor) minHead() int {
	min := InvalidColumn
	for i := range rc.groups {
		if h := rc.groups[i].head(); h != InvalidColumn && (min == InvalidColumn || h < min) {
			min = h
		}
	}
	return min
}

// buildCursor assembles cursor groups for a resolved row map against a
// matrix's sparsity
func buildCursor(m *BlockMatrix, rm *RowMap) rowsCursor {
	groups := make([]cursorGroup, 0, len(rm.Groups()))
	for _, g := range rm.Groups() {
		cols := m.pattern.RowColumns(g.BlockRow)
		rowStart := 0
		if len(cols) > 0 {
			rowStart, _ = m.pattern.Find(g.BlockRow, cols[0])
		}
		groups = append(groups, cursorGroup{
			blockRow: g.BlockRow,
			refs:     g.Refs,
			mSize:    m.rowBlocks.Size(g.BlockRow),
			cols:     cols,
			rowStart: rowStart,
		})
	}
	return rowsCursor{groups: groups, current: InvalidColumn}
}

// RowsAccessor traverses the active block columns of an arbitrary ordered
// set of global rows, exposing per-row value access at each column. Rows
// are addressed by their index in the original request, so a caller's
// local buffers stay aligned with its own ordering.
//
// The accessor holds no copy of matrix values: reads and writes go
// straight to the owning dense block.
type RowsAccessor struct {
	m          *BlockMatrix
	cur        rowsCursor
	perRequest []requestRef
}

type requestRef struct {
	group  int
	offset int
}

// NewRowsAccessor creates an accessor bound to m. Reinit must be called
// before traversal.
func NewRowsAccessor(m *BlockMatrix) *RowsAccessor {
	return &RowsAccessor{m: m, cur: rowsCursor{current: InvalidColumn}}
}

// Reinit resolves a new row set and positions the cursor at its first
// active column
func (a *RowsAccessor) Reinit(rows []int) error {
	rm, err := NewRowMap(rows, a.m.rowBlocks)
	if err != nil {
		return err
	}
	a.reinitMapped(rm)
	return nil
}

// ReinitMapped reuses an externally precomputed row map (one per assembly
// unit, reused across traversals)
func (a *RowsAccessor) ReinitMapped(rm *RowMap) error {
	if rm.Partition() != a.m.rowBlocks {
		return fmt.Errorf("row map resolved against a different row partition: %w",
			ErrInvalidSparsity)
	}
	a.reinitMapped(rm)
	return nil
}

func (a *RowsAccessor) reinitMapped(rm *RowMap) {
	a.cur = buildCursor(a.m, rm)

	a.perRequest = make([]requestRef, rm.NumRows())
	for gi, g := range a.cur.groups {
		for _, ref := range g.refs {
			a.perRequest[ref.Request] = requestRef{group: gi, offset: ref.Offset}
		}
	}

	a.cur.reset()
}

// CurrentColumn returns the block column under the cursor, or
// InvalidColumn once the traversal is exhausted
func (a *RowsAccessor) CurrentColumn() int { return a.cur.current }

// Advance moves to the next strictly greater active column, reporting
// whether one exists
func (a *RowsAccessor) Advance() bool {
	return a.cur.advance() != InvalidColumn
}

// NumRows returns the size of the resolved row set
func (a *RowsAccessor) NumRows() int { return len(a.perRequest) }

// ColBlockSize returns the width of the block column under the cursor
func (a *RowsAccessor) ColBlockSize() int {
	if a.cur.current == InvalidColumn {
		return 0
	}
	return a.m.colBlocks.Size(a.cur.current)
}

// RowView exposes requested row k (by request index) at the current
// column. ok is false when k's block row holds no block at this column;
// such rows read as zero and must not be written.
func (a *RowsAccessor) RowView(k int) (RowView, bool) {
	rr := a.perRequest[k]
	g := &a.cur.groups[rr.group]
	if !g.active(a.cur.current) {
		return RowView{}, false
	}
	block := a.m.blockAt(g.rowStart + g.pos)
	return RowView{
		Data:   block[rr.offset:],
		Stride: g.mSize,
		n:      a.ColBlockSize(),
	}, true
}

// ReadRow copies requested row k's values at the current column into
// dst[:ColBlockSize()], zero-filling when the block is absent
func (a *RowsAccessor) ReadRow(k int, dst []float64) {
	n := a.ColBlockSize()
	v, ok := a.RowView(k)
	if !ok {
		for jj := 0; jj < n; jj++ {
			dst[jj] = 0
		}
		return
	}
	for jj := 0; jj < n; jj++ {
		dst[jj] = v.At(jj)
	}
}

// WriteRow stores src[:ColBlockSize()] into requested row k at the
// current column, mutating the dense block directly. Writing a row whose
// block row has no block at this column is a programmer error and panics.
func (a *RowsAccessor) WriteRow(k int, src []float64) {
	v, ok := a.RowView(k)
	if !ok {
		panic(fmt.Sprintf("bcsr: write to request row %d at column %d with no stored block",
			k, a.cur.current))
	}
	for jj := 0; jj < v.Len(); jj++ {
		v.Set(jj, src[jj])
	}
}

// AccumulateRow adds src[:ColBlockSize()] into requested row k at the
// current column. Same absence rules as WriteRow.
func (a *RowsAccessor) AccumulateRow(k int, src []float64) {
	v, ok := a.RowView(k)
	if !ok {
		panic(fmt.Sprintf("bcsr: accumulate into request row %d at column %d with no stored block",
			k, a.cur.current))
	}
	for jj := 0; jj < v.Len(); jj++ {
		v.Set(jj, v.At(jj)+src[jj])
	}
}

// RowView is one requested row's slice of values at the current block
// column. Values sit Stride apart inside the owning dense block, per the
// column-major LocalIndex convention; mutation through Set takes effect
// immediately in the matrix.
type RowView struct {
	Data   []float64 // block buffer starting at the row's first value
	Stride int       // rows in the owning block
	n      int
}

// Len returns the number of values (the block column width)
func (v RowView) Len() int { return v.n }

// At returns the value in column jj of the block
func (v RowView) At(jj int) float64 { return v.Data[jj*v.Stride] }

// Set stores into column jj of the block
func (v RowView) Set(jj int, x float64) { v.Data[jj*v.Stride] = x }
