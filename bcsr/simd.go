package bcsr

import (
	"github.com/ajroetker/go-highway/hwy"
)

// Lane-batched helpers over accessor views. Within a block, a column is
// contiguous (LocalIndex convention), so whole block columns are the
// natural SIMD unit: several independent rows of one column move through
// the vector lanes together. hwy dispatches to the best instruction set
// at runtime and clamps partial tail chunks, so the loops below need no
// scalar epilogue.

// Lanes returns the number of float64 values processed per vector
func Lanes() int {
	return hwy.MaxLanes[float64]()
}

// GatherRows copies the requested rows of view into a request-indexed
// local buffer laid out dst[ref.Request*view.N + jj]
func GatherRows(view BlockView, refs []RowRef, dst []float64) {
	for _, ref := range refs {
		row := dst[ref.Request*view.N : (ref.Request+1)*view.N]
		for jj := 0; jj < view.N; jj++ {
			row[jj] = view.At(ref.Offset, jj)
		}
	}
}

// ScatterRows stores a request-indexed local buffer (same layout as
// GatherRows) into the requested rows of view
func ScatterRows(view BlockView, refs []RowRef, src []float64) {
	for _, ref := range refs {
		row := src[ref.Request*view.N : (ref.Request+1)*view.N]
		for jj := 0; jj < view.N; jj++ {
			view.Set(ref.Offset, jj, row[jj])
		}
	}
}

// AccumulateRows adds a request-indexed local buffer into the requested
// rows of view, the scatter half of distribute-local-to-global
func AccumulateRows(view BlockView, refs []RowRef, src []float64) {
	for _, ref := range refs {
		row := src[ref.Request*view.N : (ref.Request+1)*view.N]
		for jj := 0; jj < view.N; jj++ {
			view.Set(ref.Offset, jj, view.At(ref.Offset, jj)+row[jj])
		}
	}
}

// AxpyColumn performs col += alpha * x over block column jj of view,
// lane-batched. x must hold at least view.M values.
func AxpyColumn(view BlockView, jj int, alpha float64, x []float64) {
	col := view.ColumnSlice(jj)
	a := hwy.Set(alpha)
	step := hwy.MaxLanes[float64]()
	for i := 0; i < len(col); i += step {
		xv := hwy.LoadSlice(x[i:])
		cv := hwy.LoadSlice(col[i:])
		hwy.StoreSlice(hwy.FMA(a, xv, cv), col[i:])
	}
}

// ScaleColumn multiplies block column jj of view by alpha, lane-batched
func ScaleColumn(view BlockView, jj int, alpha float64) {
	col := view.ColumnSlice(jj)
	a := hwy.Set(alpha)
	step := hwy.MaxLanes[float64]()
	for i := 0; i < len(col); i += step {
		cv := hwy.LoadSlice(col[i:])
		hwy.StoreSlice(hwy.Mul(a, cv), col[i:])
	}
}

// DotColumns returns the dot product of block column jj of two views of
// equal height, lane-batched
func DotColumns(a BlockView, ja int, b BlockView, jb int) float64 {
	x := a.ColumnSlice(ja)
	y := b.ColumnSlice(jb)
	step := hwy.MaxLanes[float64]()
	sum := 0.0
	for i := 0; i < len(x); i += step {
		sum += hwy.ReduceSum(hwy.Mul(hwy.LoadSlice(x[i:]), hwy.LoadSlice(y[i:])))
	}
	return sum
}
