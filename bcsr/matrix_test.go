package bcsr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/davydden/bcsr/partitions"
	"github.com/davydden/bcsr/sparsity"
)

// referenceMatrix builds the documented 4x4 scenario:
//
//	row blocks [2,1,1], col blocks [1,2,1]
//	(0,0) 2x1 block [[5],[7]], (1,1) 1x2 block [[1,2]], (2,3) 1x1 block [[9]]
//
//	5 0 0 0
//	7 0 0 0
//	0 1 2 0
//	0 0 0 9
func referenceMatrix(t *testing.T) *BlockMatrix {
	t.Helper()

	rows, err := partitions.NewBlockPartition([]int{2, 1, 1})
	if err != nil {
		t.Fatalf("row partition: %v", err)
	}
	cols, err := partitions.NewBlockPartition([]int{1, 2, 1})
	if err != nil {
		t.Fatalf("col partition: %v", err)
	}

	d := sparsity.NewDynamic(3, 3)
	// Global column 3 is column block 2.
	for _, a := range [][2]int{{0, 0}, {1, 1}, {2, 2}} {
		if err := d.Add(a[0], a[1]); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	pattern := d.Compress()

	var m BlockMatrix
	if err := m.Reinit(pattern, rows, cols, partitions.NewSerialRowDistribution(4)); err != nil {
		t.Fatalf("Reinit: %v", err)
	}

	b00, ok := m.Block(0, 0)
	if !ok {
		t.Fatalf("block (0,0) missing")
	}
	b00[LocalIndex(0, 0, 2, 1)] = 5
	b00[LocalIndex(1, 0, 2, 1)] = 7

	b11, ok := m.Block(1, 1)
	if !ok {
		t.Fatalf("block (1,1) missing")
	}
	b11[LocalIndex(0, 0, 1, 2)] = 1
	b11[LocalIndex(0, 1, 1, 2)] = 2

	b22, ok := m.Block(2, 2)
	if !ok {
		t.Fatalf("block (2,2) missing")
	}
	b22[LocalIndex(0, 0, 1, 1)] = 9

	return &m
}

var referenceDense = []float64{
	5, 0, 0, 0,
	7, 0, 0, 0,
	0, 1, 2, 0,
	0, 0, 0, 9,
}

func TestBlockMatrixDims(t *testing.T) {
	m := referenceMatrix(t)
	if m.M() != 4 || m.N() != 4 {
		t.Errorf("dims expected 4x4, got %dx%d", m.M(), m.N())
	}
}

func TestBlockMatrixEl(t *testing.T) {
	m := referenceMatrix(t)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v, err := m.El(i, j)
			if err != nil {
				t.Fatalf("El(%d,%d): %v", i, j, err)
			}
			if want := referenceDense[i*4+j]; v != want {
				t.Errorf("El(%d,%d) expected %g, got %g", i, j, want, v)
			}
		}
	}

	if _, err := m.El(4, 0); !errors.Is(err, partitions.ErrOutOfRange) {
		t.Errorf("El(4,0) expected ErrOutOfRange, got %v", err)
	}
	if _, err := m.El(0, -1); !errors.Is(err, partitions.ErrOutOfRange) {
		t.Errorf("El(0,-1) expected ErrOutOfRange, got %v", err)
	}
}

func TestBlockMatrixCopyToRoundTrip(t *testing.T) {
	m := referenceMatrix(t)

	dense := mat.NewDense(4, 4, nil)
	if err := m.CopyTo(dense); err != nil {
		t.Fatalf("CopyTo: %v", err)
	}
	assert.InDeltaSlice(t, referenceDense, dense.RawMatrix().Data, 1e-14)

	// Dense materialization agrees with El everywhere, including absent
	// blocks reading as exact zero.
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v, err := m.El(i, j)
			if err != nil {
				t.Fatalf("El(%d,%d): %v", i, j, err)
			}
			if dense.At(i, j) != v {
				t.Errorf("(%d,%d) dense %g != el %g", i, j, dense.At(i, j), v)
			}
		}
	}

	wrong := mat.NewDense(3, 4, nil)
	if err := m.CopyTo(wrong); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("CopyTo wrong shape expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBlockMatrixIteration(t *testing.T) {
	m := referenceMatrix(t)

	// Block row 0 holds a single 2x1 block at column 0.
	it := m.BeginLocal(0)
	if !it.Next() {
		t.Fatalf("block row 0 expected one block")
	}
	if it.Column() != 0 {
		t.Errorf("column expected 0, got %d", it.Column())
	}
	data := it.Data()
	if len(data) != 2 || data[0] != 5 || data[1] != 7 {
		t.Errorf("block data expected [5 7], got %v", data)
	}
	if it.Next() {
		t.Errorf("block row 0 expected exactly one block")
	}

	// Writes through Data land in the matrix.
	data[1] = -7
	if v, _ := m.El(1, 0); v != -7 {
		t.Errorf("El(1,0) after iterator write expected -7, got %g", v)
	}
}

func TestBlockMatrixZero(t *testing.T) {
	m := referenceMatrix(t)
	m.Zero()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v, _ := m.El(i, j); v != 0 {
				t.Errorf("El(%d,%d) after Zero expected 0, got %g", i, j, v)
			}
		}
	}
	// Pattern survives: stored blocks are still writable.
	if _, ok := m.Block(0, 0); !ok {
		t.Errorf("block (0,0) lost after Zero")
	}
}

func TestReinitValidation(t *testing.T) {
	rows, _ := partitions.NewBlockPartition([]int{2, 1, 1})
	cols, _ := partitions.NewBlockPartition([]int{1, 2, 1})
	pattern := sparsity.NewDynamic(2, 3).Compress() // wrong row block count

	var m BlockMatrix
	if err := m.Reinit(pattern, rows, cols, partitions.NewSerialRowDistribution(4)); !errors.Is(err, ErrInvalidSparsity) {
		t.Errorf("row block mismatch expected ErrInvalidSparsity, got %v", err)
	}

	pattern = sparsity.NewDynamic(3, 2).Compress() // wrong col block count
	if err := m.Reinit(pattern, rows, cols, partitions.NewSerialRowDistribution(4)); !errors.Is(err, ErrInvalidSparsity) {
		t.Errorf("col block mismatch expected ErrInvalidSparsity, got %v", err)
	}

	pattern = sparsity.NewDynamic(3, 3).Compress()
	if err := m.Reinit(pattern, rows, cols, partitions.NewSerialRowDistribution(5)); !errors.Is(err, ErrInvalidSparsity) {
		t.Errorf("distribution mismatch expected ErrInvalidSparsity, got %v", err)
	}
}

func TestReinitDiscardsContent(t *testing.T) {
	m := referenceMatrix(t)

	// Reinit with the same shape: all blocks come back zero-filled.
	if err := m.Reinit(m.Pattern(), m.RowBlocks(), m.ColBlocks(), m.Distribution()); err != nil {
		t.Fatalf("Reinit: %v", err)
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v, _ := m.El(i, j); v != 0 {
				t.Errorf("El(%d,%d) after Reinit expected 0, got %g", i, j, v)
			}
		}
	}
}
