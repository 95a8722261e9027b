package sparsity

import (
	"errors"
	"testing"
)

func TestDynamicAddAndCompress(t *testing.T) {
	// Pattern of the vectorized-accessor reference scenario: 4x5 blocks.
	d := NewDynamic(4, 5)
	adds := [][2]int{
		{0, 0}, {0, 3},
		{1, 1}, {1, 4},
		{2, 0}, {2, 3}, {2, 4},
		{3, 0}, {3, 1},
	}
	for _, a := range adds {
		if err := d.Add(a[0], a[1]); err != nil {
			t.Fatalf("Add(%d,%d): %v", a[0], a[1], err)
		}
	}
	// Duplicates are ignored.
	if err := d.Add(0, 3); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}

	p := d.Compress()
	if p.NumRowBlocks() != 4 || p.NumColBlocks() != 5 {
		t.Fatalf("compressed dims expected 4x5, got %dx%d",
			p.NumRowBlocks(), p.NumColBlocks())
	}
	if p.NumBlocks() != len(adds) {
		t.Fatalf("NumBlocks expected %d, got %d", len(adds), p.NumBlocks())
	}

	wantRows := [][]int{
		{0, 3},
		{1, 4},
		{0, 3, 4},
		{0, 1},
	}
	for i, want := range wantRows {
		got := p.RowColumns(i)
		if len(got) != len(want) {
			t.Fatalf("RowColumns(%d) expected %v, got %v", i, want, got)
		}
		for k := range want {
			if got[k] != want[k] {
				t.Errorf("RowColumns(%d) expected %v, got %v", i, want, got)
				break
			}
		}
	}

	for _, a := range adds {
		if !p.Contains(a[0], a[1]) {
			t.Errorf("Contains(%d,%d) expected true", a[0], a[1])
		}
	}
	for _, a := range [][2]int{{0, 1}, {1, 0}, {3, 4}, {0, 2}} {
		if p.Contains(a[0], a[1]) {
			t.Errorf("Contains(%d,%d) expected false", a[0], a[1])
		}
	}
	// Out-of-range coordinates are simply absent.
	if p.Contains(-1, 0) || p.Contains(0, 7) || p.Contains(9, 0) {
		t.Errorf("out-of-range Contains expected false")
	}
}

func TestDynamicAddOutOfRange(t *testing.T) {
	d := NewDynamic(2, 3)
	for _, a := range [][2]int{{-1, 0}, {2, 0}, {0, 3}, {0, -1}} {
		if err := d.Add(a[0], a[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Add(%d,%d) expected ErrOutOfRange, got %v", a[0], a[1], err)
		}
	}
}

func TestPatternFindStreamPositions(t *testing.T) {
	d := NewDynamic(3, 3)
	for _, a := range [][2]int{{0, 0}, {0, 2}, {2, 1}} {
		if err := d.Add(a[0], a[1]); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	p := d.Compress()

	// Stream order: block-row order, ascending columns within a row.
	want := map[[2]int]int{
		{0, 0}: 0,
		{0, 2}: 1,
		{2, 1}: 2,
	}
	for coord, pos := range want {
		got, ok := p.Find(coord[0], coord[1])
		if !ok || got != pos {
			t.Errorf("Find(%d,%d) expected (%d,true), got (%d,%v)",
				coord[0], coord[1], pos, got, ok)
		}
	}
	if _, ok := p.Find(1, 1); ok {
		t.Errorf("Find on empty row expected false")
	}

	// RowColumns of an empty row is empty, and re-obtainable.
	if len(p.RowColumns(1)) != 0 {
		t.Errorf("RowColumns(1) expected empty")
	}
	if len(p.RowColumns(1)) != 0 {
		t.Errorf("RowColumns(1) second call expected empty")
	}
}
