package align

import "testing"

func matrixFrom(values [][]float64) *Matrix {
	rows := len(values)
	cols := 0
	if rows > 0 {
		cols = len(values[0])
	}
	m := NewMatrix(rows, cols)
	for i, row := range values {
		for j, v := range row {
			m.set(i, j, v)
		}
	}
	return m
}

func TestAlignDiagonal(t *testing.T) {
	m := matrixFrom([][]float64{
		{0.9, 0.1, 0.1},
		{0.1, 0.9, 0.1},
		{0.1, 0.1, 0.9},
	})

	pairs := Align(m, 0.15)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d: %v", len(pairs), pairs)
	}
	for i, pair := range pairs {
		if pair.RefIndex != i || pair.TgtIndex != i {
			t.Errorf("pair %d = (%d,%d), want (%d,%d)", i, pair.RefIndex, pair.TgtIndex, i, i)
		}
		if pair.Score != 0.9 {
			t.Errorf("pair %d score = %v, want 0.9", i, pair.Score)
		}
	}
}

func TestAlignSkipsInsertedTarget(t *testing.T) {
	// Target has an extra cue at index 1 that matches nothing.
	m := matrixFrom([][]float64{
		{1.0, 0.1, 0.1, 0.1},
		{0.1, 0.1, 1.0, 0.1},
		{0.1, 0.1, 0.1, 1.0},
	})

	pairs := Align(m, 0.15)
	want := []AlignedPair{
		{RefIndex: 0, TgtIndex: 0, Score: 1.0},
		{RefIndex: 1, TgtIndex: 2, Score: 1.0},
		{RefIndex: 2, TgtIndex: 3, Score: 1.0},
	}
	if len(pairs) != len(want) {
		t.Fatalf("expected %d pairs, got %d: %v", len(want), len(pairs), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestAlignPairsStrictlyIncreasing(t *testing.T) {
	m := matrixFrom([][]float64{
		{0.5, 0.6, 0.2, 0.1},
		{0.7, 0.3, 0.8, 0.4},
		{0.2, 0.9, 0.1, 0.6},
		{0.1, 0.2, 0.5, 0.9},
		{0.3, 0.1, 0.4, 0.2},
	})

	pairs := Align(m, 0.15)
	if len(pairs) > 4 {
		t.Fatalf("pair count %d exceeds min(N,M)=4", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].RefIndex <= pairs[i-1].RefIndex || pairs[i].TgtIndex <= pairs[i-1].TgtIndex {
			t.Fatalf("pairs not strictly increasing: %v", pairs)
		}
	}
}

func TestAlignTiesPreferMatching(t *testing.T) {
	// All-zero scores with no gap penalty make every path score equal;
	// the tie-break must still match every cue rather than skip.
	m := NewMatrix(2, 2)

	pairs := Align(m, 0)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs from tie-break, got %d: %v", len(pairs), pairs)
	}
	if pairs[0].RefIndex != 0 || pairs[0].TgtIndex != 0 || pairs[1].RefIndex != 1 || pairs[1].TgtIndex != 1 {
		t.Fatalf("unexpected tie-break path: %v", pairs)
	}
}

func TestAlignEmptyMatrix(t *testing.T) {
	if pairs := Align(NewMatrix(0, 5), 0.15); pairs != nil {
		t.Fatalf("expected nil for empty reference side, got %v", pairs)
	}
	if pairs := Align(NewMatrix(5, 0), 0.15); pairs != nil {
		t.Fatalf("expected nil for empty target side, got %v", pairs)
	}
}
