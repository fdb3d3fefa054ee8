package spectral

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestSplitInvalid(t *testing.T) {
	g := []int{0, 1, 2, 3}
	s := []float64{1, 1, -1, -1}

	tests := []struct {
		name   string
		s      []float64
		g      []int
		g1, g2 int
	}{
		{"EmptyFirstSide", s, g, 0, 4},
		{"EmptySecondSide", s, g, 4, 0},
		{"SizesDoNotSum", s, g, 1, 2},
		{"VectorDisagrees", s, g, 3, 1},
		{"ShortVector", []float64{1, -1}, g, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatrix(t, pathRows(4))
			_, _, _, _, err := m.Split(tt.s, tt.g, tt.g1, tt.g2)
			if !errors.Is(err, ErrInvalidSplit) {
				t.Errorf("got error %v, want ErrInvalidSplit", err)
			}
		})
	}
}

func TestSplitInvariants(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]int
		s      []float64
		g1, g2 int
	}{
		{
			name: "TwoCliquesNaturalBoundary",
			rows: twoCliqueRows(4, 4),
			s:    []float64{1, 1, 1, 1, -1, -1, -1, -1},
			g1:   4, g2: 4,
		},
		{
			name: "BarbellBridge",
			rows: barbellRows(3),
			s:    []float64{1, 1, 1, -1, -1, -1},
			g1:   3, g2: 3,
		},
		{
			name: "PathUneven",
			rows: pathRows(5),
			s:    []float64{1, 1, -1, -1, -1},
			g1:   2, g2: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatrix(t, tt.rows)
			n := m.Size()
			totalBefore := m.TotalDegree()
			degBefore := append([]int(nil), m.Degrees()...)

			g := make([]int, n)
			for i := range g {
				g[i] = i
			}

			first, second, g1, g2, err := m.Split(tt.s, g, tt.g1, tt.g2)
			if err != nil {
				t.Fatalf("split failed: %v", err)
			}

			if first.Size()+second.Size() != n {
				t.Errorf("sizes %d+%d do not sum to %d", first.Size(), second.Size(), n)
			}
			if len(g1) != tt.g1 || len(g2) != tt.g2 {
				t.Errorf("group sizes %d/%d, want %d/%d", len(g1), len(g2), tt.g1, tt.g2)
			}

			if first.TotalDegree() != totalBefore || second.TotalDegree() != totalBefore {
				t.Errorf("total degree changed: %d and %d, want %d", first.TotalDegree(), second.TotalDegree(), totalBefore)
			}

			// The two degree arrays together are a permutation of the parent's.
			merged := append(append([]int(nil), first.Degrees()...), second.Degrees()...)
			sort.Ints(merged)
			wantDeg := append([]int(nil), degBefore...)
			sort.Ints(wantDeg)
			for i := range wantDeg {
				if merged[i] != wantDeg[i] {
					t.Fatalf("degree multiset changed: got %v, want %v", merged, wantDeg)
				}
			}

			// Members keep their original-graph degree through the
			// local-to-global renumbering.
			for p, v := range g1 {
				if first.Degrees()[p] != degBefore[v] {
					t.Errorf("vertex %d degree %d, want %d", v, first.Degrees()[p], degBefore[v])
				}
			}
			for p, v := range g2 {
				if second.Degrees()[p] != degBefore[v] {
					t.Errorf("vertex %d degree %d, want %d", v, second.Degrees()[p], degBefore[v])
				}
			}
		})
	}
}

// After Refresh, both halves must behave exactly like matrices built from
// scratch for their membership.
func TestSplitHalvesMatchFreshMatrices(t *testing.T) {
	m := newTestMatrix(t, twoCliqueRows(4, 3))
	g := []int{0, 1, 2, 3, 4, 5, 6}
	s := []float64{1, 1, 1, 1, -1, -1, -1}

	first, second, _, _, err := m.Split(s, g, 4, 3)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	first.Refresh()
	second.Refresh()

	// Each half of the disconnected two-clique graph is a clique whose
	// restricted modularity matrix has leading eigenvalue 0.
	for _, half := range []*ModularityMatrix{first, second} {
		eigs := denseEigenvalues(t, denseModularity(half, false))
		leading := eigs[len(eigs)-1]
		if math.Abs(leading) > 1e-9 {
			t.Errorf("half of size %d: leading eigenvalue %.12f, want 0", half.Size(), leading)
		}

		tmp := make([]float64, half.Size())
		if score := half.ModularityScore(OnesVector(half.Size()), tmp); math.Abs(score) > 1e-9 {
			t.Errorf("half of size %d: all-ones score %.12f, want 0", half.Size(), score)
		}
	}
}

// A second-level split must still see original-graph degrees and the root's
// total degree.
func TestSplitPreservesInvariantsAcrossLevels(t *testing.T) {
	// Three disconnected triangles.
	rows := make([][]int, 9)
	for c := 0; c < 3; c++ {
		base := 3 * c
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if j != i {
					rows[base+i] = append(rows[base+i], base+j)
				}
			}
		}
	}

	m := newTestMatrix(t, rows)
	totalBefore := m.TotalDegree()
	g := make([]int, 9)
	for i := range g {
		g[i] = i
	}

	s := []float64{1, 1, 1, -1, -1, -1, -1, -1, -1}
	first, second, _, g2, err := m.Split(s, g, 3, 6)
	if err != nil {
		t.Fatalf("first split failed: %v", err)
	}
	first.Refresh()
	second.Refresh()

	s2 := []float64{1, 1, 1, -1, -1, -1}
	childA, childB, gA, gB, err := second.Split(s2, g2, 3, 3)
	if err != nil {
		t.Fatalf("second split failed: %v", err)
	}
	childA.Refresh()
	childB.Refresh()

	wantA, wantB := []int{3, 4, 5}, []int{6, 7, 8}
	for i := range wantA {
		if gA[i] != wantA[i] || gB[i] != wantB[i] {
			t.Fatalf("second-level groups %v and %v, want %v and %v", gA, gB, wantA, wantB)
		}
	}

	for _, child := range []*ModularityMatrix{childA, childB} {
		if child.TotalDegree() != totalBefore {
			t.Errorf("total degree %d, want %d", child.TotalDegree(), totalBefore)
		}
		for _, d := range child.Degrees() {
			if d != 2 {
				t.Errorf("triangle member degree %d, want 2", d)
			}
		}
	}
}
