package spectral

import "fmt"

// Split partitions the subgroup according to the ±1 division vector s: rows
// with s[i] > 0 form the first half, the rest the second. g is the subgroup's
// global vertex-index list and is partitioned the same way; g1Size and g2Size
// are the expected side sizes and must agree with s and sum to Size().
//
// Split consumes the receiver: its storage is reused for the first half, so
// after a successful call the original must only be used as the returned
// first child. Row corrections and sizes are recomputed for both halves, but
// the shift is not — Refresh must be called on each half before it is
// multiplied or power-iterated.
func (m *ModularityMatrix) Split(s []float64, g []int, g1Size, g2Size int) (first, second *ModularityMatrix, g1, g2 []int, err error) {
	if g1Size <= 0 || g2Size <= 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: empty side (g1=%d, g2=%d)", ErrInvalidSplit, g1Size, g2Size)
	}
	if g1Size+g2Size != m.n {
		return nil, nil, nil, nil, fmt.Errorf("%w: sizes %d+%d do not partition subgroup of size %d", ErrInvalidSplit, g1Size, g2Size, m.n)
	}
	if len(s) != m.n || len(g) != m.n {
		return nil, nil, nil, nil, fmt.Errorf("%w: division vector length %d, group length %d, size %d", ErrInvalidSplit, len(s), len(g), m.n)
	}

	idx1 := make([]int, 0, g1Size)
	idx2 := make([]int, 0, g2Size)
	for i := 0; i < m.n; i++ {
		if s[i] > 0 {
			idx1 = append(idx1, i)
		} else {
			idx2 = append(idx2, i)
		}
	}
	if len(idx1) != g1Size {
		return nil, nil, nil, nil, fmt.Errorf("%w: division vector yields %d/%d, expected %d/%d", ErrInvalidSplit, len(idx1), len(idx2), g1Size, g2Size)
	}

	g1 = make([]int, g1Size)
	g2 = make([]int, g2Size)
	deg1 := make([]int, g1Size)
	deg2 := make([]int, g2Size)
	for p, i := range idx1 {
		g1[p] = g[i]
		deg1[p] = m.degree[i]
	}
	for p, i := range idx2 {
		g2[p] = g[i]
		deg2[p] = m.degree[i]
	}

	adj1 := m.adj.Subset(idx1)
	adj2 := m.adj.Subset(idx2)

	second = &ModularityMatrix{
		adj:           adj2,
		rowCorrection: make([]float64, g2Size),
		n:             g2Size,
		totalDegree:   m.totalDegree,
		degree:        deg2,
		degreeF:       toFloat(deg2),
	}
	second.refreshCorrection()

	// Rebind the receiver to the first half.
	m.adj = adj1
	m.rowCorrection = make([]float64, g1Size)
	m.n = g1Size
	m.degree = deg1
	m.degreeF = toFloat(deg1)
	m.refreshCorrection()

	return m, second, g1, g2, nil
}
