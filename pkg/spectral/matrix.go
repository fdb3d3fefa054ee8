// Package spectral implements Newman's spectral community detection: an
// implicit generalized modularity matrix per vertex subgroup, a power-iteration
// eigen solver, modularity scoring of candidate bipartitions, and the
// recursive divider that grows a full clustering out of repeated splits.
//
// The modularity matrix of a subgroup g is never materialized. For vertices
// i, j in g it is
//
//	B[g]_ij = A_ij - k_i*k_j/M            (i != j)
//	B[g]_ii = A_ii - k_i*k_i/M - f_i      (f_i = row sum of B restricted to g)
//
// where A is the adjacency restricted to g, k the degrees in the original
// graph and M the total degree of the original graph. Only matrix-vector
// products against this matrix are ever needed, and those reduce to one
// sparse multiply plus O(n) corrections.
package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/clusterkit/spectral-clustering-service/pkg/sparse"
)

// ModularityMatrix is the implicit modularity matrix of one vertex subgroup.
// Instances are created by NewModularityMatrix for the whole graph and by
// Split for everything below it; each instance exclusively owns its adjacency
// and vectors, nothing is shared between siblings or with a former parent.
type ModularityMatrix struct {
	adj           *sparse.Matrix
	rowCorrection []float64 // f_i: row sums of the unshifted restricted matrix
	n             int
	totalDegree   int       // M, constant across the whole hierarchy
	degree        []int     // K, original-graph degree per local row
	degreeF       []float64 // degree as float64, kept for dot products
	shift         float64   // diagonal shift making the matrix positive semi-definite
}

// NewModularityMatrix builds the root matrix for a whole graph: adj is the
// full adjacency, degrees the per-vertex degree and totalDegree their sum.
// Derived fields are refreshed, so the result is immediately usable.
func NewModularityMatrix(adj *sparse.Matrix, degrees []int, totalDegree int) (*ModularityMatrix, error) {
	if adj.Rows() != len(degrees) {
		return nil, fmt.Errorf("spectral: adjacency has %d rows but %d degrees given", adj.Rows(), len(degrees))
	}
	if totalDegree <= 0 {
		return nil, fmt.Errorf("spectral: total degree must be positive, got %d", totalDegree)
	}

	m := &ModularityMatrix{
		adj:           adj,
		rowCorrection: make([]float64, adj.Rows()),
		n:             adj.Rows(),
		totalDegree:   totalDegree,
		degree:        degrees,
		degreeF:       toFloat(degrees),
	}
	m.Refresh()

	return m, nil
}

// Size returns the current subgroup size.
func (m *ModularityMatrix) Size() int { return m.n }

// TotalDegree returns M, the degree sum of the entire original graph.
func (m *ModularityMatrix) TotalDegree() int { return m.totalDegree }

// Degrees returns the original-graph degree of each local row.
func (m *ModularityMatrix) Degrees() []int { return m.degree }

// Shift returns the current diagonal shift. Power iteration and Eigenvalue
// operate on the shifted matrix; subtract Shift to get spectrum of the true
// modularity matrix.
func (m *ModularityMatrix) Shift() float64 { return m.shift }

// Row returns a cursor over the nonzero adjacency columns of local row i.
func (m *ModularityMatrix) Row(i int) sparse.Cursor { return m.adj.Row(i) }

// Refresh recomputes the derived fields (row corrections and shift) from the
// current membership. It must be called on both halves after every Split,
// before any multiplication or power iteration on them.
func (m *ModularityMatrix) Refresh() {
	m.refreshCorrection()
	m.refreshShift()
}

// refreshCorrection recomputes f_i = sum over l in g of (A_il - k_i*k_l/M).
// The adjacency is already restricted to the subgroup, so the A part is just
// the row's nonzero count.
func (m *ModularityMatrix) refreshCorrection() {
	M := float64(m.totalDegree)
	sumK := floats.Sum(m.degreeF)
	for i := 0; i < m.n; i++ {
		m.rowCorrection[i] = float64(m.adj.RowLen(i)) - m.degreeF[i]*sumK/M
	}
}

// refreshShift sets shift to the l1 norm of the unshifted matrix, the largest
// row sum of absolute values. Shifting by it moves every eigenvalue into the
// non-negative range, so power iteration converges to the algebraically
// largest eigenvalue instead of the one largest in magnitude.
func (m *ModularityMatrix) refreshShift() {
	M := float64(m.totalDegree)
	sumK := floats.Sum(m.degreeF)

	norm := 0.0
	for i := 0; i < m.n; i++ {
		ki := m.degreeF[i]

		// Null-model contribution k_i*k_j/M summed over all j != i, as if no
		// edges existed.
		rowSum := ki*(sumK-ki)/M + math.Abs(-ki*ki/M-m.rowCorrection[i])

		// For each actual neighbor the entry is 1 - k_i*k_j/M, not -k_i*k_j/M.
		cur := m.adj.Row(i)
		for j, ok := cur.Next(); ok; j, ok = cur.Next() {
			kj := m.degreeF[j]
			rowSum += math.Abs(1-ki*kj/M) - ki*kj/M
		}

		if rowSum > norm {
			norm = rowSum
		}
	}
	m.shift = norm
}

// Multiply computes res = (B[g] + shift*I) * vec. Both slices must have
// length Size().
func (m *ModularityMatrix) Multiply(vec, res []float64) {
	m.multiply(vec, res, true)
}

// multiply is the shared product kernel. With shifted=false it applies the
// true modularity matrix, which is what modularity scoring needs.
func (m *ModularityMatrix) multiply(vec, res []float64, shifted bool) {
	m.adj.Multiply(vec, res)

	kv := floats.Dot(m.degreeF, vec) / float64(m.totalDegree)
	for i := 0; i < m.n; i++ {
		res[i] -= m.degreeF[i]*kv + m.rowCorrection[i]*vec[i]
		if shifted {
			res[i] += m.shift * vec[i]
		}
	}
}

// Eigenvalue returns the Rayleigh quotient of vec against the shifted matrix,
// using tmp as scratch. For the power-iteration result this estimates the
// dominant eigenvalue; subtract Shift for the true leading eigenvalue used in
// divisibility decisions.
func (m *ModularityMatrix) Eigenvalue(vec, tmp []float64) float64 {
	m.multiply(vec, tmp, true)
	den := floats.Dot(vec, vec)
	if den == 0 {
		return 0
	}

	return floats.Dot(tmp, vec) / den
}

// ModularityScore returns the modularity gain (1/4) * s^T * B[g] * s of the
// bipartition described by the ±1 division vector s, using tmp as scratch.
// Non-positive means the proposed split loses modularity and should be
// rejected. The all-ones vector always scores zero.
func (m *ModularityMatrix) ModularityScore(s, tmp []float64) float64 {
	m.multiply(s, tmp, false)
	return 0.25 * floats.Dot(s, tmp)
}

func toFloat(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}

	return out
}
