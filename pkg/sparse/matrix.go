// Package sparse implements the compressed-sparse-row adjacency storage used
// by the spectral clustering core. Matrices are unweighted: a stored column
// index means an edge of weight 1. Rows and columns always refer to the local
// indexing of the vertex subgroup the matrix was built for.
package sparse

import "fmt"

// Matrix is a CSR adjacency matrix restricted to a vertex subgroup.
// rowPtr has length n+1; the columns of row i live in
// colInd[rowPtr[i]:rowPtr[i+1]], sorted ascending.
type Matrix struct {
	n      int
	rowPtr []int
	colInd []int
}

// New builds a matrix from per-row neighbor lists. Neighbor indices are
// local to the subgroup and must lie in [0, len(rows)).
func New(rows [][]int) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{
		n:      n,
		rowPtr: make([]int, n+1),
	}

	nnz := 0
	for _, row := range rows {
		nnz += len(row)
	}
	m.colInd = make([]int, 0, nnz)

	for i, row := range rows {
		for _, j := range row {
			if j < 0 || j >= n {
				return nil, fmt.Errorf("sparse: neighbor %d of row %d out of range [0,%d)", j, i, n)
			}
			m.colInd = append(m.colInd, j)
		}
		m.rowPtr[i+1] = len(m.colInd)
	}

	return m, nil
}

// Rows returns the number of rows (= columns) of the matrix.
func (m *Matrix) Rows() int { return m.n }

// Nonzeros returns the number of stored entries.
func (m *Matrix) Nonzeros() int { return len(m.colInd) }

// RowLen returns the number of nonzeros in row i.
func (m *Matrix) RowLen(i int) int { return m.rowPtr[i+1] - m.rowPtr[i] }

// Multiply computes res = A * vec. Both slices must have length Rows().
func (m *Matrix) Multiply(vec, res []float64) {
	for i := 0; i < m.n; i++ {
		sum := 0.0
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			sum += vec[m.colInd[p]]
		}
		res[i] = sum
	}
}

// Cursor walks the nonzero columns of a single row.
type Cursor struct {
	cols []int
	pos  int
}

// Next returns the next nonzero column of the row, and false once the row is
// exhausted.
func (c *Cursor) Next() (int, bool) {
	if c.pos >= len(c.cols) {
		return 0, false
	}
	col := c.cols[c.pos]
	c.pos++
	return col, true
}

// Row returns a cursor over the nonzero columns of row i.
func (m *Matrix) Row(i int) Cursor {
	return Cursor{cols: m.colInd[m.rowPtr[i]:m.rowPtr[i+1]]}
}

// Subset builds the sub-matrix over the local indices in keep: rows and
// columns outside keep are dropped and the survivors are renumbered by their
// position in keep. keep must be strictly increasing.
func (m *Matrix) Subset(keep []int) *Matrix {
	local := make(map[int]int, len(keep))
	for newIdx, oldIdx := range keep {
		local[oldIdx] = newIdx
	}

	sub := &Matrix{
		n:      len(keep),
		rowPtr: make([]int, len(keep)+1),
		colInd: make([]int, 0, len(m.colInd)),
	}

	for newIdx, oldIdx := range keep {
		for p := m.rowPtr[oldIdx]; p < m.rowPtr[oldIdx+1]; p++ {
			if j, ok := local[m.colInd[p]]; ok {
				sub.colInd = append(sub.colInd, j)
			}
		}
		sub.rowPtr[newIdx+1] = len(sub.colInd)
	}

	return sub
}
