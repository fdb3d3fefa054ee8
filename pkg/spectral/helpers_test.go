package spectral

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/clusterkit/spectral-clustering-service/pkg/sparse"
)

// newTestMatrix builds a root modularity matrix from per-vertex neighbor
// lists of a whole graph.
func newTestMatrix(t *testing.T, rows [][]int) *ModularityMatrix {
	t.Helper()

	adj, err := sparse.New(rows)
	if err != nil {
		t.Fatalf("building adjacency: %v", err)
	}

	degrees := make([]int, len(rows))
	total := 0
	for i, row := range rows {
		degrees[i] = len(row)
		total += len(row)
	}

	m, err := NewModularityMatrix(adj, degrees, total)
	if err != nil {
		t.Fatalf("building modularity matrix: %v", err)
	}

	return m
}

// cliqueRows returns the complete graph on n vertices.
func cliqueRows(n int) [][]int {
	rows := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j != i {
				rows[i] = append(rows[i], j)
			}
		}
	}

	return rows
}

// twoCliqueRows returns two disconnected cliques of sizes a and b.
func twoCliqueRows(a, b int) [][]int {
	rows := make([][]int, a+b)
	for i := 0; i < a; i++ {
		for j := 0; j < a; j++ {
			if j != i {
				rows[i] = append(rows[i], j)
			}
		}
	}
	for i := a; i < a+b; i++ {
		for j := a; j < a+b; j++ {
			if j != i {
				rows[i] = append(rows[i], j)
			}
		}
	}

	return rows
}

// barbellRows returns two cliques of size a joined by a single bridge edge.
func barbellRows(a int) [][]int {
	rows := twoCliqueRows(a, a)
	rows[a-1] = append(rows[a-1], a)
	rows[a] = append(rows[a], a-1)

	return rows
}

// pathRows returns the path graph on n vertices.
func pathRows(n int) [][]int {
	rows := make([][]int, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			rows[i] = append(rows[i], i-1)
		}
		if i < n-1 {
			rows[i] = append(rows[i], i+1)
		}
	}

	return rows
}

// starRows returns a star with the hub at vertex 0 and n-1 leaves.
func starRows(n int) [][]int {
	rows := make([][]int, n)
	for i := 1; i < n; i++ {
		rows[0] = append(rows[0], i)
		rows[i] = []int{0}
	}

	return rows
}

// denseModularity materializes the restricted modularity matrix of m from
// its definition, independently of the implicit kernels: off-diagonal
// entries A_ij - k_i*k_j/M, diagonal additionally minus the row sum f_i.
// With shifted=true the diagonal shift is added back.
func denseModularity(m *ModularityMatrix, shifted bool) *mat.SymDense {
	n := m.Size()
	M := float64(m.TotalDegree())

	adj := make([][]float64, n)
	for i := 0; i < n; i++ {
		adj[i] = make([]float64, n)
		cur := m.Row(i)
		for j, ok := cur.Next(); ok; j, ok = cur.Next() {
			adj[i][j] = 1
		}
	}

	k := make([]float64, n)
	for i, d := range m.Degrees() {
		k[i] = float64(d)
	}
	sumK := 0.0
	for _, v := range k {
		sumK += v
	}

	dense := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		fi := -k[i] * sumK / M
		for j := 0; j < n; j++ {
			fi += adj[i][j]
		}

		for j := i; j < n; j++ {
			v := adj[i][j] - k[i]*k[j]/M
			if j == i {
				v -= fi
				if shifted {
					v += m.Shift()
				}
			}
			dense.SetSym(i, j, v)
		}
	}

	return dense
}

// denseEigenvalues returns the sorted eigenvalues of a symmetric matrix.
func denseEigenvalues(t *testing.T, dense *mat.SymDense) []float64 {
	t.Helper()

	var es mat.EigenSym
	if !es.Factorize(dense, false) {
		t.Fatal("dense eigen decomposition failed")
	}

	return es.Values(nil)
}

// quietConfig returns a deterministic config that keeps test output silent.
func quietConfig(seed int64) *Config {
	cfg := NewConfig()
	cfg.Set("algorithm.random_seed", seed)
	cfg.Set("logging.level", "error")
	cfg.Set("logging.enable_progress", false)

	return cfg
}
