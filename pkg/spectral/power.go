package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// powerEpsilon is the per-component convergence threshold for successive
// power-iteration iterates.
const powerEpsilon = 1e-5

// maxPowerIterations caps power iteration for a subgroup of size n.
func maxPowerIterations(n int) int { return 5000*n + 80000 }

// PowerIterate approximates the dominant eigenvector of the shifted matrix by
// repeated multiplication and renormalization, starting from the nonzero
// vector b0 and writing the converged vector into result. It returns
// ErrNonConvergence if the iteration cap is exceeded or a product collapses
// to the zero vector; the caller should then treat the subgroup as
// indivisible.
func (m *ModularityMatrix) PowerIterate(b0, result []float64) error {
	if len(b0) != m.n || len(result) != m.n {
		return fmt.Errorf("spectral: power iteration vectors must have length %d", m.n)
	}

	cur := make([]float64, m.n)
	next := make([]float64, m.n)
	copy(cur, b0)

	limit := maxPowerIterations(m.n)
	for iter := 0; iter < limit; iter++ {
		m.multiply(cur, next, true)

		norm := floats.Norm(next, 2)
		if norm == 0 {
			return fmt.Errorf("%w: matrix-vector product vanished at iteration %d", ErrNonConvergence, iter)
		}
		floats.Scale(1/norm, next)

		converged := true
		for i := 0; i < m.n; i++ {
			if math.Abs(next[i]-cur[i]) >= powerEpsilon {
				converged = false
				break
			}
		}

		cur, next = next, cur
		if converged {
			copy(result, cur)
			return nil
		}
	}

	return fmt.Errorf("%w: iteration cap %d reached for subgroup of size %d", ErrNonConvergence, limit, m.n)
}
