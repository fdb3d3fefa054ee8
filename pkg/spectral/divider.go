package spectral

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Result represents the divider output
type Result struct {
	Clusters    [][]int    `json:"clusters"`
	NumClusters int        `json:"num_clusters"`
	Statistics  Statistics `json:"statistics"`
}

// Statistics contains divider performance metrics
type Statistics struct {
	Divisions    int   `json:"divisions"`
	Indivisible  int   `json:"indivisible"`
	Rejected     int   `json:"rejected"`
	NonConverged int   `json:"non_converged"`
	RuntimeMS    int64 `json:"runtime_ms"`
}

// workGroup pairs a subgroup matrix with its global vertex indices.
type workGroup struct {
	m *ModularityMatrix
	g []int
}

// Divide runs the recursive spectral bisection over the whole graph: each
// pending subgroup gets a leading eigenpair via power iteration, a ±1
// division vector from the eigenvector signs and a modularity score; positive
// scores split the subgroup in two, everything else finalizes it as a
// cluster. Divide consumes root the same way Split consumes its receiver.
func Divide(ctx context.Context, root *ModularityMatrix, config *Config) (*Result, error) {
	startTime := time.Now()
	logger := config.CreateLogger()
	rng := rand.New(rand.NewSource(config.RandomSeed()))

	logger.Info().
		Int("vertices", root.Size()).
		Int("total_degree", root.TotalDegree()).
		Float64("tolerance", config.Tolerance()).
		Msg("Starting spectral division")

	all := make([]int, root.Size())
	for i := range all {
		all[i] = i
	}

	result := &Result{Clusters: make([][]int, 0)}
	stack := []workGroup{{m: root, g: all}}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		group := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m, g := group.m, group.g

		if m.Size() == 1 || capReached(config, len(result.Clusters)+len(stack)) {
			result.Clusters = append(result.Clusters, g)
			continue
		}

		b0 := RandomVector(rng, m.Size())
		eigvec := make([]float64, m.Size())
		if err := m.PowerIterate(b0, eigvec); err != nil {
			if !errors.Is(err, ErrNonConvergence) {
				return nil, fmt.Errorf("power iteration failed on subgroup of size %d: %w", m.Size(), err)
			}
			logger.Warn().Int("size", m.Size()).Msg("Power iteration did not converge, keeping subgroup intact")
			result.Statistics.NonConverged++
			result.Clusters = append(result.Clusters, g)
			continue
		}

		tmp := make([]float64, m.Size())
		leading := m.Eigenvalue(eigvec, tmp) - m.Shift()
		if leading <= config.Tolerance() {
			result.Statistics.Indivisible++
			result.Clusters = append(result.Clusters, g)
			continue
		}

		s, g1Size := divisionVector(eigvec)
		g2Size := m.Size() - g1Size
		if g1Size == 0 || g2Size == 0 {
			// Eigenvector signs put every vertex on one side.
			result.Statistics.Indivisible++
			result.Clusters = append(result.Clusters, g)
			continue
		}

		score := m.ModularityScore(s, tmp)
		if score <= 0 {
			result.Statistics.Rejected++
			result.Clusters = append(result.Clusters, g)
			continue
		}

		first, second, g1, g2, err := m.Split(s, g, g1Size, g2Size)
		if err != nil {
			return nil, fmt.Errorf("split of subgroup of size %d failed: %w", len(g), err)
		}
		first.Refresh()
		second.Refresh()
		stack = append(stack, workGroup{m: first, g: g1}, workGroup{m: second, g: g2})
		result.Statistics.Divisions++

		if config.EnableProgress() {
			logger.Info().
				Int("size", len(g)).
				Int("g1_size", g1Size).
				Int("g2_size", g2Size).
				Float64("eigenvalue", leading).
				Float64("modularity_gain", score).
				Msg("Subgroup divided")
		}
	}

	sortClusters(result.Clusters)
	result.NumClusters = len(result.Clusters)
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()

	logger.Info().
		Int("clusters", result.NumClusters).
		Int("divisions", result.Statistics.Divisions).
		Int("non_converged", result.Statistics.NonConverged).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Spectral division completed")

	return result, nil
}

// divisionVector maps eigenvector signs to a ±1 vector and returns it with
// the positive-side count.
func divisionVector(eigvec []float64) ([]float64, int) {
	s := make([]float64, len(eigvec))
	positive := 0
	for i, v := range eigvec {
		if v > 0 {
			s[i] = 1
			positive++
		} else {
			s[i] = -1
		}
	}

	return s, positive
}

// capReached reports whether finishing pending groups as-is already meets the
// configured cluster cap.
func capReached(config *Config, pending int) bool {
	limit := config.MaxClusters()
	return limit > 0 && pending+1 >= limit
}

// sortClusters orders members within each cluster and clusters by their
// smallest member, for deterministic output.
func sortClusters(clusters [][]int) {
	for _, c := range clusters {
		sort.Ints(c)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
}
