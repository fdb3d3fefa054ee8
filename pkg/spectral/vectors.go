package spectral

import "math/rand"

// RandomVector returns a length-n vector of uniform values in [1, 2), a safe
// nonzero starting point for power iteration.
func RandomVector(rng *rand.Rand, n int) []float64 {
	vec := make([]float64, n)
	for i := range vec {
		vec[i] = 1 + rng.Float64()
	}

	return vec
}

// OnesVector returns a length-n vector of ones.
func OnesVector(n int) []float64 {
	vec := make([]float64, n)
	for i := range vec {
		vec[i] = 1
	}

	return vec
}
