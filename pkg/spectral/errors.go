package spectral

import "errors"

var (
	// ErrNonConvergence reports that power iteration hit its iteration cap or
	// degenerated to a zero vector. Recoverable: callers treat the subgroup
	// as indivisible and stop recursing on it.
	ErrNonConvergence = errors.New("spectral: power iteration did not converge")

	// ErrInvalidSplit reports split sizes that do not partition the current
	// subgroup, or a division vector that disagrees with them. This is a
	// contract violation by the caller, not a runtime condition to retry.
	ErrInvalidSplit = errors.New("spectral: invalid split")
)
