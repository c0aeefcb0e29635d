package bodds

import "errors"

// Error classes used across the pipeline. Fatal conditions wrap one of these
// so callers and tests can distinguish what failed without string matching.
var (
	// ErrSchema - a required relation or column is missing from the input
	ErrSchema = errors.New("schema error")
	// ErrSplit - a partition boundary produced an empty train/validation/test set
	ErrSplit = errors.New("split error")
	// ErrFit - every candidate model failed to fit
	ErrFit = errors.New("fit error")
	// ErrConsistency - the matchup table violates the pairing symmetry invariant
	ErrConsistency = errors.New("consistency error")
)
