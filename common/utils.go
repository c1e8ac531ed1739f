package common

// Coalesce returns the first value that is not the zero value of T. Configuration defaults are
// applied with it: Coalesce(fromFile, fallback).
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value if every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for i := range values {
		if values[i] != zero {
			return values[i]
		}
	}
	return zero
}

// ValueOr dereferences p, or returns fallback when p is nil. Optional settings whose zero value is
// meaningful (a vsync of false) are stored as pointers and read with it.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
