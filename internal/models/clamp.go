package models

import "cmp"

// Clamp bounds v to [lo, hi] for any ordered numeric type.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
