package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// BoolToFlag converts a toggle into the 0/1 integer form shaders read.
func BoolToFlag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Clamp limits v to the range [lo, hi].
func Clamp[T ~int | ~int32 | ~uint32 | ~float32](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
