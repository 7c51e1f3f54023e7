package qtensor

import "math/bits"

/*
Rank returns N for a state of length 2^N. Lengths that are zero, negative or
not an exact power of two yield a *DimensionError.
*/
func Rank(length int) (int, error) {
	if length <= 0 || length&(length-1) != 0 {
		return 0, &DimensionError{Length: length}
	}
	return bits.TrailingZeros(uint(length)), nil
}
