package qtensor

/*
BitSwap0 swaps the bit at position idx with bit 0 of value and leaves every
other bit untouched. When the two bits already agree the value is returned
as is.

	BitSwap0(2, 0b0110) == 0b0011
*/
func BitSwap0(idx, value int) int {
	x := (value ^ (value >> idx)) & 1
	return value ^ ((x << idx) | x)
}

/*
AxisIndexMap returns the permutation j -> BitSwap0(axis, j) over [0, size).
The permutation is its own inverse. The kernel computes the same mapping on
the fly and never keeps one of these around.
*/
func AxisIndexMap(axis, size int) []int {
	order := make([]int, size)
	for j := range order {
		order[j] = BitSwap0(axis, j)
	}
	return order
}
