package qtensor

import "fmt"

// MaxDenseRank bounds DenseTensorPower; rank 12 is already a 4096x4096 matrix.
const MaxDenseRank = 12

/*
DenseTensorPower builds the explicit 2^rank x 2^rank matrix whose product with
a state equals Apply(op, state). It exists to cross-check the kernel and
costs O(4^rank) memory.
*/
func DenseTensorPower(op Operator, rank int) ([][]float64, error) {
	if rank < 0 || rank > MaxDenseRank {
		return nil, fmt.Errorf("dense tensor power: rank %d outside [0, %d]", rank, MaxDenseRank)
	}

	factor := op.Transpose().Rows()
	out := [][]float64{{1}}

	for range rank {
		out = Kronecker(out, factor)
	}

	return out, nil
}

// Kronecker returns the Kronecker product a ⊗ b of two rectangular matrices.
func Kronecker(a, b [][]float64) [][]float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	ar, ac := len(a), len(a[0])
	br, bc := len(b), len(b[0])
	out := make([][]float64, ar*br)

	for i := range out {
		row := make([]float64, ac*bc)
		ai, bi := a[i/br], b[i%br]
		for j := range row {
			row[j] = ai[j/bc] * bi[j%bc]
		}
		out[i] = row
	}

	return out
}

// MatVec returns m·v. Columns beyond len(v) are ignored.
func MatVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		var sum float64
		for j := 0; j < len(row) && j < len(v); j++ {
			sum += row[j] * v[j]
		}
		out[i] = sum
	}
	return out
}
