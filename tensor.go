// Package qtensor applies a 2x2 operator to every binary axis of a 2^N state
// vector without forming the N-fold Kronecker product.
package qtensor

import "fmt"

/*
TensorPower applies op ⊗ op ⊗ ... ⊗ op to state vectors. It holds no state
between calls besides its Executor, so one TensorPower can serve concurrent
callers as long as the Executor can.
*/
type TensorPower struct {
	exec Executor
}

// Option configures a TensorPower.
type Option func(*TensorPower)

// WithExecutor selects the backend used for the permutation, multiply and
// finalize passes.
func WithExecutor(exec Executor) Option {
	return func(tp *TensorPower) {
		if exec != nil {
			tp.exec = exec
		}
	}
}

func NewTensorPower(opts ...Option) *TensorPower {
	tp := &TensorPower{
		exec: NewGroupExecutor(0, DefaultMinChunk),
	}

	for _, opt := range opts {
		opt(tp)
	}

	return tp
}

var defaultTensorPower = NewTensorPower()

// Apply runs the default TensorPower.
func Apply(op Operator, state []float64) ([]float64, error) {
	return defaultTensorPower.Apply(op, state)
}

/*
ApplyRows validates rows as a 2x2 operator before looking at state, so a
malformed operator is reported even when the state is malformed too.
*/
func (tp *TensorPower) ApplyRows(rows [][]float64, state []float64) ([]float64, error) {
	op, err := NewOperator(rows)
	if err != nil {
		return nil, err
	}
	return tp.Apply(op, state)
}

/*
Apply returns a new vector holding the action of the N-fold tensor power of op
on state, where len(state) == 2^N. state is not modified.

Each axis i is moved onto bit 0 by the BitSwap0 permutation, after which the
buffer is a run of adjacent pairs that all get multiplied by op. Once all N
axes are done, reading the pairs out column by column puts the axes back in
natural order.
*/
func (tp *TensorPower) Apply(op Operator, state []float64) ([]float64, error) {
	rank, err := Rank(len(state))
	if err != nil {
		return nil, err
	}

	current := make([]float64, len(state))
	copy(current, state)

	if rank == 0 {
		return current, nil
	}

	scratch := make([]float64, len(state))
	half := len(state) >> 1

	for axis := range rank {
		if err := tp.exec.ParallelFor(len(state), func(lo, hi int) {
			permute(current, scratch, axis, lo, hi)
		}); err != nil {
			return nil, fmt.Errorf("axis %d permutation: %w", axis, err)
		}

		if err := tp.exec.ParallelFor(half, func(lo, hi int) {
			multiply(op, scratch, current, lo, hi)
		}); err != nil {
			return nil, fmt.Errorf("axis %d multiply: %w", axis, err)
		}
	}

	if err := tp.exec.ParallelFor(len(state), func(lo, hi int) {
		finalize(current, scratch, half, lo, hi)
	}); err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	return scratch, nil
}

// permute fills dst[j] = src[BitSwap0(axis, j)] for j in [lo, hi).
func permute(src, dst []float64, axis, lo, hi int) {
	for j := lo; j < hi; j++ {
		dst[j] = src[BitSwap0(axis, j)]
	}
}

// multiply runs op over the pairs (src[2c], src[2c+1]) for c in [lo, hi).
func multiply(op Operator, src, dst []float64, lo, hi int) {
	for c := lo; c < hi; c++ {
		a, b := src[2*c], src[2*c+1]
		dst[2*c] = a*op[0][0] + b*op[1][0]
		dst[2*c+1] = a*op[0][1] + b*op[1][1]
	}
}

// finalize reads the pair matrix column-major: dst[k*half+c] = src[2c+k].
func finalize(src, dst []float64, half, lo, hi int) {
	for j := lo; j < hi; j++ {
		dst[j] = src[2*(j%half)+j/half]
	}
}
