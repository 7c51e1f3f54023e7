package qtensor

/*
Operator is the 2x2 matrix applied to every axis of a state.

The entry op[r][k] is the weight with which input bit value r feeds output bit
value k, so a single axis is updated as out[k] = in[0]*op[0][k] + in[1]*op[1][k].
This is the convention of a confusion matrix whose rows are the true outcome
and whose columns are the measured one. In column-vector notation the full
action is (opᵀ ⊗ ... ⊗ opᵀ)·state; callers holding a column-vector matrix
should pass its Transpose.
*/
type Operator [2][2]float64

// NewOperator validates rows as a 2x2 matrix and copies it into an Operator.
func NewOperator(rows [][]float64) (Operator, error) {
	var op Operator

	if len(rows) != 2 {
		return op, &OperatorError{Rows: len(rows), Row: -1}
	}

	for r, row := range rows {
		if len(row) != 2 {
			return op, &OperatorError{Rows: len(rows), Cols: len(row), Row: r}
		}
		op[r][0], op[r][1] = row[0], row[1]
	}

	return op, nil
}

// Identity returns the 2x2 identity.
func Identity() Operator {
	return Operator{{1, 0}, {0, 1}}
}

func (op Operator) Transpose() Operator {
	return Operator{
		{op[0][0], op[1][0]},
		{op[0][1], op[1][1]},
	}
}

func (op Operator) Scale(c float64) Operator {
	return Operator{
		{c * op[0][0], c * op[0][1]},
		{c * op[1][0], c * op[1][1]},
	}
}

// Mul returns the matrix product op·other.
func (op Operator) Mul(other Operator) Operator {
	var out Operator
	for r := range 2 {
		for k := range 2 {
			out[r][k] = op[r][0]*other[0][k] + op[r][1]*other[1][k]
		}
	}
	return out
}

// Rows returns the operator as a freshly allocated [][]float64.
func (op Operator) Rows() [][]float64 {
	return [][]float64{
		{op[0][0], op[0][1]},
		{op[1][0], op[1][1]},
	}
}
