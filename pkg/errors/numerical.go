package errors

import (
	"math"
)

// maxReportedValues は CheckMatrix がエラーメッセージに含める値の上限です。
const maxReportedValues = 5

// CheckValues は値に NaN または Inf が含まれていればデータエラーを返します。
func CheckValues(op string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewDataError(op, Newf("non-finite value %v at index %d", v, i))
		}
	}
	return nil
}

// CheckMatrix は行列の全要素を検査し、NaN または Inf があればデータエラーを返します。
func CheckMatrix(op string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	type cell struct{ row, col int }
	var bad []cell
	var first float64

	for i := 0; i < rows && len(bad) < maxReportedValues; i++ {
		for j := 0; j < cols && len(bad) < maxReportedValues; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if len(bad) == 0 {
					first = v
				}
				bad = append(bad, cell{i, j})
			}
		}
	}

	if len(bad) > 0 {
		return NewDataError(op, Newf("non-finite value %v at row %d, column %d (%d cell(s) reported)",
			first, bad[0].row, bad[0].col, len(bad)))
	}
	return nil
}
