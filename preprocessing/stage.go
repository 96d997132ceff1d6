// Package preprocessing はscikit-learn互換の前処理変換器を提供する。
//
// 各変換器は Stage インターフェースを実装し、Fit で学習した統計量
// (Statistics) を返し、Apply でその統計量だけを使って列を変換する。
// 統計量は変換器の外に保持されるため、学習済みのプランは読み取り専用のまま
// 何度でも適用できる。
package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// ColumnKind は列の意味的な種類を表す
type ColumnKind string

const (
	// Numeric は数値列。欠損値は NaN で表す
	Numeric ColumnKind = "numeric"
	// Categorical はカテゴリ列。欠損値は空文字列で表す
	Categorical ColumnKind = "categorical"
)

// Column は名前付きの1列分のデータ
type Column struct {
	Name   string
	Kind   ColumnKind
	Text   []string
	Values []float64
}

// NumericColumn は数値列を作成する
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Values: values}
}

// CategoricalColumn はカテゴリ列を作成する
func CategoricalColumn(name string, cells []string) Column {
	return Column{Name: name, Kind: Categorical, Text: cells}
}

// Len は列の行数を返す
func (c Column) Len() int {
	if c.Kind == Categorical {
		return len(c.Text)
	}
	return len(c.Values)
}

// IsMissing は i 行目が欠損かどうかを返す
func (c Column) IsMissing(i int) bool {
	if c.Kind == Categorical {
		return c.Text[i] == ""
	}
	return math.IsNaN(c.Values[i])
}

// Statistics は Stage が学習時に得た統計量
type Statistics interface {
	// String は統計量を人が読める形で返す
	String() string
}

// Stage は列のまとまりに対する学習・変換の1段階
type Stage interface {
	// Name は段階の名前 (例: "imputer", "scaler") を返す
	Name() string

	// Fit は学習データの列から統計量を学習する。列は変更しない
	Fit(cols []Column) (Statistics, error)

	// Apply は学習済みの統計量を使って列を変換する
	Apply(cols []Column, stats Statistics) ([]Column, error)
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// checkColumns は変換対象の列が学習時と同じ並びかを検証する
func checkColumns(op string, fitted []string, cols []Column) error {
	if len(cols) != len(fitted) {
		return errors.NewDimensionError(op, len(fitted), len(cols), 1)
	}
	for i, c := range cols {
		if c.Name != fitted[i] {
			return errors.NewConfigurationError(op,
				errors.Newf("column %d is %q, fitted on %q", i, c.Name, fitted[i]))
		}
	}
	return nil
}

// checkRows は全ての列が同じ行数かを検証し、その行数を返す
func checkRows(op string, cols []Column) (int, error) {
	if len(cols) == 0 {
		return 0, nil
	}
	n := cols[0].Len()
	for _, c := range cols[1:] {
		if c.Len() != n {
			return 0, errors.NewDimensionError(op, n, c.Len(), 0)
		}
	}
	return n, nil
}

// statsOf は統計量を期待する型に変換する
func statsOf[T Statistics](op string, stats Statistics) (T, error) {
	s, ok := stats.(T)
	if !ok {
		var zero T
		return zero, errors.NewConfigurationError(op, errors.Newf("unexpected statistics %T", stats))
	}
	return s, nil
}
