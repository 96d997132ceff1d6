package preprocessing

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// minScale を下回る標準偏差は1として扱う（ゼロ除算を避ける）
const minScale = 1e-8

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
type StandardScaler struct {
	// WithMean は平均を引くかどうか
	WithMean bool

	// WithStd は標準偏差で割るかどうか
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// パラメータ:
//   - withMean: 平均を引くかどうか
//   - withStd: 標準偏差で割るかどうか
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	stats, err := scaler.Fit(cols)
//	scaled, err := scaler.Apply(cols, stats)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// ScaleStatistics は列ごとの平均と尺度
type ScaleStatistics struct {
	Columns []string
	// Mean は各列の平均値。WithMean が false でも記録する
	Mean []float64
	// Variance は各列の母分散
	Variance []float64
	// Scale は各列の除数。WithStd が false なら 1
	Scale    []float64
	NSamples int
}

func (s *ScaleStatistics) String() string {
	parts := make([]string, len(s.Columns))
	for i, name := range s.Columns {
		parts[i] = fmt.Sprintf("%s(mean=%.6g, scale=%.6g)", name, s.Mean[i], s.Scale[i])
	}
	return fmt.Sprintf("n_samples=%d: %s", s.NSamples, strings.Join(parts, ", "))
}

// Name implements Stage.
func (s *StandardScaler) Name() string {
	return "scaler"
}

// Fit は訓練データから統計情報（平均、母分散）を計算する
//
// 分散は WithMean の設定に関わらず平均の周りで計算する。
// NaN を含む列はデータエラーになるため、補完を先に行うこと。
func (s *StandardScaler) Fit(cols []Column) (Statistics, error) {
	const op = "StandardScaler.Fit"
	n, err := checkRows(op, cols)
	if err != nil {
		return nil, err
	}
	if n == 0 || len(cols) == 0 {
		return nil, errors.NewDataError(op, errors.ErrEmptyData)
	}

	stats := &ScaleStatistics{
		Columns:  columnNames(cols),
		Mean:     make([]float64, len(cols)),
		Variance: make([]float64, len(cols)),
		Scale:    make([]float64, len(cols)),
		NSamples: n,
	}
	for j, c := range cols {
		if c.Kind != Numeric {
			return nil, errors.NewConfigurationError(op, errors.Newf("column %q is not numeric", c.Name))
		}
		if err := errors.CheckValues(op, c.Values); err != nil {
			return nil, errors.Wrapf(err, "column %q", c.Name)
		}

		mean, variance := stat.PopMeanVariance(c.Values, nil)
		stats.Mean[j] = mean
		stats.Variance[j] = variance

		stats.Scale[j] = 1.0
		if s.WithStd {
			scale := math.Sqrt(variance)
			if math.Abs(scale) >= minScale {
				stats.Scale[j] = scale
			}
		}
	}
	return stats, nil
}

// Apply は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Apply(cols []Column, stats Statistics) ([]Column, error) {
	const op = "StandardScaler.Apply"
	st, err := statsOf[*ScaleStatistics](op, stats)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(op, st.Columns, cols); err != nil {
		return nil, err
	}

	out := make([]Column, len(cols))
	for j, c := range cols {
		if c.Kind != Numeric {
			return nil, errors.NewConfigurationError(op, errors.Newf("column %q is not numeric", c.Name))
		}
		if err := errors.CheckValues(op, c.Values); err != nil {
			return nil, errors.Wrapf(err, "column %q", c.Name)
		}

		mean := 0.0
		if s.WithMean {
			mean = st.Mean[j]
		}
		scaled := make([]float64, len(c.Values))
		for i, v := range c.Values {
			scaled[i] = (v - mean) / st.Scale[j]
		}
		out[j] = NumericColumn(c.Name, scaled)
	}
	return out, nil
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
}
