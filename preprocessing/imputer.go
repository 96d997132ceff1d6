package preprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// 欠損値補完の戦略
const (
	StrategyMedian       = "median"
	StrategyMostFrequent = "most_frequent"
)

// SimpleImputer はscikit-learn互換の欠損値補完器
// 学習データの中央値または最頻値で欠損を埋める
type SimpleImputer struct {
	// Strategy は "median" または "most_frequent"
	Strategy string
}

// NewSimpleImputer は新しいSimpleImputerを作成する
//
// 使用例:
//
//	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)
func NewSimpleImputer(strategy string) *SimpleImputer {
	return &SimpleImputer{Strategy: strategy}
}

// FillValue は1列分の補完値
type FillValue struct {
	Number float64
	Text   string
}

// ImputeStatistics はSimpleImputerが学習した列ごとの補完値
type ImputeStatistics struct {
	Strategy string
	Columns  []string
	Kinds    []ColumnKind
	Fill     []FillValue
}

func (s *ImputeStatistics) String() string {
	parts := make([]string, len(s.Columns))
	for i, name := range s.Columns {
		if s.Kinds[i] == Categorical {
			parts[i] = fmt.Sprintf("%s=%q", name, s.Fill[i].Text)
		} else {
			parts[i] = fmt.Sprintf("%s=%s", name, strconv.FormatFloat(s.Fill[i].Number, 'g', -1, 64))
		}
	}
	return fmt.Sprintf("%s: %s", s.Strategy, strings.Join(parts, ", "))
}

// Name implements Stage.
func (imp *SimpleImputer) Name() string {
	return "imputer"
}

// Fit は列ごとの補完値を学習する
//
// median は欠損でない値の中央値 (偶数個なら中央2値の平均)、
// most_frequent は最頻値 (同数の場合は最小の値) を用いる。
// 観測値が1つも無い列はデータエラーになる。
func (imp *SimpleImputer) Fit(cols []Column) (Statistics, error) {
	const op = "SimpleImputer.Fit"
	if imp.Strategy != StrategyMedian && imp.Strategy != StrategyMostFrequent {
		return nil, errors.NewConfigurationError(op,
			errors.NewValidationError("strategy", "must be median or most_frequent", imp.Strategy))
	}
	if _, err := checkRows(op, cols); err != nil {
		return nil, err
	}

	stats := &ImputeStatistics{
		Strategy: imp.Strategy,
		Columns:  columnNames(cols),
		Kinds:    make([]ColumnKind, len(cols)),
		Fill:     make([]FillValue, len(cols)),
	}
	for j, c := range cols {
		stats.Kinds[j] = c.Kind
		fill, err := imp.fitColumn(op, c)
		if err != nil {
			return nil, err
		}
		stats.Fill[j] = fill
	}
	return stats, nil
}

func (imp *SimpleImputer) fitColumn(op string, c Column) (FillValue, error) {
	if c.Kind == Categorical {
		if imp.Strategy == StrategyMedian {
			return FillValue{}, errors.NewConfigurationError(op,
				errors.Newf("median strategy requires a numeric column, %q is categorical", c.Name))
		}
		observed := make([]string, 0, len(c.Text))
		for _, v := range c.Text {
			if v != "" {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return FillValue{}, errors.NewDataError(op, errors.Newf("column %q has no observed values", c.Name))
		}
		return FillValue{Text: mostFrequent(observed)}, nil
	}

	observed := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return FillValue{}, errors.NewDataError(op, errors.Newf("column %q has no observed values", c.Name))
	}

	if imp.Strategy == StrategyMedian {
		return FillValue{Number: median(observed)}, nil
	}
	keys := make([]string, len(observed))
	for i, v := range observed {
		keys[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	mode, _ := strconv.ParseFloat(mostFrequentBy(keys, func(a, b string) bool {
		x, _ := strconv.ParseFloat(a, 64)
		y, _ := strconv.ParseFloat(b, 64)
		return x < y
	}), 64)
	return FillValue{Number: mode}, nil
}

// Apply は学習済みの補完値で欠損を埋めた新しい列を返す
func (imp *SimpleImputer) Apply(cols []Column, stats Statistics) ([]Column, error) {
	const op = "SimpleImputer.Apply"
	s, err := statsOf[*ImputeStatistics](op, stats)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(op, s.Columns, cols); err != nil {
		return nil, err
	}

	out := make([]Column, len(cols))
	for j, c := range cols {
		if c.Kind != s.Kinds[j] {
			return nil, errors.NewConfigurationError(op,
				errors.Newf("column %q is %s, fitted as %s", c.Name, c.Kind, s.Kinds[j]))
		}
		if c.Kind == Categorical {
			filled := make([]string, len(c.Text))
			for i, v := range c.Text {
				if v == "" {
					v = s.Fill[j].Text
				}
				filled[i] = v
			}
			out[j] = CategoricalColumn(c.Name, filled)
			continue
		}
		filled := make([]float64, len(c.Values))
		for i, v := range c.Values {
			if math.IsNaN(v) {
				v = s.Fill[j].Number
			}
			filled[i] = v
		}
		out[j] = NumericColumn(c.Name, filled)
	}
	return out, nil
}

// median は空でないスライスの中央値を返す。入力は変更しない
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mostFrequent は最頻値を返す。同数の場合は辞書順で最小の値
func mostFrequent(values []string) string {
	return mostFrequentBy(values, func(a, b string) bool { return a < b })
}

func mostFrequentBy(values []string, less func(a, b string) bool) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	var best string
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && less(v, best)) {
			best, bestCount = v, n
		}
	}
	return best
}
