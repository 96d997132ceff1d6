package preprocessing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// 未知カテゴリの扱い
const (
	// HandleUnknownIgnore は未知カテゴリを全てゼロのインジケータとして符号化する
	HandleUnknownIgnore = "ignore"
	// HandleUnknownError は未知カテゴリをデータエラーとする
	HandleUnknownError = "error"
)

// OneHotEncoder はscikit-learn互換のOne-Hotエンコーダ
// 学習時に観測したカテゴリごとに 0/1 のインジケータ列を作る
type OneHotEncoder struct {
	// HandleUnknown は "ignore" または "error"
	HandleUnknown string
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder(handleUnknown string) *OneHotEncoder {
	return &OneHotEncoder{HandleUnknown: handleUnknown}
}

// CategoryStatistics は列ごとのカテゴリ語彙 (昇順)
type CategoryStatistics struct {
	Columns    []string
	Categories [][]string
}

func (s *CategoryStatistics) String() string {
	parts := make([]string, len(s.Columns))
	for i, name := range s.Columns {
		parts[i] = fmt.Sprintf("%s=%q", name, s.Categories[i])
	}
	return "categories: " + strings.Join(parts, ", ")
}

// Width は符号化後の列数を返す
func (s *CategoryStatistics) Width() int {
	n := 0
	for _, cats := range s.Categories {
		n += len(cats)
	}
	return n
}

// Name implements Stage.
func (e *OneHotEncoder) Name() string {
	return "one_hot_encoder"
}

// Fit は列ごとの語彙を学習する。欠損値は補完済みでなければならない
func (e *OneHotEncoder) Fit(cols []Column) (Statistics, error) {
	const op = "OneHotEncoder.Fit"
	if e.HandleUnknown != HandleUnknownIgnore && e.HandleUnknown != HandleUnknownError {
		return nil, errors.NewConfigurationError(op,
			errors.NewValidationError("handle_unknown", "must be ignore or error", e.HandleUnknown))
	}
	if _, err := checkRows(op, cols); err != nil {
		return nil, err
	}

	stats := &CategoryStatistics{
		Columns:    columnNames(cols),
		Categories: make([][]string, len(cols)),
	}
	for j, c := range cols {
		if c.Kind != Categorical {
			return nil, errors.NewConfigurationError(op, errors.Newf("column %q is not categorical", c.Name))
		}
		seen := make(map[string]struct{})
		for i, v := range c.Text {
			if v == "" {
				return nil, errors.NewDataError(op, errors.Newf("column %q row %d is missing; impute before encoding", c.Name, i+1))
			}
			seen[v] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		stats.Categories[j] = cats
	}
	return stats, nil
}

// Apply は各カテゴリ列をインジケータ列 "<列名>_<カテゴリ>" に展開する
//
// 学習時に無かったカテゴリは HandleUnknown が "ignore" なら全てゼロの行になり、
// 列ごとに1回 UnknownCategoryWarning を発生させる。
func (e *OneHotEncoder) Apply(cols []Column, stats Statistics) ([]Column, error) {
	const op = "OneHotEncoder.Apply"
	s, err := statsOf[*CategoryStatistics](op, stats)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(op, s.Columns, cols); err != nil {
		return nil, err
	}

	out := make([]Column, 0, s.Width())
	for j, c := range cols {
		if c.Kind != Categorical {
			return nil, errors.NewConfigurationError(op, errors.Newf("column %q is not categorical", c.Name))
		}
		cats := s.Categories[j]
		position := make(map[string]int, len(cats))
		indicators := make([][]float64, len(cats))
		for k, cat := range cats {
			position[cat] = k
			indicators[k] = make([]float64, len(c.Text))
		}

		var unknown []string
		seenUnknown := make(map[string]struct{})
		for i, v := range c.Text {
			k, ok := position[v]
			if !ok {
				if e.HandleUnknown == HandleUnknownError {
					return nil, errors.NewDataError(op, errors.Newf("column %q row %d: unknown category %q", c.Name, i+1, v))
				}
				if _, dup := seenUnknown[v]; !dup {
					seenUnknown[v] = struct{}{}
					unknown = append(unknown, v)
				}
				continue
			}
			indicators[k][i] = 1
		}
		if len(unknown) > 0 {
			errors.Warn(errors.NewUnknownCategoryWarning(c.Name, unknown))
		}

		for k, cat := range cats {
			out = append(out, NumericColumn(c.Name+"_"+cat, indicators[k]))
		}
	}
	return out, nil
}
