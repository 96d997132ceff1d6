package preprocessing

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/examprep/core/model"
	"github.com/YuminosukeSato/examprep/dataset"
	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// Branch は列の部分集合に1つの Pipeline を割り当てる
type Branch struct {
	Name     string
	Columns  []string
	Kind     ColumnKind
	Pipeline *Pipeline
	// Outputs は学習後の出力列名
	Outputs []string
}

// ColumnTransformer はscikit-learn互換の列変換器
// 各 Branch の出力を宣言順に横に連結する。学習後は読み取り専用として扱う
type ColumnTransformer struct {
	Branches []*Branch
	// InputColumns は学習時に宣言された全ての入力列
	InputColumns []string
	// OutputColumns は連結後の出力列名
	OutputColumns []string
	State         *model.StateManager
}

// NewColumnTransformer は新しいColumnTransformerを作成する
//
// 使用例:
//
//	ct := preprocessing.NewColumnTransformer(
//	    &preprocessing.Branch{Name: "num_pipeline", Columns: numeric, Kind: preprocessing.Numeric, Pipeline: num},
//	    &preprocessing.Branch{Name: "cat_pipeline", Columns: categorical, Kind: preprocessing.Categorical, Pipeline: cat},
//	)
func NewColumnTransformer(branches ...*Branch) *ColumnTransformer {
	return &ColumnTransformer{
		Branches: branches,
		State:    model.NewStateManager(),
	}
}

// IsFitted は学習済みかどうかを返す
func (ct *ColumnTransformer) IsFitted() bool {
	return ct.State != nil && ct.State.IsFitted()
}

// OutputNames は出力列名のコピーを返す。未学習なら nil
func (ct *ColumnTransformer) OutputNames() []string {
	if !ct.IsFitted() {
		return nil
	}
	return append([]string(nil), ct.OutputColumns...)
}

// Fit は学習データの特徴量テーブルで全ての Branch を学習する
//
// テーブルの列は宣言された列とちょうど一致しなければならない。
// 宣言された列が無い、またはどの Branch にも属さない列がある場合は設定エラー。
func (ct *ColumnTransformer) Fit(t dataset.Table) error {
	_, err := ct.FitTransform(t)
	return err
}

// FitTransform は学習と変換を一度に行う
func (ct *ColumnTransformer) FitTransform(t dataset.Table) (*mat.Dense, error) {
	const op = "ColumnTransformer.Fit"
	if ct.State != nil {
		ct.State.Reset()
	}
	inputs, err := ct.declaredColumns(op)
	if err != nil {
		return nil, err
	}
	if err := checkTable(op, inputs, t); err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return nil, errors.NewDataError(op, errors.ErrEmptyData)
	}

	blocks := make([][]Column, len(ct.Branches))
	outputs := make([][]string, len(ct.Branches))
	for i, b := range ct.Branches {
		cols, err := extract(op, t, b)
		if err != nil {
			return nil, err
		}
		out, err := b.Pipeline.Fit(cols)
		if err != nil {
			return nil, errors.Wrapf(err, "branch %s", b.Name)
		}
		blocks[i] = out
		outputs[i] = columnNames(out)
	}

	var names []string
	for i, b := range ct.Branches {
		b.Outputs = outputs[i]
		names = append(names, outputs[i]...)
	}
	ct.InputColumns = inputs
	ct.OutputColumns = names
	if ct.State == nil {
		ct.State = model.NewStateManager()
	}
	ct.State.SetFitted(len(names), t.NumRows())

	return assemble(op, blocks, t.NumRows())
}

// Transform は学習済みの統計量だけを使ってテーブルを変換する
// 出力の列数は常に学習時と同じ
func (ct *ColumnTransformer) Transform(t dataset.Table) (*mat.Dense, error) {
	const op = "ColumnTransformer.Transform"
	state := ct.State
	if state == nil {
		state = model.NewStateManager()
	}
	if err := state.RequireFitted("ColumnTransformer", "Transform"); err != nil {
		return nil, err
	}
	if err := checkTable(op, ct.InputColumns, t); err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return nil, errors.NewDataError(op, errors.ErrEmptyData)
	}

	blocks := make([][]Column, len(ct.Branches))
	for i, b := range ct.Branches {
		cols, err := extract(op, t, b)
		if err != nil {
			return nil, err
		}
		out, err := b.Pipeline.Apply(cols)
		if err != nil {
			return nil, errors.Wrapf(err, "branch %s", b.Name)
		}
		blocks[i] = out
	}

	m, err := assemble(op, blocks, t.NumRows())
	if err != nil {
		return nil, err
	}
	if _, c := m.Dims(); c != len(ct.OutputColumns) {
		return nil, errors.NewDimensionError(op, len(ct.OutputColumns), c, 1)
	}
	return m, nil
}

// String は Branch と Stage の構成、学習済みの統計量を返す
func (ct *ColumnTransformer) String() string {
	var b strings.Builder
	state := "unfit"
	if ct.IsFitted() {
		nFeatures, nSamples := ct.State.GetDimensions()
		state = fmt.Sprintf("fit on %d samples, %d output features", nSamples, nFeatures)
	}
	fmt.Fprintf(&b, "ColumnTransformer (%s)\n", state)
	for _, br := range ct.Branches {
		fmt.Fprintf(&b, "%s (%s): %s\n", br.Name, br.Kind, strings.Join(br.Columns, ", "))
		b.WriteString(br.Pipeline.String())
	}
	return b.String()
}

// declaredColumns は Branch の列を宣言順に返す。重複は設定エラー
func (ct *ColumnTransformer) declaredColumns(op string) ([]string, error) {
	if len(ct.Branches) == 0 {
		return nil, errors.NewConfigurationError(op, errors.New("no branches configured"))
	}
	seen := make(map[string]string)
	var all []string
	for _, b := range ct.Branches {
		if b.Pipeline == nil {
			return nil, errors.NewConfigurationError(op, errors.Newf("branch %s has no pipeline", b.Name))
		}
		if b.Kind != Numeric && b.Kind != Categorical {
			return nil, errors.NewConfigurationError(op, errors.Newf("branch %s has unknown kind %q", b.Name, b.Kind))
		}
		for _, c := range b.Columns {
			if other, dup := seen[c]; dup {
				return nil, errors.NewConfigurationError(op,
					errors.Newf("column %q is assigned to both %s and %s", c, other, b.Name))
			}
			seen[c] = b.Name
			all = append(all, c)
		}
	}
	return all, nil
}

// checkTable はテーブルの列集合が宣言と一致するかを検証する
func checkTable(op string, declared []string, t dataset.Table) error {
	want := make(map[string]bool, len(declared))
	for _, c := range declared {
		want[c] = true
		if !t.Has(c) {
			return errors.NewConfigurationError(op, errors.Wrapf(errors.ErrMissingColumn, "%q", c))
		}
	}
	var extra []string
	for _, c := range t.Header() {
		if !want[c] {
			extra = append(extra, c)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return errors.NewConfigurationError(op,
			errors.Newf("columns %q are not assigned to any branch", extra))
	}
	return nil
}

// extract は Branch の種類に応じてテーブルから列を取り出す
func extract(op string, t dataset.Table, b *Branch) ([]Column, error) {
	cols := make([]Column, len(b.Columns))
	for i, name := range b.Columns {
		if b.Kind == Numeric {
			values, err := t.Float(name)
			if err != nil {
				return nil, err
			}
			cols[i] = NumericColumn(name, values)
			continue
		}
		cells, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		for j, v := range cells {
			if dataset.IsMissing(v) {
				cells[j] = ""
			}
		}
		cols[i] = CategoricalColumn(name, cells)
	}
	return cols, nil
}

// assemble は Branch の出力を横に連結して行列にする
func assemble(op string, blocks [][]Column, rows int) (*mat.Dense, error) {
	var width int
	for _, cols := range blocks {
		width += len(cols)
	}
	if width == 0 {
		return nil, errors.NewDataError(op, errors.New("transformation produced no columns"))
	}

	m := mat.NewDense(rows, width, nil)
	j := 0
	for _, cols := range blocks {
		for _, c := range cols {
			if c.Kind != Numeric {
				return nil, errors.NewConfigurationError(op,
					errors.Newf("column %q is not numeric after its pipeline", c.Name))
			}
			if len(c.Values) != rows {
				return nil, errors.NewDimensionError(op, rows, len(c.Values), 0)
			}
			m.SetCol(j, c.Values)
			j++
		}
	}
	return m, nil
}
