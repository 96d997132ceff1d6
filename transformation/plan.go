// Package transformation builds, fits, applies and persists the feature
// preprocessing plan for the student performance dataset.
package transformation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/examprep/config"
	"github.com/YuminosukeSato/examprep/core/model"
	"github.com/YuminosukeSato/examprep/dataset"
	"github.com/YuminosukeSato/examprep/pkg/errors"
	"github.com/YuminosukeSato/examprep/preprocessing"
)

// Branch names of the plan, in output order.
const (
	NumericBranch     = "num_pipeline"
	CategoricalBranch = "cat_pipeline"
)

// BuildPlan returns an unfit plan for the column roles in cfg.
// It does not touch any data.
//
//	num_pipeline: median imputation, then standard scaling
//	cat_pipeline: most frequent imputation, one-hot encoding, then scaling without centering
func BuildPlan(cfg config.Config) (*preprocessing.ColumnTransformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var branches []*preprocessing.Branch
	if len(cfg.NumericalColumns) > 0 {
		branches = append(branches, &preprocessing.Branch{
			Name:    NumericBranch,
			Columns: append([]string(nil), cfg.NumericalColumns...),
			Kind:    preprocessing.Numeric,
			Pipeline: preprocessing.NewPipeline(
				preprocessing.NewSimpleImputer(preprocessing.StrategyMedian),
				preprocessing.NewStandardScaler(true, true),
			),
		})
	}
	if len(cfg.CategoricalColumns) > 0 {
		branches = append(branches, &preprocessing.Branch{
			Name:    CategoricalBranch,
			Columns: append([]string(nil), cfg.CategoricalColumns...),
			Kind:    preprocessing.Categorical,
			Pipeline: preprocessing.NewPipeline(
				preprocessing.NewSimpleImputer(preprocessing.StrategyMostFrequent),
				preprocessing.NewOneHotEncoder(preprocessing.HandleUnknownIgnore),
				preprocessing.NewStandardScaler(false, true),
			),
		})
	}
	return preprocessing.NewColumnTransformer(branches...), nil
}

// LoadPlan decodes a plan persisted by DataTransformation.
// The returned plan is fit and must not be refit.
func LoadPlan(path string) (plan *preprocessing.ColumnTransformer, err error) {
	const op = "transformation.LoadPlan"
	defer func() { err = errors.WrapOperation(op, err, "plan_path", path) }()
	defer errors.Recover(&err, op)

	var ct preprocessing.ColumnTransformer
	if err := (model.GobStore{}).Load(path, &ct); err != nil {
		return nil, err
	}
	if !ct.IsFitted() {
		return nil, errors.NewDataError(op, errors.Newf("%s does not contain a fitted plan", path))
	}
	return &ct, nil
}

// ApplyPlan transforms a feature table with a fitted plan. Columns named in
// drop are removed first when present, so a table that still carries the
// target can be passed as is.
func ApplyPlan(plan *preprocessing.ColumnTransformer, table dataset.Table, drop ...string) (m *mat.Dense, err error) {
	const op = "transformation.ApplyPlan"
	defer func() { err = errors.WrapOperation(op, err, "rows", table.NumRows()) }()
	defer errors.Recover(&err, op)

	if plan == nil {
		return nil, errors.NewConfigurationError(op, errors.New("nil plan"))
	}
	var present []string
	for _, name := range drop {
		if table.Has(name) {
			present = append(present, name)
		}
	}
	features, err := table.Drop(present...)
	if err != nil {
		return nil, err
	}
	m, err = plan.Transform(features)
	if err != nil {
		return nil, err
	}
	r, c := m.Dims()
	if err := errors.CheckMatrix(op, m, r, c); err != nil {
		return nil, err
	}
	return m, nil
}
