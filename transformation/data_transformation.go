package transformation

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/examprep/config"
	"github.com/YuminosukeSato/examprep/core/model"
	"github.com/YuminosukeSato/examprep/dataset"
	"github.com/YuminosukeSato/examprep/pkg/errors"
	"github.com/YuminosukeSato/examprep/pkg/log"
)

// TableLoader loads a table from a path.
type TableLoader interface {
	Load(path string) (dataset.Table, error)
}

// ObjectSaver persists an object at a path, creating parent directories.
type ObjectSaver interface {
	Save(path string, obj interface{}) error
}

// Result is the output of a transformation run.
type Result struct {
	// Train and Test are the transformed features with the target as the last column.
	Train *mat.Dense
	Test  *mat.Dense
	// PreprocessorPath is where the fitted plan was written.
	PreprocessorPath string
	// FeatureNames names the columns of Train and Test, target included.
	FeatureNames []string
}

// DataTransformation fits the plan on the training table, applies it to both
// tables and persists it.
type DataTransformation struct {
	cfg    config.Config
	loader TableLoader
	saver  ObjectSaver
	logger log.Logger
}

// Option configures a DataTransformation.
type Option func(*DataTransformation)

// WithLoader sets the table loader. Defaults to dataset.CSVLoader.
func WithLoader(l TableLoader) Option {
	return func(dt *DataTransformation) {
		dt.loader = l
	}
}

// WithSaver sets the object saver. Defaults to model.GobStore.
func WithSaver(s ObjectSaver) Option {
	return func(dt *DataTransformation) {
		dt.saver = s
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(dt *DataTransformation) {
		dt.logger = l
	}
}

// NewDataTransformation validates cfg and returns a DataTransformation.
func NewDataTransformation(cfg config.Config, opts ...Option) (*DataTransformation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapOperation("transformation.NewDataTransformation", err)
	}
	dt := &DataTransformation{
		cfg:    cfg,
		loader: dataset.CSVLoader{},
		saver:  model.GobStore{},
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(dt)
	}
	dt.logger = dt.logger.With(log.PhaseKey, log.PhasePreprocessing)
	return dt, nil
}

// InitiateDataTransformation loads the train and test tables and runs Transform.
//
// Example:
//
//	dt, _ := transformation.NewDataTransformation(config.Default())
//	res, err := dt.InitiateDataTransformation(ctx, "artifact/train.csv", "artifact/test.csv")
func (dt *DataTransformation) InitiateDataTransformation(ctx context.Context, trainPath, testPath string) (res *Result, err error) {
	const op = "DataTransformation.InitiateDataTransformation"
	defer func() {
		err = errors.WrapOperation(op, err,
			"train_path", trainPath,
			"test_path", testPath,
			"artifact_path", dt.cfg.PreprocessorPath(),
		)
	}()
	defer errors.Recover(&err, op)

	train, err := dt.loader.Load(trainPath)
	if err != nil {
		return nil, err
	}
	test, err := dt.loader.Load(testPath)
	if err != nil {
		return nil, err
	}
	dt.logger.Info("read train and test data completed",
		log.SamplesKey, train.NumRows(),
		"test_samples", test.NumRows(),
	)
	return dt.transform(ctx, train, test)
}

// Transform fits the plan on the training features only, applies it to both
// tables, appends the target and persists the plan. Nothing is written when
// any earlier step fails.
func (dt *DataTransformation) Transform(ctx context.Context, train, test dataset.Table) (res *Result, err error) {
	const op = "DataTransformation.Transform"
	defer func() {
		err = errors.WrapOperation(op, err, "artifact_path", dt.cfg.PreprocessorPath())
	}()
	defer errors.Recover(&err, op)

	return dt.transform(ctx, train, test)
}

func (dt *DataTransformation) transform(ctx context.Context, train, test dataset.Table) (*Result, error) {
	const op = "DataTransformation.Transform"
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trainX, trainY, err := splitTarget(op, train, dt.cfg.TargetColumn)
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}
	testX, testY, err := splitTarget(op, test, dt.cfg.TargetColumn)
	if err != nil {
		return nil, errors.Wrap(err, "test")
	}

	dt.logger.Info("columns identified",
		log.NumericalColumnsKey, dt.cfg.NumericalColumns,
		log.CategoricalColumnsKey, dt.cfg.CategoricalColumns,
		log.TargetColumnKey, dt.cfg.TargetColumn,
	)
	plan, err := BuildPlan(dt.cfg)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dt.logger.Info("applying preprocessing object",
		log.OperationKey, log.OperationFitTransform,
		log.SamplesKey, train.NumRows(),
	)
	trainM, err := plan.FitTransform(trainX)
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}
	testM, err := plan.Transform(testX)
	if err != nil {
		return nil, errors.Wrap(err, "test")
	}

	trainArr, err := appendTarget(op, trainM, trainY)
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}
	testArr, err := appendTarget(op, testM, testY)
	if err != nil {
		return nil, errors.Wrap(err, "test")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := dt.cfg.PreprocessorPath()
	if err := dt.saver.Save(path, plan); err != nil {
		return nil, err
	}
	_, width := trainArr.Dims()
	dt.logger.Info("saved preprocessing object",
		log.OperationKey, log.OperationPersist,
		log.ArtifactPathKey, path,
		log.FeaturesKey, width,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Train:            trainArr,
		Test:             testArr,
		PreprocessorPath: path,
		FeatureNames:     append(plan.OutputNames(), dt.cfg.TargetColumn),
	}, nil
}

// splitTarget separates the target column from the features.
// An absent target column is a configuration error; missing or non-numeric
// target values are data errors.
func splitTarget(op string, t dataset.Table, target string) (dataset.Table, []float64, error) {
	if !t.Has(target) {
		return dataset.Table{}, nil, errors.NewConfigurationError(op, errors.Wrapf(errors.ErrMissingColumn, "target %q", target))
	}
	y, err := t.Float(target)
	if err != nil {
		return dataset.Table{}, nil, err
	}
	if err := errors.CheckValues(op, y); err != nil {
		return dataset.Table{}, nil, errors.Wrapf(err, "target %q has missing values", target)
	}
	x, err := t.Drop(target)
	if err != nil {
		return dataset.Table{}, nil, err
	}
	return x, y, nil
}

func appendTarget(op string, x *mat.Dense, y []float64) (*mat.Dense, error) {
	r, c := x.Dims()
	if len(y) != r {
		return nil, errors.NewDimensionError(op, r, len(y), 0)
	}
	var out mat.Dense
	out.Augment(x, mat.NewDense(r, 1, y))
	if err := errors.CheckMatrix(op, &out, r, c+1); err != nil {
		return nil, err
	}
	return &out, nil
}
