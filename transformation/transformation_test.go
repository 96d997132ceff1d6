package transformation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/examprep/config"
	"github.com/YuminosukeSato/examprep/dataset"
	"github.com/YuminosukeSato/examprep/pkg/errors"
	"github.com/YuminosukeSato/examprep/pkg/log"
	"github.com/YuminosukeSato/examprep/preprocessing"
)

const header = "gender,race_ethnicity,parental_level_of_education,lunch,test_preparation_course,math_score,reading_score,writing_score\n"

const trainCSV = header +
	"female,group B,bachelor's degree,standard,none,72,72,74\n" +
	"female,group C,some college,standard,completed,69,90,\n" +
	"male,group A,associate's degree,free/reduced,none,47,57,44\n" +
	"male,group C,some college,standard,none,76,78,75\n"

const testCSV = header +
	"female,group E,master's degree,free/reduced,completed,88,95,92\n" +
	"male,group B,some college,standard,none,40,43,39\n"

func readTable(t *testing.T, body string) dataset.Table {
	t.Helper()
	table, err := dataset.CSVLoader{}.Read(strings.NewReader(body))
	require.NoError(t, err)
	return table
}

type recordingSaver struct {
	calls int
	path  string
	obj   interface{}
	err   error
}

func (s *recordingSaver) Save(path string, obj interface{}) error {
	s.calls++
	s.path = path
	s.obj = obj
	return s.err
}

type panickingSaver struct{}

func (panickingSaver) Save(string, interface{}) error {
	panic("disk exploded")
}

func TestBuildPlan(t *testing.T) {
	plan, err := BuildPlan(config.Default())
	require.NoError(t, err)
	require.Len(t, plan.Branches, 2)

	num, cat := plan.Branches[0], plan.Branches[1]
	assert.Equal(t, NumericBranch, num.Name)
	assert.Equal(t, []string{"writing_score", "reading_score"}, num.Columns)
	require.Len(t, num.Pipeline.Stages, 2)
	assert.Equal(t, preprocessing.NewSimpleImputer(preprocessing.StrategyMedian), num.Pipeline.Stages[0])
	assert.Equal(t, preprocessing.NewStandardScaler(true, true), num.Pipeline.Stages[1])

	assert.Equal(t, CategoricalBranch, cat.Name)
	require.Len(t, cat.Pipeline.Stages, 3)
	assert.Equal(t, preprocessing.NewOneHotEncoder(preprocessing.HandleUnknownIgnore), cat.Pipeline.Stages[1])
	assert.Equal(t, preprocessing.NewStandardScaler(false, true), cat.Pipeline.Stages[2])
	assert.False(t, plan.IsFitted())

	_, err = BuildPlan(config.Default(config.WithColumns([]string{"gender"}, []string{"gender"})))
	assert.Equal(t, errors.KindConfiguration, errors.KindOf(err))
}

func TestTransform_EndToEnd(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	saver := &recordingSaver{}
	dt, err := NewDataTransformation(config.Default(), WithSaver(saver), WithLogger(logger))
	require.NoError(t, err)

	res, err := dt.Transform(context.Background(), readTable(t, trainCSV), readTable(t, testCSV))
	require.NoError(t, err)

	// 2 numeric + gender(2) + race(3) + parental(3) + lunch(2) + prep(2) + target
	r, c := res.Train.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 15, c)
	_, testWidth := res.Test.Dims()
	assert.Equal(t, c, testWidth, "train and test must have the same width")
	assert.Len(t, res.FeatureNames, c)
	assert.Equal(t, "math_score", res.FeatureNames[c-1])
	assert.Equal(t, "gender_female", res.FeatureNames[2])

	assert.Equal(t, []float64{72, 69, 47, 76}, mat.Col(nil, c-1, res.Train))
	assert.Equal(t, []float64{88, 40}, mat.Col(nil, c-1, res.Test))

	require.Equal(t, 1, saver.calls)
	assert.Equal(t, filepath.Join("artifact", "preprocessor.gob"), saver.path)
	assert.Equal(t, saver.path, res.PreprocessorPath)
	plan, ok := saver.obj.(*preprocessing.ColumnTransformer)
	require.True(t, ok, "the fitted plan should be persisted")
	require.True(t, plan.IsFitted())

	// 欠損した writing_score は残り3値 (74, 44, 75) の中央値 74 になる
	impute := plan.Branches[0].Pipeline.Stats[0].(*preprocessing.ImputeStatistics)
	assert.Equal(t, 74.0, impute.Fill[0].Number)
	scale := plan.Branches[0].Pipeline.Stats[1].(*preprocessing.ScaleStatistics)
	assert.InDelta(t, 66.75, scale.Mean[0], 1e-9)
	assert.InDelta(t, 74.0, res.Train.At(1, 0)*scale.Scale[0]+scale.Mean[0], 1e-9)

	// group E is unseen: the race block of the first test row is all zeros
	for j, name := range res.FeatureNames {
		if strings.HasPrefix(name, "race_ethnicity_") {
			assert.Zero(t, res.Test.At(0, j), name)
		}
	}

	for _, msg := range []string{
		"columns identified",
		"applying preprocessing object",
		"saved preprocessing object",
	} {
		assert.True(t, logger.ContainsMessage(msg), msg)
	}
	assert.True(t, logger.ContainsField(log.ArtifactPathKey, saver.path))
}

func TestInitiateDataTransformation_PersistAndReload(t *testing.T) {
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(trainPath, []byte(trainCSV), 0o644))
	require.NoError(t, os.WriteFile(testPath, []byte(testCSV), 0o644))

	logger, _ := log.NewTestLogger(log.LevelInfo)
	cfg := config.Default(config.WithArtifactDir(filepath.Join(dir, "artifact")))
	dt, err := NewDataTransformation(cfg, WithLogger(logger))
	require.NoError(t, err)

	res, err := dt.InitiateDataTransformation(context.Background(), trainPath, testPath)
	require.NoError(t, err)
	assert.FileExists(t, res.PreprocessorPath)
	assert.True(t, logger.ContainsMessage("read train and test data completed"))

	plan, err := LoadPlan(res.PreprocessorPath)
	require.NoError(t, err)
	assert.Equal(t, res.FeatureNames[:len(res.FeatureNames)-1], plan.OutputNames())

	test := readTable(t, testCSV)
	first, err := ApplyPlan(plan, test, cfg.TargetColumn)
	require.NoError(t, err)
	second, err := ApplyPlan(plan, test, cfg.TargetColumn)
	require.NoError(t, err)
	assert.True(t, mat.Equal(first, second), "applying a fitted plan must be idempotent")

	// 再読み込みしたプランは保存時と同じ結果を返す
	r, c := first.Dims()
	assert.True(t, mat.Equal(first, res.Test.Slice(0, r, 0, c)))
}

func TestTransform_Errors(t *testing.T) {
	train := readTable(t, trainCSV)
	test := readTable(t, testCSV)
	noTarget, err := train.Drop("math_score")
	require.NoError(t, err)
	noGender, err := test.Drop("gender")
	require.NoError(t, err)
	badCell := readTable(t, header+"female,group B,bachelor's degree,standard,none,72,seventy,74\n")
	missingTarget := readTable(t, header+"female,group B,bachelor's degree,standard,none,,72,74\n")

	tests := []struct {
		name  string
		train dataset.Table
		test  dataset.Table
		saver *recordingSaver
		want  errors.Kind
	}{
		{"train without target", noTarget, test, &recordingSaver{}, errors.KindConfiguration},
		{"target with missing value", missingTarget, test, &recordingSaver{}, errors.KindData},
		{"unparsable numeric cell", badCell, test, &recordingSaver{}, errors.KindData},
		{"test missing a feature", train, noGender, &recordingSaver{}, errors.KindConfiguration},
		{"save fails", train, test, &recordingSaver{err: errors.NewIOError("save", errors.New("disk full"))}, errors.KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := NewDataTransformation(config.Default(), WithSaver(tt.saver))
			require.NoError(t, err)

			res, err := dt.Transform(context.Background(), tt.train, tt.test)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.want, errors.KindOf(err))

			var opErr *errors.OperationError
			require.True(t, errors.As(err, &opErr), "boundary errors must be OperationError")
			assert.Equal(t, "DataTransformation.Transform", opErr.Op)

			if tt.saver.err == nil {
				assert.Zero(t, tt.saver.calls, "nothing may be persisted when an earlier step fails")
			}
		})
	}
}

func TestTransform_ComponentFieldOnce(t *testing.T) {
	var buf bytes.Buffer
	provider := log.NewZerologProvider(&buf, log.LevelInfo)
	dt, err := NewDataTransformation(config.Default(),
		WithSaver(&recordingSaver{}),
		WithLogger(provider.GetLoggerWithName("transformation")))
	require.NoError(t, err)

	_, err = dt.Transform(context.Background(), readTable(t, trainCSV), readTable(t, testCSV))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"`+log.ComponentKey+`"`), line)
		assert.Contains(t, line, `"`+log.PhaseKey+`":"`+log.PhasePreprocessing+`"`)
	}
}

func TestTransform_Canceled(t *testing.T) {
	saver := &recordingSaver{}
	dt, err := NewDataTransformation(config.Default(), WithSaver(saver))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dt.Transform(ctx, readTable(t, trainCSV), readTable(t, testCSV))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, saver.calls)
}

func TestTransform_RecoversPanic(t *testing.T) {
	dt, err := NewDataTransformation(config.Default(), WithSaver(panickingSaver{}))
	require.NoError(t, err)

	_, err = dt.Transform(context.Background(), readTable(t, trainCSV), readTable(t, testCSV))
	require.Error(t, err)
	assert.Equal(t, errors.KindInternal, errors.KindOf(err))
	var panicErr *errors.PanicError
	assert.True(t, errors.As(err, &panicErr))
	assert.Contains(t, err.Error(), "disk exploded")
}

func TestInitiateDataTransformation_MissingFile(t *testing.T) {
	dt, err := NewDataTransformation(config.Default())
	require.NoError(t, err)

	_, err = dt.InitiateDataTransformation(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "test.csv")
	require.Error(t, err)
	assert.Equal(t, errors.KindIO, errors.KindOf(err))

	var opErr *errors.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Contains(t, opErr.Context, "train_path")
}

func TestLoadPlan_Errors(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Equal(t, errors.KindIO, errors.KindOf(err))

	garbage := filepath.Join(t.TempDir(), "garbage.gob")
	require.NoError(t, os.WriteFile(garbage, []byte("not gob"), 0o644))
	_, err = LoadPlan(garbage)
	assert.Error(t, err)
}

func TestApplyPlan_UnfitPlan(t *testing.T) {
	plan, err := BuildPlan(config.Default())
	require.NoError(t, err)

	_, err = ApplyPlan(plan, readTable(t, testCSV), "math_score")
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}
