// Package examprep preprocesses the student performance dataset for
// supervised learning of math scores.
//
// A fitted plan imputes, one-hot encodes and scales the feature columns of a
// training table. The same plan is applied unchanged to the test table and
// saved so that new data can be transformed identically at inference time.
//
// # Packages
//
//   - dataset: CSV tables and matrix output
//   - preprocessing: SimpleImputer, OneHotEncoder, StandardScaler, Pipeline and ColumnTransformer
//   - transformation: plan building, the train/test orchestration and plan reuse
//   - config: column roles and artifact locations, optionally loaded from YAML
//   - core/model: fitted state tracking and gob persistence
//   - pkg/errors: error kinds, operation wrapping and panic recovery
//   - pkg/log: Logger interface with zerolog and slog backends and per-run log files
//   - report: histograms of transformed features
//
// # Quick Start
//
//	dt, err := transformation.NewDataTransformation(config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := dt.InitiateDataTransformation(ctx, "artifact/train.csv", "artifact/test.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.PreprocessorPath) // artifact/preprocessor.gob
//
// The examprep command wraps the same flow:
//
//	examprep transform --train artifact/train.csv --test artifact/test.csv
//	examprep apply --plan artifact/preprocessor.gob --input new.csv
//	examprep inspect --plan artifact/preprocessor.gob
package examprep
