// Standard attribute keys for preprocessing operations. Keys follow a
// hierarchical naming convention ("ml.operation", "data.samples") so runs can
// be filtered by field.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the transformer or stage, e.g. "ColumnTransformer", "SimpleImputer".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "persist", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run, e.g. "preprocessing", "inference".
	PhaseKey = "ml.phase"

	// BranchKey names a ColumnTransformer branch, e.g. "num_pipeline".
	BranchKey = "ml.branch"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of output columns.
	FeaturesKey = "data.features"

	// SourcePathKey is the file a table was read from.
	SourcePathKey = "data.source"

	// NumericalColumnsKey lists the numerical feature columns.
	NumericalColumnsKey = "columns.numerical"

	// CategoricalColumnsKey lists the categorical feature columns.
	CategoricalColumnsKey = "columns.categorical"

	// TargetColumnKey names the target column.
	TargetColumnKey = "columns.target"
)

// Artifacts and Performance
const (
	// ArtifactPathKey is where a fitted object was persisted or loaded from.
	ArtifactPathKey = "artifact.path"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error Context
const (
	// ErrorKindKey carries the pipeline error kind ("configuration", "io", "data").
	ErrorKindKey = "error.kind"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationPersist      = "persist"
	OperationLoad         = "load"

	PhasePreprocessing = "preprocessing"
	PhaseInference     = "inference"
)
