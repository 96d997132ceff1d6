// Package config holds the static column roles and output locations of the
// preprocessing pipeline.
package config

import (
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// Default locations, relative to the working directory.
const (
	DefaultArtifactDir      = "artifact"
	DefaultPreprocessorFile = "preprocessor.gob"
	DefaultLogDir           = "logs"
)

// Config is the column role partition and the artifact layout.
// Column roles are declared, never inferred from the data.
type Config struct {
	NumericalColumns   []string `json:"numerical_columns"`
	CategoricalColumns []string `json:"categorical_columns"`
	TargetColumn       string   `json:"target_column"`

	ArtifactDir      string `json:"artifact_dir"`
	PreprocessorFile string `json:"preprocessor_file"`
	LogDir           string `json:"log_dir"`
}

// Option represents a functional option for configuring the pipeline
type Option func(*Config)

// WithArtifactDir sets the directory the fitted plan is written to
func WithArtifactDir(dir string) Option {
	return func(c *Config) {
		c.ArtifactDir = dir
	}
}

// WithPreprocessorFile sets the file name of the fitted plan
func WithPreprocessorFile(name string) Option {
	return func(c *Config) {
		c.PreprocessorFile = name
	}
}

// WithLogDir sets the directory for per-run log files
func WithLogDir(dir string) Option {
	return func(c *Config) {
		c.LogDir = dir
	}
}

// WithTargetColumn sets the target column name
func WithTargetColumn(name string) Option {
	return func(c *Config) {
		c.TargetColumn = name
	}
}

// WithColumns replaces the numerical and categorical column lists
func WithColumns(numerical, categorical []string) Option {
	return func(c *Config) {
		c.NumericalColumns = append([]string(nil), numerical...)
		c.CategoricalColumns = append([]string(nil), categorical...)
	}
}

// Default returns the configuration for the student performance dataset.
func Default(opts ...Option) Config {
	c := Config{
		NumericalColumns: []string{"writing_score", "reading_score"},
		CategoricalColumns: []string{
			"gender",
			"race_ethnicity",
			"parental_level_of_education",
			"lunch",
			"test_preparation_course",
		},
		TargetColumn:     "math_score",
		ArtifactDir:      DefaultArtifactDir,
		PreprocessorFile: DefaultPreprocessorFile,
		LogDir:           DefaultLogDir,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default values.
func Load(path string, opts ...Option) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.NewIOError("config.Load", err)
	}

	c := Default()
	if err := yaml.UnmarshalStrict(content, &c); err != nil {
		return Config{}, errors.NewConfigurationError("config.Load", errors.Wrapf(err, "parse %s", path))
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// PreprocessorPath returns where the fitted plan is persisted.
func (c Config) PreprocessorPath() string {
	return filepath.Join(c.ArtifactDir, c.PreprocessorFile)
}

// FeatureColumns returns the numerical columns followed by the categorical ones.
func (c Config) FeatureColumns() []string {
	out := make([]string, 0, len(c.NumericalColumns)+len(c.CategoricalColumns))
	out = append(out, c.NumericalColumns...)
	return append(out, c.CategoricalColumns...)
}

// Validate checks that the column roles form a partition.
func (c Config) Validate() error {
	const op = "config.Validate"
	if c.TargetColumn == "" {
		return errors.NewConfigurationError(op, errors.NewValidationError("target_column", "must not be empty", c.TargetColumn))
	}
	if len(c.NumericalColumns)+len(c.CategoricalColumns) == 0 {
		return errors.NewConfigurationError(op, errors.New("no feature columns configured"))
	}
	if c.ArtifactDir == "" || c.PreprocessorFile == "" {
		return errors.NewConfigurationError(op, errors.NewValidationError("preprocessor_file", "artifact location must not be empty", c.PreprocessorPath()))
	}

	seen := map[string]string{c.TargetColumn: "target_column"}
	check := func(role string, names []string) error {
		for _, name := range names {
			if name == "" {
				return errors.NewConfigurationError(op, errors.NewValidationError(role, "contains an empty column name", names))
			}
			if other, dup := seen[name]; dup {
				return errors.NewConfigurationError(op, errors.Newf("column %q is listed in both %s and %s", name, other, role))
			}
			seen[name] = role
		}
		return nil
	}
	if err := check("numerical_columns", c.NumericalColumns); err != nil {
		return err
	}
	return check("categorical_columns", c.CategoricalColumns)
}
