package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/examprep/config"
	"github.com/YuminosukeSato/examprep/pkg/errors"
	"github.com/YuminosukeSato/examprep/pkg/log"
)

type rootOptions struct {
	configPath string
	logDir     string
	logLevel   string
	logFormat  string

	cfg config.Config
	run *log.RunLog
}

// execute runs the CLI with args and closes the run log afterwards.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := opts.closeLog(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examprep",
		Short: "Preprocess student exam score datasets",
		Long: `examprep fits an imputation, one-hot encoding and scaling plan on a training
CSV, applies it to the training and test CSVs and saves the fitted plan for reuse.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-dir") {
				config.WithLogDir(opts.logDir)(&cfg)
			}
			opts.cfg = cfg
			return opts.openLog(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", config.DefaultLogDir, "directory for per-run log files (overrides log_dir in the configuration)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", log.FormatZerolog, "log backend (zerolog, slog)")

	cmd.AddCommand(
		newTransformCmd(opts),
		newApplyCmd(opts),
		newInspectCmd(opts),
	)
	return cmd
}

func (o *rootOptions) openLog(cmd *cobra.Command) error {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return errors.NewConfigurationError("cmd.examprep", err)
	}
	if o.logFormat != log.FormatZerolog && o.logFormat != log.FormatSlog {
		return errors.NewConfigurationError("cmd.examprep",
			errors.NewValidationError("log-format", "must be zerolog or slog", o.logFormat))
	}

	run, err := log.OpenRunLog(log.RunLogOptions{
		Dir:     o.cfg.LogDir,
		Level:   level,
		Format:  o.logFormat,
		Console: cmd.ErrOrStderr(),
	})
	o.run = run
	if err != nil {
		// ファイルに書けなくてもコンソールへのログで続行する
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging to console only: %v\n", err)
	}
	return nil
}

func (o *rootOptions) closeLog() error {
	if o.run == nil {
		return nil
	}
	return o.run.Close()
}

func (o *rootOptions) logger(name string) log.Logger {
	if o.run == nil {
		return log.NewNopLogger()
	}
	return o.run.Provider().GetLoggerWithName(name)
}

// loadConfig returns the defaults, or the YAML file at path on top of them.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		c := config.Default()
		return c, c.Validate()
	}
	return config.Load(path)
}
